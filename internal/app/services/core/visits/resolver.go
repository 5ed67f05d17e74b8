package visits

import (
	"time"

	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/utils"
)

// ResolveActiveVisit picks the visit shown as "in progress" for the
// current program context: the most recently started visit that is
// still open and whose type belongs to the allowed set. Visits of
// types outside the set never surface here even when open, because a
// visit started under another program must not hijack this one's
// workflow. Returns nil when nothing qualifies.
func ResolveActiveVisit(allowedVisitTypeUUIDs []string, visits []emr_dto.Visit) *emr_dto.Visit {
	allowed := make(map[string]struct{}, len(allowedVisitTypeUUIDs))
	for _, visitTypeUUID := range allowedVisitTypeUUIDs {
		allowed[visitTypeUUID] = struct{}{}
	}

	var winner *emr_dto.Visit
	var winnerStart time.Time
	for i := range visits {
		visit := &visits[i]
		if !visit.Active() {
			continue
		}
		if _, ok := allowed[visit.VisitType.UUID]; !ok {
			continue
		}
		start, err := utils.ParseEMRTimestamp(visit.StartDatetime)
		if err != nil {
			// An unparsable start sorts as oldest, so it only wins when
			// it is the only candidate.
			start = time.Time{}
		}
		if winner == nil || start.After(winnerStart) {
			winner = visit
			winnerStart = start
		}
	}
	return winner
}
