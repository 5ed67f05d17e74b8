package forms

import (
	"github.com/Masterminds/semver/v3"

	"careflow-service/internal/pkg/emr_dto"
)

// ResolveAvailableForms computes the forms a clinician can launch right
// now. Forms are visit-scoped documentation: with no open visit of an
// allowed type the answer is empty no matter what the catalog holds.
// Otherwise every allowed visit type contributes, per allowed encounter
// type, the newest published non-retired form. A form reachable through
// several visit types appears once, at its first position, so the
// output order is allowed-visit-type order, then encounter order.
func ResolveAvailableForms(allowedVisitTypes []emr_dto.EligibleVisitType, forms []emr_dto.Form, activeVisitTypeUUIDs []string) []emr_dto.Form {
	if !anyActiveAllowed(allowedVisitTypes, activeVisitTypeUUIDs) {
		return nil
	}

	seen := make(map[string]struct{})
	available := make([]emr_dto.Form, 0)
	for _, visitType := range allowedVisitTypes {
		if visitType.EncounterTypes == nil {
			continue
		}
		for _, encounterType := range visitType.EncounterTypes.AllowedEncounters {
			form := latestFormForEncounterType(forms, encounterType.UUID)
			if form == nil {
				continue
			}
			if _, duplicate := seen[form.UUID]; duplicate {
				continue
			}
			seen[form.UUID] = struct{}{}
			available = append(available, *form)
		}
	}
	return available
}

func anyActiveAllowed(allowedVisitTypes []emr_dto.EligibleVisitType, activeVisitTypeUUIDs []string) bool {
	allowed := make(map[string]struct{}, len(allowedVisitTypes))
	for _, visitType := range allowedVisitTypes {
		allowed[visitType.UUID] = struct{}{}
	}
	for _, visitTypeUUID := range activeVisitTypeUUIDs {
		if _, ok := allowed[visitTypeUUID]; ok {
			return true
		}
	}
	return false
}

func latestFormForEncounterType(forms []emr_dto.Form, encounterTypeUUID string) *emr_dto.Form {
	var latest *emr_dto.Form
	for i := range forms {
		form := &forms[i]
		if form.EncounterType == nil || form.EncounterType.UUID != encounterTypeUUID {
			continue
		}
		if !form.Published || form.Retired {
			continue
		}
		if latest == nil || versionGreater(form.Version, latest.Version) {
			latest = form
		}
	}
	return latest
}

// versionGreater prefers semver ordering; the lenient parser accepts the
// "1.2"-style versions the catalog mostly carries. When either side does
// not parse at all, a raw string comparison decides.
func versionGreater(a, b string) bool {
	versionA, errA := semver.NewVersion(a)
	versionB, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a > b
	}
	return versionA.GreaterThan(versionB)
}
