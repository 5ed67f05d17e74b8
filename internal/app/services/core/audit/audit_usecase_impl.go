package audit

import (
	"context"
	"sync"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/responses"

	"go.uber.org/zap"
)

var (
	auditUsecaseInstance contracts.AuditUsecase
	onceAuditUsecase     sync.Once
)

type auditUsecase struct {
	ProgramEventRepository contracts.ProgramEventRepository
	Log                    *zap.Logger
}

func NewAuditUsecase(repository contracts.ProgramEventRepository, logger *zap.Logger) contracts.AuditUsecase {
	onceAuditUsecase.Do(func() {
		auditUsecaseInstance = &auditUsecase{
			ProgramEventRepository: repository,
			Log:                    logger,
		}
	})
	return auditUsecaseInstance
}

func (uc *auditUsecase) ListPatientEvents(ctx context.Context, patientUUID string, page, pageSize int) ([]responses.ProgramEvent, int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("auditUsecase.ListPatientEvents called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.Int("page", page),
		zap.Int("page_size", pageSize),
	)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	events, total, err := uc.ProgramEventRepository.FindEventsByPatient(ctx, patientUUID, page, pageSize)
	if err != nil {
		uc.Log.Error("auditUsecase.ListPatientEvents error reading events",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	result := make([]responses.ProgramEvent, 0, len(events))
	for i := range events {
		event := &events[i]
		result = append(result, responses.ProgramEvent{
			EventID:        event.EventID,
			Type:           event.Type,
			PatientUUID:    event.PatientUUID,
			ActorUUID:      event.ActorUUID,
			ProgramUUID:    event.ProgramUUID,
			EnrollmentUUID: event.EnrollmentUUID,
			VisitUUID:      event.VisitUUID,
			OccurredAt:     event.OccurredAt,
			Detail:         event.Detail,
		})
	}
	return result, total, nil
}
