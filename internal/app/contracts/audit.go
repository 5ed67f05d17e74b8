package contracts

import (
	"context"

	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/dto/responses"
)

// EventPublisher hands audit events to the queue. Callers treat publish
// failures as best-effort: the clinical write has already succeeded and
// is never rolled back over auditing.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.CareflowEvent) error
}

type ProgramEventRepository interface {
	InsertEvent(ctx context.Context, event *models.CareflowEvent) error
	FindEventsByPatient(ctx context.Context, patientUUID string, page, pageSize int) ([]models.CareflowEvent, int, error)
}

type AuditUsecase interface {
	ListPatientEvents(ctx context.Context, patientUUID string, page, pageSize int) ([]responses.ProgramEvent, int, error)
}
