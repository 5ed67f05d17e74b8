package contracts

import (
	"context"

	"careflow-service/internal/pkg/dto/requests"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
)

type VisitUsecase interface {
	// ListVisitTypes resolves the startable visit types for the
	// (patient, program, enrollment, location) tuple plus the currently
	// active matching visit, if one exists.
	ListVisitTypes(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) (*responses.VisitTypesResult, error)
	StartVisit(ctx context.Context, sessionData, patientUUID string, request *requests.StartVisit) (*responses.Visit, error)
}

type VisitEMRClient interface {
	ListVisitsByPatient(ctx context.Context, patientUUID string) ([]emr_dto.Visit, error)
	CreateVisit(ctx context.Context, request *emr_dto.CreateVisitRequest) (*emr_dto.Visit, error)
}
