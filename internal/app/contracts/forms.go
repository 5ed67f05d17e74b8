package contracts

import (
	"context"

	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
)

type FormUsecase interface {
	ListAvailableForms(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) ([]responses.AvailableForm, error)
}

type FormEMRClient interface {
	ListForms(ctx context.Context) ([]emr_dto.Form, error)
}
