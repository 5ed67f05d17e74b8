package contracts

import (
	"context"

	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
)

type ProgramUsecase interface {
	// ListProgramsForPatient annotates the catalog for one patient:
	// active-enrollment programs and incompatibility-blocked programs
	// are returned not selectable, with the blocking display names.
	ListProgramsForPatient(ctx context.Context, patientUUID string) ([]responses.ProgramOption, error)
}

type ProgramEMRClient interface {
	ListPrograms(ctx context.Context) ([]emr_dto.Program, error)
}
