package contracts

import (
	"context"

	"careflow-service/internal/pkg/emr_dto"
)

// ConfigDocumentClient reads the ETL-sourced rules documents. Two
// implementations exist: the REST document endpoint and the object
// store bucket; config selects one at startup.
type ConfigDocumentClient interface {
	GetPatientProgramConfig(ctx context.Context, patientUUID string) (emr_dto.PatientProgramConfig, error)
	GetVisitTypeEligibility(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) (*emr_dto.VisitTypeEligibility, error)
}
