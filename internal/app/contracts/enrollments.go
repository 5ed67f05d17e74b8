package contracts

import (
	"context"

	"careflow-service/internal/pkg/dto/requests"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
)

type EnrollmentUsecase interface {
	ListEnrollments(ctx context.Context, patientUUID string, activeOnly bool) ([]responses.Enrollment, error)
	// Enroll is the single-shot path used by non-wizard clients. It runs
	// the same selectability and question validation the wizard does.
	Enroll(ctx context.Context, sessionData, patientUUID string, request *requests.CreateEnrollment) (*responses.Enrollment, error)
	Disenroll(ctx context.Context, sessionData, enrollmentUUID string, request *requests.Disenroll) (*responses.Enrollment, error)
}

type WizardUsecase interface {
	Open(ctx context.Context, sessionData, patientUUID string) (*responses.WizardState, error)
	Get(ctx context.Context, wizardID string) (*responses.WizardState, error)
	Select(ctx context.Context, wizardID string, request *requests.WizardSelect) (*responses.WizardState, error)
	SubmitDetails(ctx context.Context, wizardID string, request *requests.WizardDetails) (*responses.WizardState, error)
	Commit(ctx context.Context, wizardID string) (*responses.WizardState, error)
	Back(ctx context.Context, wizardID string) (*responses.WizardState, error)
	StartOver(ctx context.Context, wizardID string) (*responses.WizardState, error)
	Close(ctx context.Context, wizardID string) error
}

type EnrollmentEMRClient interface {
	ListEnrollmentsByPatient(ctx context.Context, patientUUID string) ([]emr_dto.Enrollment, error)
	GetEnrollment(ctx context.Context, enrollmentUUID string) (*emr_dto.Enrollment, error)
	CreateEnrollment(ctx context.Context, request *emr_dto.CreateEnrollmentRequest) (*emr_dto.Enrollment, error)
	// CloseEnrollment updates the enrollment in place; the EMR keeps the
	// record in the patient's history.
	CloseEnrollment(ctx context.Context, enrollmentUUID string, request *emr_dto.CloseEnrollmentRequest) (*emr_dto.Enrollment, error)
}
