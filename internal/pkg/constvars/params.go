package constvars

const (
	URLParamPatientID    = "patient_id"
	URLParamEnrollmentID = "enrollment_id"
	URLParamWizardID     = "wizard_id"
)

const (
	URLQueryParamActive   = "active"
	URLQueryParamProgram  = "program"
	URLQueryParamLocation = "location"
	URLQueryParamPage     = "page"
	URLQueryParamPageSize = "page_size"
)
