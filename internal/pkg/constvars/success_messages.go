package constvars

const (
	ResponseSuccess = "success"
	ResponseError   = "error"

	GetProgramsSuccessMessage      = "get programs successfully"
	GetEnrollmentsSuccessMessage   = "get enrollments successfully"
	GetVisitTypesSuccessMessage    = "get visit types successfully"
	GetFormsSuccessMessage         = "get available forms successfully"
	GetLocationsSuccessMessage     = "get locations successfully"
	GetProgramEventsSuccessMessage = "get program events successfully"

	EnrollSuccessMessage     = "patient enrolled successfully"
	DisenrollSuccessMessage  = "patient disenrolled successfully"
	StartVisitSuccessMessage = "visit started successfully"

	WizardOpenedSuccessMessage    = "enrollment wizard opened"
	WizardStateSuccessMessage     = "get wizard state successfully"
	WizardSelectSuccessMessage    = "program selected"
	WizardDetailsSuccessMessage   = "enrollment details accepted"
	WizardCommitSuccessMessage    = "enrollment committed successfully"
	WizardBackSuccessMessage      = "went back one step"
	WizardStartOverSuccessMessage = "wizard reset"
	WizardClosedSuccessMessage    = "enrollment wizard closed"
)
