package requests

type WizardSelect struct {
	ProgramUUID string `json:"program_uuid" validate:"required,uuid"`
}

// WizardDetails carries the enrollment date, optional location, and the
// question answers collected at the details stage. The date is checked
// by the wizard itself so an empty value reports DATE_REQUIRED rather
// than a generic payload error.
type WizardDetails struct {
	DateEnrolled string            `json:"date_enrolled" validate:"omitempty,datetime=2006-01-02"`
	LocationUUID string            `json:"location_uuid" validate:"omitempty,uuid"`
	Answers      map[string]string `json:"answers"`
}
