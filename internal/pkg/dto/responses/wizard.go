package responses

// WizardState is the snapshot returned by every wizard operation. The
// stage-dependent fields are filled only where they apply: Programs at
// select, Questions at details, Enrollment after a committed success.
type WizardState struct {
	WizardID       string            `json:"wizard_id"`
	PatientUUID    string            `json:"patient_uuid"`
	Stage          string            `json:"stage"`
	ProgramUUID    string            `json:"program_uuid,omitempty"`
	ProgramDisplay string            `json:"program_display,omitempty"`
	DateEnrolled   string            `json:"date_enrolled,omitempty"`
	LocationUUID   string            `json:"location_uuid,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`

	Programs   []ProgramOption  `json:"programs,omitempty"`
	Questions  []WizardQuestion `json:"questions,omitempty"`
	Enrollment *Enrollment      `json:"enrollment,omitempty"`
}

// WizardQuestion is the details-stage view of a config question.
type WizardQuestion struct {
	QType            string           `json:"qtype"`
	Name             string           `json:"name"`
	Answers          []WizardAnswer   `json:"answers,omitempty"`
	RelatedQuestions []WizardQuestion `json:"related_questions,omitempty"`
	ShowIfParent     string           `json:"show_if_parent,omitempty"`
}

type WizardAnswer struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
