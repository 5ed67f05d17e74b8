package emr_dto

// PatientProgramConfig is the ETL-sourced rules document, keyed by
// program uuid. The rules are data, not code: clinical administrators
// edit them without a release, and anything missing or unrecognized is
// treated as permissive.
type PatientProgramConfig map[string]ProgramConfigEntry

type ProgramConfigEntry struct {
	IncompatibleWith  []string           `json:"incompatibleWith,omitempty"`
	EnrollmentOptions *EnrollmentOptions `json:"enrollmentOptions,omitempty"`
}

type EnrollmentOptions struct {
	RequiredProgramQuestions []Question `json:"requiredProgramQuestions,omitempty"`
}

// Question is one enrollment questionnaire entry. RelatedQuestions nest
// exactly one level; a related question is shown (and therefore
// required) when its showIfParent matches the parent's answer, or
// unconditionally when showIfParent is empty.
type Question struct {
	QType              string         `json:"qtype"`
	Name               string         `json:"name"`
	Answers            []AnswerOption `json:"answers,omitempty"`
	EnrollIf           string         `json:"enrollIf,omitempty"`
	NotEligibleMessage string         `json:"notEligibleMessage,omitempty"`
	ShowIfParent       string         `json:"showIfParent,omitempty"`
	RelatedQuestions   []Question     `json:"relatedQuestions,omitempty"`
}

type AnswerOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
