package models

import "time"

// WizardSession is the server-held state of one enrollment wizard run,
// stored in Redis under a TTL. All wizard-scoped data lives here and is
// discarded on close, expiry, or start-over.
type WizardSession struct {
	ID             string            `json:"id"`
	PatientUUID    string            `json:"patient_uuid"`
	ClinicianUUID  string            `json:"clinician_uuid"`
	Stage          string            `json:"stage"`
	ProgramUUID    string            `json:"program_uuid,omitempty"`
	ProgramDisplay string            `json:"program_display,omitempty"`
	DateEnrolled   string            `json:"date_enrolled,omitempty"`
	LocationUUID   string            `json:"location_uuid,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
	EnrollmentUUID string            `json:"enrollment_uuid,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
