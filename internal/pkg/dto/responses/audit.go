package responses

import "time"

type ProgramEvent struct {
	EventID        string            `json:"event_id"`
	Type           string            `json:"type"`
	PatientUUID    string            `json:"patient_uuid"`
	ActorUUID      string            `json:"actor_uuid,omitempty"`
	ProgramUUID    string            `json:"program_uuid,omitempty"`
	EnrollmentUUID string            `json:"enrollment_uuid,omitempty"`
	VisitUUID      string            `json:"visit_uuid,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
	Detail         map[string]string `json:"detail,omitempty"`
}
