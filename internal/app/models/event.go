package models

import "time"

// CareflowEvent is the audit record published for every clinical write.
// It travels the queue as JSON and is persisted to Mongo by the worker.
type CareflowEvent struct {
	EventID        string            `json:"event_id" bson:"eventId"`
	Type           string            `json:"type" bson:"type"`
	PatientUUID    string            `json:"patient_uuid" bson:"patientUuid"`
	ActorUUID      string            `json:"actor_uuid,omitempty" bson:"actorUuid,omitempty"`
	ProgramUUID    string            `json:"program_uuid,omitempty" bson:"programUuid,omitempty"`
	EnrollmentUUID string            `json:"enrollment_uuid,omitempty" bson:"enrollmentUuid,omitempty"`
	VisitUUID      string            `json:"visit_uuid,omitempty" bson:"visitUuid,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at" bson:"occurredAt"`
	Detail         map[string]string `json:"detail,omitempty" bson:"detail,omitempty"`

	// Attempts counts worker deliveries; it never leaves the queue leg.
	Attempts int `json:"attempts,omitempty" bson:"-"`
}
