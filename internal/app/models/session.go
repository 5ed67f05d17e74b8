package models

import "time"

// ClinicianSession is the identity document the auth provider stores in
// Redis. The Authenticate middleware resolves it by the session_id
// claim and passes it to usecases through context.
type ClinicianSession struct {
	SessionID     string    `json:"session_id"`
	ClinicianUUID string    `json:"clinician_uuid"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	ExpiresAt     time.Time `json:"expires_at"`
}
