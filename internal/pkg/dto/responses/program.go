package responses

// Program selectability reasons.
const (
	ProgramBlockedEnrolled     = "enrolled"
	ProgramBlockedIncompatible = "incompatible"
)

// ProgramOption annotates a catalog program for one patient. Blocked
// programs stay in the list, marked not selectable, with the display
// names of the enrollments blocking them.
type ProgramOption struct {
	UUID       string   `json:"uuid"`
	Display    string   `json:"display"`
	Selectable bool     `json:"selectable"`
	Reason     string   `json:"reason,omitempty"`
	BlockedBy  []string `json:"blocked_by,omitempty"`
}
