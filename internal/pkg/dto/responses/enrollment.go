package responses

type Enrollment struct {
	UUID            string `json:"uuid"`
	ProgramUUID     string `json:"program_uuid"`
	ProgramDisplay  string `json:"program_display"`
	DateEnrolled    string `json:"date_enrolled"`
	DateCompleted   string `json:"date_completed,omitempty"`
	LocationUUID    string `json:"location_uuid,omitempty"`
	LocationDisplay string `json:"location_display,omitempty"`
	Active          bool   `json:"active"`
}
