package requests

// CreateEnrollment is the non-wizard enroll request. Answers map
// question qtype to the selected answer value.
type CreateEnrollment struct {
	ProgramUUID  string            `json:"program_uuid" validate:"required,uuid"`
	DateEnrolled string            `json:"date_enrolled" validate:"required,datetime=2006-01-02"`
	LocationUUID string            `json:"location_uuid" validate:"omitempty,uuid"`
	Answers      map[string]string `json:"answers"`
}

type Disenroll struct {
	VoidReason string `json:"void_reason" validate:"omitempty,max=255"`
}
