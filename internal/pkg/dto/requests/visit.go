package requests

// StartVisit deliberately leaves visit type and location without a
// required tag: the usecase checks them itself so the failure names the
// missing field instead of a generic payload error.
type StartVisit struct {
	ProgramUUID    string `json:"program_uuid" validate:"required,uuid"`
	EnrollmentUUID string `json:"enrollment_uuid" validate:"required,uuid"`
	VisitTypeUUID  string `json:"visit_type_uuid" validate:"omitempty,uuid"`
	LocationUUID   string `json:"location_uuid" validate:"omitempty,uuid"`
}
