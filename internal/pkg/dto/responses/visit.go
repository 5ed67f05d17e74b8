package responses

// VisitTypeOption is one entry of the startable-visit-types answer.
// Disallowed types are included with Startable=false and the rationale
// message the rules document supplied.
type VisitTypeOption struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Startable bool   `json:"startable"`
	Message   string `json:"message,omitempty"`
}

type VisitTypesResult struct {
	VisitTypes  []VisitTypeOption `json:"visit_types"`
	ActiveVisit *ActiveVisit      `json:"active_visit,omitempty"`
}

type ActiveVisit struct {
	UUID          string `json:"uuid"`
	VisitTypeUUID string `json:"visit_type_uuid"`
	VisitTypeName string `json:"visit_type_name"`
	StartDatetime string `json:"start_datetime"`
	LocationUUID  string `json:"location_uuid,omitempty"`
}

type Visit struct {
	UUID          string `json:"uuid"`
	VisitTypeUUID string `json:"visit_type_uuid"`
	VisitTypeName string `json:"visit_type_name"`
	StartDatetime string `json:"start_datetime"`
	StopDatetime  string `json:"stop_datetime,omitempty"`
	LocationUUID  string `json:"location_uuid,omitempty"`
	Active        bool   `json:"active"`
}
