package emr_dto

// Enrollment is one patient×program membership instance. A missing or
// null dateCompleted marks it active; disenrollment fills the date in
// rather than deleting the record.
type Enrollment struct {
	UUID          string      `json:"uuid"`
	Display       string      `json:"display,omitempty"`
	Patient       *DisplayRef `json:"patient,omitempty"`
	Program       DisplayRef  `json:"program"`
	DateEnrolled  string      `json:"dateEnrolled"`
	DateCompleted string      `json:"dateCompleted,omitempty"`
	Location      *DisplayRef `json:"location,omitempty"`
}

// Active reports whether the enrollment is still open. The EMR sends
// null and omitted dateCompleted interchangeably; both decode to "".
func (e *Enrollment) Active() bool {
	return e.DateCompleted == ""
}

type EnrollmentListResponse struct {
	Results []Enrollment `json:"results"`
	Links   []Link       `json:"links,omitempty"`
}

type CreateEnrollmentRequest struct {
	Patient      string `json:"patient"`
	Program      string `json:"program"`
	DateEnrolled string `json:"dateEnrolled"`
	Location     string `json:"location,omitempty"`
}

// CloseEnrollmentRequest is posted against an existing enrollment uuid.
type CloseEnrollmentRequest struct {
	DateCompleted string `json:"dateCompleted"`
	VoidReason    string `json:"voidReason,omitempty"`
}
