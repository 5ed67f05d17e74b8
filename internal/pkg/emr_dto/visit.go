package emr_dto

// Visit is a bounded clinical encounter session. A missing stopDatetime
// marks it active.
type Visit struct {
	UUID          string    `json:"uuid"`
	VisitType     NamedRef  `json:"visitType"`
	StartDatetime string    `json:"startDatetime"`
	StopDatetime  string    `json:"stopDatetime,omitempty"`
	Location      *NamedRef `json:"location,omitempty"`
}

// Active reports whether the visit is still open.
func (v *Visit) Active() bool {
	return v.StopDatetime == ""
}

type VisitListResponse struct {
	Results []Visit `json:"results"`
	Links   []Link  `json:"links,omitempty"`
}

type CreateVisitRequest struct {
	Patient       string `json:"patient"`
	VisitType     string `json:"visitType"`
	Location      string `json:"location"`
	StartDatetime string `json:"startDatetime"`
}
