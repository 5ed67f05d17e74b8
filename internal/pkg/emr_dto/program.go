package emr_dto

// Program is a catalog entry. Read-only to this service.
type Program struct {
	UUID         string            `json:"uuid"`
	Name         string            `json:"name"`
	Display      string            `json:"display"`
	AllWorkflows []ProgramWorkflow `json:"allWorkflows,omitempty"`
	Concept      *DisplayRef       `json:"concept,omitempty"`
}

type ProgramWorkflow struct {
	UUID    string      `json:"uuid"`
	Concept *DisplayRef `json:"concept,omitempty"`
}

type ProgramListResponse struct {
	Results []Program `json:"results"`
	Links   []Link    `json:"links,omitempty"`
}
