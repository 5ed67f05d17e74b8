package emr_dto

// Form is a clinical data-entry template tied to an encounter type.
// Availability resolution only ever considers published, non-retired
// forms; both flags travel on the wire so the filter lives here, not
// on the server.
type Form struct {
	UUID          string    `json:"uuid"`
	Name          string    `json:"name"`
	EncounterType *NamedRef `json:"encounterType,omitempty"`
	Version       string    `json:"version"`
	Published     bool      `json:"published"`
	Retired       bool      `json:"retired"`
}

type FormListResponse struct {
	Results []Form `json:"results"`
	Links   []Link `json:"links,omitempty"`
}
