package emr_dto

// VisitTypeEligibility is the ETL-sourced document scoped to one
// (patient, program, enrollment, location) tuple. Eligibility is
// contextual: the same visit type can be allowed at one location and
// disallowed at another, so the document is re-fetched whenever any
// part of the tuple changes.
type VisitTypeEligibility struct {
	Allowed    []EligibleVisitType `json:"allowed,omitempty"`
	Disallowed []EligibleVisitType `json:"disallowed,omitempty"`
}

type EligibleVisitType struct {
	UUID           string          `json:"uuid"`
	Name           string          `json:"name"`
	Message        string          `json:"message,omitempty"`
	AllowedIf      string          `json:"allowedIf,omitempty"`
	EncounterTypes *EncounterTypes `json:"encounterTypes,omitempty"`
}

type EncounterTypes struct {
	AllowedEncounters []NamedRef `json:"allowedEncounters,omitempty"`
}

// AllowedUUIDs collects the uuids of the allowed set.
func (d *VisitTypeEligibility) AllowedUUIDs() []string {
	uuids := make([]string, 0, len(d.Allowed))
	for _, visitType := range d.Allowed {
		uuids = append(uuids, visitType.UUID)
	}
	return uuids
}
