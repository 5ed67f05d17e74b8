package responses

type AvailableForm struct {
	UUID              string `json:"uuid"`
	Name              string `json:"name"`
	Version           string `json:"version"`
	EncounterTypeUUID string `json:"encounter_type_uuid"`
	EncounterTypeName string `json:"encounter_type_name,omitempty"`
}
