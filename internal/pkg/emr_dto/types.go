package emr_dto

// DisplayRef is the short reference shape the legacy EMR uses when a
// resource points at another one it labels with a display string.
type DisplayRef struct {
	UUID    string `json:"uuid"`
	Display string `json:"display,omitempty"`
}

// NamedRef is the variant used by resources labelled with a name.
type NamedRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
}

// Link is a pagination link in a list response.
type Link struct {
	Rel string `json:"rel"`
	URI string `json:"uri"`
}

// ErrorEnvelope is the EMR's error body shape.
type ErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// Message returns the server-supplied message, empty when the body did
// not decode into the envelope.
func (e *ErrorEnvelope) Message() string {
	return e.Error.Message
}
