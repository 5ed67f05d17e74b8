package responses

type Location struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}
