package emr_dto

type Location struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Display string `json:"display,omitempty"`
}

type LocationListResponse struct {
	Results []Location `json:"results"`
	Links   []Link     `json:"links,omitempty"`
}

// NextLink returns the rel="next" reference verbatim, empty when the
// page is the last one.
func (r *LocationListResponse) NextLink() string {
	for _, link := range r.Links {
		if link.Rel == "next" {
			return link.URI
		}
	}
	return ""
}
