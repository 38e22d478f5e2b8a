package model

// Recommendation is a suggested product or service with a resolved link and image.
type Recommendation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	URL    string `json:"url"`
	Img    string `json:"img"`
}
