package models

// Candidate is one catalog entity matching a searched title.
type Candidate struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// Episode is a single episode of a resolved catalog entity.
type Episode struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
}
