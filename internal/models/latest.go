package models

import "time"

// LatestEntry is one release listed on the catalog's latest releases page
type LatestEntry struct {
	Title     string `json:"title"`
	Episode   string `json:"episode"`
	URL       string `json:"url"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// LatestDigest is a snapshot of the latest releases
type LatestDigest struct {
	Entries     []LatestEntry `json:"entries"`
	RefreshedAt time.Time     `json:"refreshedAt"`
}
