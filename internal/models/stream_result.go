package models

// StreamResult is the playable link produced for an episode
type StreamResult struct {
	PlayerURL   string `json:"playerUrl"`
	MasterURL   string `json:"masterUrl,omitempty"`   // HLS master playlist
	SubtitleURL string `json:"subtitleUrl,omitempty"` // subtitle track bundled by the stream backend
}
