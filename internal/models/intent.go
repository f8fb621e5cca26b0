package models

// Intent is the structured interpretation of a free-text request.
// It is produced once per message and never mutated afterwards.
type Intent struct {
	Title             string `json:"title"`
	Season            *int   `json:"season,omitempty"`
	Episode           *int   `json:"episode,omitempty"` // nil means "first episode"
	SubtitleRequested bool   `json:"subtitleRequested"`
	SubtitleLanguage  string `json:"subtitleLanguage,omitempty"`
}

// EpisodeNumber returns the requested episode and whether one was given.
func (i Intent) EpisodeNumber() (int, bool) {
	if i.Episode == nil {
		return 0, false
	}
	return *i.Episode, true
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
