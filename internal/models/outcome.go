package models

// OutcomeStatus is the terminal state of handling one chat message
type OutcomeStatus int

const (
	OutcomeUnderstood OutcomeStatus = iota
	OutcomeCouldNotUnderstand
	OutcomeNotFound
	OutcomeNoEpisodes
	OutcomeStreamUnavailable
)

// String returns the status name used in logs and metric labels.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeUnderstood:
		return "understood"
	case OutcomeCouldNotUnderstand:
		return "could_not_understand"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNoEpisodes:
		return "no_episodes"
	case OutcomeStreamUnavailable:
		return "stream_unavailable"
	default:
		return "unknown"
	}
}

// Outcome carries everything produced while handling a message. Fields beyond
// Status are filled in as far as the orchestration got.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Intent  *Intent       `json:"intent,omitempty"`
	Entity  *Candidate    `json:"entity,omitempty"`
	Episode *Episode      `json:"episode,omitempty"`
	Stream  *StreamResult `json:"stream,omitempty"`

	// ExistingSubtitle is set when a track in the requested language was
	// already available and generation was skipped.
	ExistingSubtitle *SubtitleTrack `json:"existingSubtitle,omitempty"`
	// Subtitle is the newly generated artifact, nil when not requested,
	// already available, or when generation failed.
	Subtitle *SubtitleArtifact `json:"subtitle,omitempty"`
	// SubtitleFailed reports that generation was attempted and failed.
	SubtitleFailed bool `json:"subtitleFailed,omitempty"`
}
