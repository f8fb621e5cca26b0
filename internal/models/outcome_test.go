package models

import "testing"

func TestOutcomeStatus_String(t *testing.T) {
	tests := []struct {
		status   OutcomeStatus
		expected string
	}{
		{OutcomeUnderstood, "understood"},
		{OutcomeCouldNotUnderstand, "could_not_understand"},
		{OutcomeNotFound, "not_found"},
		{OutcomeNoEpisodes, "no_episodes"},
		{OutcomeStreamUnavailable, "stream_unavailable"},
		{OutcomeStatus(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("OutcomeStatus(%d).String() = %q, want %q", int(tt.status), got, tt.expected)
		}
	}
}

func TestIntent_EpisodeNumber(t *testing.T) {
	var empty Intent
	if _, ok := empty.EpisodeNumber(); ok {
		t.Error("Expected no episode number for empty intent")
	}

	withEpisode := Intent{Title: "naruto", Episode: IntPtr(3)}
	n, ok := withEpisode.EpisodeNumber()
	if !ok || n != 3 {
		t.Errorf("Expected episode 3, got %d (ok=%v)", n, ok)
	}
}

func TestSubtitleChunk_Len(t *testing.T) {
	c := SubtitleChunk{Index: 1, StartLine: 100, EndLine: 150}
	if c.Len() != 50 {
		t.Errorf("Expected length 50, got %d", c.Len())
	}
}
