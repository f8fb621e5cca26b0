package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.content, f.err
}

func TestExtractor_UsesModelOutput(t *testing.T) {
	model := &fakeCompleter{content: "```json\n{\"title\":\"One Piece\",\"season\":null,\"episode\":1,\"subtitle_requested\":true,\"subtitle_language\":\"French\"}\n```"}
	extractor := NewExtractor(model, zerolog.Nop())

	got := extractor.Extract(context.Background(), "one piece ep one with french subs please")
	if got == nil {
		t.Fatal("Expected intent, got nil")
	}
	if got.Title != "One Piece" {
		t.Errorf("title = %q, want %q", got.Title, "One Piece")
	}
	if got.Episode == nil || *got.Episode != 1 {
		t.Errorf("episode = %v, want 1", got.Episode)
	}
	if got.Season != nil {
		t.Errorf("season = %d, want absent", *got.Season)
	}
	if !got.SubtitleRequested || got.SubtitleLanguage != "french" {
		t.Errorf("subtitle = %v/%q, want true/french", got.SubtitleRequested, got.SubtitleLanguage)
	}
}

func TestExtractor_ModelWithoutEpisodeMeansFirstEpisode(t *testing.T) {
	model := &fakeCompleter{content: `{"title":"Frieren","episode":0}`}
	got := NewExtractor(model, zerolog.Nop()).Extract(context.Background(), "watch frieren")
	if got == nil {
		t.Fatal("Expected intent, got nil")
	}
	if got.Episode != nil {
		t.Errorf("episode = %d, want absent", *got.Episode)
	}
}

func TestExtractor_FallsBack(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeCompleter
	}{
		{"transport error", &fakeCompleter{err: errors.New("connection refused")}},
		{"garbage output", &fakeCompleter{content: "I am not sure what you mean"}},
		{"empty title", &fakeCompleter{content: `{"title":"  ","episode":3}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewExtractor(tt.model, zerolog.Nop()).Extract(context.Background(), "naruto episode 3")
			if tt.model.calls != 1 {
				t.Errorf("Expected model to be called once, got %d", tt.model.calls)
			}
			if got == nil {
				t.Fatal("Expected fallback intent, got nil")
			}
			if got.Title != "naruto" || got.Episode == nil || *got.Episode != 3 || got.SubtitleRequested {
				t.Errorf("unexpected fallback intent %+v", got)
			}
		})
	}
}

func TestExtractor_NilModel(t *testing.T) {
	extractor := NewExtractor(nil, zerolog.Nop())
	if got := extractor.Extract(context.Background(), "naruto episode 3"); got == nil || got.Title != "naruto" {
		t.Errorf("unexpected intent %+v", got)
	}
	if got := extractor.Extract(context.Background(), "hello"); got != nil {
		t.Errorf("Expected nil intent, got %+v", got)
	}
}

func TestExtractor_BlankText(t *testing.T) {
	model := &fakeCompleter{content: `{"title":"x"}`}
	if got := NewExtractor(model, zerolog.Nop()).Extract(context.Background(), "   "); got != nil {
		t.Errorf("Expected nil intent, got %+v", got)
	}
	if model.calls != 0 {
		t.Errorf("Expected model not to be called, got %d calls", model.calls)
	}
}
