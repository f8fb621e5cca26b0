package subtitles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

type fakeBackend struct {
	transcript string
	fetchErr   error
	saveErr    error
	translate  func(chunk models.SubtitleChunk) (string, error)

	mu       sync.Mutex
	saved    map[string]string
	requests []models.SubtitleChunk
}

func (f *fakeBackend) FetchTranscript(_ context.Context, _ string) (string, error) {
	return f.transcript, f.fetchErr
}

func (f *fakeBackend) TranslateChunk(_ context.Context, _, _ string, chunk models.SubtitleChunk) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, chunk)
	f.mu.Unlock()
	if f.translate != nil {
		return f.translate(chunk)
	}
	return fmt.Sprintf("chunk-%d", chunk.Index), nil
}

func (f *fakeBackend) SaveSubtitle(_ context.Context, episodeID, filename, content string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[filename] = content
	return "https://subs.example.org/" + episodeID + "/" + filename, nil
}

// transcriptOf builds a transcript with n numbered lines.
func transcriptOf(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "line %d\r\n", i)
	}
	return b.String()
}

type progressRecorder struct {
	mu      sync.Mutex
	updates []int
	active  atomic.Int32
	overlap atomic.Bool
}

func (r *progressRecorder) record(percent int) {
	if r.active.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.active.Add(-1)
	r.mu.Lock()
	r.updates = append(r.updates, percent)
	r.mu.Unlock()
}

func TestPipeline_Generate(t *testing.T) {
	backend := &fakeBackend{transcript: transcriptOf(250)}
	pipeline := NewPipeline(backend, Options{ChunkSize: 100}, zerolog.Nop())
	recorder := &progressRecorder{}

	artifact := pipeline.Generate(context.Background(), "ep-1", "French", recorder.record)
	if artifact == nil {
		t.Fatal("Expected artifact, got nil")
	}

	if artifact.Content != "chunk-0\nchunk-1\nchunk-2" {
		t.Errorf("Unexpected content %q", artifact.Content)
	}
	if artifact.URL != "https://subs.example.org/ep-1/french.srt" {
		t.Errorf("Unexpected URL %q", artifact.URL)
	}
	if artifact.Language != "French" {
		t.Errorf("Unexpected language %q", artifact.Language)
	}
	if backend.saved["french.srt"] != artifact.Content {
		t.Errorf("Saved content does not match artifact content")
	}

	if len(backend.requests) != 3 {
		t.Fatalf("Expected 3 translation requests, got %d", len(backend.requests))
	}
	for _, chunk := range backend.requests {
		if chunk.Index == 2 && (chunk.StartLine != 200 || chunk.EndLine != 250) {
			t.Errorf("Unexpected last chunk %+v", chunk)
		}
	}

	if len(recorder.updates) != 3 {
		t.Fatalf("Expected 3 progress updates, got %v", recorder.updates)
	}
	if recorder.updates[len(recorder.updates)-1] != 100 {
		t.Errorf("Expected final progress 100, got %v", recorder.updates)
	}
}

func TestPipeline_Generate_ReassemblesInIndexOrder(t *testing.T) {
	const chunkCount = 5
	// Chunk i may only finish after chunk i+1, forcing reverse completion order.
	finished := make([]chan struct{}, chunkCount)
	for i := range finished {
		finished[i] = make(chan struct{})
	}

	var orderMu sync.Mutex
	var completionOrder []int

	backend := &fakeBackend{
		transcript: transcriptOf(chunkCount * 10),
		translate: func(chunk models.SubtitleChunk) (string, error) {
			if chunk.Index < chunkCount-1 {
				select {
				case <-finished[chunk.Index+1]:
				case <-time.After(5 * time.Second):
					return "", errors.New("timed out waiting for next chunk")
				}
			}
			orderMu.Lock()
			completionOrder = append(completionOrder, chunk.Index)
			orderMu.Unlock()
			defer close(finished[chunk.Index])
			return fmt.Sprintf("T%d", chunk.Index), nil
		},
	}

	pipeline := NewPipeline(backend, Options{ChunkSize: 10}, zerolog.Nop())
	recorder := &progressRecorder{}
	artifact := pipeline.Generate(context.Background(), "ep-1", "english", recorder.record)
	if artifact == nil {
		t.Fatal("Expected artifact, got nil")
	}

	if artifact.Content != "T0\nT1\nT2\nT3\nT4" {
		t.Errorf("Expected index-ordered content, got %q", artifact.Content)
	}
	if fmt.Sprint(completionOrder) != "[4 3 2 1 0]" {
		t.Errorf("Expected reverse completion order, got %v", completionOrder)
	}

	for i := 1; i < len(recorder.updates); i++ {
		if recorder.updates[i] < recorder.updates[i-1] {
			t.Errorf("Progress decreased: %v", recorder.updates)
		}
	}
	if fmt.Sprint(recorder.updates) != "[20 40 60 80 100]" {
		t.Errorf("Unexpected progress updates %v", recorder.updates)
	}
	if recorder.overlap.Load() {
		t.Error("Progress callback was invoked concurrently")
	}
}

func TestPipeline_Generate_FailedChunkLeavesEmptySegment(t *testing.T) {
	backend := &fakeBackend{
		transcript: transcriptOf(30),
		translate: func(chunk models.SubtitleChunk) (string, error) {
			if chunk.Index == 1 {
				return "", errors.New("translation backend unavailable")
			}
			return fmt.Sprintf("T%d", chunk.Index), nil
		},
	}

	pipeline := NewPipeline(backend, Options{ChunkSize: 10}, zerolog.Nop())
	recorder := &progressRecorder{}
	artifact := pipeline.Generate(context.Background(), "ep-1", "german", recorder.record)
	if artifact == nil {
		t.Fatal("Expected artifact despite a failed chunk, got nil")
	}
	if artifact.Content != "T0\n\nT2" {
		t.Errorf("Expected empty middle segment, got %q", artifact.Content)
	}
	if len(recorder.updates) != 3 || recorder.updates[2] != 100 {
		t.Errorf("Expected failed chunk to count toward progress, got %v", recorder.updates)
	}
}

func TestPipeline_Generate_FetchFailure(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("transcript missing")}
	pipeline := NewPipeline(backend, Options{}, zerolog.Nop())

	if artifact := pipeline.Generate(context.Background(), "ep-1", "french", nil); artifact != nil {
		t.Errorf("Expected nil artifact on fetch failure, got %+v", artifact)
	}
	if len(backend.requests) != 0 {
		t.Errorf("Expected no translation requests, got %d", len(backend.requests))
	}
}

func TestPipeline_Generate_SaveFailure(t *testing.T) {
	backend := &fakeBackend{transcript: transcriptOf(5), saveErr: errors.New("disk full")}
	pipeline := NewPipeline(backend, Options{}, zerolog.Nop())

	if artifact := pipeline.Generate(context.Background(), "ep-1", "french", nil); artifact != nil {
		t.Errorf("Expected nil artifact on save failure, got %+v", artifact)
	}
}

func TestPipeline_Generate_EmptyTranscript(t *testing.T) {
	backend := &fakeBackend{transcript: ""}
	pipeline := NewPipeline(backend, Options{}, zerolog.Nop())
	recorder := &progressRecorder{}

	artifact := pipeline.Generate(context.Background(), "ep-1", "french", recorder.record)
	if artifact == nil {
		t.Fatal("Expected artifact for empty transcript, got nil")
	}
	if artifact.Content != "" {
		t.Errorf("Expected empty content, got %q", artifact.Content)
	}
	if len(backend.requests) != 0 {
		t.Errorf("Expected no translation requests, got %d", len(backend.requests))
	}
	if fmt.Sprint(recorder.updates) != "[100]" {
		t.Errorf("Expected a single 100%% update, got %v", recorder.updates)
	}
}

func TestPipeline_Generate_DefaultChunkSize(t *testing.T) {
	backend := &fakeBackend{transcript: transcriptOf(101)}
	pipeline := NewPipeline(backend, Options{}, zerolog.Nop())

	if artifact := pipeline.Generate(context.Background(), "ep-1", "french", nil); artifact == nil {
		t.Fatal("Expected artifact, got nil")
	}
	if len(backend.requests) != 2 {
		t.Errorf("Expected 2 chunks of the default width, got %d", len(backend.requests))
	}
}

func TestPipeline_Generate_MaxConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	backend := &fakeBackend{
		transcript: transcriptOf(80),
		translate: func(chunk models.SubtitleChunk) (string, error) {
			n := active.Add(1)
			defer active.Add(-1)
			for {
				current := peak.Load()
				if n <= current || peak.CompareAndSwap(current, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return "ok", nil
		},
	}

	pipeline := NewPipeline(backend, Options{ChunkSize: 10, MaxConcurrency: 2}, zerolog.Nop())
	if artifact := pipeline.Generate(context.Background(), "ep-1", "french", nil); artifact == nil {
		t.Fatal("Expected artifact, got nil")
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("Expected at most 2 concurrent translations, got %d", got)
	}
	if len(backend.requests) != 8 {
		t.Errorf("Expected 8 translation requests, got %d", len(backend.requests))
	}
}

func TestAssemble(t *testing.T) {
	results := []models.ChunkResult{
		{Index: 2, TranslatedText: "c"},
		{Index: 0, TranslatedText: "a"},
		{Index: 1, Err: errors.New("failed")},
	}
	if got := Assemble(results); got != "a\n\nc" {
		t.Errorf("Assemble = %q, want %q", got, "a\n\nc")
	}
	if got := Assemble(nil); got != "" {
		t.Errorf("Assemble(nil) = %q, want empty", got)
	}
}
