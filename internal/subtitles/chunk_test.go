package subtitles

import (
	"reflect"
	"testing"
)

func TestChunk_CoversAllLinesInOrder(t *testing.T) {
	for _, lineCount := range []int{0, 1, 2, 99, 100, 101, 199, 200, 250, 1000, 1001} {
		chunks := Chunk(lineCount, 100)

		wantCount := (lineCount + 99) / 100
		if len(chunks) != wantCount {
			t.Fatalf("lineCount=%d: expected %d chunks, got %d", lineCount, wantCount, len(chunks))
		}

		next := 0
		for i, c := range chunks {
			if c.Index != i {
				t.Errorf("lineCount=%d: chunk %d has index %d", lineCount, i, c.Index)
			}
			if c.StartLine != next {
				t.Errorf("lineCount=%d: chunk %d starts at %d, want %d", lineCount, i, c.StartLine, next)
			}
			if c.Len() <= 0 || c.Len() > 100 {
				t.Errorf("lineCount=%d: chunk %d has invalid length %d", lineCount, i, c.Len())
			}
			if i < len(chunks)-1 && c.Len() != 100 {
				t.Errorf("lineCount=%d: non-final chunk %d has length %d", lineCount, i, c.Len())
			}
			next = c.EndLine
		}
		if next != lineCount {
			t.Errorf("lineCount=%d: chunks end at %d", lineCount, next)
		}

		if lineCount > 0 {
			wantLast := lineCount % 100
			if wantLast == 0 {
				wantLast = 100
			}
			if got := chunks[len(chunks)-1].Len(); got != wantLast {
				t.Errorf("lineCount=%d: last chunk has %d lines, want %d", lineCount, got, wantLast)
			}
		}
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	if chunks := Chunk(10, 0); chunks != nil {
		t.Errorf("Expected nil for zero size, got %v", chunks)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single line", "hello", []string{"hello"}},
		{"unix", "a\nb\nc", []string{"a", "b", "c"}},
		{"windows", "a\r\nb\r\nc", []string{"a", "b", "c"}},
		{"mixed", "a\r\nb\nc", []string{"a", "b", "c"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"blank lines kept", "a\n\nb", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(" French "); got != "french.srt" {
		t.Errorf("Filename = %q, want %q", got, "french.srt")
	}
}
