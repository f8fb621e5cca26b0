package subtitles

import (
	"strings"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// SplitLines splits a transcript on "\n" or "\r\n". A trailing line break does
// not produce an extra empty line, and an empty transcript has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Chunk partitions lineCount lines into consecutive ranges of size lines. The
// last range holds the remainder. It returns nil when lineCount is zero.
func Chunk(lineCount, size int) []models.SubtitleChunk {
	if lineCount <= 0 || size <= 0 {
		return nil
	}

	chunks := make([]models.SubtitleChunk, 0, (lineCount+size-1)/size)
	for start := 0; start < lineCount; start += size {
		chunks = append(chunks, models.SubtitleChunk{
			Index:     len(chunks),
			StartLine: start,
			EndLine:   min(start+size, lineCount),
		})
	}
	return chunks
}

// Filename is the name a translation into language is published under.
func Filename(language string) string {
	return strings.ToLower(strings.TrimSpace(language)) + ".srt"
}
