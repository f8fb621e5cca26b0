package models

// SubtitleTrack is a subtitle already available for an episode
type SubtitleTrack struct {
	Language string `json:"lang"`
	URL      string `json:"url,omitempty"`
}

// SubtitleChunk is a contiguous line range [StartLine, EndLine) of a transcript
// translated as one unit.
type SubtitleChunk struct {
	Index     int `json:"index"`
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Len returns the number of lines covered by the chunk.
func (c SubtitleChunk) Len() int {
	return c.EndLine - c.StartLine
}

// ChunkResult holds the translation of one chunk. TranslatedText is empty when
// the chunk failed.
type ChunkResult struct {
	Index          int    `json:"index"`
	TranslatedText string `json:"translatedText"`
	Err            error  `json:"-"`
}

// SubtitleArtifact is the reassembled, published translation of a transcript.
type SubtitleArtifact struct {
	Language string `json:"language"`
	Content  string `json:"content"`
	URL      string `json:"url"`
}
