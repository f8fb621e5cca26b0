package parser

import (
	"io"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// Parser defines a generic interface for parsing HTML content
type Parser[T any] interface {
	ParseHtml(body io.Reader) ([]T, error)
}

var _ Parser[models.LatestEntry] = (*LatestParser)(nil)
