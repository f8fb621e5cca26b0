package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps body with character encoding detection and conversion to UTF-8.
// It is used for both the catalog HTML pages and plain-text transcripts.
//
// The charset is taken from, in order:
// 1. the charset parameter of contentType, when given
// 2. HTML <meta charset="..."> or <meta http-equiv="Content-Type"> tags
// 3. byte order marks (BOM)
// 4. heuristic detection
//
// UTF-8 input passes through unchanged.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, contentType)
}
