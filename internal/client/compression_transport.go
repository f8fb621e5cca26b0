package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// acceptEncoding lists the encodings compressionTransport can decode.
const acceptEncoding = "gzip, br, zstd"

// decoder opens a decompressing reader over a response body.
type decoder func(body io.Reader) (io.ReadCloser, error)

var decoders = map[string]decoder{
	"gzip": func(body io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(body)
	},
	"br": func(body io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(body)), nil
	},
	"zstd": func(body io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	},
}

// compressionTransport advertises gzip, brotli and zstd support on outgoing
// requests and transparently decodes the response body.
type compressionTransport struct {
	transport http.RoundTripper
}

func newCompressionTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &compressionTransport{transport: base}
}

func (t *compressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	decode, ok := decoders[outermostEncoding(resp.Header.Get("Content-Encoding"))]
	if !ok {
		return resp, nil
	}

	reader, err := decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	resp.Body = &decodedBody{reader: reader, raw: resp.Body}

	// Length and encoding describe the compressed payload
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

// decodedBody closes both the decoder and the underlying body
type decodedBody struct {
	reader io.ReadCloser
	raw    io.ReadCloser
}

func (b *decodedBody) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

func (b *decodedBody) Close() error {
	readerErr := b.reader.Close()
	if rawErr := b.raw.Close(); readerErr == nil {
		return rawErr
	}
	return readerErr
}

// outermostEncoding returns the last coding of a Content-Encoding header, which
// is the one applied last and must be removed first. The result is lower-cased.
func outermostEncoding(header string) string {
	codings := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(codings[len(codings)-1]))
}
