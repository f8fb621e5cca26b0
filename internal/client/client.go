package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/cache"
	"github.com/Belphemur/EpisodeRelay/internal/config"
	"github.com/Belphemur/EpisodeRelay/internal/models"
	"github.com/Belphemur/EpisodeRelay/internal/parser"
)

const (
	defaultClientTimeout  = 30 * time.Second
	defaultStreamTimeout  = 60 * time.Second
	defaultRequestTimeout = 2 * time.Minute

	defaultRetryBaseDelay = 250 * time.Millisecond
	defaultRetryMaxDelay  = 2 * time.Second
	defaultMaxRetries     = 2
)

// Client defines the interface for the catalog, stream and subtitle backends
type Client interface {
	// Search returns the catalog entities matching title, in the catalog's relevance order.
	Search(ctx context.Context, title string) ([]models.Candidate, error)
	// Episodes lists the episodes of a catalog entity.
	Episodes(ctx context.Context, candidateID string) ([]models.Episode, error)
	// LatestReleases scrapes the catalog home page for recently released episodes.
	LatestReleases(ctx context.Context) ([]models.LatestEntry, error)

	// GenerateStream asks the stream backend to prepare a playable stream for an episode.
	// The call is bounded by stream.timeout.
	GenerateStream(ctx context.Context, episodeID string) (*models.StreamResult, error)

	SubtitleTracks(ctx context.Context, episodeID string) ([]models.SubtitleTrack, error)
	FetchTranscript(ctx context.Context, episodeID string) (string, error)
	TranslateChunk(ctx context.Context, episodeID, language string, chunk models.SubtitleChunk) (string, error)
	// SaveSubtitle persists content under filename and returns its retrieval URL.
	SaveSubtitle(ctx context.Context, episodeID, filename, content string) (string, error)

	// Close releases idle connections.
	Close() error
}

// client implements the Client interface
type client struct {
	// readClient serves idempotent GETs and is wrapped in the retry policy.
	readClient *http.Client
	// callClient serves stream generation, translation and save calls. Each call
	// carries its own deadline through the request context.
	callClient *http.Client
	transport  *http.Transport

	catalogURL   string
	streamURL    string
	playerURL    string
	subtitlesURL string

	streamTimeout  time.Duration
	requestTimeout time.Duration

	retryPolicy  retrypolicy.RetryPolicy[*response]
	cache        cache.Cache
	latestParser parser.Parser[models.LatestEntry]
}

// response is a fully read HTTP response body
type response struct {
	body        []byte
	contentType string
}

// NewClient creates a new client instance with proxy configuration if provided.
// store caches search and episode listings; it may be nil.
func NewClient(cfg *config.Config, store cache.Cache) Client {
	logger := config.GetLogger()

	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// Both clients share the connection pool and the compression support (gzip, brotli, zstd)
	transport := newCompressionTransport(baseTransport)

	c := &client{
		readClient: &http.Client{
			Timeout:   config.ParseDuration("client_timeout", cfg.ClientTimeout, defaultClientTimeout),
			Transport: transport,
		},
		callClient:     &http.Client{Transport: transport},
		transport:      baseTransport,
		catalogURL:     trimBase(cfg.Catalog.BaseURL),
		streamURL:      trimBase(cfg.Stream.BaseURL),
		playerURL:      trimBase(cfg.Player.BaseURL),
		subtitlesURL:   trimBase(cfg.Subtitles.BaseURL),
		streamTimeout:  config.ParseDuration("stream.timeout", cfg.Stream.Timeout, defaultStreamTimeout),
		requestTimeout: config.ParseDuration("subtitles.request_timeout", cfg.Subtitles.RequestTimeout, defaultRequestTimeout),
		cache:          store,
		latestParser:   parser.NewLatestParser(cfg.Catalog.BaseURL),
	}
	c.retryPolicy = newRetryPolicy(defaultRetryBaseDelay, defaultRetryMaxDelay, defaultMaxRetries)
	return c
}

func newRetryPolicy(baseDelay, maxDelay time.Duration, maxRetries int) retrypolicy.RetryPolicy[*response] {
	return retrypolicy.NewBuilder[*response]().
		HandleIf(func(_ *response, err error) bool { return apperrors.IsRetryable(err) }).
		WithBackoff(baseDelay, maxDelay).
		WithMaxRetries(maxRetries).
		ReturnLastFailure().
		Build()
}

// Close releases idle connections held by the shared transport.
func (c *client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

func trimBase(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}
