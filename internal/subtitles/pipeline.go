// Package subtitles generates translated subtitles for an episode.
//
// A run fetches the source transcript, splits it into fixed-width line ranges,
// translates every range concurrently, and joins the translations back in
// their original order before publishing the result. A range that fails to
// translate contributes an empty segment; only fetch and publish failures
// abort the run.
package subtitles

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/Belphemur/EpisodeRelay/internal/config"
	"github.com/Belphemur/EpisodeRelay/internal/metrics"
	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// Backend is the subtitle service the pipeline talks to.
type Backend interface {
	FetchTranscript(ctx context.Context, episodeID string) (string, error)
	TranslateChunk(ctx context.Context, episodeID, language string, chunk models.SubtitleChunk) (string, error)
	SaveSubtitle(ctx context.Context, episodeID, filename, content string) (string, error)
}

// ProgressFunc receives the completed percentage of a run. Calls are made from a
// single goroutine and never decrease.
type ProgressFunc func(percent int)

// Options tunes the translation fan-out. The zero value translates every chunk
// at once without rate limiting.
type Options struct {
	ChunkSize         int
	MaxConcurrency    int
	RequestsPerSecond float64
}

// OptionsFromConfig reads the subtitles section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ChunkSize:         cfg.Subtitles.ChunkSize,
		MaxConcurrency:    cfg.Subtitles.MaxConcurrency,
		RequestsPerSecond: cfg.Subtitles.RequestsPerSecond,
	}
}

// Pipeline runs subtitle generations against a Backend
type Pipeline struct {
	backend Backend
	opts    Options
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewPipeline creates a pipeline. A non-positive chunk size falls back to
// config.DefaultChunkSize.
func NewPipeline(backend Backend, opts Options, logger zerolog.Logger) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = config.DefaultChunkSize
	}
	p := &Pipeline{backend: backend, opts: opts, logger: logger}
	if opts.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return p
}

// Generate translates the transcript of episodeID into language and publishes it.
// It returns nil when the transcript cannot be fetched or the result cannot be
// published. onProgress may be nil.
func (p *Pipeline) Generate(ctx context.Context, episodeID, language string, onProgress ProgressFunc) *models.SubtitleArtifact {
	start := time.Now()
	logger := p.logger.With().Str("episode_id", episodeID).Str("language", language).Logger()

	artifact := p.generate(ctx, logger, episodeID, language, onProgress)

	status := "ok"
	if artifact == nil {
		status = "failed"
	}
	metrics.SubtitleGenerationsTotal.WithLabelValues(status).Inc()
	metrics.SubtitlePipelineDuration.Observe(time.Since(start).Seconds())
	return artifact
}

func (p *Pipeline) generate(ctx context.Context, logger zerolog.Logger, episodeID, language string, onProgress ProgressFunc) *models.SubtitleArtifact {
	transcript, err := p.backend.FetchTranscript(ctx, episodeID)
	if err != nil {
		logger.Warn().Err(err).Str("op", "transcript fetch").Msg("Subtitle generation failed")
		return nil
	}

	lines := SplitLines(transcript)
	chunks := Chunk(len(lines), p.opts.ChunkSize)
	logger.Info().Int("lines", len(lines)).Int("chunks", len(chunks)).Msg("Translating transcript")

	results := p.translate(ctx, logger, episodeID, language, chunks, onProgress)
	content := Assemble(results)

	filename := Filename(language)
	url, err := p.backend.SaveSubtitle(ctx, episodeID, filename, content)
	if err != nil {
		logger.Warn().Err(err).Str("op", "subtitle save").Str("filename", filename).Msg("Subtitle generation failed")
		return nil
	}

	logger.Info().Str("url", url).Msg("Subtitle published")
	return &models.SubtitleArtifact{Language: language, Content: content, URL: url}
}

// translate runs one task per chunk and returns the results indexed by chunk.
// Completions are forwarded to a single progress consumer so onProgress is never
// called concurrently.
func (p *Pipeline) translate(ctx context.Context, logger zerolog.Logger, episodeID, language string, chunks []models.SubtitleChunk, onProgress ProgressFunc) []models.ChunkResult {
	results := make([]models.ChunkResult, len(chunks))
	if len(chunks) == 0 {
		report(onProgress, 100)
		return results
	}

	completed := make(chan int, len(chunks))
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		done := 0
		for range completed {
			done++
			report(onProgress, done*100/len(chunks))
		}
	}()

	workers := pool.New()
	if p.opts.MaxConcurrency > 0 {
		workers = workers.WithMaxGoroutines(p.opts.MaxConcurrency)
	}
	for _, chunk := range chunks {
		chunk := chunk
		workers.Go(func() {
			// Each task owns results[chunk.Index]
			results[chunk.Index] = p.translateChunk(ctx, logger, episodeID, language, chunk)
			completed <- chunk.Index
		})
	}
	workers.Wait()
	close(completed)
	<-progressDone

	return results
}

func (p *Pipeline) translateChunk(ctx context.Context, logger zerolog.Logger, episodeID, language string, chunk models.SubtitleChunk) models.ChunkResult {
	result := models.ChunkResult{Index: chunk.Index}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			result.Err = err
		}
	}
	if result.Err == nil {
		result.TranslatedText, result.Err = p.backend.TranslateChunk(ctx, episodeID, language, chunk)
	}

	if result.Err != nil {
		result.TranslatedText = ""
		metrics.SubtitleChunksTotal.WithLabelValues("failed").Inc()
		logger.Warn().Err(result.Err).Str("op", "chunk translation").
			Int("chunk", chunk.Index).Int("start_line", chunk.StartLine).Int("end_line", chunk.EndLine).
			Msg("Chunk translation failed, leaving segment empty")
		return result
	}
	metrics.SubtitleChunksTotal.WithLabelValues("ok").Inc()
	return result
}

// Assemble joins chunk translations in index order, one segment per chunk.
func Assemble(results []models.ChunkResult) string {
	segments := make([]string, len(results))
	for _, r := range results {
		if r.Index >= 0 && r.Index < len(segments) {
			segments[r.Index] = r.TranslatedText
		}
	}
	return strings.Join(segments, "\n")
}

func report(onProgress ProgressFunc, percent int) {
	if onProgress != nil {
		onProgress(percent)
	}
}
