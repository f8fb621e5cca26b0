// Package orchestrator drives a chat message through extraction, catalog
// lookup, stream generation and, when asked for, subtitle generation.
package orchestrator

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Belphemur/EpisodeRelay/internal/metrics"
	"github.com/Belphemur/EpisodeRelay/internal/models"
	"github.com/Belphemur/EpisodeRelay/internal/resolver"
	"github.com/Belphemur/EpisodeRelay/internal/subtitles"
)

// IntentExtractor turns free text into an Intent, or nil.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) *models.Intent
}

// CandidateResolver picks one candidate from a non-empty list.
type CandidateResolver interface {
	Resolve(ctx context.Context, intent models.Intent, candidates []models.Candidate) models.Candidate
}

// Catalog is the subset of the backend client used for lookups.
type Catalog interface {
	Search(ctx context.Context, title string) ([]models.Candidate, error)
	Episodes(ctx context.Context, candidateID string) ([]models.Episode, error)
	GenerateStream(ctx context.Context, episodeID string) (*models.StreamResult, error)
	SubtitleTracks(ctx context.Context, episodeID string) ([]models.SubtitleTrack, error)
}

// SubtitleGenerator runs the subtitle pipeline.
type SubtitleGenerator interface {
	Generate(ctx context.Context, episodeID, language string, onProgress subtitles.ProgressFunc) *models.SubtitleArtifact
}

// Observer receives intermediate results while a message is handled.
type Observer interface {
	// StreamReady is called with the stream result right before subtitle
	// generation starts. It is not called when no generation is needed.
	StreamReady(outcome *models.Outcome)
	// SubtitleProgress is called from a single goroutine with a non-decreasing percentage.
	SubtitleProgress(language string, percent int)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) StreamReady(*models.Outcome)  {}
func (NopObserver) SubtitleProgress(string, int) {}

// Orchestrator handles one chat message at a time; it holds no per-request state
// and is safe for concurrent use.
type Orchestrator struct {
	extractor       IntentExtractor
	resolver        CandidateResolver
	catalog         Catalog
	subtitles       SubtitleGenerator
	defaultLanguage string
	logger          zerolog.Logger
}

// New creates an Orchestrator. defaultLanguage is used when a subtitle is
// requested without naming a language.
func New(extractor IntentExtractor, picker CandidateResolver, catalog Catalog, generator SubtitleGenerator, defaultLanguage string, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		extractor:       extractor,
		resolver:        picker,
		catalog:         catalog,
		subtitles:       generator,
		defaultLanguage: strings.ToLower(strings.TrimSpace(defaultLanguage)),
		logger:          logger,
	}
}

// Handle processes text and returns its outcome. Steps run strictly in sequence.
// observer may be nil.
func (o *Orchestrator) Handle(ctx context.Context, text string, observer Observer) *models.Outcome {
	if observer == nil {
		observer = NopObserver{}
	}

	outcome := o.handle(ctx, text, observer)

	metrics.OutcomesTotal.WithLabelValues(outcome.Status.String()).Inc()
	event := o.logger.Info().Str("status", outcome.Status.String())
	if outcome.Intent != nil {
		event = event.Str("title", outcome.Intent.Title)
	}
	if outcome.Episode != nil {
		event = event.Str("episode_id", outcome.Episode.ID).Int("episode", outcome.Episode.Number)
	}
	event.Bool("subtitle_failed", outcome.SubtitleFailed).Msg("Request handled")
	return outcome
}

func (o *Orchestrator) handle(ctx context.Context, text string, observer Observer) *models.Outcome {
	intent := o.extractor.Extract(ctx, text)
	if intent == nil {
		return &models.Outcome{Status: models.OutcomeCouldNotUnderstand}
	}
	outcome := &models.Outcome{Intent: intent}

	candidates, err := o.catalog.Search(ctx, intent.Title)
	if err != nil {
		o.logger.Warn().Err(err).Str("op", "catalog search").Str("title", intent.Title).Msg("Search failed")
	}
	if len(candidates) == 0 {
		outcome.Status = models.OutcomeNotFound
		return outcome
	}

	entity := o.resolver.Resolve(ctx, *intent, candidates)
	outcome.Entity = &entity

	episodes, err := o.catalog.Episodes(ctx, entity.ID)
	if err != nil {
		o.logger.Warn().Err(err).Str("op", "episode list").Str("candidate_id", entity.ID).Msg("Episode listing failed")
	}
	if len(episodes) == 0 {
		outcome.Status = models.OutcomeNoEpisodes
		return outcome
	}

	episode := resolver.SelectEpisode(episodes, intent.Episode)
	outcome.Episode = &episode

	stream, err := o.catalog.GenerateStream(ctx, episode.ID)
	if err != nil || stream == nil {
		o.logger.Warn().Err(err).Str("op", "stream generation").Str("episode_id", episode.ID).Msg("Stream unavailable")
		outcome.Status = models.OutcomeStreamUnavailable
		return outcome
	}
	outcome.Status = models.OutcomeUnderstood
	outcome.Stream = stream

	if !intent.SubtitleRequested {
		return outcome
	}
	language := intent.SubtitleLanguage
	if language == "" {
		language = o.defaultLanguage
		intent.SubtitleLanguage = language
	}

	if track := o.existingTrack(ctx, episode.ID, language); track != nil {
		outcome.ExistingSubtitle = track
		return outcome
	}

	observer.StreamReady(outcome)
	artifact := o.subtitles.Generate(ctx, episode.ID, language, func(percent int) {
		observer.SubtitleProgress(language, percent)
	})
	outcome.Subtitle = artifact
	outcome.SubtitleFailed = artifact == nil
	return outcome
}

// existingTrack looks for an available track in language. A failed lookup is
// treated as no track so that generation still runs.
func (o *Orchestrator) existingTrack(ctx context.Context, episodeID, language string) *models.SubtitleTrack {
	tracks, err := o.catalog.SubtitleTracks(ctx, episodeID)
	if err != nil {
		o.logger.Warn().Err(err).Str("op", "subtitle availability").Str("episode_id", episodeID).Msg("Could not list subtitle tracks")
		return nil
	}
	return subtitles.FindTrack(tracks, language)
}
