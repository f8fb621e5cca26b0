// Package intent turns a free-text chat message into a structured request.
//
// Extraction is a two-stage strategy: the language model is asked for a JSON
// object first, and a deterministic regex extractor is used whenever the model
// is unavailable or its output cannot be used. Callers only see Extract.
package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/llm"
	"github.com/Belphemur/EpisodeRelay/internal/metrics"
	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// Completer is the subset of the model client used for extraction.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor implements the text to Intent conversion.
type Extractor struct {
	model  Completer
	logger zerolog.Logger
}

// NewExtractor creates an extractor. model may be nil, in which case only the
// fallback path is used.
func NewExtractor(model Completer, logger zerolog.Logger) *Extractor {
	return &Extractor{model: model, logger: logger}
}

// Extract returns the structured request found in text, or nil when neither
// path could understand it.
func (e *Extractor) Extract(ctx context.Context, text string) *models.Intent {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		metrics.IntentExtractionsTotal.WithLabelValues("none").Inc()
		return nil
	}

	if intent, ok := e.tryPrimary(ctx, text); ok {
		metrics.IntentExtractionsTotal.WithLabelValues("model").Inc()
		return intent
	}

	intent := Fallback(text)
	if intent == nil {
		metrics.IntentExtractionsTotal.WithLabelValues("none").Inc()
		e.logger.Info().Str("text", text).Msg("Could not extract intent")
		return nil
	}
	metrics.IntentExtractionsTotal.WithLabelValues("fallback").Inc()
	return intent
}

// modelIntent is the JSON object the extraction prompt asks for.
type modelIntent struct {
	Title             string `json:"title"`
	Season            *int   `json:"season"`
	Episode           *int   `json:"episode"`
	SubtitleRequested bool   `json:"subtitle_requested"`
	SubtitleLanguage  string `json:"subtitle_language"`
}

func (e *Extractor) tryPrimary(ctx context.Context, text string) (*models.Intent, bool) {
	if e.model == nil {
		return nil, false
	}

	content, err := e.model.Complete(ctx, extractionPrompt, text)
	if err != nil {
		e.logger.Warn().Err(err).Str("op", "intent extraction").Msg("Model call failed, using fallback")
		return nil, false
	}

	var parsed modelIntent
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		e.logger.Warn().Err(apperrors.NewParseError("intent extraction", content, err)).Msg("Model output unusable, using fallback")
		return nil, false
	}

	title := cleanTitle(parsed.Title)
	if title == "" {
		e.logger.Warn().Str("op", "intent extraction").Str("content", content).Msg("Model returned no title, using fallback")
		return nil, false
	}

	intent := &models.Intent{
		Title:             title,
		Season:            positive(parsed.Season),
		Episode:           positive(parsed.Episode),
		SubtitleLanguage:  normalizeLanguage(parsed.SubtitleLanguage),
		SubtitleRequested: parsed.SubtitleRequested,
	}
	if intent.SubtitleLanguage != "" {
		intent.SubtitleRequested = true
	}

	e.logger.Debug().
		Str("title", intent.Title).
		Str("episode", formatOptional(intent.Episode)).
		Bool("subtitle", intent.SubtitleRequested).
		Msg("Intent extracted by model")
	return intent, true
}

func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return models.IntPtr(*v)
}

func formatOptional(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

const extractionPrompt = `You extract anime streaming requests from chat messages.
Respond with a single JSON object and nothing else, using exactly these keys:
{"title": string, "season": integer or null, "episode": integer or null,
 "subtitle_requested": boolean, "subtitle_language": string or null}
- "title" is the show name only, without season, episode or subtitle words.
- "subtitle_language" is the language name in English, lower case (e.g. "french").
- Use null for anything the message does not mention.`
