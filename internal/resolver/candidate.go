// Package resolver narrows catalog results down to a single entity and episode.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/metrics"
	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// Completer is the subset of the model client used for ranking.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var reFirstInteger = regexp.MustCompile(`\d+`)

// CandidateResolver picks the catalog entity that best matches a requested title.
type CandidateResolver struct {
	model  Completer
	logger zerolog.Logger
}

// NewCandidateResolver creates a resolver. model may be nil, in which case the
// first candidate is always chosen.
func NewCandidateResolver(model Completer, logger zerolog.Logger) *CandidateResolver {
	return &CandidateResolver{model: model, logger: logger}
}

// Resolve returns the best candidate for intent. candidates must not be empty;
// the returned value is always one of its elements.
func (r *CandidateResolver) Resolve(ctx context.Context, intent models.Intent, candidates []models.Candidate) models.Candidate {
	if len(candidates) == 1 || r.model == nil {
		metrics.CandidateResolutionsTotal.WithLabelValues("fallback").Inc()
		return candidates[0]
	}

	if chosen, ok := r.rank(ctx, intent.Title, candidates); ok {
		metrics.CandidateResolutionsTotal.WithLabelValues("model").Inc()
		return chosen
	}
	metrics.CandidateResolutionsTotal.WithLabelValues("fallback").Inc()
	return candidates[0]
}

type rankingEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (r *CandidateResolver) rank(ctx context.Context, title string, candidates []models.Candidate) (models.Candidate, bool) {
	entries := make([]rankingEntry, len(candidates))
	for i, c := range candidates {
		entries[i] = rankingEntry{ID: c.ID, Title: c.Title}
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to encode candidates for ranking")
		return models.Candidate{}, false
	}

	prompt := fmt.Sprintf("Requested title: %q\nCandidates: %s", title, encoded)
	content, err := r.model.Complete(ctx, rankingPrompt, prompt)
	if err != nil {
		r.logger.Warn().Err(err).Str("op", "candidate ranking").Msg("Model call failed, using first candidate")
		return models.Candidate{}, false
	}

	id := reFirstInteger.FindString(content)
	if id == "" {
		r.logger.Warn().Err(apperrors.NewParseError("candidate ranking", content, nil)).Msg("No id in model output, using first candidate")
		return models.Candidate{}, false
	}

	for _, c := range candidates {
		if sameID(c.ID, id) {
			r.logger.Debug().Str("id", c.ID).Str("title", c.Title).Msg("Candidate chosen by model")
			return c, true
		}
	}
	r.logger.Warn().Str("id", id).Int("candidates", len(candidates)).Msg("Model chose an unknown id, using first candidate")
	return models.Candidate{}, false
}

// sameID compares ids textually, or numerically when both are integers.
func sameID(candidateID, chosen string) bool {
	if candidateID == chosen {
		return true
	}
	a, errA := strconv.Atoi(candidateID)
	b, errB := strconv.Atoi(chosen)
	return errA == nil && errB == nil && a == b
}

const rankingPrompt = `You match a requested anime title against catalog search results.
Reply with the id of the single best matching candidate and nothing else.`
