package client

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Belphemur/EpisodeRelay/internal/cache"
	"github.com/Belphemur/EpisodeRelay/internal/config"
	"github.com/Belphemur/EpisodeRelay/internal/models"
	"github.com/Belphemur/EpisodeRelay/internal/parser"
)

// Search queries the catalog for title. Non-empty results are cached under an
// accent- and case-insensitive key.
func (c *client) Search(ctx context.Context, title string) ([]models.Candidate, error) {
	logger := config.GetLogger()
	key := "search:" + foldKey(title)

	if cached, ok := cache.GetJSON[[]models.Candidate](ctx, c.cache, key); ok {
		logger.Debug().Str("title", title).Int("results", len(cached)).Msg("Search served from cache")
		return cached, nil
	}

	target := fmt.Sprintf("%s/api/search?q=%s", c.catalogURL, url.QueryEscape(title))
	resp, err := c.get(ctx, "catalog search", target)
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := decodeJSON("catalog search", resp, &payload); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			ID:        string(r.ID),
			Title:     strings.TrimSpace(r.Title),
			PosterURL: r.Poster,
		})
	}

	logger.Debug().Str("title", title).Int("results", len(candidates)).Msg("Catalog search completed")
	if len(candidates) > 0 {
		if err := cache.SetJSON(ctx, c.cache, key, candidates); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to cache search results")
		}
	}
	return candidates, nil
}

// Episodes lists the episodes of candidateID in the order the catalog returns them.
func (c *client) Episodes(ctx context.Context, candidateID string) ([]models.Episode, error) {
	logger := config.GetLogger()
	key := "episodes:" + candidateID

	if cached, ok := cache.GetJSON[[]models.Episode](ctx, c.cache, key); ok {
		logger.Debug().Str("candidate_id", candidateID).Int("episodes", len(cached)).Msg("Episodes served from cache")
		return cached, nil
	}

	target := fmt.Sprintf("%s/api/anime/%s/episodes", c.catalogURL, url.PathEscape(candidateID))
	resp, err := c.get(ctx, "episode list", target)
	if err != nil {
		return nil, err
	}

	var payload episodesResponse
	if err := decodeJSON("episode list", resp, &payload); err != nil {
		return nil, err
	}

	episodes := make([]models.Episode, 0, len(payload.Episodes))
	for _, e := range payload.Episodes {
		if e.ID == "" {
			continue
		}
		episodes = append(episodes, models.Episode{
			ID:     string(e.ID),
			Number: int(e.Number),
			Title:  strings.TrimSpace(e.Title),
		})
	}

	if len(episodes) > 0 {
		if err := cache.SetJSON(ctx, c.cache, key, episodes); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to cache episode list")
		}
	}
	return episodes, nil
}

// LatestReleases fetches and parses the catalog home page.
func (c *client) LatestReleases(ctx context.Context) ([]models.LatestEntry, error) {
	resp, err := c.get(ctx, "latest releases", c.catalogURL+"/")
	if err != nil {
		return nil, err
	}

	body, err := parser.NewUTF8Reader(bytes.NewReader(resp.body), resp.contentType)
	if err != nil {
		return nil, fmt.Errorf("latest releases: decode charset: %w", err)
	}
	return c.latestParser.ParseHtml(body)
}

var keyFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey lower-cases s, strips diacritics and collapses whitespace so that
// "Pokémon " and "pokemon" share a cache entry.
func foldKey(s string) string {
	folded, _, err := transform.String(keyFolder, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
