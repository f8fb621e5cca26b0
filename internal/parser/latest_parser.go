package parser

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Belphemur/EpisodeRelay/internal/config"
	"github.com/Belphemur/EpisodeRelay/internal/models"
)

var episodeLabel = regexp.MustCompile(`(?i)^\s*(?:episode|ep\.?)\s*`)

// LatestParser extracts the recent releases listed on the catalog home page
type LatestParser struct {
	baseURL *url.URL
}

// NewLatestParser creates a parser that resolves relative links against baseURL
func NewLatestParser(baseURL string) *LatestParser {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("baseURL", baseURL).Msg("Invalid catalog base URL, links will be left relative")
		parsed = nil
	}
	return &LatestParser{baseURL: parsed}
}

// ParseHtml parses the catalog home page and returns one entry per .latest-episode card.
// Cards without a title link are skipped.
func (p *LatestParser) ParseHtml(body io.Reader) ([]models.LatestEntry, error) {
	logger := config.GetLogger()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var entries []models.LatestEntry
	doc.Find(".latest-episode").Each(func(i int, card *goquery.Selection) {
		entry, ok := p.extractEntry(card)
		if !ok {
			logger.Debug().Int("card", i).Msg("Skipping latest card without title link")
			return
		}
		entries = append(entries, entry)
	})

	logger.Debug().Int("entries", len(entries)).Msg("Parsed latest releases")
	return entries, nil
}

func (p *LatestParser) extractEntry(card *goquery.Selection) (models.LatestEntry, bool) {
	link := card.Find("a.title").First()
	title := strings.Join(strings.Fields(link.Text()), " ")
	href, exists := link.Attr("href")
	if link.Length() == 0 || title == "" || !exists {
		return models.LatestEntry{}, false
	}

	entry := models.LatestEntry{
		Title:   title,
		Episode: episodeLabel.ReplaceAllString(strings.TrimSpace(card.Find(".episode-number").First().Text()), ""),
		URL:     p.resolve(href),
	}
	if src, ok := card.Find("img").First().Attr("src"); ok {
		entry.PosterURL = p.resolve(src)
	}
	return entry, true
}

// resolve turns a possibly relative reference into an absolute URL
func (p *LatestParser) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if p.baseURL == nil || ref == "" {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return p.baseURL.ResolveReference(parsed).String()
}
