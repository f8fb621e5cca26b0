package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/models"
	"github.com/Belphemur/EpisodeRelay/internal/parser"
)

// SubtitleTracks lists the subtitle tracks already available for episodeID.
// An episode unknown to the subtitle backend has no tracks.
func (c *client) SubtitleTracks(ctx context.Context, episodeID string) ([]models.SubtitleTrack, error) {
	target := fmt.Sprintf("%s/api/subtitles/%s", c.subtitlesURL, url.PathEscape(episodeID))
	resp, err := c.get(ctx, "subtitle tracks", target)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var payload tracksResponse
	if err := decodeJSON("subtitle tracks", resp, &payload); err != nil {
		return nil, err
	}

	tracks := make([]models.SubtitleTrack, 0, len(payload.Subtitles))
	for _, s := range payload.Subtitles {
		if lang := strings.TrimSpace(s.Lang); lang != "" {
			tracks = append(tracks, models.SubtitleTrack{Language: lang, URL: s.URL})
		}
	}
	return tracks, nil
}

// FetchTranscript downloads the source transcript of episodeID as UTF-8 text.
func (c *client) FetchTranscript(ctx context.Context, episodeID string) (string, error) {
	target := fmt.Sprintf("%s/api/subtitles/%s/transcript", c.subtitlesURL, url.PathEscape(episodeID))
	resp, err := c.call(ctx, "transcript fetch", http.MethodGet, target, nil, c.requestTimeout)
	if err != nil {
		return "", err
	}

	reader, err := parser.NewUTF8Reader(bytes.NewReader(resp.body), resp.contentType)
	if err != nil {
		return "", fmt.Errorf("transcript fetch: decode charset: %w", err)
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("transcript fetch: decode charset: %w", err)
	}
	return string(text), nil
}

// TranslateChunk translates the lines of chunk into language.
func (c *client) TranslateChunk(ctx context.Context, episodeID, language string, chunk models.SubtitleChunk) (string, error) {
	payload := translateRequest{
		Lang:      language,
		EpisodeID: episodeID,
		StartLine: chunk.StartLine,
		EndLine:   chunk.EndLine,
	}
	resp, err := c.call(ctx, "chunk translation", http.MethodPost, c.subtitlesURL+"/api/translate", payload, c.requestTimeout)
	if err != nil {
		return "", err
	}
	return string(resp.body), nil
}

// SaveSubtitle stores content as filename next to the episode's other subtitles
// and returns the artifact URL.
func (c *client) SaveSubtitle(ctx context.Context, episodeID, filename, content string) (string, error) {
	payload := saveRequest{EpisodeID: episodeID, Filename: filename, Content: content}
	resp, err := c.call(ctx, "subtitle save", http.MethodPost, c.subtitlesURL+"/api/subtitles/save", payload, c.requestTimeout)
	if err != nil {
		return "", err
	}

	var saved saveResponse
	if err := decodeJSON("subtitle save", resp, &saved); err != nil {
		return "", err
	}
	if !saved.Success {
		return "", apperrors.NewGenerationError("subtitle save", strings.TrimSpace(saved.Error))
	}
	return c.ArtifactURL(episodeID, filename), nil
}

// ArtifactURL returns the retrieval URL of a saved subtitle file.
func (c *client) ArtifactURL(episodeID, filename string) string {
	return fmt.Sprintf("%s/api/subtitles/%s/files/%s", c.subtitlesURL, url.PathEscape(episodeID), url.PathEscape(filename))
}

func isNotFound(err error) bool {
	var notFound *apperrors.ErrNotFound
	return errors.As(err, &notFound)
}
