package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/config"
	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// GenerateStream requests stream generation for episodeID. The backend may take
// a while to transcode, so the call is bounded by stream.timeout rather than the
// shorter client timeout, and is not retried.
func (c *client) GenerateStream(ctx context.Context, episodeID string) (*models.StreamResult, error) {
	logger := config.GetLogger()

	target := fmt.Sprintf("%s/api/generate?episode_id=%s", c.streamURL, url.QueryEscape(episodeID))
	resp, err := c.call(ctx, "stream generation", http.MethodGet, target, nil, c.streamTimeout)
	if err != nil {
		return nil, err
	}

	var payload generateResponse
	if err := decodeJSON("stream generation", resp, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, apperrors.NewGenerationError("stream generation", strings.TrimSpace(payload.Error))
	}

	result := &models.StreamResult{
		PlayerURL:   c.PlayerURL(episodeID),
		MasterURL:   payload.Master,
		SubtitleURL: payload.Subtitle,
	}
	logger.Debug().Str("episode_id", episodeID).Str("player_url", result.PlayerURL).Msg("Stream generated")
	return result, nil
}

// PlayerURL returns the public player page for episodeID.
func (c *client) PlayerURL(episodeID string) string {
	return fmt.Sprintf("%s/watch/%s", c.playerURL, url.PathEscape(episodeID))
}
