package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexString accepts a JSON string or number. Catalog ids arrive as either.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(value))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(number.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Values that are not whole
// numbers decode to 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var raw flexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	if raw == "" {
		*n = 0
		return nil
	}
	if value, err := strconv.Atoi(string(raw)); err == nil {
		*n = flexInt(value)
		return nil
	}
	if value, err := strconv.ParseFloat(string(raw), 64); err == nil && value == float64(int(value)) {
		*n = flexInt(int(value))
		return nil
	}
	*n = 0
	return nil
}

type searchResponse struct {
	Results []struct {
		ID     flexString `json:"id"`
		Title  string     `json:"title"`
		Poster string     `json:"poster"`
	} `json:"results"`
}

type episodesResponse struct {
	Episodes []struct {
		ID     flexString `json:"id"`
		Number flexInt    `json:"number"`
		Title  string     `json:"title"`
	} `json:"episodes"`
}

type generateResponse struct {
	Success  bool   `json:"success"`
	Master   string `json:"master"`
	Subtitle string `json:"subtitle"`
	Error    string `json:"error"`
}

type tracksResponse struct {
	Subtitles []struct {
		Lang string `json:"lang"`
		URL  string `json:"url"`
	} `json:"subtitles"`
}

type translateRequest struct {
	Lang      string `json:"lang"`
	EpisodeID string `json:"episode_id"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type saveRequest struct {
	EpisodeID string `json:"episode_id"`
	Filename  string `json:"filename"`
	Content   string `json:"content"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
