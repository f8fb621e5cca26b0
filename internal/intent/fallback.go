package intent

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

var (
	reEpisode       = regexp.MustCompile(`(?i)\b(?:episode|ep)\s*(\d+)`)
	reSeason        = regexp.MustCompile(`(?i)\b(?:season|s)\s*(\d+)`)
	reSeasonEpisode = regexp.MustCompile(`(?i)\bs(\d+)\s*e(\d+)\b`) // S02E05
	reSubtitle      = regexp.MustCompile(`(?i)\bsubtitles?(?:\s+in\b)?(?:\s+(\p{L}+))?`)
)

var lowerCaser = cases.Lower(language.Und)

// Fallback extracts an intent with regular expressions only. It returns nil
// unless both a title and an episode number were found.
func Fallback(text string) *models.Intent {
	var spans [][]int

	season, episode, span := matchSeasonEpisode(text)
	if episode == nil {
		episode, span = matchNumber(reEpisode, text)
		if episode == nil {
			return nil
		}
		spans = append(spans, span)

		season, span = matchNumber(reSeason, text)
		if season != nil && !overlaps(span, spans[0]) {
			spans = append(spans, span)
		} else {
			season = nil
		}
	} else {
		spans = append(spans, span)
	}

	intent := &models.Intent{Episode: episode, Season: season}
	if m := reSubtitle.FindStringSubmatchIndex(text); m != nil {
		intent.SubtitleRequested = true
		if m[2] >= 0 {
			intent.SubtitleLanguage = normalizeLanguage(text[m[2]:m[3]])
		}
		spans = append(spans, m[:2])
	}

	intent.Title = cleanTitle(removeSpans(text, spans))
	if intent.Title == "" {
		return nil
	}
	return intent
}

// matchNumber returns the first positive number captured by re and the span of
// the whole match.
func matchNumber(re *regexp.Regexp, text string) (*int, []int) {
	m := re.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil || n <= 0 {
		return nil, nil
	}
	return models.IntPtr(n), m[:2]
}

func matchSeasonEpisode(text string) (*int, *int, []int) {
	m := reSeasonEpisode.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, nil, nil
	}
	season, errSeason := strconv.Atoi(text[m[2]:m[3]])
	episode, errEpisode := strconv.Atoi(text[m[4]:m[5]])
	if errSeason != nil || errEpisode != nil || episode <= 0 {
		return nil, nil, nil
	}
	return positive(&season), models.IntPtr(episode), m[:2]
}

func overlaps(a, b []int) bool {
	return a[0] < b[1] && b[0] < a[1]
}

// removeSpans blanks out every [start, end) span of text.
func removeSpans(text string, spans [][]int) string {
	b := []byte(text)
	for _, span := range spans {
		for i := span[0]; i < span[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

func cleanTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	return strings.Trim(title, " ,.;:-")
}

func normalizeLanguage(lang string) string {
	return strings.TrimSpace(lowerCaser.String(lang))
}
