package bot

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

const usageText = `Send me the show and episode you want to watch, for example:
  naruto episode 3
  one piece episode 1 subtitle in french

Commands:
  help, start - show this message
  latest - list the latest released episodes`

const workingText = "Looking that up…"

// statusText is the short sentence describing an outcome.
func statusText(outcome *models.Outcome) string {
	switch outcome.Status {
	case models.OutcomeCouldNotUnderstand:
		return `Sorry, I couldn't understand that. Try something like "naruto episode 3".`
	case models.OutcomeNotFound:
		return fmt.Sprintf("I couldn't find %q in the catalog.", outcome.Intent.Title)
	case models.OutcomeNoEpisodes:
		return fmt.Sprintf("%s has no episodes available yet.", outcome.Entity.Title)
	case models.OutcomeStreamUnavailable:
		return fmt.Sprintf("The stream for %s is unavailable right now. Please try again later.", episodeLabel(outcome))
	case models.OutcomeUnderstood:
		return fmt.Sprintf("Here is %s.", episodeLabel(outcome))
	default:
		return "Something went wrong."
	}
}

// resultText is the structured result sent for an understood request.
func resultText(outcome *models.Outcome) string {
	var b strings.Builder
	b.WriteString(outcome.Entity.Title)
	fmt.Fprintf(&b, "\nEpisode %d", outcome.Episode.Number)
	if outcome.Episode.Title != "" {
		fmt.Fprintf(&b, " - %s", outcome.Episode.Title)
	}
	fmt.Fprintf(&b, "\nWatch: %s", outcome.Stream.PlayerURL)
	if outcome.Entity.PosterURL != "" {
		fmt.Fprintf(&b, "\nPoster: %s", outcome.Entity.PosterURL)
	}
	if track := outcome.ExistingSubtitle; track != nil {
		fmt.Fprintf(&b, "\nSubtitle (%s): %s", displayLanguage(track.Language), track.URL)
	}
	return b.String()
}

func episodeLabel(outcome *models.Outcome) string {
	title := outcome.Intent.Title
	if outcome.Entity != nil {
		title = outcome.Entity.Title
	}
	if outcome.Episode != nil {
		return fmt.Sprintf("%s episode %d", title, outcome.Episode.Number)
	}
	return title
}

func progressText(lang string, percent int) string {
	return fmt.Sprintf("Translating subtitles to %s… %d%%", displayLanguage(lang), percent)
}

func subtitleResultText(outcome *models.Outcome) string {
	if outcome.Subtitle == nil {
		return "Subtitle generation failed."
	}
	return "Subtitle ready: " + outcome.Subtitle.URL
}

func digestText(digest models.LatestDigest, ok bool) string {
	if !ok {
		return "The latest releases are not available yet. Please try again in a moment."
	}
	if len(digest.Entries) == 0 {
		return "No recent releases."
	}

	var b strings.Builder
	b.WriteString("Latest releases:")
	for _, entry := range digest.Entries {
		fmt.Fprintf(&b, "\n- %s", entry.Title)
		if entry.Episode != "" {
			fmt.Fprintf(&b, " episode %s", entry.Episode)
		}
		if entry.URL != "" {
			fmt.Fprintf(&b, " %s", entry.URL)
		}
	}
	return b.String()
}

// displayLanguage title-cases a language name. Casers are stateful, so one is
// created per call.
func displayLanguage(lang string) string {
	return cases.Title(language.English).String(strings.TrimSpace(lang))
}
