package subtitles

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

// knownLanguages are the base languages whose English and native names are
// recognised in requests and track labels. ISO codes are always recognised.
var knownLanguages = []string{
	"ar", "bg", "bn", "ca", "cs", "da", "de", "el", "en", "es", "et", "fa", "fi", "fil", "fr",
	"he", "hi", "hr", "hu", "id", "it", "ja", "ko", "lt", "lv", "ms", "nb", "nl", "pl", "pt",
	"ro", "ru", "sk", "sl", "sr", "sv", "ta", "th", "tr", "uk", "ur", "vi", "zh",
}

var (
	namesOnce sync.Once
	names     map[string]language.Base
	folder    = cases.Fold()
)

func languageNames() map[string]language.Base {
	namesOnce.Do(func() {
		names = make(map[string]language.Base, len(knownLanguages)*2)
		english := display.English.Languages()
		for _, code := range knownLanguages {
			tag := language.MustParse(code)
			base, _ := tag.Base()
			names[folder.String(english.Name(tag))] = base
			if self := display.Self.Name(tag); self != "" {
				names[folder.String(self)] = base
			}
		}
	})
	return names
}

// normalize reduces a language name or code to a comparable key: the ISO 639
// base language when it can be identified, otherwise the case-folded text.
func normalize(name string) string {
	key := folder.String(strings.TrimSpace(name))
	if key == "" {
		return ""
	}
	if base, ok := languageNames()[key]; ok {
		return base.String()
	}
	if tag, err := language.Parse(key); err == nil {
		if base, confidence := tag.Base(); confidence == language.Exact {
			return base.String()
		}
	}
	return key
}

// SameLanguage reports whether a and b name the same language, treating English
// names, native names and ISO codes as equivalent ("french", "Français", "fr", "fr-CA").
func SameLanguage(a, b string) bool {
	ka, kb := normalize(a), normalize(b)
	return ka != "" && ka == kb
}

// FindTrack returns the first track in lang, or nil.
func FindTrack(tracks []models.SubtitleTrack, lang string) *models.SubtitleTrack {
	for i := range tracks {
		if SameLanguage(tracks[i].Language, lang) {
			return &tracks[i]
		}
	}
	return nil
}
