package normalize

import (
	"regexp"
	"strings"

	"tunegrab/internal/domain"
)

// Ordered pattern rules applied to free-text descriptions. Each rule
// yields at most one field and only fills gaps. These heuristics are
// lossy on unconventional formatting; an unmatched pattern leaves the
// field unset rather than guessing.
var (
	artistLabelRe = regexp.MustCompile(`(?i)\bartist\s*:\s*([^\n]+)`)
	artistByRe    = regexp.MustCompile(`(?i)\bby\s+([^\n]+?)(?:\s+label\s*:|\s+catalog\s*:|\s+released\s*:|\n|$)`)
	artistDashRe  = regexp.MustCompile(`(?m)^([^-\n]{2,}?)\s+-\s+`)

	titleLabelRe = regexp.MustCompile(`(?i)\b(?:track|title)\s*:\s*([^\n]+)`)
	titleDashRe  = regexp.MustCompile(`(?m)^[^\n-]+?\s+-\s+([^\n]+?)(?:\s+label\s*:|\s+catalog\s*:|\s+released\s*:|$)`)

	labelRe    = regexp.MustCompile(`(?i)\blabel\s*:\s*([^\n]+)`)
	catalogRe  = regexp.MustCompile(`(?i)\bcatalog(?:ue)?(?:\s*(?:number|no\.?|#))?\s*:\s*([^\n]+)`)
	countryRe  = regexp.MustCompile(`(?i)\bcountry\s*:\s*([^\n]+)`)
	releasedRe = regexp.MustCompile(`(?i)\breleased\s*:?\s*(\d{4})`)

	genreStyleRe = regexp.MustCompile(`(?i)\bgenre\s*/\s*style\s*:\s*([^\n]+)`)
	styleRe      = regexp.MustCompile(`(?i)\bstyle\s*:\s*([^\n]+)`)
	genreRe      = regexp.MustCompile(`(?i)\bgenre\s*:\s*([^\n]+)`)

	albumSuffixRe = regexp.MustCompile(`(?i)([^:\n]+?)\s+(EP|LP)\b`)
	albumWordRe   = regexp.MustCompile(`(?i)([^:\n]+?)\s+album\b`)
	albumLabelRe  = regexp.MustCompile(`(?i)\balbum\s*:\s*([^\n]+)`)
	albumDashRe   = regexp.MustCompile(`^\s*([^-\n]{2,}?)\s+-\s+`)
)

// genreVocabulary lists electronic-music terms recognized as bare
// keywords when no explicit genre label is present. Multi-word terms
// come first so they win over their single-word substrings.
var genreVocabulary = []string{
	"Deep House", "Tech House", "Progressive House", "Acid House", "Afro House",
	"Melodic Techno", "Hard Techno", "Minimal Techno", "Drum & Bass", "Drum and Bass",
	"Nu Disco", "Synthwave", "Breakbeat", "Downtempo", "Electronica",
	"Dubstep", "Garage", "Trance", "Techno", "House",
	"Electro", "Ambient", "Disco", "Jungle", "Hardcore",
	"Minimal", "IDM", "EDM",
}

var (
	genreKeywordRe = buildGenreKeywordRe()
	genreDisplay   = buildGenreDisplay()
)

func buildGenreKeywordRe() *regexp.Regexp {
	quoted := make([]string, len(genreVocabulary))
	for i, term := range genreVocabulary {
		quoted[i] = regexp.QuoteMeta(term)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func buildGenreDisplay() map[string]string {
	m := make(map[string]string, len(genreVocabulary))
	for _, term := range genreVocabulary {
		m[strings.ToLower(term)] = term
	}
	return m
}

// scanDescription applies the rules in a fixed order, filling only
// fields not already populated with sufficient confidence.
func scanDescription(desc string, rec *domain.Record, artistConfident bool) {
	if strings.TrimSpace(desc) == "" {
		return
	}

	if !artistConfident {
		if v := firstMatch(desc, artistLabelRe, artistByRe, artistDashRe); v != "" {
			rec.Artist = v
		}
	}

	if titleNeedsRescue(rec.Title) {
		if v := firstMatch(desc, titleLabelRe, titleDashRe); v != "" {
			rec.Title = v
		}
	}

	if rec.Label == "" {
		rec.Label = firstMatch(desc, labelRe)
	}
	if rec.CatalogNumber == "" {
		rec.CatalogNumber = firstMatch(desc, catalogRe)
	}
	if rec.Country == "" {
		rec.Country = firstMatch(desc, countryRe)
	}
	if rec.Date == "" {
		rec.Date = firstMatch(desc, releasedRe)
	}

	if rec.Genre == "" || rec.Style == "" {
		genre, style := scanGenre(desc)
		if rec.Genre == "" && genre != "" {
			rec.Genre = genre
		}
		if rec.Style == "" && style != "" {
			rec.Style = style
		}
	}

	if rec.Album == "" {
		rec.Album = scanAlbum(desc)
	}
}

// firstMatch returns the cleaned first capture group of the first rule
// that matches.
func firstMatch(desc string, rules ...*regexp.Regexp) string {
	for _, rule := range rules {
		if m := rule.FindStringSubmatch(desc); m != nil {
			if v := domain.Clean(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// titleNeedsRescue reports whether the upstream title is weak enough
// for description parsing to replace it.
func titleNeedsRescue(title string) bool {
	if title == domain.UnknownTitle {
		return true
	}
	cleaned := domain.Clean(title)
	return len(cleaned) < 3 || strings.Contains(strings.ToLower(cleaned), "untitled")
}

// scanGenre tries the genre rules in order. A comma-separated match
// splits into a primary genre plus a style list.
func scanGenre(desc string) (string, string) {
	if v := firstMatch(desc, genreStyleRe, styleRe, genreRe); v != "" {
		return splitGenre(v)
	}
	if kw := genreKeywordRe.FindString(desc); kw != "" {
		if display, ok := genreDisplay[strings.ToLower(kw)]; ok {
			return display, ""
		}
		return kw, ""
	}
	return "", ""
}

func splitGenre(value string) (string, string) {
	parts := strings.Split(value, ",")
	genre := domain.Clean(parts[0])
	var styles []string
	for _, p := range parts[1:] {
		if s := domain.Clean(p); s != "" {
			styles = append(styles, s)
		}
	}
	return genre, strings.Join(styles, ", ")
}

// scanAlbum tries the album rules in order: a name ending in an EP/LP
// suffix (keeping the suffix), a name before the word "album", an
// explicit label, then the text opening the description before a dash.
func scanAlbum(desc string) string {
	if m := albumSuffixRe.FindStringSubmatch(desc); m != nil {
		if name := domain.Clean(m[1]); name != "" {
			return name + " " + strings.ToUpper(m[2])
		}
	}
	if v := firstMatch(desc, albumWordRe, albumLabelRe, albumDashRe); v != "" {
		return v
	}
	return ""
}
