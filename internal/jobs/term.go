package jobs

import (
	"regexp"
	"strings"
)

var (
	// Text after a listing noun, e.g. "vagas de java" -> "java".
	afterListingPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?:vagas?|empregos?|oportunidades?)(?:\s+(?:de|para))?(?:\s+(.+))?$`)

	// Text after an explanatory lead-in, e.g. "fale sobre a Tech Solutions".
	leadInPattern = regexp.MustCompile(`(?:me\s+fa[lc]e(?:\s+sobre)?|fale\s+sobre|me\s+diga\s+sobre|o\s+que\s+[eé])\s*(?:(?:a|o)\s+)?(?:vagas?\s*(?:(?:de|para)\s+)?)?(.+)$`)

	nonWordPattern  = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spacesPattern   = regexp.MustCompile(`\s{2,}`)
	stopwordPattern = regexp.MustCompile(`(?:^|\s)(?:vagas?|procuro|busca|buscando|me|sobre|fale|diga|por\s+favor|porfavor|me\s+conte)(?:\s|$)`)
)

// ExtractSearchTerm derives the store lookup term from a chat query. The
// first rule that yields a non-blank candidate wins.
func ExtractSearchTerm(query string) string {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return ""
	}

	for _, pattern := range []*regexp.Regexp{afterListingPattern, leadInPattern} {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			if candidate := normalizeTerm(m[1]); candidate != "" {
				return candidate
			}
		}
	}

	stripped := nonWordPattern.ReplaceAllString(lower, " ")
	cleaned := stripped
	// Stopwords share separators, so a single pass can leave neighbours behind.
	for {
		next := stopwordPattern.ReplaceAllString(cleaned, " ")
		if next == cleaned {
			break
		}
		cleaned = next
	}
	cleaned = strings.TrimSpace(spacesPattern.ReplaceAllString(cleaned, " "))
	if cleaned != "" {
		return cleaned
	}
	return strings.TrimSpace(spacesPattern.ReplaceAllString(stripped, " "))
}

func normalizeTerm(s string) string {
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = spacesPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
