// Package intent classifies a chat utterance into independent facets using
// an ordered table of pattern rules.
package intent

import (
	"regexp"
	"strings"
)

// Facet is one independent classification of a query.
type Facet uint8

const (
	Greeting Facet = iota
	Job
	Document
	Teach
	ReferencesPrevious
)

var facetNames = [...]string{
	Greeting:           "greeting",
	Job:                "job",
	Document:           "document",
	Teach:              "teach",
	ReferencesPrevious: "references_previous",
}

func (f Facet) String() string {
	if int(f) < len(facetNames) {
		return facetNames[f]
	}
	return "unknown"
}

// Facets is the set of facets matched by a query.
type Facets uint8

// Has reports whether facet is in the set.
func (s Facets) Has(facet Facet) bool {
	return s&(1<<facet) != 0
}

func (s Facets) with(facet Facet) Facets {
	return s | 1<<facet
}

// List returns the facets in declaration order.
func (s Facets) List() []Facet {
	var out []Facet
	for f := range Facet(len(facetNames)) {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s Facets) String() string {
	list := s.List()
	if len(list) == 0 {
		return "none"
	}
	names := make([]string, 0, len(list))
	for _, f := range list {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}

// Rule maps a predicate over lowercased text to a facet. A matching Terminal
// rule stops evaluation of the rules after it.
type Rule struct {
	Facet    Facet
	Name     string
	Match    func(lower string) bool
	Terminal bool
}

// DefaultMarkers are the tokens that make a query ask about the documents.
var DefaultMarkers = []string{"pdf", "skillbridge", "skill bridge"}

var (
	greetingPattern = regexp.MustCompile(`^(?:oi|ol[aá]|bom dia|boa tarde|boa noite|e a[ií]|ei)(?:[.,;:!?\s].*)?$`)

	jobPattern = words(
		`vagas?`, `empregos?`, `oportunidades?`, `contrata(?:-se)?`, `empresa`,
		`t[ií]tulo`, `analista`, `desenvolvedor`, `pleno`, `j[uú]nior`, `s[eê]nior`,
		`sr\.`, `jr\.`,
	)

	teachPattern = words(
		`me ensine`, `ensine`, `me explique`, `explique`, `como`, `aprenda`,
		`me ensina`, `ensina`, `o que s[aã]o`, `o que [eé]`,
	)

	previousPattern = words(
		`esse`, `essa`, `esses`, `essas`, `estes`, `aqueles`, `isso`, `aquilo`, `eles`,
		`os requisitos`, `esses requisitos`, `explique esses`, `explique os requisitos`,
	)
)

// words builds a pattern matching any alternative as a whole word. Word
// boundaries are Unicode-aware, unlike RE2's \b.
func words(alternatives ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?:` + strings.Join(alternatives, "|") + `)(?:[^\p{L}\p{N}_]|$)`)
}

// DefaultRules returns the rule table in evaluation order. The greeting rule
// comes first and is terminal.
func DefaultRules(markers []string) []Rule {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	normalized := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			normalized = append(normalized, m)
		}
	}

	return []Rule{
		{Facet: Greeting, Name: "salutation", Match: greetingPattern.MatchString, Terminal: true},
		{Facet: Job, Name: "job vocabulary", Match: jobPattern.MatchString},
		{Facet: Document, Name: "document marker", Match: func(lower string) bool {
			for _, m := range normalized {
				if strings.Contains(lower, m) {
					return true
				}
			}
			return false
		}},
		{Facet: Teach, Name: "explanatory verb", Match: teachPattern.MatchString},
		{Facet: Teach, Name: "requirements literal", Match: func(lower string) bool {
			return strings.Contains(lower, "requisitos")
		}},
		{Facet: ReferencesPrevious, Name: "anaphora", Match: previousPattern.MatchString},
	}
}

// Classifier evaluates a rule table against queries.
type Classifier struct {
	rules []Rule
}

// New returns a classifier over the default rules with the given document
// markers.
func New(markers []string) *Classifier {
	return NewWithRules(DefaultRules(markers))
}

// NewWithRules returns a classifier over a custom rule table.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns a copy of the rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the facets of text. Matching is case-insensitive.
func (c *Classifier) Classify(text string) Facets {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0
	}

	var facets Facets
	for _, rule := range c.rules {
		if rule.Match == nil || facets.Has(rule.Facet) {
			continue
		}
		if !rule.Match(lower) {
			continue
		}
		facets = facets.with(rule.Facet)
		if rule.Terminal {
			break
		}
	}
	return facets
}

var defaultClassifier = New(nil)

// Classify classifies text with the default rules.
func Classify(text string) Facets {
	return defaultClassifier.Classify(text)
}
