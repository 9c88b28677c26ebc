package documents

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/skillbridge-assistant/internal/utils"
)

const (
	snippetBefore   = 200
	snippetAfter    = 300
	snippetFallback = 500
	snippetMax      = 1500

	// artifact is emitted by some PDF extractors in place of bullets.
	artifact = "■"
)

// Greetings open a document answer. The choice depends only on the query.
var Greetings = []string{
	"Olá, aqui vai um resumo.",
	"Segue uma explicação:",
	"Resumo encontrado:",
	"Posso ajudar com isso — veja abaixo:",
}

var tokenSeparator = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Synthesizer phrases a snippet as an answer to query.
type Synthesizer interface {
	Synthesize(ctx context.Context, snippet, query string) string
}

// Passage is the best matching excerpt of a document.
type Passage struct {
	Document Document
	Snippet  string
	Score    int
}

// Retriever scores documents against a query.
type Retriever struct {
	guidance    string
	synthesizer Synthesizer
}

// NewRetriever creates a Retriever. guidance is prepended to every query when
// building tokens, matching the instruction given to the synthesizer.
func NewRetriever(guidance string, synthesizer Synthesizer) *Retriever {
	return &Retriever{guidance: guidance, synthesizer: synthesizer}
}

// Tokens returns the lowercase word tokens of the guidance and query.
func (r *Retriever) Tokens(query string) []string {
	text := strings.ToLower(r.guidance + "\n\nPergunta: " + query)
	var tokens []string
	for _, t := range tokenSeparator.Split(text, -1) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Retrieve returns the best passage for query. ok is false when no document
// contains any token.
func (r *Retriever) Retrieve(query string, docs []Document) (Passage, bool) {
	tokens := r.Tokens(query)
	if len(tokens) == 0 || len(docs) == 0 {
		return Passage{}, false
	}

	best, bestScore := -1, 0
	for i, d := range docs {
		lower := strings.ToLower(d.Text)
		score := 0
		for _, t := range tokens {
			score += strings.Count(lower, t)
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Passage{}, false
	}

	doc := docs[best]
	return Passage{
		Document: doc,
		Snippet:  clean(snippet(doc.Text, tokens[0])),
		Score:    bestScore,
	}, true
}

// Answer returns a synthesized answer from the best passage, or "" when
// nothing matches.
func (r *Retriever) Answer(ctx context.Context, query string, docs []Document) string {
	p, ok := r.Retrieve(query, docs)
	if !ok {
		return ""
	}

	summary := p.Snippet
	if r.synthesizer != nil {
		summary = r.synthesizer.Synthesize(ctx, p.Snippet, query)
	}

	return Greeting(query) + " Sobre o projeto (trecho de `" + p.Document.Name + "`):\n\n" + summary
}

// Greeting picks the opening phrase for query.
func Greeting(query string) string {
	h := fnv.New32a()
	h.Write([]byte(query))
	return Greetings[h.Sum32()%uint32(len(Greetings))]
}

// snippet cuts a window around the first occurrence of token. Positions are
// counted in characters.
func snippet(text, token string) string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	idx := indexRunes(lower, []rune(token))
	if idx < 0 {
		if len(runes) <= snippetFallback {
			return text
		}
		return string(runes[:snippetFallback])
	}

	start := max(0, idx-snippetBefore)
	end := min(len(runes), idx+snippetAfter)
	return string(runes[start:end])
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

func clean(s string) string {
	s = strings.ReplaceAll(s, artifact, " ")
	s = strings.TrimSpace(utils.CollapseSpaces(s))
	return utils.Shorten(s, snippetMax)
}
