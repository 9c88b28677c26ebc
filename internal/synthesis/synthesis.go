// Package synthesis phrases document snippets as answers, using a generative
// provider when one is available and a local extractive summary otherwise.
package synthesis

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/ai"
	"github.com/spigell/skillbridge-assistant/internal/logger"
	"github.com/spigell/skillbridge-assistant/internal/metrics"
	"github.com/spigell/skillbridge-assistant/internal/utils"
)

// DefaultGuidance describes the expected answer style. It is sent as the
// system instruction and also seeds document retrieval tokens.
const DefaultGuidance = "Sistema: responda de forma natural, curta e útil. " +
	"Quando a pergunta for sobre vagas, liste e explique as vagas encontradas. " +
	"Quando a pergunta for sobre o documento (PDF), retorne um resumo claro e dirigido à pergunta do usuário — não reproduza o PDF integral. " +
	"Se o usuário pede para ensinar/explorar requisitos, explique os termos técnicos com exemplos práticos. " +
	"Se a entrada for um cumprimento curto (ex: 'oi'), responda cordialmente sem retornar o PDF. " +
	"Só responda com conteúdo do PDF se o usuário mencionar a palavra pdf ou perguntar sobre o projeto SkillBridge."

const (
	// ProviderSuffix marks answers phrased by the generative provider.
	ProviderSuffix = "\n\n(Resposta gerada com auxílio de IA a partir do documento.)"
	// LocalSuffix marks answers built by the extractive fallback.
	LocalSuffix = "\n\n(Resumo gerado a partir do documento, ajustado para linguagem natural.)"

	leadIn           = "Resposta breve: "
	maxSentences     = 2
	minSummaryLength = 30
	rawPrefixLength  = 400

	defaultTimeout = 20 * time.Second
)

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// Prompt is the pair of messages sent to the provider.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt combines the guidance, the user's question and the snippet.
func BuildPrompt(guidance, query, snippet string) Prompt {
	var b strings.Builder
	b.WriteString("Pergunta do usuário: ")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n\nTrecho do documento:\n")
	b.WriteString(strings.TrimSpace(snippet))
	b.WriteString("\n\nResponda em português, de forma breve, usando apenas o trecho acima.")

	return Prompt{System: guidance, User: b.String()}
}

// Fallback builds the extractive summary of snippet. It is deterministic.
func Fallback(snippet string) string {
	if snippet == "" {
		return ""
	}

	sentences := splitSentences(snippet)
	taken := make([]string, 0, maxSentences)
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		taken = append(taken, s)
		if len(taken) == maxSentences {
			break
		}
	}

	result := strings.TrimSpace(leadIn + strings.Join(taken, " "))
	if utf8.RuneCountInString(result) < minSummaryLength {
		result = utils.Shorten(snippet, rawPrefixLength)
	}
	return result + LocalSuffix
}

// splitSentences cuts after terminal punctuation followed by whitespace,
// keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, text[start:])
}

// Synthesizer turns snippets into answers.
type Synthesizer struct {
	generator ai.Generator
	guidance  string
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Options configure a Synthesizer. A nil Generator always uses the fallback.
type Options struct {
	Generator ai.Generator
	Guidance  string
	Timeout   time.Duration
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// New creates a Synthesizer.
func New(opts Options) *Synthesizer {
	guidance := opts.Guidance
	if strings.TrimSpace(guidance) == "" {
		guidance = DefaultGuidance
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Synthesizer{
		generator: opts.Generator,
		guidance:  guidance,
		timeout:   timeout,
		logger:    logger.OrNop(opts.Logger),
		metrics:   opts.Metrics,
	}
}

// Guidance returns the system guidance in use.
func (s *Synthesizer) Guidance() string {
	return s.guidance
}

// Synthesize answers query from snippet. It never fails: provider errors,
// timeouts and blank answers fall back to the extractive summary.
func (s *Synthesizer) Synthesize(ctx context.Context, snippet, query string) string {
	if snippet == "" {
		return ""
	}

	fallback := Fallback(snippet)

	if s.generator == nil {
		s.metrics.ObserveSynthesis(metrics.TierFallback)
		return fallback
	}

	prompt := BuildPrompt(s.guidance, query, snippet)
	s.logger.Debug("requesting provider synthesis",
		zap.String("prompt", utils.TruncateForLog(prompt.User, 200)),
	)

	completion := s.complete(ctx, prompt)
	if !completion.OK() {
		s.logger.Warn("provider synthesis failed, using local summary", zap.Error(completion.Err))
		s.metrics.ObserveSynthesis(metrics.TierFallback)
		return fallback
	}

	s.metrics.ObserveSynthesis(metrics.TierProvider)
	return completion.Text + ProviderSuffix
}

// complete bounds the provider call by the timeout even when the provider
// ignores its context.
func (s *Synthesizer) complete(ctx context.Context, prompt Prompt) ai.Completion {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan ai.Completion, 1)
	go func() {
		done <- ai.Complete(ctx, s.generator, prompt.System, prompt.User)
	}()

	select {
	case c := <-done:
		return c
	case <-ctx.Done():
		return ai.Completion{Err: ctx.Err()}
	}
}
