// Package assistant routes chat queries to job search, requirement
// explanations and document answers, and assembles the reply.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/documents"
	"github.com/spigell/skillbridge-assistant/internal/intent"
	"github.com/spigell/skillbridge-assistant/internal/jobs"
	"github.com/spigell/skillbridge-assistant/internal/logger"
	"github.com/spigell/skillbridge-assistant/internal/metrics"
	"github.com/spigell/skillbridge-assistant/internal/requirements"
)

// Fixed replies.
const (
	PromptMessage      = "Por favor, digite uma pergunta."
	GreetingMessage    = "Olá! Em que posso ajudar? Posso falar sobre vagas cadastradas ou sobre o projeto/documentação."
	NoJobsMessage      = "Não encontrei vagas correspondentes.\n"
	JobsHeader         = "Encontrei as seguintes vagas:\n"
	NoDocumentsMessage = "Nenhum PDF lido. Verifique se os arquivos estão no diretório de documentos configurado."
	NoAnswerMessage    = "Não encontrei resposta específica nos PDFs. Tente reformular a pergunta."
	HelpMessage        = "Não entendi a pergunta. Posso listar vagas (ex: \"vagas de java\"), " +
		"explicar os requisitos das vagas encontradas (ex: \"explique esses requisitos\") " +
		"ou responder sobre o projeto SkillBridge (ex: \"o que diz o pdf sobre a plataforma?\")."
	ApologyMessage = "Desculpe, ocorreu um erro ao processar sua pergunta. Tente novamente."
)

// Routes label the branch that produced a reply.
const (
	RouteEmpty     = "empty"
	RouteGreeting  = "greeting"
	RouteJobs      = "jobs"
	RouteExplain   = "explain"
	RouteDocuments = "documents"
	RouteUnmatched = "unmatched"
	RouteError     = "error"
)

// JobSearcher finds jobs for a chat query.
type JobSearcher interface {
	Search(ctx context.Context, query string) ([]jobs.Match, error)
}

// DocumentSource returns the loaded documents.
type DocumentSource interface {
	Documents(ctx context.Context) ([]documents.Document, error)
}

// Answerer answers a query from documents, returning "" when nothing fits.
type Answerer interface {
	Answer(ctx context.Context, query string, docs []documents.Document) string
}

// Assistant answers one chat turn.
type Assistant struct {
	classifier *intent.Classifier
	jobs       JobSearcher
	docs       DocumentSource
	answerer   Answerer
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Options wire an Assistant. Classifier defaults to the default rules.
type Options struct {
	Classifier *intent.Classifier
	Jobs       JobSearcher
	Documents  DocumentSource
	Answerer   Answerer
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// New creates an Assistant.
func New(opts Options) *Assistant {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = intent.New(nil)
	}
	return &Assistant{
		classifier: classifier,
		jobs:       opts.Jobs,
		docs:       opts.Documents,
		answerer:   opts.Answerer,
		logger:     logger.OrNop(opts.Logger),
		metrics:    opts.Metrics,
	}
}

// Ask answers text within conv and returns the reply with the updated
// conversation. It never fails; internal errors become textual replies.
func (a *Assistant) Ask(ctx context.Context, conv Conversation, text string) (reply string, updated Conversation) {
	log := logger.WithSession(a.logger, conv.ID)
	route := RouteError

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while answering", zap.Any("panic", r), zap.String("query", text))
			reply, updated, route = ApologyMessage, conv, RouteError
		}
		updated.UpdatedAt = time.Now()
		a.metrics.ObserveAsk(route)
		log.Info("reply produced", zap.String(logger.FieldRoute, route), zap.Int("chars", len(reply)))
	}()

	reply, updated, route = a.answer(ctx, log, conv, text)
	return reply, updated
}

func (a *Assistant) answer(ctx context.Context, log *zap.Logger, conv Conversation, text string) (string, Conversation, string) {
	if strings.TrimSpace(text) == "" {
		return PromptMessage, conv, RouteEmpty
	}

	facets := a.classifier.Classify(text)
	log.Debug("query classified", zap.String("facets", facets.String()))

	if facets.Has(intent.Greeting) {
		return GreetingMessage, conv, RouteGreeting
	}

	explainPrevious := facets.Has(intent.Teach) && facets.Has(intent.ReferencesPrevious) && conv.HasPriorMatches()

	var out strings.Builder
	route := ""

	if facets.Has(intent.Job) {
		matches := a.searchJobs(ctx, log, text)

		switch {
		case len(matches) == 0 && explainPrevious:
			return strings.TrimSpace(requirements.Explain(conv.LastMatches)), conv, RouteExplain
		case len(matches) == 0:
			out.WriteString(NoJobsMessage)
		default:
			conv.LastMatches = matches
			if facets.Has(intent.Teach) {
				return strings.TrimSpace(requirements.Explain(matches)), conv, RouteExplain
			}
			writeListing(&out, matches)
		}
		route = RouteJobs
	} else if explainPrevious {
		return strings.TrimSpace(requirements.Explain(conv.LastMatches)), conv, RouteExplain
	}

	if facets.Has(intent.Document) {
		a.answerFromDocuments(ctx, log, &out, text)
		route = RouteDocuments
	}

	reply := strings.TrimSpace(out.String())
	if reply == "" {
		// Nothing applied; interactive front ends show HelpMessage instead.
		return "", conv, RouteUnmatched
	}
	return reply, conv, route
}

func (a *Assistant) searchJobs(ctx context.Context, log *zap.Logger, text string) []jobs.Match {
	if a.jobs == nil {
		return nil
	}
	matches, err := a.jobs.Search(ctx, text)
	if err != nil {
		log.Warn("job search failed, treating as no matches", zap.Error(err))
		return nil
	}
	return matches
}

func (a *Assistant) answerFromDocuments(ctx context.Context, log *zap.Logger, out *strings.Builder, text string) {
	var docs []documents.Document
	if a.docs != nil {
		var err error
		docs, err = a.docs.Documents(ctx)
		if err != nil {
			log.Warn("document load failed, treating as no documents", zap.Error(err))
		}
	}

	if len(docs) == 0 {
		separate(out, "\n")
		out.WriteString(NoDocumentsMessage)
		return
	}

	answer := ""
	if a.answerer != nil {
		answer = a.answerer.Answer(ctx, text, docs)
	}
	separate(out, "\n\n")
	if strings.TrimSpace(answer) == "" {
		out.WriteString(NoAnswerMessage)
		return
	}
	out.WriteString(answer)
}

func separate(out *strings.Builder, sep string) {
	if out.Len() > 0 {
		out.WriteString(sep)
	}
}

func writeListing(out *strings.Builder, matches []jobs.Match) {
	out.WriteString(JobsHeader)
	for _, m := range matches {
		out.WriteString("- ")
		out.WriteString(m.Title)
		if strings.TrimSpace(m.Company) != "" {
			out.WriteString(" — ")
			out.WriteString(m.Company)
		}
		if strings.TrimSpace(m.Location) != "" {
			fmt.Fprintf(out, " (%s)", m.Location)
		}
		out.WriteString("\n  Requisitos: ")
		out.WriteString(m.Requirements)
		out.WriteString("\n")
	}
}
