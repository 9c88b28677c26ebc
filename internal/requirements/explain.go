// Package requirements explains the technical requirements listed in job
// matches.
package requirements

import (
	"regexp"
	"strings"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
	"github.com/spigell/skillbridge-assistant/internal/utils"
)

const (
	NoMatchesMessage      = "Nenhuma vaga para extrair requisitos."
	NoRequirementsMessage = "As vagas não possuem requisitos detalhados."

	header  = "Posso explicar os principais requisitos encontrados nas vagas:\n\n"
	closing = "\nDiga se quer exemplos práticos, exercícios ou links de estudo."

	// GenericExplanation is used for terms outside the vocabulary.
	GenericExplanation = "Conceito comum na vaga — consulte a documentação oficial e pratique com pequenos projetos."
)

// Entry maps any of its keywords to an explanation.
type Entry struct {
	Keywords    []string
	Explanation string
}

// Vocabulary is checked in order; the first entry with a keyword contained in
// the term wins.
var Vocabulary = []Entry{
	{
		Keywords:    []string{"java"},
		Explanation: "Java 11+ — versão LTS; foco em features modernas (var, streams, API de Date/Time), boas práticas OOP, gerenciamento de dependências com Maven/Gradle e entendimento de JVM.",
	},
	{
		Keywords:    []string{"spring boot", "springboot", "spring"},
		Explanation: "Spring Boot — framework para criar aplicações Java rapidamente; entenda Injeção de Dependência, controllers, Spring Data JPA, profiles e configuração automática.",
	},
	{
		Keywords:    []string{"rest", "api", "restful"},
		Explanation: "REST — design de APIs HTTP: endpoints (GET/POST/PUT/DELETE), códigos de status, JSON, autenticação/autorização e documentação (OpenAPI/Swagger).",
	},
	{
		Keywords:    []string{"sql", "database", "banco"},
		Explanation: "SQL — consultas relacionais (SELECT, JOIN, GROUP BY), índices, transações e acesso via JDBC/Spring Data; importante para performance e integridade dos dados.",
	},
	{
		Keywords:    []string{"python"},
		Explanation: "Python — linguagem usada em análise de dados; prática com bibliotecas como pandas e scripts para ETL.",
	},
	{
		Keywords:    []string{"power bi", "powerbi"},
		Explanation: "Power BI — ferramenta de visualização; criar dashboards, relatórios e conectar a fontes de dados.",
	},
}

var separators = regexp.MustCompile(`[,;]`)

// Terms returns the distinct lowercase requirement terms in first-seen order.
func Terms(matches []jobs.Match) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, m := range matches {
		if strings.TrimSpace(m.Requirements) == "" {
			continue
		}
		for _, part := range separators.Split(m.Requirements, -1) {
			t := strings.ToLower(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}
	return terms
}

// ExplanationFor returns the canned explanation for term.
func ExplanationFor(term string) string {
	for _, entry := range Vocabulary {
		for _, kw := range entry.Keywords {
			if strings.Contains(term, kw) {
				return entry.Explanation
			}
		}
	}
	return GenericExplanation
}

// Explain renders a bulleted explanation of the requirements in matches.
func Explain(matches []jobs.Match) string {
	if len(matches) == 0 {
		return NoMatchesMessage
	}

	terms := Terms(matches)
	if len(terms) == 0 {
		return NoRequirementsMessage
	}

	var b strings.Builder
	b.WriteString(header)
	for _, t := range terms {
		b.WriteString("- ")
		b.WriteString(utils.CapitalizeFirst(t))
		b.WriteString(": ")
		b.WriteString(ExplanationFor(t))
		b.WriteString("\n")
	}
	b.WriteString(closing)
	return b.String()
}
