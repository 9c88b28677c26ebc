package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/logger"
	"github.com/spigell/skillbridge-assistant/internal/metrics"
)

// Finder is the case-insensitive containment lookup offered by the store.
type Finder interface {
	FindByTitle(ctx context.Context, term string) ([]Record, error)
	FindByCompany(ctx context.Context, term string) ([]Record, error)
}

// Matcher turns chat queries into job matches.
type Matcher struct {
	finder  Finder
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewMatcher creates a Matcher over finder. log and m may be nil.
func NewMatcher(finder Finder, log *zap.Logger, m *metrics.Metrics) *Matcher {
	return &Matcher{finder: finder, logger: logger.OrNop(log), metrics: m}
}

// Search returns at most MaxMatches matches for query. Title matches come
// before company-only matches and no record appears twice.
func (m *Matcher) Search(ctx context.Context, query string) ([]Match, error) {
	term := ExtractSearchTerm(query)
	if term == "" {
		m.logger.Debug("job search skipped, blank term", zap.String("query", query))
		return nil, nil
	}

	start := time.Now()
	defer m.metrics.ObserveJobSearch(start)

	byTitle, err := m.finder.FindByTitle(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("find jobs by title: %w", err)
	}
	byCompany, err := m.finder.FindByCompany(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("find jobs by company: %w", err)
	}

	merged := merge(byTitle, byCompany)
	if len(merged) > MaxMatches {
		merged = merged[:MaxMatches]
	}

	matches := make([]Match, 0, len(merged))
	for _, r := range merged {
		matches = append(matches, NewMatch(r))
	}

	m.logger.Info("job search finished",
		zap.String("term", term),
		zap.Int("by_title", len(byTitle)),
		zap.Int("by_company", len(byCompany)),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}

// merge concatenates the lists keeping the first record seen for each ID.
// Records without a valid ID are skipped.
func merge(lists ...[]Record) []Record {
	seen := make(map[int64]struct{})
	var out []Record
	for _, list := range lists {
		for _, r := range list {
			if r.ID <= 0 {
				continue
			}
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
