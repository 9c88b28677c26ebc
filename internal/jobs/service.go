package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/events"
	"github.com/spigell/skillbridge-assistant/internal/logger"
)

// Repository is the persistence contract the service relies on.
type Repository interface {
	Finder
	CreateJob(ctx context.Context, r Record) (Record, error)
	UpdateJob(ctx context.Context, r Record) (Record, error)
	DeleteJob(ctx context.Context, id int64) error
	GetJob(ctx context.Context, id int64) (Record, error)
	ListJobs(ctx context.Context) ([]Record, error)
	CountJobs(ctx context.Context) (int, error)
}

// Service validates writes and announces them as events.
type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates a Service. A nil publisher disables events.
func NewService(repo Repository, publisher events.Publisher, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{repo: repo, publisher: publisher, logger: logger.OrNop(log)}
}

// Create validates and stores a new record.
func (s *Service) Create(ctx context.Context, r Record) (Record, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	r.ID = 0

	created, err := s.repo.CreateJob(ctx, r)
	if err != nil {
		return Record{}, fmt.Errorf("create job: %w", err)
	}

	s.publish(ctx, created.ID, events.Created)
	return created, nil
}

// Update validates and replaces the record with the given ID.
func (s *Service) Update(ctx context.Context, id int64, r Record) (Record, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	r.ID = id

	updated, err := s.repo.UpdateJob(ctx, r)
	if err != nil {
		return Record{}, fmt.Errorf("update job %d: %w", id, err)
	}

	s.publish(ctx, id, events.Updated)
	return updated, nil
}

// Delete removes the record with the given ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteJob(ctx, id); err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}

	s.publish(ctx, id, events.Deleted)
	return nil
}

// Get returns the record with the given ID.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	r, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return r, nil
}

// List returns every record ordered by ID.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	list, err := s.repo.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return list, nil
}

// Import creates every record and returns the number stored. All records are
// validated first, so an invalid entry stores nothing; a store failure stops
// the import after the records already written.
func (s *Service) Import(ctx context.Context, records []Record) (int, error) {
	for i, r := range records {
		if err := r.Normalize().Validate(); err != nil {
			return 0, fmt.Errorf("import record %d (%q): %w", i+1, r.Title, err)
		}
	}

	for i, r := range records {
		if _, err := s.Create(ctx, r); err != nil {
			return i, fmt.Errorf("import record %d (%q): %w", i+1, r.Title, err)
		}
	}
	return len(records), nil
}

// Seed inserts the sample vacancies when the store is empty. It reports
// whether anything was inserted.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	count, err := s.repo.CountJobs(ctx)
	if err != nil {
		return false, fmt.Errorf("count jobs: %w", err)
	}
	if count > 0 {
		s.logger.Debug("job store already populated, skipping seed", zap.Int("jobs", count))
		return false, nil
	}

	n, err := s.Import(ctx, DefaultSeed())
	if err != nil {
		return false, err
	}

	s.logger.Info("job store seeded", zap.Int("jobs", n))
	return true, nil
}

func (s *Service) publish(ctx context.Context, id int64, action events.Action) {
	if err := s.publisher.Publish(ctx, events.NewJobEvent(id, action)); err != nil {
		s.logger.Warn("failed to publish job event",
			zap.Int64("job_id", id),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
