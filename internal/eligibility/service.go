package eligibility

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

// ProgramCatalog reads the program catalog in ascending id order.
type ProgramCatalog interface {
	ListPrograms(ctx context.Context) ([]models.Program, error)
}

type Service struct {
	catalog ProgramCatalog
	policy  *Policy
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(catalog ProgramCatalog, policy *Policy, log logger.Logger, m *metrics.Metrics) *Service {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		catalog: catalog,
		policy:  policy,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for age and season checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Rank validates the profile, reads the catalog fresh and returns the
// eligible programs with their scores, best first.
func (s *Service) Rank(ctx context.Context, profile models.Profile) ([]Scored, error) {
	ctx, span := otel.Tracer("welfare-matcher/eligibility").Start(ctx, "eligibility.Rank")
	defer span.End()

	now := s.now()
	if err := profile.Validate(now); err != nil {
		return nil, err
	}

	programs, err := s.catalog.ListPrograms(ctx)
	if err != nil {
		s.metrics.IncEligibility("error")
		s.log.Error("failed to load program catalog", map[string]interface{}{"error": err})
		return nil, fmt.Errorf("%w: program catalog: %v", models.ErrDataUnavailable, err)
	}

	scored := ScorePrograms(profile, programs, now)
	span.SetAttributes(
		attribute.Int("catalog.size", len(programs)),
		attribute.Int("eligible.count", len(scored)),
	)
	s.log.Debug("ranked programs", map[string]interface{}{
		"catalog":  len(programs),
		"eligible": len(scored),
	})
	return scored, nil
}

// Best returns the display record of the top-ranked program.
func (s *Service) Best(ctx context.Context, profile models.Profile) (models.ProgramResult, error) {
	scored, err := s.Rank(ctx, profile)
	if err != nil {
		return models.ProgramResult{}, err
	}

	ranked := make([]models.Program, len(scored))
	for i := range scored {
		ranked[i] = scored[i].Program
	}

	result := s.policy.SelectBest(ranked)
	if result.ProgramID == nil {
		s.metrics.IncEligibility("general")
	} else {
		s.metrics.IncEligibility("matched")
	}
	return result, nil
}
