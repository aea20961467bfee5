package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

// Classifier turns an assessment into an analysis. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, a models.Assessment) models.Analysis
}

// Store is the persistence the recommendation flow depends on.
type Store interface {
	ListProducts(ctx context.Context, domain string) ([]models.Product, error)
	SaveAssessmentLog(ctx context.Context, log models.AssessmentLog) error
	SaveRecommendations(ctx context.Context, recs []models.Recommendation) error
	GetAssessmentResult(ctx context.Context, logID uuid.UUID) (*models.AssessmentResult, error)
	MarkRecommendationClicked(ctx context.Context, id uuid.UUID) error
}

const defaultPersistTimeout = 10 * time.Second

type Service struct {
	classifier     Classifier
	store          Store
	limit          int
	persistTimeout time.Duration
	log            logger.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
	pending        sync.WaitGroup
}

func NewService(classifier Classifier, store Store, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		classifier:     classifier,
		store:          store,
		limit:          DefaultLimit,
		persistTimeout: defaultPersistTimeout,
		log:            log,
		metrics:        m,
		now:            time.Now,
	}
}

// Wait blocks until every background write started by Submit has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// Submit classifies an assessment, ranks the matching products and records
// the outcome in the background. Log and recommendation ids are assigned
// before returning; a failed write is logged and never affects the result.
func (s *Service) Submit(ctx context.Context, userID *uuid.UUID, a models.Assessment) (*models.AssessmentResult, error) {
	ctx, span := otel.Tracer("welfare-matcher/recommend").Start(ctx, "recommend.Submit")
	defer span.End()

	if err := ValidateAssessment(a); err != nil {
		return nil, err
	}

	analysis := s.classifier.Classify(ctx, a)

	candidates, err := s.store.ListProducts(ctx, analysis.TargetDomain)
	if err != nil {
		s.log.Error("failed to load products", map[string]interface{}{
			"domain": analysis.TargetDomain,
			"error":  err,
		})
		return nil, fmt.Errorf("%w: products: %v", models.ErrDataUnavailable, err)
	}

	ranked := RankProducts(analysis, candidates, s.limit)
	s.metrics.ObserveRecommended(len(ranked))
	span.SetAttributes(
		attribute.String("analysis.domain", analysis.TargetDomain),
		attribute.String("analysis.source", analysis.Source),
		attribute.Int("products.candidates", len(candidates)),
		attribute.Int("products.ranked", len(ranked)),
	)

	logID := uuid.New()
	result := &models.AssessmentResult{
		LogID:     &logID,
		Analysis:  analysis,
		Products:  ranked,
		CreatedAt: s.now(),
	}
	entry := models.AssessmentLog{
		ID:        logID,
		UserID:    userID,
		Input:     a,
		Analysis:  analysis,
		CreatedAt: result.CreatedAt,
	}
	recs := make([]models.Recommendation, len(ranked))
	for i, p := range ranked {
		recs[i] = models.Recommendation{
			ID:        uuid.New(),
			LogID:     logID,
			ProductID: p.ID,
			Rank:      i + 1,
			Score:     p.Score,
		}
		id := recs[i].ID.String()
		result.Products[i].RecommendationID = &id
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
		defer cancel()
		s.persist(writeCtx, entry, recs)
	}()
	return result, nil
}

func (s *Service) persist(ctx context.Context, entry models.AssessmentLog, recs []models.Recommendation) {
	if err := s.store.SaveAssessmentLog(ctx, entry); err != nil {
		s.metrics.IncPersistenceFailure("assessment_log")
		s.log.Error("failed to save assessment log", map[string]interface{}{"log_id": entry.ID.String(), "error": err})
		return
	}
	if len(recs) == 0 {
		return
	}
	if err := s.store.SaveRecommendations(ctx, recs); err != nil {
		s.metrics.IncPersistenceFailure("recommendations")
		s.log.Error("failed to save recommendations", map[string]interface{}{"log_id": entry.ID.String(), "error": err})
	}
}

// Result loads a previously stored assessment result.
func (s *Service) Result(ctx context.Context, logID uuid.UUID) (*models.AssessmentResult, error) {
	res, err := s.store.GetAssessmentResult(ctx, logID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: assessment result: %v", models.ErrDataUnavailable, err)
	}
	return res, nil
}

// TrackClick records that a recommended product was opened. Failures are
// logged only; click tracking never affects the caller.
func (s *Service) TrackClick(ctx context.Context, recommendationID uuid.UUID) {
	if err := s.store.MarkRecommendationClicked(ctx, recommendationID); err != nil {
		s.metrics.IncPersistenceFailure("click")
		s.log.Warn("failed to track click", map[string]interface{}{
			"recommendation_id": recommendationID.String(),
			"error":             err,
		})
	}
}
