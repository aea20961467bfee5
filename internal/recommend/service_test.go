package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

type stubClassifier struct {
	analysis models.Analysis
	calls    int
}

func (s *stubClassifier) Classify(ctx context.Context, a models.Assessment) models.Analysis {
	s.calls++
	return s.analysis
}

type fakeStore struct {
	mu         sync.Mutex
	block      chan struct{}
	products   map[string][]models.Product
	listErr    error
	logErr     error
	recsErr    error
	clickErr   error
	lookupErr  error
	logs       []models.AssessmentLog
	recs       []models.Recommendation
	clicked    []uuid.UUID
	queried    []string
	lookupResp *models.AssessmentResult
}

func (f *fakeStore) ListProducts(ctx context.Context, domain string) ([]models.Product, error) {
	f.queried = append(f.queried, domain)
	return f.products[domain], f.listErr
}

func (f *fakeStore) SaveAssessmentLog(ctx context.Context, l models.AssessmentLog) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeStore) SaveRecommendations(ctx context.Context, recs []models.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recsErr != nil {
		return f.recsErr
	}
	f.recs = append(f.recs, recs...)
	return nil
}

func (f *fakeStore) GetAssessmentResult(ctx context.Context, id uuid.UUID) (*models.AssessmentResult, error) {
	return f.lookupResp, f.lookupErr
}

func (f *fakeStore) MarkRecommendationClicked(ctx context.Context, id uuid.UUID) error {
	f.clicked = append(f.clicked, id)
	return f.clickErr
}

func sensoryStore() *fakeStore {
	return &fakeStore{products: map[string][]models.Product{
		"sensory": {
			product(1, "hearing_aid", "청각장애"),
			product(2, "reading_magnifier", "확대기"),
			product(3, "reading_magnifier", "시각장애", "확대기"),
		},
	}}
}

func newService(t *testing.T, c Classifier, s Store) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewService(c, s, logger.NewTestLogger(t), m), m
}

func TestSubmit_HappyPath(t *testing.T) {
	store := sensoryStore()
	svc, _ := newService(t, &stubClassifier{analysis: magnifierAnalysis}, store)
	userID := uuid.New()

	res, err := svc.Submit(context.Background(), &userID, validAssessment())
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, []string{"sensory"}, store.queried)
	assert.Equal(t, []int64{3, 2, 1}, rankedIDs(res.Products))
	require.NotNil(t, res.LogID)

	require.Len(t, store.logs, 1)
	assert.Equal(t, *res.LogID, store.logs[0].ID)
	assert.Equal(t, &userID, store.logs[0].UserID)
	assert.Equal(t, magnifierAnalysis, store.logs[0].Analysis)

	require.Len(t, store.recs, 3)
	for i, rec := range store.recs {
		assert.Equal(t, *res.LogID, rec.LogID)
		assert.Equal(t, i+1, rec.Rank)
		assert.Equal(t, res.Products[i].ID, rec.ProductID)
		require.NotNil(t, res.Products[i].RecommendationID)
		assert.Equal(t, rec.ID.String(), *res.Products[i].RecommendationID)
	}
}

func TestSubmit_NoProductsIsValid(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newService(t, &stubClassifier{analysis: magnifierAnalysis}, store)

	res, err := svc.Submit(context.Background(), nil, validAssessment())
	require.NoError(t, err)
	svc.Wait()
	assert.Empty(t, res.Products)
	assert.NotNil(t, res.LogID)
	assert.Empty(t, store.recs)
}

func TestSubmit_LogFailureIsNotFatal(t *testing.T) {
	store := sensoryStore()
	store.logErr = errors.New("insert failed")
	svc, m := newService(t, &stubClassifier{analysis: magnifierAnalysis}, store)

	res, err := svc.Submit(context.Background(), nil, validAssessment())
	require.NoError(t, err)
	svc.Wait()
	assert.NotNil(t, res.LogID)
	assert.Len(t, res.Products, 3)
	assert.Empty(t, store.logs)
	assert.Empty(t, store.recs)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("assessment_log")))
}

func TestSubmit_RecommendationFailureIsNotFatal(t *testing.T) {
	store := sensoryStore()
	store.recsErr = errors.New("insert failed")
	svc, m := newService(t, &stubClassifier{analysis: magnifierAnalysis}, store)

	res, err := svc.Submit(context.Background(), nil, validAssessment())
	require.NoError(t, err)
	svc.Wait()
	assert.NotNil(t, res.LogID)
	assert.Len(t, res.Products, 3)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("recommendations")))
}

func TestSubmit_DoesNotWaitForWrites(t *testing.T) {
	store := sensoryStore()
	store.block = make(chan struct{})
	svc, _ := newService(t, &stubClassifier{analysis: magnifierAnalysis}, store)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Submit(ctx, nil, validAssessment())
	require.NoError(t, err)
	cancel()

	require.NotNil(t, res.LogID)
	for _, p := range res.Products {
		assert.NotNil(t, p.RecommendationID)
	}

	close(store.block)
	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background write did not finish")
	}

	require.Len(t, store.logs, 1)
	assert.Equal(t, *res.LogID, store.logs[0].ID)
	assert.Len(t, store.recs, 3)
}

func TestSubmit_ProductReadFailure(t *testing.T) {
	store := sensoryStore()
	store.listErr = errors.New("timeout")
	svc, _ := newService(t, &stubClassifier{analysis: magnifierAnalysis}, store)

	_, err := svc.Submit(context.Background(), nil, validAssessment())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.Empty(t, store.logs)
}

func TestSubmit_InvalidAssessment(t *testing.T) {
	c := &stubClassifier{analysis: magnifierAnalysis}
	svc, _ := newService(t, c, sensoryStore())

	a := validAssessment()
	a.Mobility.WalkingAbility = "teleport"
	_, err := svc.Submit(context.Background(), nil, a)

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, c.calls)
}

func TestResult(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{lookupResp: &models.AssessmentResult{LogID: &id}}
	svc, _ := newService(t, &stubClassifier{}, store)

	got, err := svc.Result(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, &id, got.LogID)

	store.lookupErr = models.ErrNotFound
	_, err = svc.Result(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NotErrorIs(t, err, models.ErrDataUnavailable)

	store.lookupErr = errors.New("db down")
	_, err = svc.Result(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestTrackClick_SwallowsErrors(t *testing.T) {
	store := &fakeStore{clickErr: errors.New("update failed")}
	svc, m := newService(t, &stubClassifier{}, store)
	id := uuid.New()

	assert.NotPanics(t, func() { svc.TrackClick(context.Background(), id) })
	assert.Equal(t, []uuid.UUID{id}, store.clicked)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("click")))
}
