package eligibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

type fakeCatalog struct {
	programs []models.Program
	err      error
	calls    int
}

func (f *fakeCatalog) ListPrograms(ctx context.Context) ([]models.Program, error) {
	f.calls++
	return f.programs, f.err
}

func newTestService(t *testing.T, c ProgramCatalog) *Service {
	t.Helper()
	return NewService(c, nil, logger.NewTestLogger(t), metrics.New(prometheus.NewRegistry())).
		WithClock(func() time.Time { return march2025 })
}

func TestService_Best(t *testing.T) {
	svc := newTestService(t, &fakeCatalog{programs: catalog()})

	got, err := svc.Best(context.Background(), models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly"})
	require.NoError(t, err)
	assert.Equal(t, "노인장기요양 복지용구", got.ProgramName)
	assert.Equal(t, "15% (일반)", got.SelfPaymentRate)
	assert.Equal(t, "160만원", got.SubsidyLimit)
	require.NotNil(t, got.ProgramID)
	assert.Equal(t, int64(6), *got.ProgramID)
}

func TestService_BestGeneral(t *testing.T) {
	svc := newTestService(t, &fakeCatalog{programs: catalog()})

	got, err := svc.Best(context.Background(), models.Profile{BirthYear: 2000, Occupation: "student", DisabilityType: "none"})
	require.NoError(t, err)
	assert.Equal(t, "general", got.ID)
	assert.Nil(t, got.ProgramID)
}

func TestService_CatalogErrorIsDistinguishable(t *testing.T) {
	svc := newTestService(t, &fakeCatalog{err: errors.New("connection refused")})

	_, err := svc.Rank(context.Background(), models.Profile{BirthYear: 1980, Occupation: "worker", DisabilityType: "physical"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)

	_, err = svc.Best(context.Background(), models.Profile{BirthYear: 1980, Occupation: "worker", DisabilityType: "physical"})
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestService_EmptyCatalogIsNotAnError(t *testing.T) {
	svc := newTestService(t, &fakeCatalog{})

	scored, err := svc.Rank(context.Background(), models.Profile{BirthYear: 1980, Occupation: "worker", DisabilityType: "physical"})
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestService_InvalidProfileFailsFast(t *testing.T) {
	c := &fakeCatalog{programs: catalog()}
	svc := newTestService(t, c)

	_, err := svc.Rank(context.Background(), models.Profile{Occupation: "worker", DisabilityType: "physical"})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "birthYear", vErr.Field)
	assert.Zero(t, c.calls)
}

func TestService_ReadsCatalogEveryTime(t *testing.T) {
	c := &fakeCatalog{programs: catalog()}
	svc := newTestService(t, c)
	p := models.Profile{BirthYear: 1980, Occupation: "worker", DisabilityType: "physical"}

	_, _ = svc.Rank(context.Background(), p)
	c.programs = nil
	scored, err := svc.Rank(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, scored)
	assert.Equal(t, 2, c.calls)
}
