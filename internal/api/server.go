package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/didim/welfare-matcher/internal/ai"
	"github.com/didim/welfare-matcher/internal/auth"
	"github.com/didim/welfare-matcher/internal/db"
	"github.com/didim/welfare-matcher/internal/eligibility"
	"github.com/didim/welfare-matcher/internal/ingest"
	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

type EligibilityService interface {
	Rank(ctx context.Context, profile models.Profile) ([]eligibility.Scored, error)
	Best(ctx context.Context, profile models.Profile) (models.ProgramResult, error)
}

type RecommendationService interface {
	Submit(ctx context.Context, userID *uuid.UUID, a models.Assessment) (*models.AssessmentResult, error)
	Result(ctx context.Context, logID uuid.UUID) (*models.AssessmentResult, error)
	TrackClick(ctx context.Context, recommendationID uuid.UUID)
}

type ApplicationStore interface {
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	SaveApplication(ctx context.Context, app models.Application) error
}

type ApplicationWriter interface {
	Write(ctx context.Context, req ai.ApplicationRequest) models.ApplicationContent
}

// CatalogAdmin backs the product review and operator pages.
type CatalogAdmin interface {
	QueryProducts(ctx context.Context, params db.ProductListParams) ([]models.Product, error)
	SetProductStatus(ctx context.Context, id int64, status string) error
	CatalogCounts(ctx context.Context) (*db.CatalogCounts, error)
	RecentIngestRuns(ctx context.Context, limit int) ([]db.IngestRun, error)
}

type ProductIngester interface {
	IngestSource(ctx context.Context, sourceID string) (ingest.IngestionStats, error)
	IngestAll(ctx context.Context) (map[string]ingest.IngestionStats, error)
	Sources() []ingest.SourceConfig
}

// Options holds the transport settings of the server.
type Options struct {
	CORSOrigins    []string
	AdminSecret    string
	JWTSecret      string
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
}

// Deps are the services behind the handlers. Admin routes are only mounted
// when Catalog is set.
type Deps struct {
	Eligibility     EligibilityService
	Recommendations RecommendationService
	Applications    ApplicationStore
	Writer          ApplicationWriter
	Policy          *eligibility.Policy
	Catalog         CatalogAdmin
	Ingester        ProductIngester
	Log             logger.Logger
	Metrics         *metrics.Metrics
}

type Server struct {
	Echo *echo.Echo
	Deps

	adminSecret string
	verifier    *auth.Verifier

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

func NewServer(opts Options, deps Deps) (*Server, error) {
	if deps.Log == nil {
		deps.Log = logger.NewNoOpLogger()
	}
	if deps.Policy == nil {
		deps.Policy = eligibility.DefaultPolicy()
	}

	secret, err := resolveAdminSecret(opts.AdminSecret, deps.Log)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
				deps.Log.Warn("request failed", fields)
				return nil
			}
			deps.Log.Debug("request", fields)
			return nil
		},
	}))

	// CORS: allow the configured frontend origins, localhost by default
	var allowedOrigins []string
	for _, o := range opts.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowedOrigins = append(allowedOrigins, o)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	s := &Server{
		Echo:        e,
		Deps:        deps,
		adminSecret: secret,
		verifier:    auth.NewVerifier(opts.JWTSecret),
	}
	s.routes(opts)
	return s, nil
}

func (s *Server) routes(opts Options) {
	s.Echo.GET("/health", s.handleHealth)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.Echo.Group("/api/v1")

	public := api.Group("")
	if opts.RequestTimeout > 0 {
		public.Use(middleware.ContextTimeout(opts.RequestTimeout))
	}
	public.Use(s.verifier.Optional)
	public.POST("/eligibility", s.handleEligibility)
	public.POST("/eligibility/best", s.handleBestProgram)
	public.POST("/assessments", s.handleSubmitAssessment)
	public.GET("/assessments/:id", s.handleGetAssessment)
	public.POST("/recommendations/:id/click", s.handleRecommendationClick)
	public.POST("/applications", s.handleCreateApplication)

	if s.Catalog == nil {
		return
	}
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.GET("/products", s.handleListProducts)
	admin.POST("/products/:id/approve", s.handleSetProductStatus(models.ProductApproved))
	admin.POST("/products/:id/reject", s.handleSetProductStatus(models.ProductRejected))
	admin.GET("/stats", s.handleStats)
	if s.Ingester != nil {
		admin.GET("/sources", s.handleListSources)
		admin.POST("/ingest/source/:id", s.handleIngestSource)
		admin.POST("/ingest/all", s.handleIngestAll)
		admin.GET("/job/:id", s.handleJobStatus)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == s.adminSecret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == s.adminSecret {
				return next(c)
			}
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

// resolveAdminSecret falls back to an ephemeral random secret so the admin
// routes are never open.
func resolveAdminSecret(configured string, log logger.Logger) (string, error) {
	if secret := strings.TrimSpace(configured); secret != "" {
		return secret, nil
	}

	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate admin secret fallback: %w", err)
	}
	log.Warn("server.admin_secret is not set; using ephemeral in-memory fallback secret", nil)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
