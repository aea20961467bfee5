package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/didim/welfare-matcher/internal/db"
)

func (s *Server) handleListProducts(c echo.Context) error {
	params := db.ProductListParams{
		Domain: c.QueryParam("domain"),
		Status: c.QueryParam("status"),
		Source: c.QueryParam("source"),
		Limit:  50,
	}
	if params.Status == "" {
		params.Status = "pending"
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 500 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		params.Offset = v
	}

	products, err := s.Catalog.QueryProducts(c.Request().Context(), params)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    params.Limit,
		"offset":   params.Offset,
	})
}

func (s *Server) handleSetProductStatus(status string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return badRequest(c, "Invalid product id")
		}
		if err := s.Catalog.SetProductStatus(c.Request().Context(), id, status); err != nil {
			return s.writeError(c, err)
		}
		s.Log.Info("product reviewed", map[string]interface{}{"product_id": id, "status": status})
		return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "status": status})
	}
}

func (s *Server) handleStats(c echo.Context) error {
	ctx := c.Request().Context()
	counts, err := s.Catalog.CatalogCounts(ctx)
	if err != nil {
		return s.writeError(c, err)
	}
	runs, err := s.Catalog.RecentIngestRuns(ctx, 10)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"catalog":     counts,
		"ingest_runs": runs,
	})
}

func (s *Server) handleListSources(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Ingester.Sources())
}

func (s *Server) handleIngestSource(c echo.Context) error {
	sourceID := c.Param("id")
	stats, err := s.Ingester.IngestSource(c.Request().Context(), sourceID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%s ingestion complete", sourceID),
		"stats":   stats,
	})
}

// handleIngestAll starts a background run over every enabled source and
// returns 202 with a job id to poll. Only one run at a time.
func (s *Server) handleIngestAll(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "An ingest job is already running",
			"job_id": job.ID,
		})
	}

	// Detached from the request so the job outlives it.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()
		results, err := s.Ingester.IngestAll(jobCtx)

		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		job.Result = results
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			s.Log.Error("ingest job failed", map[string]interface{}{"job_id": jobID, "error": err.Error()})
			return
		}
		job.Status = "completed"
		s.Log.Info("ingest job completed", map[string]interface{}{"job_id": jobID, "sources": len(results)})
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Ingest job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job := s.runningJob
	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	return c.JSON(http.StatusOK, resp)
}
