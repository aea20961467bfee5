package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/didim/welfare-matcher/internal/models"
)

func (s *Store) SaveAssessmentLog(ctx context.Context, log models.AssessmentLog) error {
	input, err := json.Marshal(log.Input)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	analysis, err := json.Marshal(log.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessment_logs (id, user_id, input_data, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		log.ID, log.UserID, input, analysis, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment log: %w", err)
	}
	return nil
}

// SaveRecommendations writes all rows of one assessment atomically.
func (s *Store) SaveRecommendations(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range recs {
		batch.Queue(`
			INSERT INTO recommendations (id, log_id, product_id, rank, score)
			VALUES ($1, $2, $3, $4, $5)`,
			r.ID, r.LogID, r.ProductID, r.Rank, r.Score,
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert recommendations: %w", err)
	}
	return tx.Commit(ctx)
}

// GetAssessmentResult loads a stored analysis and its recommended products.
func (s *Store) GetAssessmentResult(ctx context.Context, logID uuid.UUID) (*models.AssessmentResult, error) {
	var analysisRaw []byte
	res := &models.AssessmentResult{LogID: &logID}

	err := s.pool.QueryRow(ctx, `SELECT analysis, created_at FROM assessment_logs WHERE id = $1`, logID).
		Scan(&analysisRaw, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get assessment log: %w", err)
	}
	if err := json.Unmarshal(analysisRaw, &res.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.score, p.id, p.name, p.domain, p.category, p.tags, p.price,
			COALESCE(p.purchase_link, ''), COALESCE(p.image_url, ''), COALESCE(p.source, ''),
			COALESCE(p.source_url, ''), p.status, p.created_at
		FROM recommendations r
		JOIN products p ON p.id = r.product_id
		WHERE r.log_id = $1
		ORDER BY r.rank ASC`, logID)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	res.Products = []models.RankedProduct{}
	for rows.Next() {
		var rp models.RankedProduct
		var recID uuid.UUID
		p := &rp.Product
		if err := rows.Scan(&recID, &rp.Score, &p.ID, &p.Name, &p.Domain, &p.Category, &p.Tags, &p.Price,
			&p.PurchaseLink, &p.ImageURL, &p.Source, &p.SourceURL, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		id := recID.String()
		rp.RecommendationID = &id
		res.Products = append(res.Products, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return res, nil
}

func (s *Store) MarkRecommendationClicked(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE recommendations SET is_clicked = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark clicked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) SaveApplication(ctx context.Context, app models.Application) error {
	content, err := json.Marshal(app.Content)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO applications (id, user_id, program_id, assessment_log_id, generated_content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.UserID, app.ProgramID, app.LogID, content, app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}
