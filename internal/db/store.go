package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/didim/welfare-matcher/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const programCols = `id, ministry, program_name, COALESCE(description, ''), subsidy_limit, target_criteria, created_at`

func scanProgram(scan func(dest ...interface{}) error) (models.Program, error) {
	var p models.Program
	var criteriaRaw []byte
	if err := scan(&p.ID, &p.Ministry, &p.ProgramName, &p.Description, &p.SubsidyLimit, &criteriaRaw, &p.CreatedAt); err != nil {
		return p, err
	}
	p.Criteria = models.DecodeCriteria(criteriaRaw)
	return p, nil
}

// ListPrograms returns the whole catalog in ascending id order.
func (s *Store) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+programCols+` FROM welfare_programs ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	programs := []models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return programs, nil
}

func (s *Store) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+programCols+` FROM welfare_programs WHERE id = $1`, id)
	p, err := scanProgram(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get program %d: %w", id, err)
	}
	return &p, nil
}

const productCols = `id, name, domain, category, tags, price, COALESCE(purchase_link, ''), COALESCE(image_url, ''),
	COALESCE(source, ''), COALESCE(source_url, ''), status, created_at`

func scanProduct(scan func(dest ...interface{}) error) (models.Product, error) {
	var p models.Product
	err := scan(&p.ID, &p.Name, &p.Domain, &p.Category, &p.Tags, &p.Price, &p.PurchaseLink, &p.ImageURL,
		&p.Source, &p.SourceURL, &p.Status, &p.CreatedAt)
	return p, err
}

// ProductListParams filters the product catalog.
type ProductListParams struct {
	Domain string
	Status string
	Source string
	Limit  int
	Offset int
}

// buildProductWhere returns the WHERE clause and positional args for params.
func buildProductWhere(params ProductListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Domain != "" {
		where += fmt.Sprintf(" AND domain = $%d", argIdx)
		args = append(args, params.Domain)
		argIdx++
	}
	if params.Status != "" && params.Status != "all" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Source != "" {
		where += fmt.Sprintf(" AND source = $%d", argIdx)
		args = append(args, params.Source)
	}
	return where, args
}

// ListProducts returns the approved products of a domain, the candidate
// set for ranking.
func (s *Store) ListProducts(ctx context.Context, domain string) ([]models.Product, error) {
	return s.QueryProducts(ctx, ProductListParams{Domain: domain, Status: models.ProductApproved})
}

func (s *Store) QueryProducts(ctx context.Context, params ProductListParams) ([]models.Product, error) {
	where, args := buildProductWhere(params)
	sql := `SELECT ` + productCols + ` FROM products ` + where + ` ORDER BY id ASC`
	if params.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, params.Limit, params.Offset)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return products, nil
}

// UpsertProduct inserts a collected product or refreshes its listing data.
// The review status of an existing product is never changed here.
func (s *Store) UpsertProduct(ctx context.Context, p models.Product) (bool, error) {
	if p.SourceURL == "" {
		return false, errors.New("product source_url is required")
	}
	if p.Status == "" {
		p.Status = models.ProductPending
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	var inserted bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (name, domain, category, tags, price, purchase_link, image_url, source, source_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_url) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			purchase_link = EXCLUDED.purchase_link,
			image_url = EXCLUDED.image_url,
			tags = EXCLUDED.tags,
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		p.Name, p.Domain, p.Category, p.Tags, p.Price, nullable(p.PurchaseLink), nullable(p.ImageURL),
		nullable(p.Source), p.SourceURL, p.Status,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert product %q: %w", p.SourceURL, err)
	}
	return inserted, nil
}

// SetProductStatus moves a product through review.
func (s *Store) SetProductStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case models.ProductPending, models.ProductApproved, models.ProductRejected:
	default:
		return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	tag, err := s.pool.Exec(ctx, `UPDATE products SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CatalogCounts summarises catalog sizes for operators.
type CatalogCounts struct {
	Programs         int            `json:"programs"`
	ProductsByStatus map[string]int `json:"products_by_status"`
	ProductsByDomain map[string]int `json:"products_by_domain"`
}

func (s *Store) CatalogCounts(ctx context.Context) (*CatalogCounts, error) {
	c := &CatalogCounts{ProductsByStatus: map[string]int{}, ProductsByDomain: map[string]int{}}

	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM welfare_programs").Scan(&c.Programs); err != nil {
		return nil, fmt.Errorf("count programs: %w", err)
	}

	if err := s.countInto(ctx, "SELECT status, COUNT(*) FROM products GROUP BY status", c.ProductsByStatus); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, "SELECT domain, COUNT(*) FROM products WHERE status = 'approved' GROUP BY domain", c.ProductsByDomain); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) countInto(ctx context.Context, sql string, into map[string]int) error {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("count query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		into[key] = n
	}
	return rows.Err()
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
