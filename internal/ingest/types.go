package ingest

import "sync"

// RawProduct is one product card as read from a listing page, before
// sanitizing and normalization.
type RawProduct struct {
	Name      string
	Link      string
	PriceText string
	ImageURL  string
	Tags      []string
	PageURL   string
}

// IngestionStats holds metrics about a run.
type IngestionStats struct {
	TotalFound int `json:"total_found"`
	TotalSaved int `json:"total_saved"`
	Errors     int `json:"errors"`
}

// statsCounter is shared by the collectors of one run.
type statsCounter struct {
	mu    sync.Mutex
	stats IngestionStats
}

func (c *statsCounter) found() {
	c.mu.Lock()
	c.stats.TotalFound++
	c.mu.Unlock()
}

func (c *statsCounter) saved() {
	c.mu.Lock()
	c.stats.TotalSaved++
	c.mu.Unlock()
}

func (c *statsCounter) failed() {
	c.mu.Lock()
	c.stats.Errors++
	c.mu.Unlock()
}

func (c *statsCounter) snapshot() IngestionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
