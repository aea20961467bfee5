package models

import "time"

// Product review states. Only approved products are recommended.
const (
	ProductPending  = "pending"
	ProductApproved = "approved"
	ProductRejected = "rejected"
)

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Domain       string    `json:"domain"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	Price        int64     `json:"price"`
	PurchaseLink string    `json:"purchase_link,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Source       string    `json:"source,omitempty"`
	SourceURL    string    `json:"source_url,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// RankedProduct is a product with its relevance score for one analysis.
type RankedProduct struct {
	Product
	Score            int     `json:"score"`
	RecommendationID *string `json:"recommendation_id,omitempty"`
}
