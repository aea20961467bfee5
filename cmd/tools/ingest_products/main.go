package main

import (
	"context"
	"flag"
	"log"

	"github.com/didim/welfare-matcher/internal/config"
	"github.com/didim/welfare-matcher/internal/db"
	"github.com/didim/welfare-matcher/internal/ingest"
	"github.com/didim/welfare-matcher/internal/logger"
)

func main() {
	sourceID := flag.String("source", "", "Source ID to ingest (e.g., at4u_magnifiers); empty runs every enabled source")
	registryPath := flag.String("registry", "", "Optional sources.yaml overriding the embedded registry")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	structured := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, structured); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	path := cfg.Ingest.RegistryPath
	if *registryPath != "" {
		path = *registryPath
	}
	registry, err := ingest.LoadRegistry(path)
	if err != nil {
		log.Fatalf("Failed to load registry: %v", err)
	}

	store := db.NewStore(pool)
	pipeline := ingest.NewPipeline(registry, store, store, structured, nil)
	pipeline.Concurrency = cfg.Ingest.Concurrency

	if *sourceID == "" {
		results, err := pipeline.IngestAll(ctx)
		for id, stats := range results {
			log.Printf("%s: Found: %d, Saved: %d, Errors: %d", id, stats.TotalFound, stats.TotalSaved, stats.Errors)
		}
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		return
	}

	log.Printf("Starting manual ingestion for source: %s", *sourceID)
	stats, err := pipeline.IngestSource(ctx, *sourceID)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	log.Printf("Ingestion finished for %s. Found: %d, Saved: %d, Errors: %d", *sourceID, stats.TotalFound, stats.TotalSaved, stats.Errors)
	log.Printf("Review the new products with GET /api/v1/admin/products?status=pending")
}
