package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/didim/welfare-matcher/internal/config"
	"github.com/didim/welfare-matcher/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	counts, err := store.CatalogCounts(ctx)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("Welfare programs: %d\n\n", counts.Programs)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Products")
	t.AppendHeader(table.Row{"Group", "Key", "Count"})
	for _, k := range sortedKeys(counts.ProductsByStatus) {
		t.AppendRow(table.Row{"status", k, counts.ProductsByStatus[k]})
	}
	t.AppendSeparator()
	for _, k := range sortedKeys(counts.ProductsByDomain) {
		t.AppendRow(table.Row{"approved by domain", k, counts.ProductsByDomain[k]})
	}
	t.Render()

	runs, err := store.RecentIngestRuns(ctx, 10)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	rt := table.NewWriter()
	rt.SetOutputMirror(os.Stdout)
	rt.SetTitle("Recent ingest runs")
	rt.AppendHeader(table.Row{"Source", "Status", "Found", "Saved", "Errors", "Duration", "Started At"})
	for _, r := range runs {
		duration := "Running..."
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rt.AppendRow(table.Row{r.SourceID, r.Status, r.ItemsFound, r.ItemsSaved, r.Errors, duration, r.StartedAt.Format("2006-01-02 15:04:05")})
	}
	rt.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
