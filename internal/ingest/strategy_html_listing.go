package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/sync/errgroup"
)

// HTMLListingStrategy walks paginated product listings with colly. Each seed
// URL is crawled by its own collector; seeds run concurrently up to the
// pipeline's concurrency limit.
type HTMLListingStrategy struct{}

func (s *HTMLListingStrategy) Run(ctx context.Context, config SourceConfig, p *Pipeline) (IngestionStats, error) {
	counter := &statsCounter{}
	settings := settingsFor(config.Fetch)

	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for _, seed := range config.SeedURLs() {
		g.Go(func() error {
			return s.crawlSeed(gctx, config, seed, maxPages, settings, p, counter)
		})
	}
	err := g.Wait()
	return counter.snapshot(), err
}

func (s *HTMLListingStrategy) crawlSeed(ctx context.Context, config SourceConfig, seed string, maxPages int,
	settings collectorSettings, p *Pipeline, counter *statsCounter) error {
	log := p.Log.With(map[string]interface{}{"source": config.ID, "seed": seed})
	collector := newCollector(ctx, settings, log)

	sel := config.Selectors
	collector.OnHTML(sel.Container, func(e *colly.HTMLElement) {
		raw := extractProduct(e.DOM, sel)
		if raw.Link != "" {
			raw.Link = e.Request.AbsoluteURL(raw.Link)
		}
		if raw.ImageURL != "" {
			raw.ImageURL = e.Request.AbsoluteURL(raw.ImageURL)
		}
		raw.PageURL = e.Request.URL.String()
		if raw.Name == "" || raw.Link == "" {
			return
		}

		counter.found()
		if err := p.SaveRaw(ctx, config, raw); err != nil {
			log.Warn("failed to save product", map[string]interface{}{"link": raw.Link, "error": err.Error()})
			counter.failed()
			return
		}
		counter.saved()
	})

	var nextPageURL string
	if config.Pagination.Next != "" {
		collector.OnHTML(config.Pagination.Next, func(e *colly.HTMLElement) {
			if href := strings.TrimSpace(e.Attr("href")); href != "" {
				nextPageURL = e.Request.AbsoluteURL(href)
			}
		})
	}

	collector.OnError(func(r *colly.Response, err error) {
		log.Warn("listing fetch failed", map[string]interface{}{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
			"error":  err.Error(),
		})
		counter.failed()
	})

	visited := make(map[string]bool)
	currentURL := seed
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		canon := CanonicalizeURL(currentURL)
		if visited[canon] {
			log.Info("pagination cycle detected", map[string]interface{}{"url": canon})
			break
		}
		visited[canon] = true

		nextPageURL = ""
		if err := collector.Visit(currentURL); err != nil {
			return fmt.Errorf("visit %s: %w", currentURL, err)
		}
		collector.Wait()

		if nextPageURL == "" {
			break
		}
		currentURL = nextPageURL
	}
	return nil
}

// extractProduct reads one product card. An empty child selector means the
// card element itself.
func extractProduct(card *goquery.Selection, sel SelectorConfig) RawProduct {
	pick := func(selector string) *goquery.Selection {
		if selector == "" || selector == "." {
			return card
		}
		return card.Find(selector).First()
	}

	linkAttr := sel.LinkAttr
	if linkAttr == "" {
		linkAttr = "href"
	}
	imageAttr := sel.ImageAttr
	if imageAttr == "" {
		imageAttr = "src"
	}

	raw := RawProduct{
		Name: normalizeSpace(card.Find(sel.Name).First().Text()),
	}
	raw.Link, _ = pick(sel.Link).Attr(linkAttr)
	raw.Link = strings.TrimSpace(raw.Link)

	if sel.Price != "" {
		raw.PriceText = normalizeSpace(card.Find(sel.Price).First().Text())
	}
	if sel.Image != "" {
		raw.ImageURL, _ = card.Find(sel.Image).First().Attr(imageAttr)
		raw.ImageURL = strings.TrimSpace(raw.ImageURL)
	}
	if sel.Tags != "" {
		card.Find(sel.Tags).Each(func(_ int, t *goquery.Selection) {
			raw.Tags = appendUnique(raw.Tags, normalizeSpace(strings.TrimPrefix(strings.TrimSpace(t.Text()), "#")))
		})
	}
	return raw
}
