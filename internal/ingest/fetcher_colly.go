package ingest

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/didim/welfare-matcher/internal/logger"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 2
	defaultMaxBodySize    = 10 * 1024 * 1024
)

// collectorSettings is the resolved fetch configuration of one source.
type collectorSettings struct {
	UserAgent      string
	AcceptLanguage string
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxRetries     int
}

func settingsFor(cfg FetchConfig) collectorSettings {
	s := collectorSettings{
		UserAgent:      defaultUserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		RequestTimeout: defaultRequestTimeout,
		DomainDelay:    time.Second,
		MaxRetries:     defaultMaxRetries,
	}
	if cfg.UserAgent != "" {
		s.UserAgent = cfg.UserAgent
	}
	if cfg.TimeoutSeconds > 0 {
		s.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RateLimitRPS > 0 {
		s.DomainDelay = time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}
	if cfg.MaxRetries > 0 {
		s.MaxRetries = cfg.MaxRetries
	}
	return s
}

// newCollector builds a synchronous, rate limited collector. Requests are
// aborted once ctx is done and failed responses are retried with a linear
// backoff.
func newCollector(ctx context.Context, s collectorSettings, log logger.Logger) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(s.UserAgent),
		colly.MaxBodySize(defaultMaxBodySize),
		colly.DetectCharset(),
	)

	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       s.DomainDelay,
		RandomDelay: s.DomainDelay / 2,
	})
	c.SetRequestTimeout(s.RequestTimeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		if s.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", s.AcceptLanguage)
		}
		log.Debug("visiting", map[string]interface{}{"url": r.URL.String()})
	})

	c.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		if retries >= s.MaxRetries || ctx.Err() != nil {
			return
		}
		r.Request.Ctx.Put("retries", retries+1)
		log.Warn("retrying request", map[string]interface{}{
			"url":     r.Request.URL.String(),
			"attempt": retries + 1,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(retries+1) * time.Second)
		_ = r.Request.Retry()
	})

	return c
}
