package ingest

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/didim/welfare-matcher/internal/models"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// ErrUnknownSource is returned when a source id is not in the registry.
var ErrUnknownSource = errors.New("unknown product source")

// Registry holds the configuration for all product sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 2
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Default: 1.0
	UserAgent      string  `yaml:"user_agent,omitempty"`
	AcceptLanguage string  `yaml:"accept_language,omitempty"`
}

// SourceConfig defines one catalog listing that products are collected from.
// Every product of a source shares its domain and category.
type SourceConfig struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Strategy    string   `yaml:"strategy"`
	Enabled     bool     `yaml:"enabled"`
	Domain      string   `yaml:"domain"`
	Category    string   `yaml:"category"`
	DefaultTags []string `yaml:"default_tags,omitempty"`
	BaseURL     string   `yaml:"base_url"`
	Seeds       []string `yaml:"seed_urls,omitempty"`
	MaxPages    int      `yaml:"max_pages,omitempty"`
	Description string   `yaml:"description,omitempty"`

	Fetch      FetchConfig      `yaml:"fetch,omitempty"`
	Selectors  SelectorConfig   `yaml:"selectors"`
	Pagination PaginationConfig `yaml:"pagination,omitempty"`
}

type PaginationConfig struct {
	Next string `yaml:"next,omitempty"` // CSS selector for the next page link
}

type SelectorConfig struct {
	Container string `yaml:"container"` // CSS selector for one product card
	Name      string `yaml:"name"`
	Link      string `yaml:"link,omitempty"`
	LinkAttr  string `yaml:"link_attr,omitempty"` // default: href
	Price     string `yaml:"price,omitempty"`
	Image     string `yaml:"image,omitempty"`
	ImageAttr string `yaml:"image_attr,omitempty"` // default: src
	Tags      string `yaml:"tags,omitempty"`       // each match is one tag
}

// SeedURLs returns the base URL followed by the extra seeds, without
// duplicates.
func (c SourceConfig) SeedURLs() []string {
	var out []string
	for _, u := range append([]string{c.BaseURL}, c.Seeds...) {
		if u == "" || slices.Contains(out, u) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// LoadRegistry reads the embedded sources.yaml, or path when it is set.
func LoadRegistry(path string) (*Registry, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = sourcesYAML.ReadFile("config/sources.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read source registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry expands ${VAR} references, decodes and checks the registry.
func ParseRegistry(data []byte) (*Registry, error) {
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("parse source registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Sources))
	for _, src := range reg.Sources {
		if src.ID == "" {
			return nil, errors.New("source without id")
		}
		if seen[src.ID] {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = true

		if !slices.Contains(models.Domains, src.Domain) {
			return nil, fmt.Errorf("source %q: unknown domain %q", src.ID, src.Domain)
		}
		if src.Enabled && src.BaseURL == "" {
			return nil, fmt.Errorf("source %q: base_url is required for enabled sources", src.ID)
		}
		if src.Selectors.Container == "" || src.Selectors.Name == "" {
			return nil, fmt.Errorf("source %q: selectors.container and selectors.name are required", src.ID)
		}
	}
	return &reg, nil
}

// Source looks a source up by id.
func (r *Registry) Source(id string) (SourceConfig, error) {
	for _, src := range r.Sources {
		if src.ID == id {
			return src, nil
		}
	}
	return SourceConfig{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
}

// Enabled returns the sources that take part in a full collection run.
func (r *Registry) Enabled() []SourceConfig {
	var out []SourceConfig
	for _, src := range r.Sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}
