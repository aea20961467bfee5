package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/didim/welfare-matcher/internal/models"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type FallbackRule struct {
	Label    string   `yaml:"label"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

// FallbackRules maps each assessment domain to a fixed recommendation.
type FallbackRules struct {
	Default string                  `yaml:"default"`
	Rules   map[string]FallbackRule `yaml:"rules"`
}

// LoadFallbackRules parses a rule table. The default domain must have a rule.
func LoadFallbackRules(data []byte) (*FallbackRules, error) {
	var r FallbackRules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse fallback rules: %w", err)
	}
	def, ok := r.Rules[r.Default]
	if !ok {
		return nil, fmt.Errorf("fallback default %q has no rule", r.Default)
	}
	if def.Category == "" || len(def.Tags) == 0 {
		return nil, fmt.Errorf("fallback default %q is incomplete", r.Default)
	}
	return &r, nil
}

var defaultRules = mustLoadFallbackRules()

func mustLoadFallbackRules() *FallbackRules {
	r, err := LoadFallbackRules(fallbackYAML)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultFallbackRules returns the embedded rule table.
func DefaultFallbackRules() *FallbackRules {
	return defaultRules
}

// Fallback classifies with the embedded rule table.
func Fallback(a models.Assessment) models.Analysis {
	return defaultRules.Classify(a)
}

// Classify maps the first selected domain to its rule. It never fails:
// missing or unknown domains resolve to the default rule.
func (r *FallbackRules) Classify(a models.Assessment) models.Analysis {
	domain := r.Default
	if len(a.SelectedDomains) > 0 {
		domain = strings.ToLower(strings.TrimSpace(a.SelectedDomains[0]))
	}

	rule, ok := r.Rules[domain]
	if !ok || rule.Category == "" || len(rule.Tags) == 0 {
		domain = r.Default
		rule = r.Rules[r.Default]
	}

	label := rule.Label
	if label == "" {
		label = domain
	}

	return models.Analysis{
		TargetDomain:        domain,
		RecommendedCategory: rule.Category,
		SearchTags:          append([]string(nil), rule.Tags...),
		Reasoning: fmt.Sprintf(
			"AI 분석을 사용할 수 없어 규칙 기반 기본 추천을 제공합니다. 선택하신 '%s' 영역을 기준으로 일반적인 보조기기를 추천했습니다.",
			label,
		),
		Source: models.SourceFallback,
	}
}
