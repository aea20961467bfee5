package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/metrics"
	"github.com/didim/welfare-matcher/internal/models"
)

const defaultClassifyTimeout = 20 * time.Second

// nonBlank rejects strings that are empty or whitespace only.
var nonBlank = map[string]interface{}{"type": "string", "pattern": `\S`}

var analysisSchema = gojsonschema.NewGoLoader(map[string]interface{}{
	"type":     "object",
	"required": []string{"target_domain", "recommended_category", "search_tags", "reasoning"},
	"properties": map[string]interface{}{
		"target_domain": map[string]interface{}{
			"type": "string",
			"enum": models.Domains,
		},
		"recommended_category": nonBlank,
		"search_tags": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    nonBlank,
		},
		"reasoning": nonBlank,
	},
})

// Classifier picks the target domain, product category and search tags for
// an assessment. The AI stage may fail in many ways; Classify never does.
type Classifier struct {
	Generator TextGenerator
	Cache     AnalysisCache
	Rules     *FallbackRules
	Timeout   time.Duration
	Log       logger.Logger
	Metrics   *metrics.Metrics
}

func NewClassifier(gen TextGenerator, log logger.Logger, m *metrics.Metrics) *Classifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Classifier{
		Generator: gen,
		Rules:     DefaultFallbackRules(),
		Timeout:   defaultClassifyTimeout,
		Log:       log,
		Metrics:   m,
	}
}

// Classify returns the AI analysis when it is available and valid, and the
// rule-based fallback otherwise.
func (c *Classifier) Classify(ctx context.Context, a models.Assessment) models.Analysis {
	ctx, span := otel.Tracer("welfare-matcher/ai").Start(ctx, "ai.Classify")
	defer span.End()

	start := time.Now()
	defer func() { c.Metrics.ObserveClassification(time.Since(start)) }()

	key, keyErr := AssessmentKey(a)
	if keyErr == nil && c.Cache != nil {
		if cached, err := c.Cache.Get(ctx, key); err != nil {
			c.Log.Warn("classification cache read failed", map[string]interface{}{"error": err})
		} else if cached != nil {
			cached.Source = models.SourceCache
			c.Metrics.IncClassification(models.SourceCache, "")
			span.SetAttributes(attribute.String("classification.source", models.SourceCache))
			return *cached
		}
	}

	analysis, err := c.classifyWithAI(ctx, a)
	if err != nil {
		kind := errorKind(err)
		c.Log.Warn("AI classification failed, using rule-based fallback", map[string]interface{}{
			"kind":    kind,
			"error":   err,
			"domains": a.SelectedDomains,
		})
		c.Metrics.IncClassification(models.SourceFallback, kind)
		span.SetAttributes(attribute.String("classification.source", models.SourceFallback))
		span.AddEvent("classification.fallback", trace.WithAttributes(
			attribute.String("error_kind", kind),
			attribute.String("error", err.Error()),
		))
		return c.fallback(a)
	}

	c.Metrics.IncClassification(models.SourceAI, "")
	span.SetAttributes(attribute.String("classification.source", models.SourceAI))

	if keyErr == nil && c.Cache != nil {
		if err := c.Cache.Set(ctx, key, *analysis); err != nil {
			c.Log.Warn("classification cache write failed", map[string]interface{}{"error": err})
		}
	}
	return *analysis
}

func (c *Classifier) fallback(a models.Assessment) models.Analysis {
	if c.Rules != nil {
		return c.Rules.Classify(a)
	}
	return Fallback(a)
}

// classifyWithAI runs the model and validates its answer. Every failure is
// a *ClassificationError.
func (c *Classifier) classifyWithAI(ctx context.Context, a models.Assessment) (*models.Analysis, error) {
	if c.Generator == nil {
		return nil, classificationErr(KindConfig, ErrNoGenerator)
	}

	prompt, err := buildClassificationPrompt(a)
	if err != nil {
		return nil, classificationErr(KindConfig, err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultClassifyTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.Generator.GenerateCompletion(callCtx, prompt, true)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, classificationErr(KindTimeout, err)
		}
		return nil, classificationErr(KindCall, err)
	}
	c.Log.Debug("classification response", map[string]interface{}{"response": resp})

	return parseAnalysis(resp)
}

func parseAnalysis(resp string) (*models.Analysis, error) {
	obj, err := cleanJSONResponse(resp)
	if err != nil {
		return nil, classificationErr(KindParse, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return nil, classificationErr(KindParse, err)
	}
	if d, ok := doc["target_domain"].(string); ok {
		doc["target_domain"] = strings.ToLower(strings.TrimSpace(d))
	}

	result, err := gojsonschema.Validate(analysisSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, classificationErr(KindSchema, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, classificationErr(KindSchema, errors.New(strings.Join(msgs, "; ")))
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, classificationErr(KindParse, err)
	}
	var analysis models.Analysis
	if err := json.Unmarshal(normalized, &analysis); err != nil {
		return nil, classificationErr(KindParse, err)
	}
	analysis.RecommendedCategory = strings.TrimSpace(analysis.RecommendedCategory)
	analysis.Reasoning = strings.TrimSpace(analysis.Reasoning)
	for i, tag := range analysis.SearchTags {
		analysis.SearchTags[i] = strings.TrimSpace(tag)
	}
	analysis.Source = models.SourceAI
	return &analysis, nil
}

func buildClassificationPrompt(a models.Assessment) (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode assessment: %w", err)
	}

	return fmt.Sprintf(`You are an expert Assistive Technology Professional (ATP).
Analyze the user's functional assessment and recommend the most suitable assistive technology category.

Domains (use these exact keys for target_domain):
- sensory: vision and hearing
- mobility: walking and wheelchairs
- adl: eating, dressing, bathing
- communication
- positioning
- vehicle
- computer
- leisure
- environment

Assessment:
%s

Instructions:
1. target_domain: the single domain where the user needs the most help.
2. recommended_category: a specific category key in English snake_case (e.g. "reading_magnifier", "manual_wheelchair", "universal_cuff").
3. search_tags: 3-5 Korean product search tags (e.g. "시각장애", "확대기", "휠체어", "식사보조").
4. reasoning: a short explanation in Korean.

Respond ONLY with a JSON object:
{
  "target_domain": "string",
  "recommended_category": "string",
  "search_tags": ["string"],
  "reasoning": "string"
}`, data), nil
}
