package recommend

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/didim/welfare-matcher/internal/models"
)

func enum(values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func section(required []string, props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": props,
	}
}

var assessmentSchema = gojsonschema.NewGoLoader(map[string]interface{}{
	"type":     "object",
	"required": []string{"selectedDomains"},
	"properties": map[string]interface{}{
		"selectedDomains": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"sensory": section([]string{"visual_impairment", "hearing_impairment"}, map[string]interface{}{
			"visual_impairment":  enum("none", "low_vision", "blind"),
			"hearing_impairment": enum("none", "mild", "severe", "deaf"),
		}),
		"mobility": section([]string{"walking_ability", "upper_limb_strength"}, map[string]interface{}{
			"walking_ability":     enum("independent", "cane", "walker", "manual_wheelchair", "power_wheelchair", "bedridden"),
			"upper_limb_strength": enum("normal", "weak", "paralysis"),
		}),
		"adl": section([]string{"eating", "dressing", "bathing"}, map[string]interface{}{
			"eating":   enum("independent", "partial_help", "dependent"),
			"dressing": enum("independent", "partial_help", "dependent"),
			"bathing":  enum("independent", "partial_help", "dependent"),
		}),
		"communication": section([]string{"verbal_ability", "comprehension"}, map[string]interface{}{
			"verbal_ability": enum("fluent", "slurred", "limited_words", "non_verbal"),
			"comprehension":  enum("full", "partial", "limited"),
		}),
		"positioning": section([]string{"sitting_balance", "has_deformity"}, map[string]interface{}{
			"sitting_balance": enum("good", "fair", "poor", "none"),
			"has_deformity":   enum("no", "spine", "pelvis", "limbs"),
		}),
		"vehicle": section([]string{"driving_status", "vehicle_type"}, map[string]interface{}{
			"driving_status": enum("driver", "passenger", "none"),
			"vehicle_type":   enum("sedan", "suv", "van", "none"),
		}),
		"computer": section([]string{"keyboard_use", "mouse_use"}, map[string]interface{}{
			"keyboard_use": enum("independent", "difficult", "impossible"),
			"mouse_use":    enum("independent", "difficult", "impossible"),
		}),
		"leisure": section([]string{"interests"}, map[string]interface{}{
			"interests": map[string]interface{}{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]interface{}{"type": "string"},
			},
		}),
		"environment": section([]string{"home_type"}, map[string]interface{}{
			"home_type": enum("apartment", "house", "villa", "other"),
			"barriers": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		}),
		"common": section([]string{"age", "residence", "goal_description"}, map[string]interface{}{
			"age":              map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 120},
			"residence":        map[string]interface{}{"type": "string", "minLength": 1},
			"goal_description": map[string]interface{}{"type": "string", "minLength": 10},
		}),
	},
})

// ValidateAssessment checks the questionnaire against the form schema and
// reports the first offending field.
func ValidateAssessment(a models.Assessment) error {
	result, err := gojsonschema.Validate(assessmentSchema, gojsonschema.NewGoLoader(a))
	if err != nil {
		return &models.ValidationError{Field: "assessment", Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	field := errs[0].Field()
	if field == "(root)" {
		field = "assessment"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return &models.ValidationError{Field: field, Message: strings.Join(msgs, "; ")}
}
