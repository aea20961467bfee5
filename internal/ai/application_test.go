package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/models"
)

func applicationRequest() ApplicationRequest {
	grade := 2
	return ApplicationRequest{
		ApplicantName: "홍길동",
		Profile:       models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly", LTCGrade: &grade},
		Program:       models.Program{ID: 6, Ministry: "보건복지부", ProgramName: "노인장기요양 복지용구"},
		SubsidyText:   "160만원",
		ProductNames:  []string{"안전손잡이", "목욕의자", "보행기", "지팡이"},
		Now:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplicationWriter_AIDraft(t *testing.T) {
	gen := &fakeGenerator{resp: `{"necessity":"필요성","utilization_plan":"계획","expected_effect":"효과"}`}
	w := NewApplicationWriter(gen, logger.NewTestLogger(t))

	got := w.Write(context.Background(), applicationRequest())

	assert.Equal(t, "필요성", got.Necessity)
	assert.Equal(t, "필요성\n\n계획\n\n효과", got.FullText)
	assert.Equal(t, models.SourceAI, got.Source)
	assert.Contains(t, gen.prompt, "노인장기요양 복지용구")
	assert.Contains(t, gen.prompt, "160만원")
	assert.Contains(t, gen.prompt, "75세")
	assert.Contains(t, gen.prompt, "2등급")
	assert.Contains(t, gen.prompt, "안전손잡이, 목욕의자, 보행기")
	assert.NotContains(t, gen.prompt, "지팡이")
}

func TestApplicationWriter_KeepsFullText(t *testing.T) {
	gen := &fakeGenerator{resp: `{"necessity":"a","utilization_plan":"b","expected_effect":"c","full_text":"전체"}`}
	got := NewApplicationWriter(gen, nil).Write(context.Background(), applicationRequest())
	assert.Equal(t, "전체", got.FullText)
}

func TestApplicationWriter_Template(t *testing.T) {
	tests := []struct {
		name string
		gen  TextGenerator
	}{
		{"no generator", nil},
		{"call error", &fakeGenerator{err: errors.New("down")}},
		{"garbage", &fakeGenerator{resp: "not json"}},
		{"missing section", &fakeGenerator{resp: `{"necessity":"a","utilization_plan":"b"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewApplicationWriter(tt.gen, logger.NewTestLogger(t)).Write(context.Background(), applicationRequest())
			assert.Equal(t, models.SourceFallback, got.Source)
			assert.Contains(t, got.Necessity, "elderly")
			assert.Contains(t, got.Necessity, "노인장기요양 복지용구")
			assert.NotEmpty(t, got.UtilizationPlan)
			assert.NotEmpty(t, got.ExpectedEffect)
			assert.Equal(t, got.Necessity+"\n\n"+got.UtilizationPlan+"\n\n"+got.ExpectedEffect, got.FullText)
		})
	}
}
