package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/models"
)

const defaultApplicationTimeout = 45 * time.Second

// ApplicationRequest carries everything needed to draft a program application.
type ApplicationRequest struct {
	ApplicantName string
	Profile       models.Profile
	Program       models.Program
	SubsidyText   string
	ProductNames  []string
	Now           time.Time
}

// ApplicationWriter drafts the "device necessity and utilization plan"
// that accompanies a subsidy application.
type ApplicationWriter struct {
	Generator TextGenerator
	Timeout   time.Duration
	Log       logger.Logger
}

func NewApplicationWriter(gen TextGenerator, log logger.Logger) *ApplicationWriter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ApplicationWriter{Generator: gen, Timeout: defaultApplicationTimeout, Log: log}
}

// Write always returns a usable draft. Model failures degrade to a template.
func (w *ApplicationWriter) Write(ctx context.Context, req ApplicationRequest) models.ApplicationContent {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	summary := summarizeApplicant(req)

	if w.Generator == nil {
		w.Log.Warn("no text generator configured, using application template", nil)
		return templateApplication(summary, req.Program)
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = defaultApplicationTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt, err := buildApplicationPrompt(summary, req)
	if err != nil {
		w.Log.Warn("failed to build application prompt", map[string]interface{}{"error": err})
		return templateApplication(summary, req.Program)
	}

	resp, err := w.Generator.GenerateCompletion(callCtx, prompt, true)
	if err != nil {
		w.Log.Warn("application generation failed, using template", map[string]interface{}{"error": err})
		return templateApplication(summary, req.Program)
	}

	obj, err := cleanJSONResponse(resp)
	if err != nil {
		w.Log.Warn("application response is not JSON, using template", map[string]interface{}{"error": err})
		return templateApplication(summary, req.Program)
	}

	var content models.ApplicationContent
	if err := json.Unmarshal([]byte(obj), &content); err != nil {
		w.Log.Warn("application response could not be decoded, using template", map[string]interface{}{"error": err})
		return templateApplication(summary, req.Program)
	}

	content.Necessity = strings.TrimSpace(content.Necessity)
	content.UtilizationPlan = strings.TrimSpace(content.UtilizationPlan)
	content.ExpectedEffect = strings.TrimSpace(content.ExpectedEffect)
	if content.Necessity == "" || content.UtilizationPlan == "" || content.ExpectedEffect == "" {
		w.Log.Warn("application response missing sections, using template", nil)
		return templateApplication(summary, req.Program)
	}
	if strings.TrimSpace(content.FullText) == "" {
		content.FullText = joinSections(content.Necessity, content.UtilizationPlan, content.ExpectedEffect)
	}
	content.Source = models.SourceAI
	return content
}

type applicantSummary struct {
	Name       string `json:"이름"`
	Age        string `json:"나이"`
	Occupation string `json:"직업"`
	Disability string `json:"장애유형"`
	Veteran    string `json:"국가유공자"`
	LTCGrade   string `json:"장기요양등급"`
}

func summarizeApplicant(req ApplicationRequest) applicantSummary {
	s := applicantSummary{
		Name:       req.ApplicantName,
		Age:        "미상",
		Occupation: models.OccupationLabel(req.Profile.Occupation),
		Disability: req.Profile.DisabilityType,
		Veteran:    "아니오",
		LTCGrade:   "해당없음",
	}
	if s.Name == "" {
		s.Name = "신청자"
	}
	if req.Profile.BirthYear > 0 {
		s.Age = fmt.Sprintf("%d세", req.Profile.Age(req.Now))
	}
	if s.Disability == "" {
		s.Disability = "미상"
	}
	if req.Profile.IsVeteran {
		s.Veteran = "예"
	}
	if req.Profile.LTCGrade != nil {
		s.LTCGrade = fmt.Sprintf("%d등급", *req.Profile.LTCGrade)
	}
	return s
}

func buildApplicationPrompt(s applicantSummary, req ApplicationRequest) (string, error) {
	applicant, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}

	products := "없음"
	if len(req.ProductNames) > 0 {
		names := req.ProductNames
		if len(names) > 3 {
			names = names[:3]
		}
		products = strings.Join(names, ", ")
	}

	subsidy := req.SubsidyText
	if subsidy == "" {
		subsidy = "품목별 상이"
	}

	return fmt.Sprintf(`당신은 정부 복지 사업 신청 서류를 작성하는 행정 문서 전문가입니다.

[신청자]
%s

[지원 사업]
부처: %s
사업명: %s
지원 한도: %s

[추천 보조기기]
%s

"%s" 신청에 첨부할 "기기 필요성 및 활용 계획서"를 공문체로 작성하세요.
장애로 인한 어려움, 보조기기의 필요성, 구체적인 활용 계획, 생활 개선 효과의 순서로 논리적으로 서술합니다.

JSON 객체로만 응답하세요:
{
  "necessity": "기기 필요성 (3-5문단)",
  "utilization_plan": "활용 계획 (2-3문단)",
  "expected_effect": "기대 효과 (2-3문단)",
  "full_text": "세 항목을 연결한 전체 문서"
}`, applicant, req.Program.Ministry, req.Program.ProgramName, subsidy, products, req.Program.ProgramName), nil
}

func templateApplication(s applicantSummary, program models.Program) models.ApplicationContent {
	c := models.ApplicationContent{
		Necessity: fmt.Sprintf("본인은 %s(으)로 인해 일상생활에서 여러 어려움을 겪고 있습니다. %s을(를) 통해 필요한 보조기기를 지원받고자 합니다.",
			s.Disability, program.ProgramName),
		UtilizationPlan: "지원받은 보조기기를 활용하여 일상생활의 불편을 해소하고 독립적인 생활을 유지하고자 합니다.",
		ExpectedEffect:  "보조기기 활용을 통해 생활의 질이 향상되고 사회 활동 참여가 원활해질 것으로 기대됩니다.",
		Source:          models.SourceFallback,
	}
	c.FullText = joinSections(c.Necessity, c.UtilizationPlan, c.ExpectedEffect)
	return c
}

func joinSections(sections ...string) string {
	return strings.Join(sections, "\n\n")
}
