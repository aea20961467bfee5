package eligibility

import "github.com/didim/welfare-matcher/internal/models"

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

var disabled = []string{"physical", "visual", "hearing", "developmental"}

// catalog mirrors the seeded welfare_programs rows.
func catalog() []models.Program {
	return []models.Program{
		{ID: 1, Ministry: "국가보훈부", ProgramName: "보철구 지원사업",
			Criteria: models.Criteria{IsVeteran: boolPtr(true), Priority: intPtr(1)}},
		{ID: 2, Ministry: "고용노동부", ProgramName: "보조공학기기 지원사업", SubsidyLimit: int64Ptr(15000000),
			Criteria: models.Criteria{Occupation: []string{"worker"}, DisabilityTypes: disabled, Priority: intPtr(2)}},
		{ID: 3, Ministry: "고용노동부", ProgramName: "훈련보조공학기기 지원", SubsidyLimit: int64Ptr(10000000),
			Criteria: models.Criteria{Occupation: []string{"job_seeker"}, DisabilityTypes: disabled, Priority: intPtr(3)}},
		{ID: 4, Ministry: "교육부", ProgramName: "특수교육대상자 보조공학기기",
			Criteria: models.Criteria{Occupation: []string{"student"}, DisabilityTypes: disabled, Priority: intPtr(3)}},
		{ID: 5, Ministry: "과학기술정보통신부", ProgramName: "정보통신보조기기 보급사업",
			Criteria: models.Criteria{DisabilityTypes: disabled, Seasonality: &models.Seasonality{Months: []int{5, 6}}, Priority: intPtr(4)}},
		{ID: 6, Ministry: "보건복지부", ProgramName: "노인장기요양 복지용구", SubsidyLimit: int64Ptr(1600000),
			Criteria: models.Criteria{DisabilityTypes: []string{"elderly"}, AgeRange: &models.AgeRange{Min: intPtr(65)}, Priority: intPtr(2)}},
		{ID: 7, Ministry: "보건복지부", ProgramName: "장애인 보조기기 교부",
			Criteria: models.Criteria{DisabilityTypes: disabled, Priority: intPtr(5)}},
		{ID: 8, Ministry: "보건복지부", ProgramName: "노인장기요양 재가급여 복지용구 대여", SubsidyLimit: int64Ptr(1600000),
			Criteria: models.Criteria{DisabilityTypes: []string{"elderly"}, AgeRange: &models.AgeRange{Min: intPtr(65)},
				LTCGrade: &models.LTCGradeRange{Min: intPtr(1)}, Priority: intPtr(3)}},
	}
}
