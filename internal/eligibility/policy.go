package eligibility

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"

	"github.com/didim/welfare-matcher/internal/models"
)

//go:embed policy.yaml
var policyYAML []byte

type ministryPolicy struct {
	Name            string `yaml:"name"`
	Color           string `yaml:"color"`
	SelfPaymentRate string `yaml:"self_payment_rate"`
}

type rateOverride struct {
	Keyword         string `yaml:"keyword"`
	SelfPaymentRate string `yaml:"self_payment_rate"`
}

type generalPolicy struct {
	ID              string `yaml:"id"`
	Ministry        string `yaml:"ministry"`
	ProgramName     string `yaml:"program_name"`
	Description     string `yaml:"description"`
	SubsidyLimit    string `yaml:"subsidy_limit"`
	SelfPaymentRate string `yaml:"self_payment_rate"`
	Color           string `yaml:"color"`
}

// Policy holds the display rules used to turn a program into a ProgramResult.
type Policy struct {
	General                generalPolicy    `yaml:"general"`
	DefaultColor           string           `yaml:"default_color"`
	DefaultSelfPaymentRate string           `yaml:"default_self_payment_rate"`
	UnlimitedSubsidy       string           `yaml:"unlimited_subsidy"`
	SubsidyUnit            string           `yaml:"subsidy_unit"`
	SubsidyDivisor         float64          `yaml:"subsidy_divisor"`
	Ministries             []ministryPolicy `yaml:"ministries"`
	RateOverrides          []rateOverride   `yaml:"rate_overrides"`

	printer *message.Printer
}

// LoadPolicy parses a policy document.
func LoadPolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if p.SubsidyDivisor <= 0 {
		return nil, fmt.Errorf("policy subsidy_divisor must be positive")
	}
	p.printer = message.NewPrinter(language.Korean)
	return &p, nil
}

// DefaultPolicy returns the embedded policy. It panics on a broken build.
func DefaultPolicy() *Policy {
	p, err := LoadPolicy(policyYAML)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) ministry(name string) (ministryPolicy, bool) {
	for _, m := range p.Ministries {
		if m.Name == name {
			return m, true
		}
	}
	return ministryPolicy{}, false
}

// Color returns the badge color for a ministry.
func (p *Policy) Color(ministry string) string {
	if m, ok := p.ministry(ministry); ok && m.Color != "" {
		return m.Color
	}
	return p.DefaultColor
}

// SelfPaymentRate resolves the co-payment text for a program.
func (p *Policy) SelfPaymentRate(ministry, programName string) string {
	for _, o := range p.RateOverrides {
		if strings.Contains(programName, o.Keyword) {
			return o.SelfPaymentRate
		}
	}
	if m, ok := p.ministry(ministry); ok && m.SelfPaymentRate != "" {
		return m.SelfPaymentRate
	}
	return p.DefaultSelfPaymentRate
}

// FormatSubsidy renders a KRW limit in units of 10,000 won.
func (p *Policy) FormatSubsidy(limit *int64) string {
	if limit == nil || *limit == 0 {
		return p.UnlimitedSubsidy
	}
	v := float64(*limit) / p.SubsidyDivisor
	return p.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3))) + p.SubsidyUnit
}

// GeneralResult returns the sentinel result for applicants with no eligible program.
func (p *Policy) GeneralResult() models.ProgramResult {
	g := p.General
	return models.ProgramResult{
		ID:              g.ID,
		Ministry:        g.Ministry,
		ProgramName:     g.ProgramName,
		Description:     g.Description,
		SubsidyLimit:    g.SubsidyLimit,
		SelfPaymentRate: g.SelfPaymentRate,
		Color:           g.Color,
	}
}
