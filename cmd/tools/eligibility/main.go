package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/didim/welfare-matcher/internal/config"
	"github.com/didim/welfare-matcher/internal/db"
	"github.com/didim/welfare-matcher/internal/eligibility"
	"github.com/didim/welfare-matcher/internal/logger"
	"github.com/didim/welfare-matcher/internal/models"
)

func main() {
	birthYear := flag.Int("birth-year", 0, "Applicant birth year")
	occupation := flag.String("occupation", models.OccupationNone, "worker | job_seeker | student | none")
	disability := flag.String("disability", models.DisabilityNone, "physical | visual | hearing | developmental | elderly | none")
	veteran := flag.Bool("veteran", false, "Registered national merit recipient")
	ltcGrade := flag.Int("ltc-grade", 0, "Long-term care grade 1-6 (0 = none)")
	at := flag.String("at", "", "Evaluate as of this date (YYYY-MM-DD), default today")
	flag.Parse()

	profile := models.Profile{
		BirthYear:      *birthYear,
		Occupation:     *occupation,
		DisabilityType: *disability,
		IsVeteran:      *veteran,
	}
	if *ltcGrade != 0 {
		profile.LTCGrade = ltcGrade
	}

	now := time.Now()
	if *at != "" {
		parsed, err := time.Parse("2006-01-02", *at)
		if err != nil {
			log.Fatalf("Invalid -at date: %v", err)
		}
		now = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	policy := eligibility.DefaultPolicy()
	svc := eligibility.NewService(db.NewStore(pool), policy, logger.NewNoOpLogger(), nil).
		WithClock(func() time.Time { return now })

	scored, err := svc.Rank(ctx, profile)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Eligible programs as of %s", now.Format("2006-01-02")))
	t.AppendHeader(table.Row{"#", "ID", "Ministry", "Program", "Subsidy", "Score"})
	ranked := make([]models.Program, 0, len(scored))
	for i, sp := range scored {
		t.AppendRow(table.Row{i + 1, sp.Program.ID, sp.Program.Ministry, sp.Program.ProgramName,
			policy.FormatSubsidy(sp.Program.SubsidyLimit), sp.Score})
		ranked = append(ranked, sp.Program)
	}
	t.Render()

	best := policy.SelectBest(ranked)
	fmt.Printf("\nBest: %s / %s (subsidy %s, self-payment %s)\n", best.Ministry, best.ProgramName, best.SubsidyLimit, best.SelfPaymentRate)
}
