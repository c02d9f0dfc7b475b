package verify

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"execcheck/pkg/core/metrics"
	"execcheck/pkg/models"
)

// stubSource serves canned values keyed by period and canonical name.
type stubSource struct {
	values map[string]float64
}

func (s *stubSource) GetValue(_ context.Context, ticker string, fy, fq int, metric *metrics.MetricMapping) (*float64, error) {
	v, ok := s.values[fmt.Sprintf("%s-FY%dQ%d-%s", ticker, fy, fq, metric.CanonicalName)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func newTestEngine(t *testing.T, values map[string]float64) *Engine {
	t.Helper()
	reg, err := metrics.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewEngine(&stubSource{values: values}, reg, zerolog.Nop())
}

func makeClaim(overrides func(*models.ExtractedClaim)) models.ExtractedClaim {
	claim := models.ExtractedClaim{
		ID:                   "test-claim-1",
		SpeakerName:          "Tim Cook",
		SpeakerRole:          "CEO",
		Session:              "prepared_remarks",
		ExactQuote:           "Revenue was $94.9 billion",
		ClaimType:            models.ClaimAbsoluteValue,
		MetricName:           "revenue",
		ClaimedValue:         94900,
		ClaimedUnit:          "USD_millions",
		GaapType:             models.GaapTypeGaap,
		ExtractionConfidence: 0.95,
	}
	if overrides != nil {
		overrides(&claim)
	}
	return claim
}

func TestVerifyAbsoluteExactMatch(t *testing.T) {
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 94_900_000_000,
	})

	result, assessment := engine.VerifyClaim(context.Background(), makeClaim(nil), "AAPL", 2024, 4)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified", result.Status)
	}
	if assessment != nil {
		t.Errorf("unexpected assessment: %+v", assessment)
	}
	if result.DeviationPercentage == nil || *result.DeviationPercentage != 0 {
		t.Errorf("deviation = %v, want 0", result.DeviationPercentage)
	}
	if result.ActualValue == nil || *result.ActualValue != 94900 {
		t.Errorf("actual = %v, want 94900 (normalized to millions)", result.ActualValue)
	}
}

func TestVerifyAbsoluteWithinTolerance(t *testing.T) {
	// ~0.3% deviation, inside the 0.5% band.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 95_200_000_000,
	})

	result, _ := engine.VerifyClaim(context.Background(), makeClaim(nil), "AAPL", 2024, 4)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified", result.Status)
	}
}

func TestVerifyAbsoluteInaccurate(t *testing.T) {
	// ~10% deviation: inaccurate, high severity.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 86_000_000_000,
	})

	result, assessment := engine.VerifyClaim(context.Background(), makeClaim(nil), "AAPL", 2024, 4)
	if result.Status != models.StatusInaccurate {
		t.Fatalf("status = %s, want inaccurate", result.Status)
	}
	if assessment == nil {
		t.Fatal("expected an assessment")
	}
	if assessment.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", assessment.Severity)
	}
	if !assessment.HasTactic(models.TacticFactuallyIncorrect) {
		t.Errorf("tactics = %v, want factually_incorrect", assessment.Tactics)
	}
}

func TestVerifyAbsoluteFlatteringRounding(t *testing.T) {
	// Actual 94.0B, claimed 95.0B: ~1.06% deviation, rounded up. Within
	// the 2% band and overstated, so misleading.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 94_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) { c.ClaimedValue = 95_000 })
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusMisleading {
		t.Fatalf("status = %s, want misleading", result.Status)
	}
	if assessment == nil || !assessment.HasTactic(models.TacticRoundingInflation) {
		t.Errorf("assessment = %+v, want rounding_inflation", assessment)
	}
	if assessment.Severity != models.SeverityLow {
		t.Errorf("severity = %s, want low", assessment.Severity)
	}
}

func TestVerifyAbsoluteHonestRoundingDown(t *testing.T) {
	// Understating a positive figure is honest rounding, not misleading.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 95_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) { c.ClaimedValue = 94_000 })
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified", result.Status)
	}
	if assessment != nil {
		t.Errorf("unexpected assessment: %+v", assessment)
	}
}

func TestVerifyAbsoluteGaapAmbiguityOnNonGaapMetric(t *testing.T) {
	// free_cash_flow is non-GAAP; an ambiguous claim gets flagged even
	// when the number itself checks out.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-free_cash_flow": 26_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.MetricName = "free cash flow"
		c.ClaimedValue = 26_000
		c.GaapType = models.GaapTypeAmbiguous
	})
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified", result.Status)
	}
	if assessment == nil {
		t.Fatal("expected a GAAP-labeling assessment")
	}
	if !assessment.HasTactic(models.TacticGaapManipulation) {
		t.Errorf("tactics = %v, want gaap_non_gaap_manipulation", assessment.Tactics)
	}
	if assessment.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium", assessment.Severity)
	}
}

func TestVerifyAbsoluteGaapTacticMergesIntoExisting(t *testing.T) {
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-free_cash_flow": 20_000_000_000,
	})

	// ~30% off and ambiguous: both tactics on one assessment.
	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.MetricName = "FCF"
		c.ClaimedValue = 26_000
		c.GaapType = models.GaapTypeAmbiguous
	})
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusInaccurate {
		t.Fatalf("status = %s, want inaccurate", result.Status)
	}
	if assessment == nil {
		t.Fatal("expected an assessment")
	}
	if !assessment.HasTactic(models.TacticFactuallyIncorrect) || !assessment.HasTactic(models.TacticGaapManipulation) {
		t.Errorf("tactics = %v, want both factually_incorrect and gaap_non_gaap_manipulation", assessment.Tactics)
	}
}

func TestVerifyUnresolvableMetric(t *testing.T) {
	engine := newTestEngine(t, nil)

	claim := makeClaim(func(c *models.ExtractedClaim) { c.MetricName = "quantum synergy ratio" })
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusUnverifiable {
		t.Errorf("status = %s, want unverifiable", result.Status)
	}
	if assessment != nil {
		t.Errorf("unexpected assessment: %+v", assessment)
	}
	if result.Notes == "" {
		t.Error("unverifiable result should carry an explanatory note")
	}
}

func TestVerifyNoFilingData(t *testing.T) {
	engine := newTestEngine(t, nil)

	result, _ := engine.VerifyClaim(context.Background(), makeClaim(nil), "AAPL", 2024, 4)
	if result.Status != models.StatusUnverifiable {
		t.Errorf("status = %s, want unverifiable", result.Status)
	}
	if result.EdgarConcept == "" {
		t.Error("note should name the concept that was searched")
	}
}

func TestVerifyMargin(t *testing.T) {
	tests := []struct {
		name       string
		actual     float64
		claimed    float64
		wantStatus models.VerificationStatus
	}{
		{"exact", 46.8, 46.8, models.StatusVerified},
		{"within 0.3pp", 46.6, 46.8, models.StatusVerified},
		{"misleading band", 46.0, 46.8, models.StatusMisleading},
		{"five points off", 42.0, 47.0, models.StatusInaccurate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, map[string]float64{
				"AAPL-FY2024Q4-gross_margin": tt.actual,
			})
			claim := makeClaim(func(c *models.ExtractedClaim) {
				c.MetricName = "gross margin"
				c.ClaimType = models.ClaimMarginOrRatio
				c.ClaimedValue = tt.claimed
				c.ClaimedUnit = "percentage"
			})
			result, _ := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
		})
	}
}

func TestVerifyGrowthRateVerified(t *testing.T) {
	// Current $100B vs prior $90B: 11.11% actual, 11.1% claimed.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 100_000_000_000,
		"AAPL-FY2023Q4-revenue": 90_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.ClaimType = models.ClaimGrowthRate
		c.ClaimedValue = 11.1
		c.ClaimedUnit = "percentage"
		c.ComparisonBasis = "year-over-year"
	})
	result, _ := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified", result.Status)
	}
	if result.ActualValue == nil || math.Abs(*result.ActualValue-11.11) > 0.01 {
		t.Errorf("actual growth = %v, want ~11.11", result.ActualValue)
	}
}

func TestVerifyGrowthRateInaccurate(t *testing.T) {
	// Actual ~5.26%, claimed 10%: 4.7pp off, high severity.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 100_000_000_000,
		"AAPL-FY2023Q4-revenue": 95_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.ClaimType = models.ClaimGrowthRate
		c.ClaimedValue = 10.0
		c.ClaimedUnit = "percentage"
		c.ComparisonBasis = "year-over-year"
	})
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusInaccurate {
		t.Fatalf("status = %s, want inaccurate", result.Status)
	}
	if assessment == nil || assessment.Severity != models.SeverityHigh {
		t.Errorf("assessment = %+v, want high severity", assessment)
	}
}

func TestVerifyGrowthRateSequentialBasis(t *testing.T) {
	// "sequential" compares against the immediately preceding quarter,
	// and fiscal Q1 wraps to the prior year's Q4.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2025Q1-revenue": 124_000_000_000,
		"AAPL-FY2024Q4-revenue": 94_900_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.ClaimType = models.ClaimGrowthRate
		c.ClaimedValue = 30.7
		c.ClaimedUnit = "percentage"
		c.ComparisonBasis = "sequential"
	})
	result, _ := engine.VerifyClaim(context.Background(), claim, "AAPL", 2025, 1)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified (actual %v)", result.Status, result.ActualValue)
	}
}

func TestVerifyGrowthRateDefaultsToYoY(t *testing.T) {
	// No recognizable basis keyword: defaults to year-over-year.
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 100_000_000_000,
		"AAPL-FY2023Q4-revenue": 90_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.ClaimType = models.ClaimGrowthRate
		c.ClaimedValue = 11.1
		c.ClaimedUnit = "percentage"
		c.ComparisonBasis = "versus last time"
	})
	result, _ := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusVerified {
		t.Errorf("status = %s, want verified via YoY default", result.Status)
	}
}

func TestVerifyGrowthRateMissingPrior(t *testing.T) {
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue": 100_000_000_000,
	})

	claim := makeClaim(func(c *models.ExtractedClaim) {
		c.ClaimType = models.ClaimGrowthRate
		c.ClaimedValue = 11.1
		c.ComparisonBasis = "year-over-year"
	})
	result, assessment := engine.VerifyClaim(context.Background(), claim, "AAPL", 2024, 4)
	if result.Status != models.StatusUnverifiable {
		t.Errorf("status = %s, want unverifiable", result.Status)
	}
	if assessment != nil {
		t.Errorf("unexpected assessment: %+v", assessment)
	}
}

func TestVerifyAll(t *testing.T) {
	engine := newTestEngine(t, map[string]float64{
		"AAPL-FY2024Q4-revenue":      94_900_000_000,
		"AAPL-FY2024Q4-gross_margin": 46.8,
	})

	claims := []models.ExtractedClaim{
		makeClaim(func(c *models.ExtractedClaim) { c.ID = "claim-1" }),
		makeClaim(func(c *models.ExtractedClaim) {
			c.ID = "claim-2"
			c.MetricName = "gross margin"
			c.ClaimType = models.ClaimMarginOrRatio
			c.ClaimedValue = 42.0
		}),
		makeClaim(func(c *models.ExtractedClaim) {
			c.ID = "claim-3"
			c.MetricName = "adjusted community ebitda"
		}),
	}

	results, assessments, tally := engine.VerifyAll(context.Background(), claims, "AAPL", 2024, 4)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if tally.Verified != 1 || tally.Inaccurate != 1 || tally.Unverifiable != 1 || tally.Misleading != 0 {
		t.Errorf("tally = %+v", tally)
	}
	if len(assessments) != 1 {
		t.Errorf("got %d assessments, want 1", len(assessments))
	}
	if assessments[0].ClaimID != "claim-2" {
		t.Errorf("assessment claim = %s, want claim-2", assessments[0].ClaimID)
	}
}
