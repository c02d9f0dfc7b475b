// Package verify classifies extracted claims against reconciled filing
// values using claim-type-specific tolerance bands.
package verify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"execcheck/pkg/core/metrics"
	"execcheck/pkg/models"
)

// Tolerance bands. Absolute claims are judged on relative deviation;
// margins and growth rates on percentage-point deviation.
const (
	AbsoluteTolerancePct = 0.5
	RoundingThresholdPct = 2.0
	MarginTolerancePP    = 0.3
	GrowthTolerancePP    = 0.3
	MisleadingBandPP     = 1.0
)

// millionsThreshold separates raw-dollar filing values from figures
// already quoted in millions.
const millionsThreshold = 1_000_000

// ValueSource supplies reconciled actuals; satisfied by *edgar.Client.
type ValueSource interface {
	GetValue(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int, metric *metrics.MetricMapping) (*float64, error)
}

// Engine verifies claims for one issuer-quarter at a time.
type Engine struct {
	source ValueSource
	reg    *metrics.Registry
	log    zerolog.Logger
}

// NewEngine builds a verification engine over a value source and registry.
func NewEngine(source ValueSource, reg *metrics.Registry, log zerolog.Logger) *Engine {
	return &Engine{source: source, reg: reg, log: log}
}

// Tally counts outcomes across one verification pass.
type Tally struct {
	Verified     int `json:"verified"`
	Inaccurate   int `json:"inaccurate"`
	Misleading   int `json:"misleading"`
	Unverifiable int `json:"unverifiable"`
}

// VerifyClaim checks a single claim. It never fails on data problems:
// unresolvable metrics and absent filing data degrade to the
// unverifiable status with an explanatory note.
func (e *Engine) VerifyClaim(ctx context.Context, claim models.ExtractedClaim, ticker string, fiscalYear, fiscalQuarter int) (models.VerificationResult, *models.MisleadingAssessment) {
	metric, ok := e.reg.Resolve(claim.MetricName)
	if !ok {
		return models.VerificationResult{
			ClaimID: claim.ID,
			Status:  models.StatusUnverifiable,
			Notes:   fmt.Sprintf("Could not resolve metric: %s", claim.MetricName),
		}, nil
	}

	actual, err := e.source.GetValue(ctx, ticker, fiscalYear, fiscalQuarter, metric)
	if err != nil {
		return models.VerificationResult{
			ClaimID:      claim.ID,
			Status:       models.StatusUnverifiable,
			EdgarConcept: metric.PrimaryConcept(),
			Notes:        fmt.Sprintf("Lookup failed for %s: %v", metric.CanonicalName, err),
		}, nil
	}
	if actual == nil {
		return models.VerificationResult{
			ClaimID:      claim.ID,
			Status:       models.StatusUnverifiable,
			EdgarConcept: metric.PrimaryConcept(),
			Notes:        fmt.Sprintf("No EDGAR data found for %s", metric.CanonicalName),
		}, nil
	}

	switch claim.ClaimType {
	case models.ClaimGrowthRate:
		return e.verifyGrowthRate(ctx, claim, metric, *actual, ticker, fiscalYear, fiscalQuarter)
	case models.ClaimMarginOrRatio:
		return e.verifyMargin(claim, metric, *actual)
	default:
		return e.verifyAbsolute(claim, metric, *actual)
	}
}

// verifyAbsolute handles absolute-value claims (and comparative claims,
// which carry a point value of the same shape).
func (e *Engine) verifyAbsolute(claim models.ExtractedClaim, metric *metrics.MetricMapping, actualValue float64) (models.VerificationResult, *models.MisleadingAssessment) {
	claimed := claim.ClaimedValue

	// Filings disclose raw dollars; speakers quote millions. Scale the
	// actual down when the claim's declared unit asks for it.
	actual := actualValue
	if claim.ClaimedUnit == "USD_millions" && math.Abs(actualValue) > millionsThreshold {
		actual = actualValue / millionsThreshold
	}

	var deviationPct float64
	switch {
	case actual == 0 && claimed == 0:
		deviationPct = 0
	case actual == 0:
		deviationPct = 100
	default:
		deviationPct = math.Abs(claimed-actual) / math.Abs(actual) * 100
	}
	deviationAbs := claimed - actual

	var status models.VerificationStatus
	var assessment *models.MisleadingAssessment

	switch {
	case deviationPct <= AbsoluteTolerancePct:
		status = models.StatusVerified
	case deviationPct <= RoundingThresholdPct:
		// Within the rounding band the verdict depends on direction: a
		// rounding that flatters the narrative (overstating a gain,
		// understating a loss) is misleading; the opposite is honest
		// rounding.
		if (claimed > actual && claimed > 0) || (claimed < actual && claimed < 0) {
			status = models.StatusMisleading
			assessment = &models.MisleadingAssessment{
				ClaimID:  claim.ID,
				Tactics:  []models.MisleadingTactic{models.TacticRoundingInflation},
				Severity: models.SeverityLow,
				Explanation: fmt.Sprintf(
					"Claimed %v vs actual %.2f (%.1f%% deviation). Rounded in the direction that flatters the narrative.",
					claimed, actual, deviationPct),
			}
		} else {
			status = models.StatusVerified
		}
	default:
		status = models.StatusInaccurate
		severity := models.SeverityMedium
		if deviationPct > 5 {
			severity = models.SeverityHigh
		}
		assessment = &models.MisleadingAssessment{
			ClaimID:  claim.ID,
			Tactics:  []models.MisleadingTactic{models.TacticFactuallyIncorrect},
			Severity: severity,
			Explanation: fmt.Sprintf(
				"Claimed %v vs actual %.2f (%.1f%% deviation). Beyond acceptable tolerance.",
				claimed, actual, deviationPct),
		}
	}

	assessment = e.checkGaapLabeling(claim, metric, assessment)

	return models.VerificationResult{
		ClaimID:             claim.ID,
		Status:              status,
		ActualValue:         &actual,
		DeviationAbsolute:   &deviationAbs,
		DeviationPercentage: &deviationPct,
		EdgarConcept:        metric.PrimaryConcept(),
		DataSource:          "SEC EDGAR XBRL",
	}, assessment
}

// checkGaapLabeling flags claims that leave GAAP vs non-GAAP ambiguous
// while the resolved metric is itself non-GAAP, merging into an existing
// assessment when one is present.
func (e *Engine) checkGaapLabeling(claim models.ExtractedClaim, metric *metrics.MetricMapping, assessment *models.MisleadingAssessment) *models.MisleadingAssessment {
	if claim.GaapType != models.GaapTypeAmbiguous || !metric.IsNonGaap {
		return assessment
	}
	if assessment == nil {
		return &models.MisleadingAssessment{
			ClaimID:     claim.ID,
			Tactics:     []models.MisleadingTactic{models.TacticGaapManipulation},
			Severity:    models.SeverityMedium,
			Explanation: "Metric presented without GAAP/non-GAAP clarification, but the value appears to be non-GAAP.",
		}
	}
	if !assessment.HasTactic(models.TacticGaapManipulation) {
		assessment.Tactics = append(assessment.Tactics, models.TacticGaapManipulation)
	}
	return assessment
}

func (e *Engine) verifyMargin(claim models.ExtractedClaim, metric *metrics.MetricMapping, actual float64) (models.VerificationResult, *models.MisleadingAssessment) {
	claimed := claim.ClaimedValue
	deviationPP := math.Abs(claimed - actual)
	deviationAbs := claimed - actual

	var status models.VerificationStatus
	var assessment *models.MisleadingAssessment

	switch {
	case deviationPP <= MarginTolerancePP:
		status = models.StatusVerified
	case deviationPP <= MisleadingBandPP:
		status = models.StatusMisleading
		assessment = &models.MisleadingAssessment{
			ClaimID:  claim.ID,
			Tactics:  []models.MisleadingTactic{models.TacticRoundingInflation},
			Severity: models.SeverityLow,
			Explanation: fmt.Sprintf("Claimed %v%% vs actual %.1f%% (%.1fpp deviation).",
				claimed, actual, deviationPP),
		}
	default:
		status = models.StatusInaccurate
		severity := models.SeverityMedium
		if deviationPP > 5 {
			severity = models.SeverityHigh
		}
		assessment = &models.MisleadingAssessment{
			ClaimID:  claim.ID,
			Tactics:  []models.MisleadingTactic{models.TacticFactuallyIncorrect},
			Severity: severity,
			Explanation: fmt.Sprintf("Claimed %v%% vs actual %.1f%% (%.1fpp deviation).",
				claimed, actual, deviationPP),
		}
	}

	return models.VerificationResult{
		ClaimID:             claim.ID,
		Status:              status,
		ActualValue:         &actual,
		DeviationAbsolute:   &deviationAbs,
		DeviationPercentage: &deviationPP,
		EdgarConcept:        metric.PrimaryConcept(),
		DataSource:          "SEC EDGAR XBRL (computed ratio)",
	}, assessment
}

func (e *Engine) verifyGrowthRate(ctx context.Context, claim models.ExtractedClaim, metric *metrics.MetricMapping, currentValue float64, ticker string, fiscalYear, fiscalQuarter int) (models.VerificationResult, *models.MisleadingAssessment) {
	priorFY, priorFQ := priorPeriod(claim.ComparisonBasis, fiscalYear, fiscalQuarter)

	priorValue, err := e.source.GetValue(ctx, ticker, priorFY, priorFQ, metric)
	if err != nil || priorValue == nil || *priorValue == 0 {
		return models.VerificationResult{
			ClaimID:      claim.ID,
			Status:       models.StatusUnverifiable,
			ActualValue:  &currentValue,
			EdgarConcept: metric.PrimaryConcept(),
			Notes:        fmt.Sprintf("Could not fetch prior period (%d Q%d) for growth comparison", priorFY, priorFQ),
		}, nil
	}

	currentNorm := normalizeScale(currentValue)
	priorNorm := normalizeScale(*priorValue)

	actualGrowth := (currentNorm - priorNorm) / math.Abs(priorNorm) * 100
	deviationPP := math.Abs(claim.ClaimedValue - actualGrowth)
	deviationAbs := claim.ClaimedValue - actualGrowth

	var status models.VerificationStatus
	var assessment *models.MisleadingAssessment

	switch {
	case deviationPP <= GrowthTolerancePP:
		status = models.StatusVerified
	case deviationPP <= MisleadingBandPP:
		status = models.StatusMisleading
		assessment = &models.MisleadingAssessment{
			ClaimID:  claim.ID,
			Tactics:  []models.MisleadingTactic{models.TacticRoundingInflation},
			Severity: models.SeverityLow,
			Explanation: fmt.Sprintf("Claimed %v%% growth vs actual %.1f%% (%.1fpp deviation).",
				claim.ClaimedValue, actualGrowth, deviationPP),
		}
	default:
		status = models.StatusInaccurate
		severity := models.SeverityMedium
		if deviationPP > 3 {
			severity = models.SeverityHigh
		}
		assessment = &models.MisleadingAssessment{
			ClaimID:  claim.ID,
			Tactics:  []models.MisleadingTactic{models.TacticFactuallyIncorrect},
			Severity: severity,
			Explanation: fmt.Sprintf("Claimed %v%% growth vs actual %.1f%% (%.1fpp deviation).",
				claim.ClaimedValue, actualGrowth, deviationPP),
		}
	}

	return models.VerificationResult{
		ClaimID:             claim.ID,
		Status:              status,
		ActualValue:         &actualGrowth,
		DeviationAbsolute:   &deviationAbs,
		DeviationPercentage: &deviationPP,
		EdgarConcept:        metric.PrimaryConcept(),
		DataSource:          "SEC EDGAR XBRL (computed growth rate)",
		Notes:               fmt.Sprintf("Current: %.2f, Prior: %.2f", currentNorm, priorNorm),
	}, assessment
}

// priorPeriod resolves the comparison period for a growth claim. An
// unclassifiable basis defaults to year-over-year.
func priorPeriod(comparisonBasis string, fiscalYear, fiscalQuarter int) (int, int) {
	basis := strings.ToLower(comparisonBasis)
	switch {
	case strings.Contains(basis, "year"):
		return fiscalYear - 1, fiscalQuarter
	case strings.Contains(basis, "sequential") || strings.Contains(basis, "quarter"):
		if fiscalQuarter == 1 {
			return fiscalYear - 1, 4
		}
		return fiscalYear, fiscalQuarter - 1
	default:
		return fiscalYear - 1, fiscalQuarter
	}
}

// normalizeScale brings raw-dollar filing values and in-millions claims
// onto a common scale before computing growth.
func normalizeScale(v float64) float64 {
	if math.Abs(v) > millionsThreshold {
		return v / millionsThreshold
	}
	return v
}

// VerifyAll verifies each claim independently; there is no cross-claim
// state. It returns every result, the non-nil assessments, and a tally.
func (e *Engine) VerifyAll(ctx context.Context, claims []models.ExtractedClaim, ticker string, fiscalYear, fiscalQuarter int) ([]models.VerificationResult, []models.MisleadingAssessment, Tally) {
	results := make([]models.VerificationResult, 0, len(claims))
	var assessments []models.MisleadingAssessment
	var tally Tally

	for _, claim := range claims {
		result, assessment := e.VerifyClaim(ctx, claim, ticker, fiscalYear, fiscalQuarter)
		results = append(results, result)
		if assessment != nil {
			assessments = append(assessments, *assessment)
		}
		switch result.Status {
		case models.StatusVerified:
			tally.Verified++
		case models.StatusInaccurate:
			tally.Inaccurate++
		case models.StatusMisleading:
			tally.Misleading++
		case models.StatusUnverifiable:
			tally.Unverifiable++
		}
	}

	e.log.Info().
		Str("ticker", ticker).
		Int("fiscal_year", fiscalYear).
		Int("fiscal_quarter", fiscalQuarter).
		Int("claims", len(claims)).
		Int("verified", tally.Verified).
		Int("inaccurate", tally.Inaccurate).
		Int("misleading", tally.Misleading).
		Int("unverifiable", tally.Unverifiable).
		Msg("verification pass complete")

	return results, assessments, tally
}
