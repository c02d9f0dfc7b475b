package models

import (
	"github.com/google/uuid"
)

// ClaimType categorizes how a claimed figure relates to the underlying metric.
type ClaimType string

const (
	ClaimAbsoluteValue ClaimType = "absolute_value"
	ClaimGrowthRate    ClaimType = "growth_rate"
	ClaimMarginOrRatio ClaimType = "margin_or_ratio"
	ClaimComparative   ClaimType = "comparative"
)

// GaapType records whether a speaker disambiguated GAAP vs non-GAAP.
type GaapType string

const (
	GaapTypeGaap      GaapType = "gaap"
	GaapTypeNonGaap   GaapType = "non_gaap"
	GaapTypeAmbiguous GaapType = "ambiguous"
)

// ExtractedClaim is one quantitative statement pulled out of an earnings
// call transcript. Extraction itself happens upstream; this package only
// defines the shape the verification engine consumes.
type ExtractedClaim struct {
	ID                   string    `json:"id"`
	SpeakerName          string    `json:"speaker_name"`
	SpeakerRole          string    `json:"speaker_role"`
	Session              string    `json:"session"` // "prepared_remarks" or "qa"
	ExactQuote           string    `json:"exact_quote"`
	ClaimType            ClaimType `json:"claim_type"`
	MetricName           string    `json:"metric_name"`
	ClaimedValue         float64   `json:"claimed_value"`
	ClaimedUnit          string    `json:"claimed_unit"` // e.g. "USD_millions", "percentage"
	ComparisonBasis      string    `json:"comparison_basis,omitempty"`
	GaapType             GaapType  `json:"gaap_type"`
	ExtractionConfidence float64   `json:"extraction_confidence"`
}

// EnsureID assigns a fresh UUID when the claim arrived without one
// (hand-written claim files usually omit it).
func (c *ExtractedClaim) EnsureID() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
}

// VerificationStatus is the verdict on a single claim.
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "verified"
	StatusInaccurate   VerificationStatus = "inaccurate"
	StatusMisleading   VerificationStatus = "misleading"
	StatusUnverifiable VerificationStatus = "unverifiable"
)

// VerificationResult is the outcome of checking one claim against filings.
// Created once per claim per verification pass; never mutated afterwards.
type VerificationResult struct {
	ClaimID             string             `json:"claim_id"`
	Status              VerificationStatus `json:"status"`
	ActualValue         *float64           `json:"actual_value"`
	DeviationAbsolute   *float64           `json:"deviation_absolute"`
	DeviationPercentage *float64           `json:"deviation_percentage"`
	EdgarConcept        string             `json:"edgar_concept,omitempty"`
	DataSource          string             `json:"data_source,omitempty"`
	Notes               string             `json:"notes,omitempty"`
}

// Severity grades a misleading assessment.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// MisleadingTactic tags a recognizable misrepresentation pattern.
type MisleadingTactic string

const (
	TacticFactuallyIncorrect MisleadingTactic = "factually_incorrect"
	TacticCherryPicking      MisleadingTactic = "cherry_picking"
	TacticGaapManipulation   MisleadingTactic = "gaap_non_gaap_manipulation"
	TacticBasePeriod         MisleadingTactic = "base_period_manipulation"
	TacticPctVsAbsolute      MisleadingTactic = "percentage_vs_absolute"
	TacticForwardHedging     MisleadingTactic = "forward_looking_hedging"
	TacticNewMetric          MisleadingTactic = "new_metric_introduction"
	TacticRoundingInflation  MisleadingTactic = "rounding_inflation"
)

// MisleadingAssessment explains why a claim lands in the misleading or
// inaccurate bands. At most one per claim.
type MisleadingAssessment struct {
	ClaimID     string             `json:"claim_id"`
	Tactics     []MisleadingTactic `json:"tactics"`
	Severity    Severity           `json:"severity"`
	Explanation string             `json:"explanation"`
}

// HasTactic reports whether the assessment already carries the given tag.
func (a *MisleadingAssessment) HasTactic(t MisleadingTactic) bool {
	for _, existing := range a.Tactics {
		if existing == t {
			return true
		}
	}
	return false
}
