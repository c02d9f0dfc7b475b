// Package store persists verification runs to PostgreSQL. The rest of the
// tool runs without a database; the CLI only opens a Store when a DSN is
// configured and --save is requested.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"execcheck/pkg/models"
)

// Store wraps a pgx connection pool for verification results.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// One statement per entry; pgx's extended protocol rejects multi-statement
// strings.
var schemaSQL = []string{`
CREATE TABLE IF NOT EXISTS quarters (
	id          SERIAL PRIMARY KEY,
	ticker      TEXT NOT NULL,
	fiscal_year INT  NOT NULL,
	fiscal_qtr  INT  NOT NULL,
	verified_at TIMESTAMPTZ NOT NULL,
	UNIQUE (ticker, fiscal_year, fiscal_qtr)
);`, `
CREATE TABLE IF NOT EXISTS claims (
	id             TEXT PRIMARY KEY,
	quarter_id     INT NOT NULL REFERENCES quarters(id),
	speaker_name   TEXT NOT NULL,
	speaker_role   TEXT NOT NULL,
	session        TEXT NOT NULL,
	exact_quote    TEXT NOT NULL,
	claim_type     TEXT NOT NULL,
	metric_name    TEXT NOT NULL,
	claimed_value  DOUBLE PRECISION NOT NULL,
	claimed_unit   TEXT NOT NULL,
	comparison     TEXT,
	gaap_type      TEXT,
	confidence     DOUBLE PRECISION
);`, `
CREATE TABLE IF NOT EXISTS verifications (
	claim_id        TEXT PRIMARY KEY REFERENCES claims(id),
	status          TEXT NOT NULL,
	actual_value    DOUBLE PRECISION,
	deviation_abs   DOUBLE PRECISION,
	deviation_pct   DOUBLE PRECISION,
	edgar_concept   TEXT,
	data_source     TEXT,
	notes           TEXT
);`, `
CREATE TABLE IF NOT EXISTS misleading_assessments (
	claim_id    TEXT PRIMARY KEY REFERENCES claims(id),
	tactics     TEXT[] NOT NULL,
	severity    TEXT NOT NULL,
	explanation TEXT
);`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

const upsertQuarterSQL = `
INSERT INTO quarters (ticker, fiscal_year, fiscal_qtr, verified_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (ticker, fiscal_year, fiscal_qtr)
DO UPDATE SET verified_at = EXCLUDED.verified_at
RETURNING id;
`

const upsertClaimSQL = `
INSERT INTO claims (id, quarter_id, speaker_name, speaker_role, session,
	exact_quote, claim_type, metric_name, claimed_value, claimed_unit,
	comparison, gaap_type, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	quarter_id    = EXCLUDED.quarter_id,
	speaker_name  = EXCLUDED.speaker_name,
	speaker_role  = EXCLUDED.speaker_role,
	session       = EXCLUDED.session,
	exact_quote   = EXCLUDED.exact_quote,
	claim_type    = EXCLUDED.claim_type,
	metric_name   = EXCLUDED.metric_name,
	claimed_value = EXCLUDED.claimed_value,
	claimed_unit  = EXCLUDED.claimed_unit,
	comparison    = EXCLUDED.comparison,
	gaap_type     = EXCLUDED.gaap_type,
	confidence    = EXCLUDED.confidence;
`

const upsertVerificationSQL = `
INSERT INTO verifications (claim_id, status, actual_value, deviation_abs,
	deviation_pct, edgar_concept, data_source, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (claim_id) DO UPDATE SET
	status        = EXCLUDED.status,
	actual_value  = EXCLUDED.actual_value,
	deviation_abs = EXCLUDED.deviation_abs,
	deviation_pct = EXCLUDED.deviation_pct,
	edgar_concept = EXCLUDED.edgar_concept,
	data_source   = EXCLUDED.data_source,
	notes         = EXCLUDED.notes;
`

const upsertAssessmentSQL = `
INSERT INTO misleading_assessments (claim_id, tactics, severity, explanation)
VALUES ($1, $2, $3, $4)
ON CONFLICT (claim_id) DO UPDATE SET
	tactics     = EXCLUDED.tactics,
	severity    = EXCLUDED.severity,
	explanation = EXCLUDED.explanation;
`

// SaveRun persists one verification run. Results and assessments are
// matched to claims by claim ID; assessments without a matching claim are
// skipped.
func (s *Store) SaveRun(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int,
	claims []models.ExtractedClaim, results []models.VerificationResult,
	assessments []models.MisleadingAssessment) error {

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var quarterID int
	err = tx.QueryRow(ctx, upsertQuarterSQL, ticker, fiscalYear, fiscalQuarter, time.Now().UTC()).Scan(&quarterID)
	if err != nil {
		return fmt.Errorf("upsert quarter %s FY%dQ%d: %w", ticker, fiscalYear, fiscalQuarter, err)
	}

	claimIDs := make(map[string]bool, len(claims))
	for _, c := range claims {
		claimIDs[c.ID] = true
		_, err = tx.Exec(ctx, upsertClaimSQL,
			c.ID, quarterID, c.SpeakerName, c.SpeakerRole, c.Session,
			c.ExactQuote, string(c.ClaimType), c.MetricName, c.ClaimedValue,
			c.ClaimedUnit, c.ComparisonBasis, string(c.GaapType), c.ExtractionConfidence)
		if err != nil {
			return fmt.Errorf("upsert claim %s: %w", c.ID, err)
		}
	}

	for _, r := range results {
		if !claimIDs[r.ClaimID] {
			continue
		}
		_, err = tx.Exec(ctx, upsertVerificationSQL,
			r.ClaimID, string(r.Status), r.ActualValue, r.DeviationAbsolute,
			r.DeviationPercentage, r.EdgarConcept, r.DataSource, r.Notes)
		if err != nil {
			return fmt.Errorf("upsert verification for claim %s: %w", r.ClaimID, err)
		}
	}

	for _, a := range assessments {
		if !claimIDs[a.ClaimID] {
			continue
		}
		tactics := make([]string, len(a.Tactics))
		for i, t := range a.Tactics {
			tactics[i] = string(t)
		}
		_, err = tx.Exec(ctx, upsertAssessmentSQL,
			a.ClaimID, tactics, string(a.Severity), a.Explanation)
		if err != nil {
			return fmt.Errorf("upsert assessment for claim %s: %w", a.ClaimID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit verification run: %w", err)
	}
	return nil
}

const listResultsSQL = `
SELECT v.claim_id, v.status, v.actual_value, v.deviation_abs,
	v.deviation_pct, v.edgar_concept, v.data_source, v.notes
FROM verifications v
JOIN claims c ON c.id = v.claim_id
JOIN quarters q ON q.id = c.quarter_id
WHERE q.ticker = $1 AND q.fiscal_year = $2 AND q.fiscal_qtr = $3
ORDER BY v.claim_id;
`

// ListResults returns the stored verification results for one quarter.
func (s *Store) ListResults(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int) ([]models.VerificationResult, error) {
	rows, err := s.pool.Query(ctx, listResultsSQL, ticker, fiscalYear, fiscalQuarter)
	if err != nil {
		return nil, fmt.Errorf("list results for %s FY%dQ%d: %w", ticker, fiscalYear, fiscalQuarter, err)
	}
	defer rows.Close()

	var results []models.VerificationResult
	for rows.Next() {
		var r models.VerificationResult
		var status string
		if err := rows.Scan(&r.ClaimID, &status, &r.ActualValue, &r.DeviationAbsolute,
			&r.DeviationPercentage, &r.EdgarConcept, &r.DataSource, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan verification row: %w", err)
		}
		r.Status = models.VerificationStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}
