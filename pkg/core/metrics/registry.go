// Package metrics maps natural-language metric names and XBRL taxonomy
// concepts onto a canonical metric catalog.
package metrics

import (
	"fmt"
	"strings"
)

// ErrUnknownMetric is returned when a canonical name is not in the catalog.
var ErrUnknownMetric = fmt.Errorf("unknown metric")

// Unit classifies how a metric's value is denominated.
type Unit string

const (
	UnitCurrency         Unit = "USD"
	UnitCurrencyPerShare Unit = "USD/share"
	UnitPercentage       Unit = "percentage"
	UnitShares           Unit = "shares"
)

// Statement classifies which financial statement a metric belongs to.
type Statement string

const (
	StatementIncome       Statement = "income"
	StatementBalanceSheet Statement = "balance_sheet"
	StatementCashFlow     Statement = "cash_flow"
	StatementComputed     Statement = "computed"
)

// FormulaOp selects how a computed metric combines its operands.
type FormulaOp string

const (
	// OpRatioPct is numerator/denominator*100, rounded to 2 decimals.
	OpRatioPct FormulaOp = "ratio_pct"
	// OpDifferenceAbs is a - |b|.
	OpDifferenceAbs FormulaOp = "difference_abs"
)

// Formula defines a computed metric in terms of two primitive metrics.
// Computed metrics may only reference primitives, never other computed
// metrics; NewRegistry enforces this at construction.
type Formula struct {
	Op FormulaOp
	A  string // numerator / minuend, canonical name
	B  string // denominator / subtrahend, canonical name
}

// MetricMapping is the canonical identity of one logical financial metric.
type MetricMapping struct {
	CanonicalName string
	Aliases       []string
	// Concepts are XBRL taxonomy identifiers in priority order; the first
	// concept that yields a filing match wins.
	Concepts     []string
	Unit         Unit
	Statement    Statement
	IsNonGaap    bool
	IsPointInTime bool
	Formula      *Formula
}

// IsComputed reports whether the metric is derived from other metrics
// rather than disclosed directly.
func (m *MetricMapping) IsComputed() bool {
	return m.Statement == StatementComputed
}

// PrimaryConcept returns the highest-priority taxonomy concept, or "" for
// computed metrics.
func (m *MetricMapping) PrimaryConcept() string {
	if len(m.Concepts) == 0 {
		return ""
	}
	return m.Concepts[0]
}

// Registry is an immutable alias and canonical-name index over the metric
// catalog, built once at startup and shared by reference.
type Registry struct {
	catalog     []MetricMapping
	byCanonical map[string]*MetricMapping
	byAlias     map[string]*MetricMapping
}

// NewRegistry builds the registry over the built-in catalog.
func NewRegistry() (*Registry, error) {
	return newRegistry(catalog)
}

func newRegistry(mappings []MetricMapping) (*Registry, error) {
	r := &Registry{
		catalog:     mappings,
		byCanonical: make(map[string]*MetricMapping, len(mappings)),
		byAlias:     make(map[string]*MetricMapping),
	}

	for i := range r.catalog {
		m := &r.catalog[i]
		if _, dup := r.byCanonical[m.CanonicalName]; dup {
			return nil, fmt.Errorf("duplicate canonical name %q", m.CanonicalName)
		}
		r.byCanonical[m.CanonicalName] = m

		for _, alias := range m.Aliases {
			key := Normalize(alias)
			if prev, dup := r.byAlias[key]; dup && prev != m {
				return nil, fmt.Errorf("alias %q claimed by both %s and %s", key, prev.CanonicalName, m.CanonicalName)
			}
			r.byAlias[key] = m
		}
	}

	// A metric is either primitive (concepts, real statement) or computed
	// (formula over primitives). Checking operands here keeps the
	// computed-metric evaluation cycle-free by construction.
	for i := range r.catalog {
		m := &r.catalog[i]
		if m.IsComputed() {
			if len(m.Concepts) != 0 {
				return nil, fmt.Errorf("computed metric %s must not declare taxonomy concepts", m.CanonicalName)
			}
			if m.Formula == nil {
				return nil, fmt.Errorf("computed metric %s has no formula", m.CanonicalName)
			}
			for _, operand := range []string{m.Formula.A, m.Formula.B} {
				dep, ok := r.byCanonical[operand]
				if !ok {
					return nil, fmt.Errorf("computed metric %s references unknown metric %s", m.CanonicalName, operand)
				}
				if dep.IsComputed() {
					return nil, fmt.Errorf("computed metric %s references computed metric %s", m.CanonicalName, operand)
				}
			}
		} else {
			if len(m.Concepts) == 0 {
				return nil, fmt.Errorf("primitive metric %s has no taxonomy concepts", m.CanonicalName)
			}
			if m.Formula != nil {
				return nil, fmt.Errorf("primitive metric %s must not carry a formula", m.CanonicalName)
			}
		}
	}

	return r, nil
}

// Normalize lowercases, trims, and collapses internal whitespace runs.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Resolve maps a free-text metric name to its canonical mapping.
//
// Lookup is exact-match over normalized aliases only. Segment and
// product-line names ("iPhone revenue", "cloud revenue") deliberately do
// not resolve: they are not reconcilable against aggregate filings, and
// substring matching would silently conflate them with company totals.
func (r *Registry) Resolve(text string) (*MetricMapping, bool) {
	m, ok := r.byAlias[Normalize(text)]
	return m, ok
}

// Find returns the mapping for a canonical name.
func (r *Registry) Find(canonicalName string) (*MetricMapping, error) {
	m, ok := r.byCanonical[canonicalName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, canonicalName)
	}
	return m, nil
}

// AllNames lists canonical names in catalog order.
func (r *Registry) AllNames() []string {
	names := make([]string, 0, len(r.catalog))
	for i := range r.catalog {
		names = append(names, r.catalog[i].CanonicalName)
	}
	return names
}

// All returns the catalog in declaration order.
func (r *Registry) All() []*MetricMapping {
	out := make([]*MetricMapping, 0, len(r.catalog))
	for i := range r.catalog {
		out = append(out, &r.catalog[i])
	}
	return out
}
