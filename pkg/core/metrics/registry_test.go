package metrics

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestResolveAliases(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		input string
		want  string
	}{
		{"revenue", "revenue"},
		{"total revenue", "revenue"},
		{"net sales", "revenue"},
		{"Total Net Sales", "revenue"},
		{"EPS", "eps_basic"},
		{"diluted EPS", "eps_diluted"},
		{"gross margin", "gross_margin"},
		{"FCF", "free_cash_flow"},
		{"cogs", "cost_of_revenue"},
		{"R&D", "research_and_development"},
		{"cash from operations", "operating_cash_flow"},
		{"buybacks", "share_repurchases"},
		{"total assets", "total_assets"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, ok := r.Resolve(tt.input)
			if !ok {
				t.Fatalf("Resolve(%q) did not resolve", tt.input)
			}
			if m.CanonicalName != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.input, m.CanonicalName, tt.want)
			}
		})
	}
}

func TestResolveNormalization(t *testing.T) {
	r := newTestRegistry(t)

	a, okA := r.Resolve("  total  revenue  ")
	b, okB := r.Resolve("TOTAL REVENUE")
	if !okA || !okB {
		t.Fatal("normalized variants of a known alias must resolve")
	}
	if a != b {
		t.Errorf("case/whitespace variants resolved to different metrics: %s vs %s", a.CanonicalName, b.CanonicalName)
	}
}

func TestResolveRejectsSegmentNames(t *testing.T) {
	// Product-line and segment figures are not reconcilable against
	// aggregate filings, so they must not resolve via substring matching.
	r := newTestRegistry(t)

	for _, name := range []string{
		"iPhone revenue",
		"cloud revenue",
		"services revenue",
		"automotive gross margin",
		"revenue growth",
		"",
	} {
		if m, ok := r.Resolve(name); ok {
			t.Errorf("Resolve(%q) resolved to %s, want no match", name, m.CanonicalName)
		}
	}
}

func TestFind(t *testing.T) {
	r := newTestRegistry(t)

	m, err := r.Find("operating_cash_flow")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if m.Statement != StatementCashFlow || m.PrimaryConcept() != "NetCashProvidedByUsedInOperatingActivities" {
		t.Errorf("unexpected mapping for operating_cash_flow: %+v", m)
	}

	if _, err := r.Find("ebitda_adjusted"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("Find(unknown): want ErrUnknownMetric, got %v", err)
	}
}

func TestAllNamesCatalogOrder(t *testing.T) {
	r := newTestRegistry(t)

	names := r.AllNames()
	if len(names) != len(catalog) {
		t.Fatalf("AllNames returned %d names, catalog has %d", len(names), len(catalog))
	}
	if names[0] != "revenue" {
		t.Errorf("first catalog entry = %s, want revenue", names[0])
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate canonical name %s", n)
		}
		seen[n] = true
	}
}

func TestComputedMetricsReferenceOnlyPrimitives(t *testing.T) {
	r := newTestRegistry(t)

	for _, m := range r.All() {
		if !m.IsComputed() {
			continue
		}
		if m.Formula == nil {
			t.Fatalf("computed metric %s has no formula", m.CanonicalName)
		}
		for _, operand := range []string{m.Formula.A, m.Formula.B} {
			dep, err := r.Find(operand)
			if err != nil {
				t.Fatalf("%s operand %s: %v", m.CanonicalName, operand, err)
			}
			if dep.IsComputed() {
				t.Errorf("computed metric %s references computed metric %s", m.CanonicalName, operand)
			}
		}
	}
}

func TestNewRegistryRejectsComputedOverComputed(t *testing.T) {
	bad := []MetricMapping{
		{
			CanonicalName: "a",
			Aliases:       []string{"a"},
			Concepts:      []string{"ConceptA"},
			Unit:          UnitCurrency,
			Statement:     StatementIncome,
		},
		{
			CanonicalName: "b",
			Aliases:       []string{"b"},
			Unit:          UnitPercentage,
			Statement:     StatementComputed,
			Formula:       &Formula{Op: OpRatioPct, A: "a", B: "a"},
		},
		{
			CanonicalName: "c",
			Aliases:       []string{"c"},
			Unit:          UnitPercentage,
			Statement:     StatementComputed,
			Formula:       &Formula{Op: OpRatioPct, A: "b", B: "a"},
		},
	}

	if _, err := newRegistry(bad); err == nil {
		t.Error("newRegistry accepted a computed metric built on another computed metric")
	}
}

func TestNewRegistryRejectsConflictingAliases(t *testing.T) {
	bad := []MetricMapping{
		{
			CanonicalName: "a",
			Aliases:       []string{"the metric"},
			Concepts:      []string{"ConceptA"},
			Unit:          UnitCurrency,
			Statement:     StatementIncome,
		},
		{
			CanonicalName: "b",
			Aliases:       []string{"The  Metric"},
			Concepts:      []string{"ConceptB"},
			Unit:          UnitCurrency,
			Statement:     StatementIncome,
		},
	}

	if _, err := newRegistry(bad); err == nil {
		t.Error("newRegistry accepted overlapping aliases across metrics")
	}
}
