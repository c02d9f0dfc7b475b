// Package companies holds the directory of issuers the system can
// reconcile: ticker, SEC central index key, and fiscal-calendar metadata.
package companies

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed companies.yaml
var catalogYAML []byte

// ErrUnknownTicker is returned for tickers outside the directory. This is
// a hard input error, never silently treated as missing data.
var ErrUnknownTicker = fmt.Errorf("unknown ticker")

// Company is one supported issuer.
type Company struct {
	Ticker            string `yaml:"ticker" json:"ticker"`
	Name              string `yaml:"name" json:"name"`
	Sector            string `yaml:"sector" json:"sector"`
	FiscalYearEndMonth int   `yaml:"fiscal_year_end_month" json:"fiscal_year_end_month"`
	CIK               string `yaml:"cik" json:"cik"`
}

// PaddedCIK returns the CIK zero-padded to 10 digits, the form the SEC
// XBRL endpoints expect.
func (c Company) PaddedCIK() string {
	return fmt.Sprintf("%010s", strings.TrimLeft(c.CIK, "0"))
}

// Directory is an immutable ticker lookup built once at startup.
type Directory struct {
	companies []Company
	byTicker  map[string]Company
}

// NewDirectory parses the embedded catalog.
func NewDirectory() (*Directory, error) {
	return NewDirectoryFromYAML(catalogYAML)
}

// NewDirectoryFromYAML builds a directory from YAML catalog bytes.
func NewDirectoryFromYAML(data []byte) (*Directory, error) {
	var doc struct {
		Companies []Company `yaml:"companies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse company catalog: %w", err)
	}
	if len(doc.Companies) == 0 {
		return nil, fmt.Errorf("company catalog is empty")
	}

	byTicker := make(map[string]Company, len(doc.Companies))
	for _, c := range doc.Companies {
		if c.Ticker == "" || c.CIK == "" {
			return nil, fmt.Errorf("company %q missing ticker or CIK", c.Name)
		}
		if c.FiscalYearEndMonth < 1 || c.FiscalYearEndMonth > 12 {
			return nil, fmt.Errorf("company %s has invalid fiscal year end month %d", c.Ticker, c.FiscalYearEndMonth)
		}
		key := strings.ToUpper(c.Ticker)
		if _, dup := byTicker[key]; dup {
			return nil, fmt.Errorf("duplicate ticker %s in catalog", key)
		}
		byTicker[key] = c
	}

	return &Directory{companies: doc.Companies, byTicker: byTicker}, nil
}

// Lookup finds a company by ticker, case-insensitively.
func (d *Directory) Lookup(ticker string) (Company, error) {
	c, ok := d.byTicker[strings.ToUpper(ticker)]
	if !ok {
		return Company{}, fmt.Errorf("%w: %s (known: %s)", ErrUnknownTicker, strings.ToUpper(ticker), strings.Join(d.Tickers(), ", "))
	}
	return c, nil
}

// FiscalYearEndMonth returns the last month of the company's fiscal year.
func (d *Directory) FiscalYearEndMonth(ticker string) (time.Month, error) {
	c, err := d.Lookup(ticker)
	if err != nil {
		return 0, err
	}
	return time.Month(c.FiscalYearEndMonth), nil
}

// Tickers lists supported tickers in catalog order.
func (d *Directory) Tickers() []string {
	out := make([]string, 0, len(d.companies))
	for _, c := range d.companies {
		out = append(out, strings.ToUpper(c.Ticker))
	}
	return out
}

// All returns the catalog in declaration order.
func (d *Directory) All() []Company {
	out := make([]Company, len(d.companies))
	copy(out, d.companies)
	return out
}
