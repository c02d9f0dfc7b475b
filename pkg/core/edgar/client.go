// Package edgar reconciles canonical financial metrics against SEC EDGAR
// XBRL companyconcept data. It produces the single best numeric value for
// a (ticker, fiscal year, fiscal quarter, metric) request, or reports the
// value as absent, memoizing aggressively at both the raw-concept and
// per-metric layers.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"execcheck/pkg/core/cache"
	"execcheck/pkg/core/companies"
	"execcheck/pkg/core/fiscal"
	"execcheck/pkg/core/metrics"
)

const (
	// DefaultBaseURL is the SEC XBRL companyconcept endpoint root.
	DefaultBaseURL = "https://data.sec.gov/api/xbrl/companyconcept"
	// DefaultUserAgent satisfies the SEC fair-access policy, which
	// requires a contact address in the User-Agent.
	DefaultUserAgent = "ExecCheck Research research@execcheck.dev"
	// DefaultRequestsPerSecond stays inside the SEC's 10 req/s limit.
	DefaultRequestsPerSecond = 8

	conceptNamespace = "edgar_concepts"
	valueNamespace   = "edgar_metrics"
)

// Client fetches, caches, and matches filing entries to fiscal periods.
type Client struct {
	dir        *companies.Directory
	cal        *fiscal.Calendar
	reg        *metrics.Registry
	cache      cache.Cache
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
	baseURL    string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the EDGAR endpoint, e.g. for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithUserAgent overrides the SEC User-Agent string.
func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithRateLimit overrides the outbound request rate.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option { return func(c *Client) { c.log = log } }

// NewClient builds a reconciliation client over the given directory,
// calendar, registry, and cache.
func NewClient(dir *companies.Directory, cal *fiscal.Calendar, reg *metrics.Registry, store cache.Cache, opts ...Option) *Client {
	c := &Client{
		dir:        dir,
		cal:        cal,
		reg:        reg,
		cache:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		log:        zerolog.Nop(),
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cachedValue is the stored shape in the per-metric value namespace. The
// pointer distinguishes a cached absence from a cache miss.
type cachedValue struct {
	Value *float64 `json:"value"`
}

// GetValue returns the reconciled value for one metric in one fiscal
// quarter, or nil when no filing data supports it.
//
// Unknown tickers and out-of-range quarters are hard errors. Data absence
// is not: it returns (nil, nil) and is cached, as are values degraded to
// absent by upstream fetch failures, so repeated failed lookups stay cheap.
func (c *Client) GetValue(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int, metric *metrics.MetricMapping) (*float64, error) {
	if fiscalQuarter < 1 || fiscalQuarter > 4 {
		return nil, fmt.Errorf("%w, got %d", fiscal.ErrInvalidQuarter, fiscalQuarter)
	}
	company, err := c.dir.Lookup(ticker)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s-FY%dQ%d-%s", company.Ticker, fiscalYear, fiscalQuarter, metric.CanonicalName)
	if raw, ok := c.cache.Get(ctx, valueNamespace, cacheKey); ok {
		var stored cachedValue
		if err := json.Unmarshal(raw, &stored); err == nil {
			return stored.Value, nil
		}
	}

	value := c.resolveValue(ctx, company, fiscalYear, fiscalQuarter, metric)

	if raw, err := json.Marshal(cachedValue{Value: value}); err == nil {
		if err := c.cache.Set(ctx, valueNamespace, cacheKey, raw); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("value cache write failed")
		}
	}

	return value, nil
}

// GetAllMetrics resolves every canonical metric for the quarter, each
// independently through GetValue. Absent metrics map to nil.
func (c *Client) GetAllMetrics(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int) (map[string]*float64, error) {
	results := make(map[string]*float64, len(c.reg.AllNames()))
	for _, metric := range c.reg.All() {
		value, err := c.GetValue(ctx, ticker, fiscalYear, fiscalQuarter, metric)
		if err != nil {
			return nil, err
		}
		results[metric.CanonicalName] = value
	}
	return results, nil
}

func (c *Client) resolveValue(ctx context.Context, company companies.Company, fiscalYear, fiscalQuarter int, metric *metrics.MetricMapping) *float64 {
	if metric.IsComputed() {
		return c.evaluateFormula(ctx, company, fiscalYear, fiscalQuarter, metric)
	}
	if fiscalQuarter == 4 {
		return c.fourthQuarterValue(ctx, company, fiscalYear, metric)
	}
	return c.quarterDirect(ctx, company, fiscalYear, fiscalQuarter, metric)
}

// quarterDirect is the standard Q1-Q3 path: match the quarter's period end
// against 10-Q entries, first concept to match wins.
func (c *Client) quarterDirect(ctx context.Context, company companies.Company, fiscalYear, fiscalQuarter int, metric *metrics.MetricMapping) *float64 {
	periodEnd, err := c.cal.QuarterEndDate(company.Ticker, fiscalYear, fiscalQuarter)
	if err != nil {
		return nil
	}

	for _, concept := range metric.Concepts {
		entries, err := c.fetchConcept(ctx, company, concept)
		if err != nil {
			continue
		}
		if val, ok := findMatchingEntry(entries, periodEnd, FormQuarterly, fiscalQuarter); ok {
			return &val
		}
	}
	return nil
}

// fourthQuarterValue handles the fiscal Q4, which has no 10-Q of its own.
//
// Point-in-time metrics (balance-sheet snapshots) match the 10-K directly:
// they are reported once per fiscal year end and never decomposed. Flow
// metrics first look for a discrete Q4 entry embedded in the 10-K, then
// fall back to deriving Q4 as annual minus Q1-Q3.
func (c *Client) fourthQuarterValue(ctx context.Context, company companies.Company, fiscalYear int, metric *metrics.MetricMapping) *float64 {
	periodEnd, err := c.cal.QuarterEndDate(company.Ticker, fiscalYear, 4)
	if err != nil {
		return nil
	}

	if metric.IsPointInTime {
		for _, concept := range metric.Concepts {
			entries, err := c.fetchConcept(ctx, company, concept)
			if err != nil {
				continue
			}
			if val, ok := findMatchingEntry(entries, periodEnd, FormAnnual, 4); ok {
				return &val
			}
		}
		return nil
	}

	for _, concept := range metric.Concepts {
		entries, err := c.fetchConcept(ctx, company, concept)
		if err != nil {
			continue
		}
		if val, ok := findQuarterlyEntryIn10K(entries, periodEnd); ok {
			return &val
		}
	}

	return c.decomposeFourthQuarter(ctx, company, fiscalYear, periodEnd, metric)
}

// decomposeFourthQuarter derives Q4 = annual - Q1 - Q2 - Q3. Per-share and
// share-count metrics never decompose: they are not additive across
// periods. Any absent input makes the whole decomposition absent.
func (c *Client) decomposeFourthQuarter(ctx context.Context, company companies.Company, fiscalYear int, periodEnd time.Time, metric *metrics.MetricMapping) *float64 {
	if metric.Unit == metrics.UnitCurrencyPerShare || metric.Unit == metrics.UnitShares {
		return nil
	}

	var annual *float64
	for _, concept := range metric.Concepts {
		entries, err := c.fetchConcept(ctx, company, concept)
		if err != nil {
			continue
		}
		if val, ok := findAnnualEntryIn10K(entries, periodEnd); ok {
			annual = &val
			break
		}
	}
	if annual == nil {
		return nil
	}

	quarters := make([]*float64, 0, 3)
	for fq := 1; fq <= 3; fq++ {
		quarters = append(quarters, c.quarterDirect(ctx, company, fiscalYear, fq, metric))
	}

	derived := *annual
	for fq, q := range quarters {
		if q == nil {
			c.log.Debug().
				Str("ticker", company.Ticker).
				Int("fiscal_year", fiscalYear).
				Int("missing_quarter", fq+1).
				Str("metric", metric.CanonicalName).
				Msg("Q4 decomposition aborted, quarter unavailable")
			return nil
		}
		derived -= *q
	}
	return &derived
}

// evaluateFormula computes a derived metric by recursing into GetValue for
// each operand. Operands are primitive by registry construction, so the
// recursion is one level deep.
func (c *Client) evaluateFormula(ctx context.Context, company companies.Company, fiscalYear, fiscalQuarter int, metric *metrics.MetricMapping) *float64 {
	operand := func(name string) *float64 {
		dep, err := c.reg.Find(name)
		if err != nil {
			c.log.Error().Err(err).Str("metric", metric.CanonicalName).Msg("formula references unknown metric")
			return nil
		}
		value, err := c.GetValue(ctx, company.Ticker, fiscalYear, fiscalQuarter, dep)
		if err != nil {
			return nil
		}
		return value
	}

	a := operand(metric.Formula.A)
	if a == nil {
		return nil
	}
	b := operand(metric.Formula.B)
	if b == nil {
		return nil
	}

	switch metric.Formula.Op {
	case metrics.OpRatioPct:
		if *b == 0 {
			return nil
		}
		ratio := math.Round(*a / *b * 10000) / 100
		return &ratio
	case metrics.OpDifferenceAbs:
		diff := *a - math.Abs(*b)
		return &diff
	default:
		c.log.Error().Str("op", string(metric.Formula.Op)).Msg("unknown formula op")
		return nil
	}
}

// fetchConcept retrieves the full flattened entry list for one
// (ticker, concept) pair, fetching at most once per pair.
//
// A 404 means the company never tagged that concept; it caches as an empty
// list so the miss is not re-fetched. Transport errors and other non-2xx
// responses are logged and surfaced as errors without caching, degrading
// only the current call.
func (c *Client) fetchConcept(ctx context.Context, company companies.Company, concept string) ([]FilingEntry, error) {
	cacheKey := company.Ticker + "-" + concept
	if raw, ok := c.cache.Get(ctx, conceptNamespace, cacheKey); ok {
		var entries []FilingEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/CIK%s/us-gaap/%s.json", c.baseURL, company.PaddedCIK(), concept)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", company.Ticker).Str("concept", concept).Msg("concept fetch failed")
		return nil, fmt.Errorf("fetch concept %s: %w", concept, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.storeConcept(ctx, cacheKey, []FilingEntry{})
		return []FilingEntry{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("ticker", company.Ticker).Str("concept", concept).Msg("unexpected EDGAR status")
		return nil, fmt.Errorf("EDGAR returned status %d for %s", resp.StatusCode, concept)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read concept response: %w", err)
	}

	var parsed conceptResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse concept response: %w", err)
	}

	// Flatten all reporting units into one list; period matching does not
	// care which unit group an entry came from. Units are walked in sorted
	// order so the flattened list, and therefore every cached value
	// derived from it, is deterministic.
	unitNames := make([]string, 0, len(parsed.Units))
	for name := range parsed.Units {
		unitNames = append(unitNames, name)
	}
	sort.Strings(unitNames)

	var entries []FilingEntry
	for _, name := range unitNames {
		entries = append(entries, parsed.Units[name]...)
	}

	c.storeConcept(ctx, cacheKey, entries)
	return entries, nil
}

func (c *Client) storeConcept(ctx context.Context, cacheKey string, entries []FilingEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, conceptNamespace, cacheKey, raw); err != nil {
		c.log.Warn().Err(err).Str("key", cacheKey).Msg("concept cache write failed")
	}
}
