package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"execcheck/pkg/core/cache"
	"execcheck/pkg/models"
)

// DefaultBaseURL is the EarningsCall transcript API root. The demo key
// only serves AAPL and MSFT.
const DefaultBaseURL = "https://v2.api.earningscall.biz"

const transcriptNamespace = "transcripts"

// tickerExchange maps supported tickers to the exchange parameter the API
// wants; unlisted tickers default to NASDAQ.
var tickerExchange = map[string]string{
	"CRM": "NYSE",
	"JPM": "NYSE",
	"PFE": "NYSE",
}

type speakerEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type speakerInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type callResponse struct {
	Event struct {
		Year           int    `json:"year"`
		Quarter        int    `json:"quarter"`
		ConferenceDate string `json:"conference_date"`
	} `json:"event"`
	Speakers       []speakerEntry         `json:"speakers"`
	SpeakerNameMap map[string]speakerInfo `json:"speaker_name_map_v2"`
	NotFound       bool                   `json:"not_found,omitempty"` // cache marker only
}

// EarningsCallClient fetches transcripts from the EarningsCall API,
// memoizing raw responses through the shared cache.
type EarningsCallClient struct {
	cache      cache.Cache
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
	baseURL    string
	apiKey     string
}

// NewEarningsCallClient builds a transcript client. An empty apiKey falls
// back to the provider's demo key.
func NewEarningsCallClient(store cache.Cache, apiKey string, log zerolog.Logger) *EarningsCallClient {
	if apiKey == "" {
		apiKey = "demo"
	}
	return &EarningsCallClient{
		cache:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		log:        log,
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
	}
}

// SetBaseURL overrides the API root; used by tests.
func (c *EarningsCallClient) SetBaseURL(u string) { c.baseURL = u }

// FetchTranscript implements Provider.
func (c *EarningsCallClient) FetchTranscript(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int) (*models.Transcript, error) {
	ticker = strings.ToUpper(ticker)
	cacheKey := fmt.Sprintf("ecall-%s-FY%dQ%d", ticker, fiscalYear, fiscalQuarter)

	if raw, ok := c.cache.Get(ctx, transcriptNamespace, cacheKey); ok {
		var cached callResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			if cached.NotFound {
				return nil, nil
			}
			return c.parseResponse(&cached, ticker, fiscalYear, fiscalQuarter), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	exchange, ok := tickerExchange[ticker]
	if !ok {
		exchange = "NASDAQ"
	}
	endpoint := fmt.Sprintf(
		"%s/transcript?exchange=%s&symbol=%s&year=%d&quarter=%d&level=2&apikey=%s",
		c.baseURL, exchange, url.QueryEscape(ticker), fiscalYear, fiscalQuarter, url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for %s FY%dQ%d: %w", ticker, fiscalYear, fiscalQuarter, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf(
			"transcript API denied access for %s FY%dQ%d; the demo key only supports AAPL and MSFT",
			ticker, fiscalYear, fiscalQuarter)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("transcript API returned %d for %s FY%dQ%d: %s",
			resp.StatusCode, ticker, fiscalYear, fiscalQuarter, string(body))
	}

	var result callResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse transcript response: %w", err)
	}

	if len(result.Speakers) == 0 {
		c.log.Info().Str("ticker", ticker).Int("fy", fiscalYear).Int("fq", fiscalQuarter).Msg("no transcript available")
		c.storeResponse(ctx, cacheKey, &callResponse{NotFound: true})
		return nil, nil
	}

	c.storeResponse(ctx, cacheKey, &result)
	return c.parseResponse(&result, ticker, fiscalYear, fiscalQuarter), nil
}

func (c *EarningsCallClient) storeResponse(ctx context.Context, cacheKey string, resp *callResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, transcriptNamespace, cacheKey, raw); err != nil {
		c.log.Warn().Err(err).Str("key", cacheKey).Msg("transcript cache write failed")
	}
}

func (c *EarningsCallClient) parseResponse(data *callResponse, ticker string, fiscalYear, fiscalQuarter int) *models.Transcript {
	sections := make([]models.TranscriptSection, 0, len(data.Speakers))
	rawParts := make([]string, 0, len(data.Speakers))

	// The Q&A portion starts once the operator invites questions.
	qaStarted := false

	for _, entry := range data.Speakers {
		name, title := entry.Speaker, ""
		if info, ok := data.SpeakerNameMap[entry.Speaker]; ok {
			if info.Name != "" {
				name = info.Name
			}
			title = info.Title
		}

		if !qaStarted && strings.EqualFold(name, "operator") &&
			strings.Contains(strings.ToLower(entry.Text), "question") {
			qaStarted = true
		}

		session := "prepared_remarks"
		if qaStarted {
			session = "qa"
		}
		role := inferRole(name, title, session)

		sections = append(sections, models.TranscriptSection{
			SpeakerName: name,
			SpeakerRole: role,
			Session:     session,
			Text:        entry.Text,
		})
		rawParts = append(rawParts, fmt.Sprintf("[%s - %s]\n%s", name, role, entry.Text))
	}

	return &models.Transcript{
		Ticker:        ticker,
		FiscalYear:    fiscalYear,
		FiscalQuarter: fiscalQuarter,
		Sections:      sections,
		RawText:       strings.Join(rawParts, "\n\n"),
	}
}

var roleKeywords = []struct {
	keyword string
	role    string
}{
	{"ceo", "CEO"},
	{"chief executive", "CEO"},
	{"cfo", "CFO"},
	{"chief financial", "CFO"},
	{"coo", "COO"},
	{"chief operating", "COO"},
	{"cto", "CTO"},
	{"president", "President"},
	{"vp", "VP"},
	{"vice president", "VP"},
	{"director", "Director"},
	{"analyst", "Analyst"},
	{"operator", "Operator"},
	{"investor relations", "IR"},
}

func inferRole(name, title, session string) string {
	combined := strings.ToLower(name + " " + title)
	for _, rk := range roleKeywords {
		if strings.Contains(combined, rk.keyword) {
			return rk.role
		}
	}
	if session == "qa" {
		return "Analyst"
	}
	return "Executive"
}
