// Package trends queries the Google Trends widget API for related search
// terms and interest-over-time signals. Trends responses are JSON behind an
// anti-hijacking prefix and the API is aggressively rate limited, so every
// call is paced and every failure degrades to an empty result.
package trends

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/service/pacing"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Timeframes tried in order until one yields related queries.
var relatedTimeframes = []string{"now 7-d", "today 1-m", "today 3-m", "today 12-m"}

// Client implements domain.TrendsSource against the Trends widget API.
type Client struct {
	baseURL string
	hc      *http.Client
	pacer   *pacing.Pacer
}

// New constructs a trends client with pacing from config.
func New(cfg config.Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.TrendsBaseURL, "/"),
		hc: &http.Client{
			Timeout:   cfg.TrendsTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		pacer: pacing.New(cfg.TrendsCooldown),
	}
}

// widget is one entry of the explore response; request is echoed back to the
// widgetdata endpoints verbatim.
type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

// stripPrefix drops the ")]}'" anti-JSON prefix Trends puts before payloads.
func stripPrefix(b []byte) []byte {
	for i, c := range b {
		if c == '{' || c == '[' {
			return b[i:]
		}
	}
	return nil
}

func (c *Client) get(ctx domain.Context, rawURL string, out any) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.TrendsRequestsTotal.WithLabelValues("transport_error").Inc()
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.TrendsRequestsTotal.WithLabelValues("read_error").Inc()
		return err
	}
	if resp.StatusCode != http.StatusOK {
		observability.TrendsRequestsTotal.WithLabelValues("http_error").Inc()
		return &domain.UpstreamError{Provider: "google_trends", Status: resp.StatusCode, Body: string(body[:min(len(body), 256)])}
	}
	payload := stripPrefix(body)
	if payload == nil {
		observability.TrendsRequestsTotal.WithLabelValues("bad_payload").Inc()
		return fmt.Errorf("%w: no JSON payload in trends response", domain.ErrNoContent)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		observability.TrendsRequestsTotal.WithLabelValues("bad_payload").Inc()
		return err
	}
	observability.TrendsRequestsTotal.WithLabelValues("ok").Inc()
	return nil
}

// explore resolves the widget tokens for one keyword/timeframe pair.
func (c *Client) explore(ctx domain.Context, keyword, timeframe string) ([]widget, error) {
	reqJSON, _ := json.Marshal(map[string]any{
		"comparisonItem": []map[string]any{{"keyword": keyword, "geo": "", "time": timeframe}},
		"category":       0,
		"property":       "youtube",
	})
	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("tz", "360")
	q.Set("req", string(reqJSON))
	var out struct {
		Widgets []widget `json:"widgets"`
	}
	if err := c.get(ctx, c.baseURL+"/explore?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Widgets, nil
}

func findWidget(ws []widget, id string) (widget, bool) {
	for _, w := range ws {
		if w.ID == id {
			return w, true
		}
	}
	return widget{}, false
}

// RelatedKeywords returns up to limit related search terms for query,
// trying progressively longer timeframes. Failures degrade to an empty
// slice with an error the orchestrator may ignore.
func (c *Client) RelatedKeywords(ctx domain.Context, query string, limit int) ([]domain.KeywordRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	var lastErr error
	for _, tf := range relatedTimeframes {
		ws, err := c.explore(ctx, query, tf)
		if err != nil {
			lastErr = err
			slog.Warn("trends explore failed", slog.String("timeframe", tf), slog.Any("error", err))
			continue
		}
		w, ok := findWidget(ws, "RELATED_QUERIES")
		if !ok {
			continue
		}
		q := url.Values{}
		q.Set("hl", "en-US")
		q.Set("tz", "360")
		q.Set("req", string(w.Request))
		q.Set("token", w.Token)
		var out struct {
			Default struct {
				RankedList []struct {
					RankedKeyword []struct {
						Query string `json:"query"`
					} `json:"rankedKeyword"`
				} `json:"rankedList"`
			} `json:"default"`
		}
		if err := c.get(ctx, c.baseURL+"/widgetdata/relatedsearches?"+q.Encode(), &out); err != nil {
			lastErr = err
			continue
		}
		records := make([]domain.KeywordRecord, 0, limit)
		for _, rl := range out.Default.RankedList {
			for _, rk := range rl.RankedKeyword {
				kw := strings.TrimSpace(rk.Query)
				if kw == "" {
					continue
				}
				records = append(records, domain.KeywordRecord{Keyword: kw, Source: domain.SourceGoogleTrends})
				if len(records) >= limit {
					return records, nil
				}
			}
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// Interest reports the average interest value and a trend label for keyword
// over the last three months.
func (c *Client) Interest(ctx domain.Context, keyword string) (int, string, error) {
	ws, err := c.explore(ctx, keyword, "today 3-m")
	if err != nil {
		return 0, "", err
	}
	w, ok := findWidget(ws, "TIMESERIES")
	if !ok {
		return 0, "", fmt.Errorf("%w: no timeseries widget", domain.ErrNoContent)
	}
	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("tz", "360")
	q.Set("req", string(w.Request))
	q.Set("token", w.Token)
	var out struct {
		Default struct {
			TimelineData []struct {
				Value []int `json:"value"`
			} `json:"timelineData"`
		} `json:"default"`
	}
	if err := c.get(ctx, c.baseURL+"/widgetdata/multiline?"+q.Encode(), &out); err != nil {
		return 0, "", err
	}
	values := make([]int, 0, len(out.Default.TimelineData))
	for _, td := range out.Default.TimelineData {
		if len(td.Value) > 0 {
			values = append(values, td.Value[0])
		}
	}
	if len(values) == 0 {
		return 0, "", fmt.Errorf("%w: empty timeline", domain.ErrNoContent)
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := sum / len(values)
	trend := domain.TrendStable
	if len(values) > 1 {
		first, last := float64(values[0]), float64(values[len(values)-1])
		switch {
		case last > first*1.1:
			trend = domain.TrendUp
		case last < first*0.9:
			trend = domain.TrendDown
		}
	}
	return avg, trend, nil
}
