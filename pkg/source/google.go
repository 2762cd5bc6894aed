package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TrendsClient fetches relative search interest from the unofficial google
// trends endpoints. The protocol is the two-step dance the web UI performs:
// an explore call issues per-widget tokens, the timeseries widget token then
// unlocks the multiline data endpoint. Both responses are JSON behind an
// anti-hijacking prefix that has to be stripped.
type TrendsClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeframe string
}

// NewTrendsClient creates a google trends client. Timeframe uses the trends
// notation, e.g. "today 3-m" or "now 7-d".
func NewTrendsClient(timeout time.Duration, userAgent, timeframe string) *TrendsClient {
	if timeframe == "" {
		timeframe = "today 3-m"
	}
	return &TrendsClient{
		client:    &http.Client{Timeout: timeout},
		baseURL:   "https://trends.google.com",
		userAgent: userAgent,
		timeframe: timeframe,
	}
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string    `json:"time"` // unix seconds as a string
			Value []float64 `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime returns the daily interest series for up to five keywords.
// Values are relative to the highest point across the requested set, 0-100.
func (c *TrendsClient) InterestOverTime(ctx context.Context, keywords []string) ([]TrendPoint, error) {
	if len(keywords) == 0 {
		return []TrendPoint{}, nil
	}

	token, widgetReq, err := c.explore(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}

	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("tz", "0")
	q.Set("token", token)
	q.Set("req", string(widgetReq))

	body, err := c.get(ctx, "/trends/api/widgetdata/multiline?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("widget data: %w", err)
	}

	var multiline multilineResponse
	if err := json.Unmarshal(body, &multiline); err != nil {
		return nil, fmt.Errorf("decode widget data: %w", err)
	}

	points := make([]TrendPoint, 0, len(multiline.Default.TimelineData)*len(keywords))
	for _, row := range multiline.Default.TimelineData {
		secs, err := strconv.ParseInt(row.Time, 10, 64)
		if err != nil {
			continue
		}
		ts := time.Unix(secs, 0).UTC()
		for i, kw := range keywords {
			if i >= len(row.Value) {
				break
			}
			points = append(points, TrendPoint{Keyword: kw, Date: ts, Interest: row.Value[i]})
		}
	}
	return points, nil
}

// explore asks for widget tokens and returns the timeseries widget's token
// together with its request payload, which the data endpoint expects verbatim
func (c *TrendsClient) explore(ctx context.Context, keywords []string) (token string, request json.RawMessage, err error) {
	type comparisonItem struct {
		Keyword string `json:"keyword"`
		Geo     string `json:"geo"`
		Time    string `json:"time"`
	}
	items := make([]comparisonItem, 0, len(keywords))
	for _, kw := range keywords {
		items = append(items, comparisonItem{Keyword: kw, Time: c.timeframe})
	}
	payload, err := json.Marshal(map[string]any{
		"comparisonItem": items,
		"category":       0,
		"property":       "",
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshal explore request: %w", err)
	}

	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("tz", "0")
	q.Set("req", string(payload))

	body, err := c.get(ctx, "/trends/api/explore?"+q.Encode())
	if err != nil {
		return "", nil, err
	}

	var explore exploreResponse
	if err := json.Unmarshal(body, &explore); err != nil {
		return "", nil, fmt.Errorf("decode explore response: %w", err)
	}
	for _, widget := range explore.Widgets {
		if widget.ID == "TIMESERIES" {
			return widget.Token, widget.Request, nil
		}
	}
	return "", nil, fmt.Errorf("no timeseries widget in explore response")
}

// get fetches a trends endpoint and strips the ")]}'" prefix off the body
func (c *TrendsClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if i := strings.IndexAny(string(body), "{["); i > 0 {
		body = body[i:]
	}
	return body, nil
}
