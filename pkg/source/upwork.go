package source

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// UpworkClient reads freelance job postings from the upwork job-search RSS
// feed. Feed descriptions arrive as HTML and are flattened to plain text.
type UpworkClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	sanitizer *bluemonday.Policy
}

// NewUpworkClient creates an upwork RSS client
func NewUpworkClient(timeout time.Duration, userAgent string) *UpworkClient {
	return &UpworkClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   "https://www.upwork.com",
		userAgent: userAgent,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Search returns the current job postings matching the keyword
func (c *UpworkClient) Search(ctx context.Context, keyword string) ([]Job, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("sort", "recency")
	feedURL := c.baseURL + "/ab/feed/jobs/rss?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	jobs := make([]Job, 0, len(feed.Items))
	for _, item := range feed.Items {
		job := Job{
			Keyword:     keyword,
			Title:       c.plainText(item.Title),
			Description: c.plainText(item.Description),
			Link:        item.Link,
		}
		if item.PublishedParsed != nil {
			job.Published = *item.PublishedParsed
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// plainText strips HTML tags and entities from feed content
func (c *UpworkClient) plainText(s string) string {
	stripped := c.sanitizer.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
