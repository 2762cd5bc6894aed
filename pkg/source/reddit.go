package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RedditClient searches reddit posts through the public JSON search endpoint,
// no credentials required
type RedditClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limit     int
}

// NewRedditClient creates a reddit search client. A distinctive user agent is
// required, reddit throttles the default Go one aggressively.
func NewRedditClient(timeout time.Duration, userAgent string, limit int) *RedditClient {
	if limit <= 0 {
		limit = 50
	}
	return &RedditClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   "https://www.reddit.com",
		userAgent: userAgent,
		limit:     limit,
	}
}

// redditListing mirrors the parts of reddit's search response we read
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Subreddit   string  `json:"subreddit"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search returns this week's hottest posts matching the keyword
func (c *RedditClient) Search(ctx context.Context, keyword string) ([]RedditPost, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("sort", "hot")
	q.Set("t", "week")
	q.Set("limit", fmt.Sprintf("%d", c.limit))
	q.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search reddit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	posts := make([]RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		post := RedditPost{
			Keyword:     keyword,
			Title:       d.Title,
			SelfText:    d.SelfText,
			Subreddit:   d.Subreddit,
			Score:       d.Score,
			NumComments: d.NumComments,
		}
		if d.Permalink != "" {
			post.URL = "https://www.reddit.com" + d.Permalink
		}
		if d.CreatedUTC > 0 {
			post.Created = time.Unix(int64(d.CreatedUTC), 0).UTC()
		}
		posts = append(posts, post)
	}
	return posts, nil
}
