package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
)

// TwitterClient searches recent tweets through the v2 API with app-only
// bearer auth
type TwitterClient struct {
	client     *twitter.Client
	maxResults int
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// NewTwitterClient creates a recent-search client. Host is overridable for
// tests, empty means the production API.
func NewTwitterClient(timeout time.Duration, bearerToken, host string, maxResults int) *TwitterClient {
	if host == "" {
		host = "https://api.twitter.com"
	}
	if maxResults < 10 {
		maxResults = 10 // API minimum
	}
	return &TwitterClient{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     &http.Client{Timeout: timeout},
			Host:       host,
		},
		maxResults: maxResults,
	}
}

// Search returns recent english tweets matching the keyword, retweets excluded
func (c *TwitterClient) Search(ctx context.Context, keyword string) ([]Tweet, error) {
	opts := twitter.TweetRecentSearchOpts{
		MaxResults:  c.maxResults,
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt, twitter.TweetFieldPublicMetrics},
	}
	query := fmt.Sprintf("%s -is:retweet lang:en", keyword)

	resp, err := c.client.TweetRecentSearch(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search tweets: %w", err)
	}

	tweets := make([]Tweet, 0, len(resp.Raw.Tweets))
	for _, raw := range resp.Raw.Tweets {
		tweet := Tweet{Keyword: keyword, ID: raw.ID, Text: raw.Text}
		if raw.PublicMetrics != nil {
			tweet.Likes = raw.PublicMetrics.Likes
			tweet.Retweets = raw.PublicMetrics.Retweets
			tweet.Replies = raw.PublicMetrics.Replies
			tweet.Quotes = raw.PublicMetrics.Quotes
		}
		if ts, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
			tweet.Created = ts
		}
		tweets = append(tweets, tweet)
	}
	return tweets, nil
}
