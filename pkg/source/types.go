// Package source contains the per-platform clients that fetch raw content
// for configured keywords. Each client returns its own raw record type;
// reduction to the common item shape happens in pkg/normalize.
package source

import "time"

// TrendPoint is one day of relative search interest for a keyword, 0-100
type TrendPoint struct {
	Keyword  string    `json:"keyword"`
	Date     time.Time `json:"date"`
	Interest float64   `json:"interest"`
}

// RedditPost is a single post returned by reddit search
type RedditPost struct {
	Keyword     string    `json:"keyword"` // the search keyword that yielded this post
	Title       string    `json:"title"`
	SelfText    string    `json:"selftext"`
	Subreddit   string    `json:"subreddit"`
	URL         string    `json:"url"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	Created     time.Time `json:"created"`
}

// Video is a single youtube search result with its view statistics
type Video struct {
	Keyword     string    `json:"keyword"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Channel     string    `json:"channel"`
	Views       int64     `json:"views"`
	Published   time.Time `json:"published"`
}

// Tweet is a single tweet from recent search with its public metrics
type Tweet struct {
	Keyword  string    `json:"keyword"`
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Likes    int       `json:"likes"`
	Retweets int       `json:"retweets"`
	Replies  int       `json:"replies"`
	Quotes   int       `json:"quotes"`
	Created  time.Time `json:"created"`
}

// Job is a single freelance job posting from the upwork RSS feed
type Job struct {
	Keyword     string    `json:"keyword"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Published   time.Time `json:"published"`
}
