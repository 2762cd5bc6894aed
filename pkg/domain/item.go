package domain

import "time"

// Source identifies the platform a piece of content came from
type Source string

// known content sources
const (
	SourceGoogleTrends Source = "google_trends"
	SourceReddit       Source = "reddit"
	SourceYouTube      Source = "youtube"
	SourceTwitter      Source = "twitter"
	SourceUpwork       Source = "upwork"
)

// AllSources lists every known source in a fixed order
func AllSources() []Source {
	return []Source{SourceGoogleTrends, SourceReddit, SourceYouTube, SourceTwitter, SourceUpwork}
}

// NormalizedItem is one source-tagged unit of content in the common shape
// all sources are reduced to before aggregation. Items are produced fresh
// on every collection run and never mutated.
type NormalizedItem struct {
	Source     Source    `json:"source" db:"source"`
	Keyword    string    `json:"keyword" db:"keyword"` // the search keyword that yielded this item
	Title      string    `json:"title" db:"title"`
	Text       string    `json:"text" db:"text"` // primary text used for sentiment and matching
	URL        string    `json:"url,omitempty" db:"url"`
	Engagement float64   `json:"engagement" db:"engagement"` // raw per-source metric, units differ by source
	Published  time.Time `json:"published,omitempty" db:"published"`
}
