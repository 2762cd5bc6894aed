package domain

import "time"

// SentimentLabel classifies average polarity of a keyword group
type SentimentLabel string

// sentiment labels
const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// SentimentSummary holds averaged sentiment over a sample of a keyword's items
type SentimentSummary struct {
	Label        SentimentLabel `json:"label"`
	Polarity     float64        `json:"polarity"`     // [-1, 1]
	Subjectivity float64        `json:"subjectivity"` // [0, 1]
	SampleCount  int            `json:"sample_count"`
}

// SampleContext is a short excerpt shown alongside a trending keyword
type SampleContext struct {
	Source     Source  `json:"source"`
	Excerpt    string  `json:"excerpt"`
	Engagement float64 `json:"engagement,omitempty"`
}

// TrendingKeyword is the ranked output record for one keyword.
// TotalMentions always equals the sum of SourceCounts values.
type TrendingKeyword struct {
	Keyword       string           `json:"keyword"`
	Score         float64          `json:"trending_score"`
	TotalMentions int              `json:"total_mentions"`
	SourceCounts  map[Source]int   `json:"sources"`
	Sentiment     SentimentSummary `json:"sentiment"`
	Contexts      []SampleContext  `json:"contexts"`
}

// Snapshot is the full result of one collection run, replaced atomically
// each time the aggregator completes
type Snapshot struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Keywords    []string          `json:"keywords"`
	Records     []TrendingKeyword `json:"trending_keywords"`
	ItemCounts  map[Source]int    `json:"item_counts"`
}
