package trend

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaleem/trendwatch/pkg/domain"
)

// fixedAnalyzer returns preconfigured scores keyed by text, neutral otherwise
type fixedAnalyzer struct {
	scores map[string][2]float64 // text -> polarity, subjectivity
}

func (f *fixedAnalyzer) Analyze(_ context.Context, text string) (float64, float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, 0, fmt.Errorf("empty text")
	}
	if s, ok := f.scores[text]; ok {
		return s[0], s[1], nil
	}
	return 0, 0, nil
}

func newTestAggregator(cfg Config) *Aggregator {
	return NewAggregator(cfg, &fixedAnalyzer{})
}

func mkItem(src domain.Source, keyword, text string, engagement float64) domain.NormalizedItem {
	return domain.NormalizedItem{Source: src, Keyword: keyword, Text: text, Engagement: engagement}
}

func TestAggregator_EmptyCorpus(t *testing.T) {
	agg := newTestAggregator(Config{})
	records := agg.Aggregate(context.Background(), []string{"python"}, nil)
	require.NotNil(t, records)
	assert.Empty(t, records, "empty corpus yields empty output, not an error")
}

func TestAggregator_FixedWeightTable(t *testing.T) {
	// 10 reddit items at weight 1.0 plus 2 youtube items at weight 2.0,
	// zero engagement and no bonus: score must be exactly 10*1.0 + 2*2.0
	cfg := Config{
		SourceWeights:     map[domain.Source]float64{domain.SourceReddit: 1.0, domain.SourceYouTube: 2.0},
		ContentMatchBonus: -1, // disabled
	}
	agg := newTestAggregator(cfg)

	var items []domain.NormalizedItem
	for i := 0; i < 10; i++ {
		items = append(items, mkItem(domain.SourceReddit, "python", fmt.Sprintf("post %d", i), 0))
	}
	for i := 0; i < 2; i++ {
		items = append(items, mkItem(domain.SourceYouTube, "python", fmt.Sprintf("video %d", i), 0))
	}

	records := agg.Aggregate(context.Background(), []string{"python"}, items)
	require.Len(t, records, 1)
	assert.InDelta(t, 14.0, records[0].Score, 1e-9)
	assert.Equal(t, 12, records[0].TotalMentions)
	assert.Equal(t, 10, records[0].SourceCounts[domain.SourceReddit])
	assert.Equal(t, 2, records[0].SourceCounts[domain.SourceYouTube])
}

func TestAggregator_MentionCountConservation(t *testing.T) {
	agg := newTestAggregator(Config{})
	items := []domain.NormalizedItem{
		mkItem(domain.SourceReddit, "go", "a", 10),
		mkItem(domain.SourceTwitter, "go", "b", 5),
		mkItem(domain.SourceTwitter, "GO", "c", 2), // case-insensitive grouping
		mkItem(domain.SourceUpwork, "rust", "d", 0),
	}

	records := agg.Aggregate(context.Background(), []string{"go", "rust"}, items)
	require.Len(t, records, 2)
	for _, rec := range records {
		sum := 0
		for _, c := range rec.SourceCounts {
			sum += c
		}
		assert.Equal(t, rec.TotalMentions, sum, "total_mentions equals sum of per-source counts for %q", rec.Keyword)
	}
}

func TestAggregator_Determinism(t *testing.T) {
	agg := newTestAggregator(Config{})
	var items []domain.NormalizedItem
	for i := 0; i < 30; i++ {
		src := domain.AllSources()[i%5]
		kw := []string{"alpha", "beta", "gamma"}[i%3]
		items = append(items, mkItem(src, kw, fmt.Sprintf("text %d", i), float64(i*7%100)))
	}

	first := agg.Aggregate(context.Background(), nil, items)
	second := agg.Aggregate(context.Background(), nil, items)
	assert.Equal(t, first, second, "identical corpus yields identical ordering and content")
}

func TestAggregator_ScoreMonotonicity(t *testing.T) {
	agg := newTestAggregator(Config{})
	base := []domain.NormalizedItem{
		mkItem(domain.SourceReddit, "ai", "hm", 40),
		mkItem(domain.SourceYouTube, "ai", "video", 9000),
	}

	before := agg.Aggregate(context.Background(), nil, base)
	require.Len(t, before, 1)

	for _, src := range domain.AllSources() {
		t.Run(string(src), func(t *testing.T) {
			extended := append(append([]domain.NormalizedItem{}, base...), mkItem(src, "ai", "one more", 3))
			after := agg.Aggregate(context.Background(), nil, extended)
			require.Len(t, after, 1)
			assert.GreaterOrEqual(t, after[0].Score, before[0].Score, "adding an item never decreases the score")
		})
	}
}

func TestAggregator_EngagementRescaled(t *testing.T) {
	// a single item with a huge raw view count must not dominate mention terms
	cfg := Config{
		SourceWeights:      map[domain.Source]float64{domain.SourceYouTube: 1.0, domain.SourceReddit: 1.0},
		EngagementDivisors: map[domain.Source]float64{domain.SourceYouTube: 100000, domain.SourceReddit: 500},
		ContentMatchBonus:  -1,
	}
	agg := newTestAggregator(cfg)

	items := []domain.NormalizedItem{
		mkItem(domain.SourceYouTube, "viral", "big video", 50_000_000),
		mkItem(domain.SourceReddit, "steady", "p1", 0),
		mkItem(domain.SourceReddit, "steady", "p2", 0),
		mkItem(domain.SourceReddit, "steady", "p3", 0),
	}

	records := agg.Aggregate(context.Background(), nil, items)
	require.Len(t, records, 2)
	// 3 plain mentions outweigh 1 mention + capped engagement (< 1+1)
	assert.Equal(t, "steady", records[0].Keyword)
	assert.Equal(t, "viral", records[1].Keyword)
	assert.Less(t, records[1].Score, 2.0)
}

func TestAggregator_ZeroItemGroupExcluded(t *testing.T) {
	agg := newTestAggregator(Config{})
	items := []domain.NormalizedItem{mkItem(domain.SourceTwitter, "present", "hello", 1)}

	records := agg.Aggregate(context.Background(), []string{"present", "absent"}, items)
	require.Len(t, records, 1)
	assert.Equal(t, "present", records[0].Keyword)
}

func TestAggregator_MalformedItemCountedNotSampled(t *testing.T) {
	agg := NewAggregator(Config{ContentMatchBonus: -1}, &fixedAnalyzer{scores: map[string][2]float64{
		"great stuff": {0.8, 0.9},
	}})

	items := []domain.NormalizedItem{
		mkItem(domain.SourceReddit, "ai", "great stuff", 0),
		mkItem(domain.SourceReddit, "ai", "", 0), // missing text: counted, not sampled
	}

	records := agg.Aggregate(context.Background(), nil, items)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].TotalMentions)
	assert.Equal(t, 1, records[0].Sentiment.SampleCount)
	assert.LessOrEqual(t, records[0].Sentiment.SampleCount, records[0].TotalMentions)
}

func TestAggregator_SentimentLabels(t *testing.T) {
	analyzer := &fixedAnalyzer{scores: map[string][2]float64{
		"love it":  {0.9, 0.8},
		"hate it":  {-0.7, 0.8},
		"whatever": {0.02, 0.1},
	}}
	agg := NewAggregator(Config{ContentMatchBonus: -1}, analyzer)

	tests := []struct {
		name  string
		text  string
		label domain.SentimentLabel
	}{
		{"positive above threshold", "love it", domain.SentimentPositive},
		{"negative below threshold", "hate it", domain.SentimentNegative},
		{"within threshold is neutral", "whatever", domain.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []domain.NormalizedItem{mkItem(domain.SourceTwitter, "kw", tt.text, 0)}
			records := agg.Aggregate(context.Background(), nil, items)
			require.Len(t, records, 1)
			assert.Equal(t, tt.label, records[0].Sentiment.Label)
			assert.Equal(t, 1, records[0].Sentiment.SampleCount)
		})
	}
}

func TestAggregator_SentimentSampleCap(t *testing.T) {
	agg := NewAggregator(Config{SentimentSampleCap: 3, ContentMatchBonus: -1}, &fixedAnalyzer{})

	var items []domain.NormalizedItem
	for i := 0; i < 10; i++ {
		items = append(items, mkItem(domain.SourceReddit, "kw", fmt.Sprintf("text %d", i), 0))
	}

	records := agg.Aggregate(context.Background(), nil, items)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Sentiment.SampleCount)
}

func TestAggregator_ContextSampling(t *testing.T) {
	agg := NewAggregator(Config{ContextCap: 4, ContentMatchBonus: -1}, &fixedAnalyzer{})

	items := []domain.NormalizedItem{
		mkItem(domain.SourceReddit, "kw", "reddit low", 1),
		mkItem(domain.SourceReddit, "kw", "reddit high", 100),
		mkItem(domain.SourceTwitter, "kw", "tweet low", 2),
		mkItem(domain.SourceTwitter, "kw", "tweet high", 50),
		mkItem(domain.SourceYouTube, "kw", "only video", 7),
	}

	records := agg.Aggregate(context.Background(), nil, items)
	require.Len(t, records, 1)
	contexts := records[0].Contexts
	require.Len(t, contexts, 4)

	// first round covers each source once, highest engagement first
	assert.Equal(t, domain.SourceReddit, contexts[0].Source)
	assert.Equal(t, "reddit high", contexts[0].Excerpt)
	assert.Equal(t, domain.SourceYouTube, contexts[1].Source)
	assert.Equal(t, domain.SourceTwitter, contexts[2].Source)
	assert.Equal(t, "tweet high", contexts[2].Excerpt)
	// second round starts over in source order
	assert.Equal(t, "reddit low", contexts[3].Excerpt)
}

func TestAggregator_ContextExcerptTruncated(t *testing.T) {
	agg := NewAggregator(Config{ExcerptLength: 10, ContentMatchBonus: -1}, &fixedAnalyzer{})
	long := strings.Repeat("é", 40)

	records := agg.Aggregate(context.Background(), nil, []domain.NormalizedItem{
		mkItem(domain.SourceTwitter, "kw", long, 0),
	})
	require.Len(t, records, 1)
	require.Len(t, records[0].Contexts, 1)
	assert.Equal(t, strings.Repeat("é", 10), records[0].Contexts[0].Excerpt)
}

func TestAggregator_TieBreaks(t *testing.T) {
	cfg := Config{
		SourceWeights:     map[domain.Source]float64{domain.SourceReddit: 1.0},
		ContentMatchBonus: -1,
	}
	agg := newTestAggregator(cfg)

	items := []domain.NormalizedItem{
		mkItem(domain.SourceReddit, "zebra", "t", 0),
		mkItem(domain.SourceReddit, "apple", "t", 0),
	}

	records := agg.Aggregate(context.Background(), nil, items)
	require.Len(t, records, 2)
	assert.Equal(t, "apple", records[0].Keyword, "equal score and mentions break alphabetically")
	assert.Equal(t, "zebra", records[1].Keyword)
}

func TestAggregator_IncidentalMentionBonus(t *testing.T) {
	cfg := Config{
		SourceWeights:     map[domain.Source]float64{domain.SourceReddit: 1.0},
		ContentMatchBonus: 0.25,
	}
	agg := newTestAggregator(cfg)

	items := []domain.NormalizedItem{
		mkItem(domain.SourceReddit, "rust", "rust is faster than python these days", 0),
		mkItem(domain.SourceReddit, "python", "plain post", 0),
	}

	records := agg.Aggregate(context.Background(), []string{"rust", "python"}, items)
	require.Len(t, records, 2)

	byKw := map[string]domain.TrendingKeyword{}
	for _, r := range records {
		byKw[r.Keyword] = r
	}

	// python gets 1.0 for its own mention plus 0.25 bonus from the rust post
	assert.InDelta(t, 1.25, byKw["python"].Score, 1e-9)
	assert.Equal(t, 1, byKw["python"].TotalMentions, "bonus never inflates mention counts")
	assert.InDelta(t, 1.0, byKw["rust"].Score, 1e-9)
}

func TestAggregator_DisplayCaseFromConfiguredList(t *testing.T) {
	agg := newTestAggregator(Config{})
	items := []domain.NormalizedItem{mkItem(domain.SourceReddit, "chatgpt", "t", 0)}

	records := agg.Aggregate(context.Background(), []string{"ChatGPT"}, items)
	require.Len(t, records, 1)
	assert.Equal(t, "ChatGPT", records[0].Keyword)
}
