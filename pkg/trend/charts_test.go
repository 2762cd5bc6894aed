package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaleem/trendwatch/pkg/domain"
)

func TestFrequency(t *testing.T) {
	keywords := []string{"Go", "rust"}
	items := []domain.NormalizedItem{
		{Source: domain.SourceReddit, Keyword: "go"},
		{Source: domain.SourceReddit, Keyword: "GO"},
		{Source: domain.SourceTwitter, Keyword: "rust"},
		{Source: domain.SourceTwitter, Keyword: "unknown"}, // not configured, ignored
	}

	table := Frequency(keywords, items)
	assert.Equal(t, keywords, table.Keywords)
	assert.Equal(t, []int{2, 0}, table.Counts[domain.SourceReddit])
	assert.Equal(t, []int{0, 1}, table.Counts[domain.SourceTwitter])
	assert.Equal(t, []int{0, 0}, table.Counts[domain.SourceYouTube], "every source gets a row")
}

func TestInterestSeries(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)

	items := []domain.NormalizedItem{
		{Source: domain.SourceGoogleTrends, Keyword: "ai", Engagement: 40, Published: day1},
		{Source: domain.SourceGoogleTrends, Keyword: "ai", Engagement: 60, Published: day1.Add(5 * time.Hour)},
		{Source: domain.SourceGoogleTrends, Keyword: "ai", Engagement: 90, Published: day2},
		{Source: domain.SourceReddit, Keyword: "ai", Engagement: 500, Published: day1}, // wrong source
		{Source: domain.SourceGoogleTrends, Keyword: "ml", Engagement: 10},            // no timestamp
	}

	points := InterestSeries([]string{"ai", "ml"}, items)
	require.Len(t, points, 2)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.InDelta(t, 50.0, points[0].Values["ai"], 1e-9, "same-day values are averaged")
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), points[1].Date)
	assert.InDelta(t, 90.0, points[1].Values["ai"], 1e-9)
}

func TestInterestSeries_FoldsKeywordCase(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	items := []domain.NormalizedItem{
		{Source: domain.SourceGoogleTrends, Keyword: "AI", Engagement: 40, Published: day},
		{Source: domain.SourceGoogleTrends, Keyword: "ai", Engagement: 60, Published: day},
		{Source: domain.SourceGoogleTrends, Keyword: "unknown", Engagement: 90, Published: day},
	}

	points := InterestSeries([]string{"Ai"}, items)
	require.Len(t, points, 1)
	require.Len(t, points[0].Values, 1, "case variants merge into one series, unknown keyword dropped")
	assert.InDelta(t, 50.0, points[0].Values["Ai"], 1e-9, "series keyed by the configured display case")
}

func TestInterestSeries_Empty(t *testing.T) {
	points := InterestSeries([]string{"ai"}, nil)
	assert.Empty(t, points)
	assert.NotNil(t, points)
}

func TestEngagementSums(t *testing.T) {
	items := []domain.NormalizedItem{
		{Source: domain.SourceReddit, Engagement: 10},
		{Source: domain.SourceReddit, Engagement: 5},
		{Source: domain.SourceYouTube, Engagement: 1000},
	}

	sums := EngagementSums(items)
	assert.InDelta(t, 15.0, sums[domain.SourceReddit], 1e-9)
	assert.InDelta(t, 1000.0, sums[domain.SourceYouTube], 1e-9)
	assert.NotContains(t, sums, domain.SourceTwitter)
}
