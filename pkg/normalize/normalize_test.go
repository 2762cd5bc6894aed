package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaleem/trendwatch/pkg/domain"
	"github.com/msaleem/trendwatch/pkg/source"
)

func TestRedditPosts(t *testing.T) {
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	items := RedditPosts([]source.RedditPost{
		{Keyword: "ai", Title: "AI post", SelfText: "long body", URL: "https://reddit.com/1", Score: 100, NumComments: 20, Created: created},
		{Keyword: "ai", Title: "Link post", SelfText: ""},
	})
	require.Len(t, items, 2)

	assert.Equal(t, domain.SourceReddit, items[0].Source)
	assert.Equal(t, "ai", items[0].Keyword)
	assert.Equal(t, "long body", items[0].Text)
	assert.InDelta(t, 120.0, items[0].Engagement, 1e-9, "score plus comments")
	assert.Equal(t, created, items[0].Published)

	assert.Equal(t, "Link post", items[1].Text, "link posts fall back to the title")
	assert.Zero(t, items[1].Engagement)
}

func TestVideos(t *testing.T) {
	items := Videos([]source.Video{
		{Keyword: "ml", ID: "abc", Title: "ML intro", Description: "basics", Views: 5000},
		{Keyword: "ml", Title: "no id"},
	})
	require.Len(t, items, 2)

	assert.Equal(t, domain.SourceYouTube, items[0].Source)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", items[0].URL)
	assert.Equal(t, "ML intro basics", items[0].Text)
	assert.InDelta(t, 5000.0, items[0].Engagement, 1e-9)
	assert.Empty(t, items[1].URL)
}

func TestTweets(t *testing.T) {
	items := Tweets([]source.Tweet{
		{Keyword: "go", ID: "42", Text: "go is fun", Likes: 10, Retweets: 5, Replies: 2, Quotes: 99},
	})
	require.Len(t, items, 1)

	assert.Equal(t, domain.SourceTwitter, items[0].Source)
	assert.Equal(t, "https://twitter.com/i/web/status/42", items[0].URL)
	assert.InDelta(t, 17.0, items[0].Engagement, 1e-9, "likes + retweets + replies")
}

func TestTrendPoints(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := TrendPoints([]source.TrendPoint{{Keyword: "ai", Date: date, Interest: 73}})
	require.Len(t, items, 1)

	assert.Equal(t, domain.SourceGoogleTrends, items[0].Source)
	assert.InDelta(t, 73.0, items[0].Engagement, 1e-9)
	assert.Equal(t, date, items[0].Published)
	assert.Empty(t, items[0].Text)
}

func TestJobs(t *testing.T) {
	items := Jobs([]source.Job{
		{Keyword: "go developer", Title: "Go dev needed", Description: "build an API", Link: "https://upwork.com/x"},
	})
	require.Len(t, items, 1)

	assert.Equal(t, domain.SourceUpwork, items[0].Source)
	assert.Equal(t, "build an API", items[0].Text)
	assert.Zero(t, items[0].Engagement, "job postings carry no engagement metric")
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, RedditPosts(nil))
	assert.Empty(t, Videos(nil))
	assert.Empty(t, Tweets(nil))
	assert.Empty(t, TrendPoints(nil))
	assert.Empty(t, Jobs(nil))
}
