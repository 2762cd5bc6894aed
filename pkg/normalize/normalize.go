// Package normalize reduces raw per-source records to the common item shape
// used by aggregation. Conversions are total: a record with missing fields
// becomes an item with zero values, never an error.
package normalize

import (
	"github.com/msaleem/trendwatch/pkg/domain"
	"github.com/msaleem/trendwatch/pkg/source"
)

// TrendPoints converts search-interest points. Interest value doubles as the
// engagement metric; trend points carry no text.
func TrendPoints(points []source.TrendPoint) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(points))
	for _, p := range points {
		items = append(items, domain.NormalizedItem{
			Source:     domain.SourceGoogleTrends,
			Keyword:    p.Keyword,
			Engagement: p.Interest,
			Published:  p.Date,
		})
	}
	return items
}

// RedditPosts converts reddit posts, engagement is score plus comment count
func RedditPosts(posts []source.RedditPost) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(posts))
	for _, p := range posts {
		text := p.SelfText
		if text == "" {
			text = p.Title // link posts carry no body
		}
		items = append(items, domain.NormalizedItem{
			Source:     domain.SourceReddit,
			Keyword:    p.Keyword,
			Title:      p.Title,
			Text:       text,
			URL:        p.URL,
			Engagement: float64(p.Score + p.NumComments),
			Published:  p.Created,
		})
	}
	return items
}

// Videos converts youtube videos, engagement is the view count
func Videos(videos []source.Video) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(videos))
	for _, v := range videos {
		url := ""
		if v.ID != "" {
			url = "https://www.youtube.com/watch?v=" + v.ID
		}
		items = append(items, domain.NormalizedItem{
			Source:     domain.SourceYouTube,
			Keyword:    v.Keyword,
			Title:      v.Title,
			Text:       v.Title + " " + v.Description,
			URL:        url,
			Engagement: float64(v.Views),
			Published:  v.Published,
		})
	}
	return items
}

// Tweets converts tweets, engagement sums likes, retweets and replies
func Tweets(tweets []source.Tweet) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(tweets))
	for _, tw := range tweets {
		url := ""
		if tw.ID != "" {
			url = "https://twitter.com/i/web/status/" + tw.ID
		}
		items = append(items, domain.NormalizedItem{
			Source:     domain.SourceTwitter,
			Keyword:    tw.Keyword,
			Text:       tw.Text,
			URL:        url,
			Engagement: float64(tw.Likes + tw.Retweets + tw.Replies),
			Published:  tw.Created,
		})
	}
	return items
}

// Jobs converts upwork job postings, posting frequency is the signal so
// engagement stays zero
func Jobs(jobs []source.Job) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, domain.NormalizedItem{
			Source:    domain.SourceUpwork,
			Keyword:   j.Keyword,
			Title:     j.Title,
			Text:      j.Description,
			URL:       j.Link,
			Published: j.Published,
		})
	}
	return items
}
