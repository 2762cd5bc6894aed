package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// YouTubeClient searches videos through the YouTube Data API v3. Search
// results carry no statistics, so each search is followed by a videos.list
// call for view counts.
type YouTubeClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// NewYouTubeClient creates a youtube data client with the given API key
func NewYouTubeClient(timeout time.Duration, apiKey string, maxResults int) *YouTubeClient {
	if maxResults <= 0 {
		maxResults = 25
	}
	return &YouTubeClient{
		client:     &http.Client{Timeout: timeout},
		baseURL:    "https://www.googleapis.com/youtube/v3",
		apiKey:     apiKey,
		maxResults: maxResults,
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Search returns recent videos matching the keyword, with view counts
func (c *YouTubeClient) Search(ctx context.Context, keyword string) ([]Video, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", keyword)
	q.Set("type", "video")
	q.Set("order", "relevance")
	q.Set("maxResults", strconv.Itoa(c.maxResults))
	q.Set("key", c.apiKey)

	var search youtubeSearchResponse
	if err := c.getJSON(ctx, "/search?"+q.Encode(), &search); err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	if len(search.Items) == 0 {
		return []Video{}, nil
	}

	videos := make([]Video, 0, len(search.Items))
	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}
		video := Video{
			Keyword:     keyword,
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Channel:     item.Snippet.ChannelTitle,
		}
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			video.Published = ts
		}
		videos = append(videos, video)
		ids = append(ids, item.ID.VideoID)
	}

	// second call for statistics, search results carry none
	vq := url.Values{}
	vq.Set("part", "statistics")
	vq.Set("id", strings.Join(ids, ","))
	vq.Set("key", c.apiKey)

	var stats youtubeVideosResponse
	if err := c.getJSON(ctx, "/videos?"+vq.Encode(), &stats); err != nil {
		return nil, fmt.Errorf("fetch video statistics: %w", err)
	}

	views := make(map[string]int64, len(stats.Items))
	for _, item := range stats.Items {
		if n, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64); err == nil {
			views[item.ID] = n
		}
	}
	for i := range videos {
		videos[i].Views = views[videos[i].ID]
	}
	return videos, nil
}

func (c *YouTubeClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
