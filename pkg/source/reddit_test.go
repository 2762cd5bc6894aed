package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedditClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "hot", r.URL.Query().Get("sort"))
		assert.Equal(t, "week", r.URL.Query().Get("t"))
		assert.Equal(t, "trendwatch-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"children": [
					{"data": {"title": "Go 1.25 released", "selftext": "notes inside", "subreddit": "golang",
						"permalink": "/r/golang/comments/abc/go_125/", "score": 420, "num_comments": 87,
						"created_utc": 1750000000}},
					{"data": {"title": "Why I like Go", "selftext": "", "subreddit": "programming",
						"permalink": "/r/programming/comments/def/", "score": 12, "num_comments": 3,
						"created_utc": 1750003600}}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewRedditClient(5*time.Second, "trendwatch-test/1.0", 50)
	client.baseURL = server.URL

	posts, err := client.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "golang", posts[0].Keyword)
	assert.Equal(t, "Go 1.25 released", posts[0].Title)
	assert.Equal(t, "notes inside", posts[0].SelfText)
	assert.Equal(t, "golang", posts[0].Subreddit)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/abc/go_125/", posts[0].URL)
	assert.Equal(t, 420, posts[0].Score)
	assert.Equal(t, 87, posts[0].NumComments)
	assert.Equal(t, time.Unix(1750000000, 0).UTC(), posts[0].Created)
}

func TestRedditClient_SearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewRedditClient(5*time.Second, "trendwatch-test/1.0", 50)
			client.baseURL = server.URL

			_, err := client.Search(context.Background(), "golang")
			require.Error(t, err)
		})
	}
}

func TestRedditClient_SearchEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"children": []}}`))
	}))
	defer server.Close()

	client := NewRedditClient(5*time.Second, "trendwatch-test/1.0", 50)
	client.baseURL = server.URL

	posts, err := client.Search(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, posts)
}
