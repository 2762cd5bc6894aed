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

func TestUpworkClient_Search(t *testing.T) {
	rssContent := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Upwork Job Feed</title>
	<link>https://www.upwork.com</link>
	<item>
		<title>Go developer needed - Upwork</title>
		<link>https://www.upwork.com/jobs/~0123</link>
		<description><![CDATA[<b>Budget</b>: $500<br />We need a Go developer to build an API &amp; worker pool.]]></description>
		<pubDate>Thu, 05 Jun 2025 10:00:00 +0000</pubDate>
	</item>
	<item>
		<title>Backend engineer - Upwork</title>
		<link>https://www.upwork.com/jobs/~0456</link>
		<description>Plain description, no markup.</description>
		<pubDate>Thu, 05 Jun 2025 11:00:00 +0000</pubDate>
	</item>
</channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ab/feed/jobs/rss", r.URL.Path)
		assert.Equal(t, "go developer", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssContent))
	}))
	defer server.Close()

	client := NewUpworkClient(5*time.Second, "trendwatch-test/1.0")
	client.baseURL = server.URL

	jobs, err := client.Search(context.Background(), "go developer")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "go developer", jobs[0].Keyword)
	assert.Equal(t, "Go developer needed - Upwork", jobs[0].Title)
	assert.Equal(t, "https://www.upwork.com/jobs/~0123", jobs[0].Link)
	// HTML tags stripped, entities decoded
	assert.NotContains(t, jobs[0].Description, "<b>")
	assert.Contains(t, jobs[0].Description, "API & worker pool")
	assert.Equal(t, time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC), jobs[0].Published.UTC())

	assert.Equal(t, "Plain description, no markup.", jobs[1].Description)
}

func TestUpworkClient_SearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"not a feed", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body>captcha</body></html>"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewUpworkClient(5*time.Second, "trendwatch-test/1.0")
			client.baseURL = server.URL

			_, err := client.Search(context.Background(), "go developer")
			require.Error(t, err)
		})
	}
}
