package trend

import (
	"sort"
	"strings"
	"time"

	"github.com/msaleem/trendwatch/pkg/domain"
)

// FrequencyTable is a per-keyword, per-source mention count view for charts.
// Counts holds one row per source; each row aligns with Keywords by index.
type FrequencyTable struct {
	Keywords []string                `json:"keywords"`
	Counts   map[domain.Source][]int `json:"counts"`
}

// InterestPoint is one time bucket of the search-interest series
type InterestPoint struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Frequency counts items per keyword per source, matching the originating
// keyword case-insensitively against the configured list
func Frequency(keywords []string, items []domain.NormalizedItem) FrequencyTable {
	table := FrequencyTable{Keywords: keywords, Counts: map[domain.Source][]int{}}
	for _, src := range domain.AllSources() {
		table.Counts[src] = make([]int, len(keywords))
	}

	index := map[string]int{}
	for i, kw := range keywords {
		index[strings.ToLower(kw)] = i
	}

	for _, item := range items {
		i, ok := index[strings.ToLower(strings.TrimSpace(item.Keyword))]
		if !ok {
			continue
		}
		if _, known := table.Counts[item.Source]; !known {
			table.Counts[item.Source] = make([]int, len(keywords))
		}
		table.Counts[item.Source][i]++
	}
	return table
}

// InterestSeries buckets search-interest items by day, averaging the interest
// value per keyword within each bucket. Item keywords match the configured
// list case-insensitively and series are keyed by the configured display case.
// Items from other sources, items without a timestamp, and items for keywords
// not on the list are ignored.
func InterestSeries(keywords []string, items []domain.NormalizedItem) []InterestPoint {
	display := make(map[string]string, len(keywords))
	for _, kw := range keywords {
		display[strings.ToLower(kw)] = kw
	}

	type bucket struct {
		sums   map[string]float64
		counts map[string]int
	}
	buckets := map[time.Time]*bucket{}

	for _, item := range items {
		if item.Source != domain.SourceGoogleTrends || item.Published.IsZero() {
			continue
		}
		kw, ok := display[strings.ToLower(strings.TrimSpace(item.Keyword))]
		if !ok {
			continue
		}
		day := item.Published.UTC().Truncate(24 * time.Hour)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{sums: map[string]float64{}, counts: map[string]int{}}
			buckets[day] = b
		}
		b.sums[kw] += item.Engagement
		b.counts[kw]++
	}

	points := make([]InterestPoint, 0, len(buckets))
	for day, b := range buckets {
		values := make(map[string]float64, len(b.sums))
		for kw, sum := range b.sums {
			values[kw] = sum / float64(b.counts[kw])
		}
		points = append(points, InterestPoint{Date: day, Values: values})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// EngagementSums totals raw engagement per source over the corpus
func EngagementSums(items []domain.NormalizedItem) map[domain.Source]float64 {
	sums := map[domain.Source]float64{}
	for _, item := range items {
		sums[item.Source] += item.Engagement
	}
	return sums
}
