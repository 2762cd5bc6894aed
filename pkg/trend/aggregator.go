package trend

import (
	"context"
	"sort"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/msaleem/trendwatch/pkg/domain"
)

// SentimentAnalyzer estimates polarity [-1,1] and subjectivity [0,1] of a text
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (polarity, subjectivity float64, err error)
}

// Config holds the scoring tunables. The weight and divisor tables are the
// configuration surface; the formula shape is fixed: weighted mention counts
// plus rescaled engagement, see Aggregate.
type Config struct {
	SourceWeights      map[domain.Source]float64
	EngagementDivisors map[domain.Source]float64
	EngagementWeight   float64
	ContentMatchBonus  float64 // credit for incidental mentions of other keywords, 0 disables
	SentimentSampleCap int
	PolarityThreshold  float64
	ContextCap         int
	ExcerptLength      int
}

// DefaultConfig returns the documented default weight/divisor tables
func DefaultConfig() Config {
	return Config{
		SourceWeights: map[domain.Source]float64{
			domain.SourceGoogleTrends: 0.5,
			domain.SourceReddit:       1.5,
			domain.SourceYouTube:      2.0,
			domain.SourceTwitter:      1.0,
			domain.SourceUpwork:       1.2,
		},
		EngagementDivisors: map[domain.Source]float64{
			domain.SourceGoogleTrends: 100,
			domain.SourceReddit:       500,
			domain.SourceYouTube:      100000,
			domain.SourceTwitter:      1000,
			domain.SourceUpwork:       50,
		},
		EngagementWeight:   1.0,
		ContentMatchBonus:  0.25,
		SentimentSampleCap: 20,
		PolarityThreshold:  0.1,
		ContextCap:         5,
		ExcerptLength:      100,
	}
}

// Aggregator turns the normalized corpus of one collection run into a ranked
// list of trending keywords. It is a pure in-memory computation and never
// fails on messy data: malformed items are counted where possible and skipped
// where not.
type Aggregator struct {
	cfg       Config
	sentiment SentimentAnalyzer
}

// NewAggregator creates an aggregator, filling zero config fields with defaults
func NewAggregator(cfg Config, sentiment SentimentAnalyzer) *Aggregator {
	def := DefaultConfig()
	if cfg.SourceWeights == nil {
		cfg.SourceWeights = def.SourceWeights
	}
	if cfg.EngagementDivisors == nil {
		cfg.EngagementDivisors = def.EngagementDivisors
	}
	if cfg.EngagementWeight == 0 {
		cfg.EngagementWeight = def.EngagementWeight
	}
	if cfg.SentimentSampleCap == 0 {
		cfg.SentimentSampleCap = def.SentimentSampleCap
	}
	if cfg.PolarityThreshold == 0 {
		cfg.PolarityThreshold = def.PolarityThreshold
	}
	if cfg.ContextCap == 0 {
		cfg.ContextCap = def.ContextCap
	}
	if cfg.ExcerptLength == 0 {
		cfg.ExcerptLength = def.ExcerptLength
	}
	return &Aggregator{cfg: cfg, sentiment: sentiment}
}

// group accumulates the items attributed to one keyword, case-insensitively
type group struct {
	display string
	items   []domain.NormalizedItem
	counts  map[domain.Source]int
	bonus   float64
}

// Aggregate computes the full ranked sequence for the given corpus. The
// originating keyword of each item is authoritative for mention counts;
// incidental mentions of other configured keywords in item text only add a
// score bonus. An empty corpus yields an empty (non-nil) result. The returned
// list is not truncated; callers decide how much to display.
func (a *Aggregator) Aggregate(ctx context.Context, configured []string, items []domain.NormalizedItem) []domain.TrendingKeyword {
	// configured keyword casing wins for display
	display := map[string]string{}
	for _, kw := range configured {
		display[strings.ToLower(kw)] = kw
	}

	groups := map[string]*group{}
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Keyword))
		if key == "" {
			continue // an item without an originating keyword cannot be attributed
		}
		g, ok := groups[key]
		if !ok {
			name := item.Keyword
			if d, found := display[key]; found {
				name = d
			}
			g = &group{display: name, counts: map[domain.Source]int{}}
			groups[key] = g
		}
		g.items = append(g.items, item)
		g.counts[item.Source]++
	}

	a.creditIncidentalMentions(groups, configured, items)

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]domain.TrendingKeyword, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		records = append(records, domain.TrendingKeyword{
			Keyword:       g.display,
			Score:         a.score(g),
			TotalMentions: len(g.items),
			SourceCounts:  g.counts,
			Sentiment:     a.sentimentSummary(ctx, g),
			Contexts:      a.sampleContexts(g),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		if records[i].TotalMentions != records[j].TotalMentions {
			return records[i].TotalMentions > records[j].TotalMentions
		}
		return strings.ToLower(records[i].Keyword) < strings.ToLower(records[j].Keyword)
	})

	return records
}

// creditIncidentalMentions adds the content-matching bonus: configured
// keywords found inside the text of items attributed to other keywords.
// Bonus affects score only, never mention counts, and only lands on keywords
// that already have at least one item of their own.
func (a *Aggregator) creditIncidentalMentions(groups map[string]*group, configured []string, items []domain.NormalizedItem) {
	if a.cfg.ContentMatchBonus <= 0 || len(configured) == 0 {
		return
	}
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		own := strings.ToLower(strings.TrimSpace(item.Keyword))
		for _, kw := range configured {
			folded := strings.ToLower(kw)
			if folded == own {
				continue
			}
			g, ok := groups[folded]
			if !ok {
				continue
			}
			if strings.Contains(text, folded) {
				g.bonus += a.weight(item.Source) * a.cfg.ContentMatchBonus
			}
		}
	}
}

// score computes the composite trending score for one keyword group:
// sum of per-source mention counts times source weight, plus the incidental
// mention bonus, plus the weighted sum of rescaled engagement. Engagement is
// rescaled per source onto [0,1) before summing so that high-magnitude units
// (view counts) cannot dominate the ranking.
func (a *Aggregator) score(g *group) float64 {
	total := g.bonus
	for src, count := range g.counts {
		total += float64(count) * a.weight(src)
	}
	for _, item := range g.items {
		total += a.cfg.EngagementWeight * a.rescaleEngagement(item)
	}
	return total
}

func (a *Aggregator) weight(src domain.Source) float64 {
	if w, ok := a.cfg.SourceWeights[src]; ok {
		return w
	}
	return 1.0
}

// rescaleEngagement maps a raw engagement value onto [0,1), strictly
// increasing in the raw value
func (a *Aggregator) rescaleEngagement(item domain.NormalizedItem) float64 {
	if item.Engagement <= 0 {
		return 0
	}
	divisor, ok := a.cfg.EngagementDivisors[item.Source]
	if !ok || divisor <= 0 {
		divisor = 100
	}
	return item.Engagement / (item.Engagement + divisor)
}

// sentimentSummary averages polarity/subjectivity over a capped sample of the
// group's texts. Items without text are not sampled; analyzer failures are
// skipped so the recorded sample count stays honest.
func (a *Aggregator) sentimentSummary(ctx context.Context, g *group) domain.SentimentSummary {
	var polSum, subSum float64
	sampled := 0
	for _, item := range g.items {
		if sampled >= a.cfg.SentimentSampleCap {
			break
		}
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		pol, sub, err := a.sentiment.Analyze(ctx, item.Text)
		if err != nil {
			lgr.Printf("[DEBUG] sentiment analysis skipped for %q item: %v", g.display, err)
			continue
		}
		polSum += pol
		subSum += sub
		sampled++
	}

	summary := domain.SentimentSummary{Label: domain.SentimentNeutral, SampleCount: sampled}
	if sampled == 0 {
		return summary
	}
	summary.Polarity = polSum / float64(sampled)
	summary.Subjectivity = subSum / float64(sampled)
	switch {
	case summary.Polarity > a.cfg.PolarityThreshold:
		summary.Label = domain.SentimentPositive
	case summary.Polarity < -a.cfg.PolarityThreshold:
		summary.Label = domain.SentimentNegative
	}
	return summary
}

// sampleContexts picks up to ContextCap excerpts, preferring diversity across
// sources first and highest engagement within each source
func (a *Aggregator) sampleContexts(g *group) []domain.SampleContext {
	bySource := map[domain.Source][]domain.NormalizedItem{}
	for _, item := range g.items {
		if strings.TrimSpace(item.Text) == "" && strings.TrimSpace(item.Title) == "" {
			continue
		}
		bySource[item.Source] = append(bySource[item.Source], item)
	}
	for src := range bySource {
		items := bySource[src]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Engagement > items[j].Engagement })
	}

	contexts := make([]domain.SampleContext, 0, a.cfg.ContextCap)
	for round := 0; len(contexts) < a.cfg.ContextCap; round++ {
		picked := false
		for _, src := range domain.AllSources() {
			items := bySource[src]
			if round >= len(items) {
				continue
			}
			item := items[round]
			text := item.Text
			if strings.TrimSpace(text) == "" {
				text = item.Title
			}
			contexts = append(contexts, domain.SampleContext{
				Source:     src,
				Excerpt:    truncate(text, a.cfg.ExcerptLength),
				Engagement: item.Engagement,
			})
			picked = true
			if len(contexts) >= a.cfg.ContextCap {
				break
			}
		}
		if !picked {
			break
		}
	}
	return contexts
}

// truncate cuts a string to max runes, keeping valid UTF-8
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
