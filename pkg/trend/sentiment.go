package trend

import (
	"context"
	"fmt"
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// LexiconAnalyzer estimates sentiment with the VADER lexicon. It is pure and
// cheap, the default backend when no LLM is configured.
type LexiconAnalyzer struct{}

// NewLexiconAnalyzer creates the default sentiment analyzer
func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{}
}

// Analyze returns VADER's compound score as polarity and the non-neutral
// share of the text as subjectivity
func (a *LexiconAnalyzer) Analyze(_ context.Context, text string) (polarity, subjectivity float64, err error) {
	if strings.TrimSpace(text) == "" {
		return 0, 0, fmt.Errorf("empty text")
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	score := sentitext.PolarityScore(parsed)
	return score.Compound, score.Positive + score.Negative, nil
}
