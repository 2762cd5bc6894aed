package trend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconAnalyzer(t *testing.T) {
	analyzer := NewLexiconAnalyzer()

	t.Run("positive text", func(t *testing.T) {
		pol, sub, err := analyzer.Analyze(context.Background(), "I love this, it is absolutely wonderful and great")
		require.NoError(t, err)
		assert.Positive(t, pol)
		assert.Positive(t, sub)
	})

	t.Run("negative text", func(t *testing.T) {
		pol, _, err := analyzer.Analyze(context.Background(), "this is terrible, awful, I hate it")
		require.NoError(t, err)
		assert.Negative(t, pol)
	})

	t.Run("neutral text", func(t *testing.T) {
		pol, _, err := analyzer.Analyze(context.Background(), "the meeting is scheduled for tuesday")
		require.NoError(t, err)
		assert.InDelta(t, 0, pol, 0.2)
	})

	t.Run("empty text", func(t *testing.T) {
		_, _, err := analyzer.Analyze(context.Background(), "   ")
		require.Error(t, err)
	})
}
