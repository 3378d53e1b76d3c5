package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/mathtutor-chat/internal/model/intent"
)

func TestTokenizeDropsPunctuation(t *testing.T) {
	assert.Equal(t, []string{"is", "anyone", "there"}, Tokenize("Is anyone there?"))
	assert.Equal(t, []string{"thank", "you"}, Tokenize("Thanks you!!"))
	assert.Empty(t, Tokenize("?!"))
}

func TestPredictGreetingFirst(t *testing.T) {
	c := NewClassifier(model.Seed(), 0)

	got := c.Predict("hello there")
	require.NotEmpty(t, got)
	assert.Equal(t, "greeting", got[0].Tag)
	assert.InDelta(t, 1.0, got[0].Probability, 1e-9)
}

func TestPredictSortsByProbability(t *testing.T) {
	c := NewClassifier(model.Seed(), 0)

	got := c.Predict("How are you?")
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "greeting", got[0].Tag)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Probability, got[i].Probability)
	}
	for _, p := range got {
		assert.Greater(t, p.Probability, ErrorThreshold)
	}
}

func TestPredictUnknownInput(t *testing.T) {
	c := NewClassifier(model.Seed(), 0)

	assert.Empty(t, c.Predict("xyzzy plugh"))
	assert.Empty(t, c.Predict(""))
}

func TestPredictHonoursThreshold(t *testing.T) {
	intents := []model.Intent{{Tag: "long", Patterns: []string{"one two three four"}}}

	assert.Len(t, NewClassifier(intents, 0.2).Predict("one"), 1)
	assert.Empty(t, NewClassifier(intents, 0.5).Predict("one"))
}

func TestPredictIgnoresUnknownWords(t *testing.T) {
	c := NewClassifier([]model.Intent{{Tag: "a", Patterns: []string{"zeta alpha", "Alpha beta"}}}, 0)

	got := c.Predict("alpha gamma delta beta")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Tag)
	assert.InDelta(t, 1.0, got[0].Probability, 1e-9)

	assert.Empty(t, c.knownWords(Tokenize("gamma delta")))
	assert.Empty(t, c.Predict("gamma delta"))
}
