package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Earned leave accrues at two days per month.",
	"Sick leave requires a medical certificate.",
	"Travel expenses are reimbursed within limits.",
}

func TestPrepareAndDimension(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	assert.Greater(t, e.Dimension(), 0)
}

func TestEmbedIsDeterministic(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	a, err := e.Embed("how much earned leave do I get")
	require.NoError(t, err)
	b, err := e.Embed("how much earned leave do I get")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// A fresh embedder prepared on the same corpus agrees too.
	e2 := NewEmbedder()
	require.NoError(t, e2.Prepare(corpus))
	c, err := e2.Embed("how much earned leave do I get")
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestEmbedIsNormalized(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	vec, err := e.Embed("sick leave certificate")
	require.NoError(t, err)

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestEmbedUnknownTextIsZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	vec, err := e.Embed("zzz qqq")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	_, err := NewEmbedder().Embed("anything")
	assert.Error(t, err)
}

func TestPrepareEmptyCorpusFails(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
}
