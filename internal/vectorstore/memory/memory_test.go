package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hragent/internal/domain"
)

func chunk(id string) domain.Chunk {
	return domain.Chunk{DocumentID: "d", ChunkID: id, Text: id, Pages: []int{1}}
}

func TestSearchOrdersByScore(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{chunk("a"), chunk("b"), chunk("c")},
		[][]float64{{0, 1}, {1, 0}, {0.6, 0.8}},
	))

	res, err := s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Chunk.ChunkID)
	assert.Equal(t, "c", res[1].Chunk.ChunkID)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{chunk("first"), chunk("second"), chunk("third")},
		[][]float64{{1, 0}, {1, 0}, {1, 0}},
	))

	res, err := s.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "first", res[0].Chunk.ChunkID)
	assert.Equal(t, "second", res[1].Chunk.ChunkID)
	assert.Equal(t, "third", res[2].Chunk.ChunkID)
}

func TestSearchEmptyStore(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	res, err := s.Search([]float64{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestUpsertRejectsMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert([]domain.Chunk{chunk("a")}, [][]float64{{1, 0}, {0, 1}}))
	assert.Error(t, s.Upsert([]domain.Chunk{chunk("a")}, [][]float64{{1, 0, 0}}))
}

func TestInitRejectsBadDimension(t *testing.T) {
	assert.Error(t, NewStorage().Init(0))
}
