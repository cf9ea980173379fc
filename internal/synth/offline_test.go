package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hragent/internal/domain"
)

func TestOfflineQuotesMatchingSentences(t *testing.T) {
	o := NewOffline()
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "Earned leave is capped at 30 days per year. The cafeteria opens at nine.", Pages: []int{4}}},
	}
	res := o.Synthesize("how many days of earned leave", results, nil)

	assert.Contains(t, res.Text, "Earned leave is capped at 30 days per year.")
	assert.Contains(t, res.Text, "[Page 4]")
	assert.NotContains(t, res.Text, "cafeteria")
	assert.Equal(t, []int{4}, res.Citations)
}

func TestOfflineCitationsComeFromRetrieval(t *testing.T) {
	o := NewOffline()
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "Relocation allowance is limited to one month of salary.", Pages: []int{12}}},
		{Chunk: domain.Chunk{Text: "Internet allowance covers home broadband costs.", Pages: []int{13}}},
	}
	res := o.Synthesize("allowance limits", results, nil)

	require.NotEmpty(t, res.Citations)
	retrievedPages := map[int]bool{12: true, 13: true}
	for _, c := range res.Citations {
		assert.True(t, retrievedPages[c], "citation %d not in retrieval", c)
	}
}

func TestOfflineNoMatchQuotesTopChunk(t *testing.T) {
	o := NewOffline()
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "Completely unrelated paragraph about parking spaces.", Pages: []int{2}}},
	}
	res := o.Synthesize("gratuity eligibility", results, nil)

	assert.Contains(t, res.Text, "closest section")
	assert.Equal(t, []int{2}, res.Citations)
}

func TestOfflineIncludesFacts(t *testing.T) {
	o := NewOffline()
	fcts := []domain.Fact{{Text: "Gratuity requires 5 years of service.", Page: 9}}
	res := o.Synthesize("gratuity years service", nil, fcts)

	assert.Contains(t, res.Text, "Gratuity requires 5 years of service.")
	assert.Equal(t, []int{9}, res.Citations)
}

func TestOfflineNoGrounding(t *testing.T) {
	o := NewOffline()
	res := o.Synthesize("anything at all", nil, nil)

	assert.Equal(t, NoGroundingText, res.Text)
	assert.Empty(t, res.Citations)
	assert.Equal(t, ModeOffline, res.Mode)
}
