// Package chunker splits page-tagged document text into overlapping,
// citation-ready chunks.
package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"hragent/internal/domain"
)

// PageChunker splits each page into sentence-based chunks with overlap.
// Chunks carry the page number they came from, never cross page or
// document boundaries, and cover all normalized page text.
type PageChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewPageChunker(sentencesPerChunk, overlapSentences int) *PageChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &PageChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

func (c *PageChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	idx := 0
	for _, page := range document.Pages {
		text := Normalize(page.Text)
		if text == "" {
			continue
		}
		locs := c.splitter.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			locs = [][]int{{0, len(text)}}
		}
		sentences := make([]string, len(locs))
		for i, l := range locs {
			seg := text[l[0]:l[1]]
			locs[i][0] += len(seg) - len(strings.TrimLeft(seg, " "))
			sentences[i] = strings.TrimSpace(seg)
		}
		i := 0
		for i < len(sentences) {
			end := i + c.sentencesPerChunk
			if end > len(sentences) {
				end = len(sentences)
			}
			chunks = append(chunks, domain.Chunk{
				DocumentID: document.ID,
				ChunkID:    document.ID + ":" + strconv.Itoa(idx),
				Text:       strings.Join(sentences[i:end], " "),
				Pages:      []int{page.Number},
				Index:      idx,
				Start:      locs[i][0],
				End:        locs[end-1][1],
			})
			idx++
			if end == len(sentences) {
				break
			}
			i = end - c.overlapSentences
		}
	}
	return chunks, nil
}

var (
	controlRe    = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize strips control characters and collapses runs of whitespace
// without altering the semantic content of the text.
func Normalize(text string) string {
	text = controlRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
