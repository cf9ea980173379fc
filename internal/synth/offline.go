package synth

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"hragent/internal/domain"
)

// NoGroundingText is returned verbatim whenever retrieval produced nothing:
// the agent states that no grounding exists instead of inventing content.
const NoGroundingText = "I could not find this information in the provided documents."

// Offline is the deterministic extraction fallback. It never calls an
// external service and never fails: it selects the sentences with the
// highest lexical overlap with the query and quotes them with page
// citations.
type Offline struct {
	tokenPattern *regexp.Regexp
	sentenceRe   *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewOffline() *Offline {
	return &Offline{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\d+`),
		sentenceRe:   regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:    offlineStopwords(),
	}
}

type scoredSentence struct {
	text  string
	page  int
	score float64
	ord   int
}

// Synthesize builds a grounded answer from retrieved chunks and matched
// facts. With no grounding at all it returns the explicit not-found text
// with empty citations.
func (o *Offline) Synthesize(query string, results []domain.SearchResult, fcts []domain.Fact) Result {
	if len(results) == 0 && len(fcts) == 0 {
		return Result{Text: NoGroundingText, Citations: []int{}, Mode: ModeOffline}
	}

	queryTokens := o.tokenSet(query)
	var sentences []scoredSentence
	ord := 0
	for _, r := range results {
		page := r.Chunk.FirstPage()
		for _, sent := range o.splitSentences(r.Chunk.Text) {
			sentences = append(sentences, scoredSentence{
				text:  sent,
				page:  page,
				score: o.overlap(queryTokens, sent),
				ord:   ord,
			})
			ord++
		}
	}
	for _, f := range fcts {
		sentences = append(sentences, scoredSentence{
			text:  f.Text,
			page:  f.Page,
			score: o.overlap(queryTokens, f.Text),
			ord:   ord,
		})
		ord++
	}

	sort.SliceStable(sentences, func(i, j int) bool { return sentences[i].score > sentences[j].score })

	var picked []scoredSentence
	for _, s := range sentences {
		if s.score <= 0 || len(picked) == 3 {
			break
		}
		picked = append(picked, s)
	}

	var b strings.Builder
	citations := map[int]struct{}{}
	if len(picked) > 0 {
		b.WriteString("Based on the indexed documents:\n")
		for _, s := range picked {
			fmt.Fprintf(&b, "> %q [Page %d]\n", s.text, s.page)
			citations[s.page] = struct{}{}
		}
	} else if len(results) > 0 {
		// Nothing matched the query terms; quote the most similar section
		// so the answer still points somewhere concrete.
		top := results[0].Chunk
		fmt.Fprintf(&b, "No exact match for your question; the closest section found is:\n> %q [Page %d]\n",
			snippet(top.Text, 300), top.FirstPage())
		citations[top.FirstPage()] = struct{}{}
	} else {
		return Result{Text: NoGroundingText, Citations: []int{}, Mode: ModeOffline}
	}

	return Result{Text: strings.TrimRight(b.String(), "\n"), Citations: sortedPages(citations), Mode: ModeOffline}
}

func (o *Offline) splitSentences(text string) []string {
	found := o.sentenceRe.FindAllString(text, -1)
	if len(found) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	var out []string
	for _, s := range found {
		s = strings.TrimSpace(s)
		if len(s) > 10 { // drop fragments too short to carry meaning
			out = append(out, s)
		}
	}
	return out
}

func (o *Offline) tokenSet(s string) map[string]struct{} {
	tokens := o.tokenPattern.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, isStop := o.stopwords[t]; isStop {
			continue
		}
		m[t] = struct{}{}
	}
	return m
}

// overlap counts distinct query terms present in the sentence, with a
// small boost for substantial sentences.
func (o *Offline) overlap(queryTokens map[string]struct{}, sentence string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	matches := 0
	seen := map[string]struct{}{}
	for _, t := range o.tokenPattern.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	score := float64(matches) * 2
	if len(sentence) > 50 {
		score += 0.5
	}
	return score
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sortedPages(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func offlineStopwords() map[string]struct{} {
	words := []string{
		"what", "is", "the", "are", "for", "of", "in", "to", "a", "an",
		"my", "me", "i", "how", "do", "does", "can", "rules", "policy",
		"and", "or", "on", "at", "by", "with", "as", "it", "this", "that",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
