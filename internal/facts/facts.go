// Package facts extracts structured policy lines (amounts, limits, day
// counts, eligibility rules) deterministically from page text. These facts
// complement semantic retrieval: they are matched by keyword, not by
// embedding, so numeric policy details survive even when similarity search
// ranks them low.
package facts

import (
	"regexp"
	"sort"
	"strings"

	"hragent/internal/chunker"
	"hragent/internal/domain"
)

var factLineRe = regexp.MustCompile(`(?i)(\$|₹|\d+\s?%|\d+\s?days?|\d+\s?years?|limit|eligib)`)

// Extract scans a document for lines that look like structured policy data.
func Extract(doc domain.Document) []domain.Fact {
	var out []domain.Fact
	for _, page := range doc.Pages {
		for _, line := range strings.Split(page.Text, "\n") {
			line = chunker.Normalize(line)
			if line == "" || !factLineRe.MatchString(line) {
				continue
			}
			out = append(out, domain.Fact{Text: line, Page: page.Number})
		}
	}
	return out
}

// Match returns up to limit facts whose text contains any of the query's
// keywords, most keyword hits first, ties by extraction order.
func Match(facts []domain.Fact, query string, limit int) []domain.Fact {
	keywords := tokenize(query)
	if len(keywords) == 0 || limit <= 0 {
		return nil
	}
	type scored struct {
		fact domain.Fact
		hits int
		ord  int
	}
	var matched []scored
	for i, f := range facts {
		lower := strings.ToLower(f.Text)
		hits := 0
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				hits++
			}
		}
		if hits > 0 {
			matched = append(matched, scored{fact: f, hits: hits, ord: i})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].hits != matched[j].hits {
			return matched[i].hits > matched[j].hits
		}
		return matched[i].ord < matched[j].ord
	})
	if limit > len(matched) {
		limit = len(matched)
	}
	out := make([]domain.Fact, 0, limit)
	for _, m := range matched[:limit] {
		out = append(out, m.fact)
	}
	return out
}

var wordRe = regexp.MustCompile(`\p{L}+|\d+`)

func tokenize(s string) []string {
	raw := wordRe.FindAllString(strings.ToLower(s), -1)
	out := raw[:0]
	for _, t := range raw {
		if len(t) < 3 {
			continue
		}
		out = append(out, t)
	}
	return out
}
