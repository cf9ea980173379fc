// Package synth produces citation-backed answers from retrieved context,
// degrading from an LLM-backed online mode to deterministic offline
// extraction when the endpoint is unavailable.
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hragent/internal/domain"
)

const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Result is a synthesized answer with its page citations and the mode that
// produced it.
type Result struct {
	Text      string
	Citations []int
	Mode      string
}

// Synthesizer turns a query plus retrieved context into a grounded answer.
// Online failures are absorbed: every request that cannot be served online
// falls through to the offline extractor, never to the caller as an error.
type Synthesizer struct {
	client  ChatClient
	offline *Offline
	breaker *Breaker
	timeout time.Duration
	log     *slog.Logger
}

// New creates a synthesizer. A nil client disables online mode entirely.
func New(client ChatClient, breaker *Breaker, timeout time.Duration, log *slog.Logger) *Synthesizer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{
		client:  client,
		offline: NewOffline(),
		breaker: breaker,
		timeout: timeout,
		log:     log,
	}
}

const answerSystemPrompt = `You are an enterprise HR assistant. Answer strictly from the provided CONTEXT.
Rules:
1. Cite page numbers as [Page X] for every claim.
2. Be concise and professional.
3. If the answer is not in the context, say "I cannot find this information in the documents."`

// Synthesize answers the query from the retrieved chunks and facts. With
// no grounding it always states that nothing was found; it never invents
// content regardless of mode.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []domain.SearchResult, fcts []domain.Fact) Result {
	if len(results) == 0 && len(fcts) == 0 {
		return s.offline.Synthesize(query, results, fcts)
	}

	if s.client != nil && s.breaker.Allow() {
		answer, err := s.completeOnline(ctx, query, results, fcts)
		if err == nil {
			s.breaker.Success()
			return answer
		}
		s.breaker.Failure()
		s.log.Warn("online synthesis failed, falling back to offline extraction",
			"error", err, "breaker", s.breaker.State().String())
	}

	return s.offline.Synthesize(query, results, fcts)
}

func (s *Synthesizer) completeOnline(ctx context.Context, query string, results []domain.SearchResult, fcts []domain.Fact) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "[Page %d] %s\n\n", r.Chunk.FirstPage(), r.Chunk.Text)
	}
	for _, f := range fcts {
		fmt.Fprintf(&b, "[Page %d] FACT: %s\n", f.Page, f.Text)
	}
	user := fmt.Sprintf("Context:\n%s\nQuestion: %s", b.String(), query)

	text, err := s.client.Complete(ctx, answerSystemPrompt, user)
	if err != nil {
		return Result{}, err
	}

	known := knownPages(results, fcts)
	citations := citedPages(text, known)
	if len(citations) == 0 {
		// The model answered without citing; attach the retrieved pages so
		// the grounded-answer contract still holds.
		citations = sortedPages(known)
	}
	return Result{Text: strings.TrimSpace(text), Citations: citations, Mode: ModeOnline}, nil
}

const classifySystemPrompt = `Classify the HR query as exactly one word: informational, comparative, or action.
"action" means the user asks the system to perform something (apply leave, schedule, raise a ticket, escalate).`

// ClassifyIntent asks the online model to label an ambiguous query. It is
// governed by the same circuit breaker as answer synthesis; when degraded
// it reports ok=false and callers keep their rule-based default.
func (s *Synthesizer) ClassifyIntent(ctx context.Context, query string) (domain.IntentKind, bool) {
	if s.client == nil || !s.breaker.Allow() {
		return domain.Informational, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.Complete(ctx, classifySystemPrompt, query)
	if err != nil {
		s.breaker.Failure()
		return domain.Informational, false
	}
	s.breaker.Success()
	switch strings.ToLower(strings.TrimSpace(strings.Trim(text, ".\"' "))) {
	case "action":
		return domain.Action, true
	case "comparative":
		return domain.Comparative, true
	case "informational":
		return domain.Informational, true
	}
	return domain.Informational, false
}

var pageRefRe = regexp.MustCompile(`\[Page (\d+)\]`)

// citedPages extracts [Page N] references from model output, keeping only
// pages that actually exist in the retrieved context (no fabricated
// citations).
func citedPages(text string, known map[int]struct{}) []int {
	set := map[int]struct{}{}
	for _, m := range pageRefRe.FindAllStringSubmatch(text, -1) {
		p, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := known[p]; ok {
			set[p] = struct{}{}
		}
	}
	return sortedPages(set)
}

func knownPages(results []domain.SearchResult, fcts []domain.Fact) map[int]struct{} {
	known := map[int]struct{}{}
	for _, r := range results {
		for _, p := range r.Chunk.Pages {
			known[p] = struct{}{}
		}
	}
	for _, f := range fcts {
		known[f.Page] = struct{}{}
	}
	return known
}
