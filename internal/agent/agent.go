// Package agent orchestrates the query pipeline: guardrails, intent
// classification, retrieval and either answer synthesis or action payload
// construction. Every query produces exactly one normalized response.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hragent/internal/action"
	"hragent/internal/domain"
	"hragent/internal/facts"
	"hragent/internal/intent"
	"hragent/internal/synth"
)

const (
	emptyQueryText    = "Please enter a question or a request."
	unknownActionText = "I can apply for leave, schedule a meeting, create a ticket, check eligibility, get a balance or escalate. Which would you like?"
	maxMatchedFacts   = 3
	defaultTopK       = 5
)

// Agent answers HR queries over an already-built index.
type Agent struct {
	embedder   domain.Embedder
	store      domain.VectorStore
	facts      []domain.Fact
	classifier *intent.Classifier
	synth      *synth.Synthesizer
	engine     *action.Engine
	topK       int
	log        *slog.Logger
}

// New wires the pipeline. The synthesizer doubles as the classifier's
// semantic assist, so both share one circuit breaker.
func New(embedder domain.Embedder, store domain.VectorStore, fcts []domain.Fact,
	s *synth.Synthesizer, engine *action.Engine, topK int, log *slog.Logger) *Agent {
	if topK <= 0 {
		topK = defaultTopK
	}
	if log == nil {
		log = slog.Default()
	}
	if engine == nil {
		engine = action.NewEngine()
	}
	return &Agent{
		embedder:   embedder,
		store:      store,
		facts:      fcts,
		classifier: intent.NewClassifier(s.ClassifyIntent),
		synth:      s,
		engine:     engine,
		topK:       topK,
		log:        log,
	}
}

// Process handles one query end to end. Errors surface only for
// infrastructure failures (store or embedder); everything else, including
// refusals and unclassifiable actions, is a normal response.
func (a *Agent) Process(ctx context.Context, query string) (domain.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.NewClarification(emptyQueryText), nil
	}

	if refusal, ok := intent.Refusal(query); ok {
		a.log.Info("refused query by guardrail", "query", query)
		return domain.NewClarification(refusal), nil
	}

	it := a.classifier.Classify(ctx, query)
	a.log.Debug("classified query", "kind", it.Kind.String(), "action", string(it.Action))

	switch it.Kind {
	case domain.Action:
		return a.handleAction(it.Action, query)
	case domain.Comparative:
		return a.handleComparative(ctx, query)
	default:
		return a.handleInformational(ctx, query)
	}
}

func (a *Agent) handleAction(kind domain.ActionKind, query string) (domain.Response, error) {
	if kind == "" {
		return domain.NewClarification(unknownActionText), nil
	}
	payload, err := a.engine.Build(kind, query)
	if err != nil {
		return domain.NewClarification(unknownActionText), nil
	}
	return domain.NewAction(payload), nil
}

func (a *Agent) handleInformational(ctx context.Context, query string) (domain.Response, error) {
	results, err := a.retrieve(query)
	if err != nil {
		return domain.Response{}, err
	}
	matched := facts.Match(a.facts, query, maxMatchedFacts)
	res := a.synth.Synthesize(ctx, query, results, matched)
	return domain.NewAnswer(res.Text, res.Citations), nil
}

// handleComparative retrieves each comparison target independently so both
// sides of the comparison are represented in the context, then synthesizes
// over the merged results.
func (a *Agent) handleComparative(ctx context.Context, query string) (domain.Response, error) {
	targets := intent.CompareTargets(query)
	seen := map[string]bool{}
	var merged []domain.SearchResult
	for _, target := range targets {
		results, err := a.retrieve(target)
		if err != nil {
			return domain.Response{}, err
		}
		for _, r := range results {
			if seen[r.Chunk.ChunkID] {
				continue
			}
			seen[r.Chunk.ChunkID] = true
			merged = append(merged, r)
		}
	}
	matched := facts.Match(a.facts, query, maxMatchedFacts)
	res := a.synth.Synthesize(ctx, query, merged, matched)
	return domain.NewAnswer(res.Text, res.Citations), nil
}

// retrieve embeds the query with the index's own embedder and drops
// non-positive scores. A query sharing no vocabulary with the corpus embeds
// to the zero vector and retrieves nothing, which downstream turns into an
// honest "not found" instead of quoting arbitrary chunks.
func (a *Agent) retrieve(query string) ([]domain.SearchResult, error) {
	vec, err := a.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := a.store.Search(vec, a.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	kept := results[:0]
	for _, r := range results {
		if r.Score > 0 {
			kept = append(kept, r)
		}
	}
	return kept, nil
}
