// Package index builds the searchable semantic index from ingested
// documents in a one-shot batch step.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hragent/internal/domain"
	"hragent/internal/facts"
)

// ErrNoChunks is returned when ingestion produced nothing to index.
var ErrNoChunks = errors.New("no chunks produced from ingested documents")

// Report describes what a build included and excluded. A chunk whose
// embedding fails is logged and excluded, never fatal.
type Report struct {
	Documents      int
	ChunksIndexed  int
	ChunksExcluded int
	Facts          int
	Duration       time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("indexed %d chunks from %d documents (%d excluded, %d facts, %s)",
		r.ChunksIndexed, r.Documents, r.ChunksExcluded, r.Facts, r.Duration.Round(time.Millisecond))
}

// Builder constructs a vector index plus the structured-fact table.
type Builder struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	log      *slog.Logger
}

func NewBuilder(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{chunker: chunker, embedder: embedder, store: store, log: log}
}

// Build chunks, embeds and indexes the given documents, replacing any
// previous index content. Per-chunk embedding failures are excluded and
// reported; only a build that indexes nothing at all is an error.
func (b *Builder) Build(ctx context.Context, docs []domain.Document) (Report, []domain.Fact, error) {
	start := time.Now()
	report := Report{Documents: len(docs)}

	var allChunks []domain.Chunk
	var corpus []string
	var allFacts []domain.Fact
	for _, doc := range docs {
		chunks, err := b.chunker.Chunk(doc)
		if err != nil {
			return report, nil, fmt.Errorf("chunking document %s: %w", doc.ID, err)
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			corpus = append(corpus, ch.Text)
		}
		allFacts = append(allFacts, facts.Extract(doc)...)
	}
	if len(allChunks) == 0 {
		return report, nil, ErrNoChunks
	}

	if err := b.embedder.Prepare(corpus); err != nil {
		return report, nil, fmt.Errorf("preparing embedder: %w", err)
	}

	var kept []domain.Chunk
	var vectors [][]float64
	for _, ch := range allChunks {
		select {
		case <-ctx.Done():
			return report, nil, ctx.Err()
		default:
		}
		vec, err := b.embedder.Embed(ch.Text)
		if err != nil {
			report.ChunksExcluded++
			b.log.Warn("excluding chunk from index", "chunk", ch.ChunkID, "error", err)
			continue
		}
		kept = append(kept, ch)
		vectors = append(vectors, vec)
	}
	if len(kept) == 0 {
		return report, nil, fmt.Errorf("embedding failed for all %d chunks", len(allChunks))
	}

	if err := b.store.Init(b.embedder.Dimension()); err != nil {
		return report, nil, fmt.Errorf("initializing vector store: %w", err)
	}
	if err := b.store.Upsert(kept, vectors); err != nil {
		return report, nil, fmt.Errorf("storing vectors: %w", err)
	}

	report.ChunksIndexed = len(kept)
	report.Facts = len(allFacts)
	report.Duration = time.Since(start)
	b.log.Info("index build complete",
		"documents", report.Documents,
		"indexed", report.ChunksIndexed,
		"excluded", report.ChunksExcluded,
		"facts", report.Facts)
	return report, allFacts, nil
}
