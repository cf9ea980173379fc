package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"hragent/internal/agent"
	"hragent/internal/chunker"
	"hragent/internal/config"
	"hragent/internal/domain"
	"hragent/internal/embedding/openai"
	"hragent/internal/embedding/tfidf"
	"hragent/internal/facts"
	"hragent/internal/index"
	"hragent/internal/pdfx"
	"hragent/internal/synth"
	"hragent/internal/vectorstore/memory"
	"hragent/internal/vectorstore/sqlitestore"
)

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

// openStore returns the configured vector store and a close function. The
// sqlite variant also reports how many chunks it already holds.
func openStore(cfg *config.AppConfig) (domain.VectorStore, func() error, int, error) {
	switch cfg.Index.Type {
	case "sqlite", "":
		st, err := sqlitestore.Open(cfg.Index.Path)
		if err != nil {
			return nil, nil, 0, err
		}
		return st, st.Close, st.Count(), nil
	case "memory":
		return memory.NewStorage(), func() error { return nil }, 0, nil
	default:
		return nil, nil, 0, fmt.Errorf("unknown index type: %s", cfg.Index.Type)
	}
}

func loadDocuments(dir string, log *slog.Logger) ([]domain.Document, error) {
	paths, err := pdfx.FindPDFs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", dir)
	}
	var docs []domain.Document
	for _, p := range paths {
		doc, err := pdfx.LoadDocument(p)
		if err != nil {
			log.Warn("skipping unreadable document", "path", p, "error", err)
			continue
		}
		docs = append(docs, doc)
		log.Debug("loaded document", "path", p, "pages", len(doc.Pages))
	}
	if len(docs) == 0 {
		return nil, errors.New("no readable PDF documents")
	}
	return docs, nil
}

func newSynthesizer(cfg *config.AppConfig, log *slog.Logger) *synth.Synthesizer {
	var client synth.ChatClient
	if cfg.LLM.BaseURL != "" {
		client = synth.NewOpenAIClient(synth.ClientConfig{
			BaseURL:           cfg.LLM.BaseURL,
			APIKey:            os.Getenv(cfg.LLM.APIKeyEnv),
			Model:             cfg.LLM.Model,
			Timeout:           time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		})
	}
	breaker := synth.NewBreaker(cfg.Breaker.FailureThreshold,
		time.Duration(cfg.Breaker.CooldownSecs)*time.Second)
	return synth.New(client, breaker, time.Duration(cfg.LLM.TimeoutSecs)*time.Second, log)
}

// prepareAgent assembles the full pipeline. With a persisted non-empty index
// and rebuild false it reuses stored vectors and only re-derives the
// embedder vocabulary and fact table; otherwise it runs a full build.
func prepareAgent(ctx context.Context, cfg *config.AppConfig, log *slog.Logger, rebuild bool) (*agent.Agent, string, func() error, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, "", nil, err
	}
	store, closeStore, persisted, err := openStore(cfg)
	if err != nil {
		return nil, "", nil, err
	}

	docs, err := loadDocuments(cfg.DocumentsDir, log)
	if err != nil {
		closeStore()
		return nil, "", nil, err
	}

	var fcts []domain.Fact
	var summary string
	if persisted > 0 && !rebuild {
		st := store.(*sqlitestore.Storage)
		corpus := make([]string, 0, persisted)
		for _, ch := range st.Chunks() {
			corpus = append(corpus, ch.Text)
		}
		if err := embedder.Prepare(corpus); err != nil {
			closeStore()
			return nil, "", nil, fmt.Errorf("preparing embedder from persisted index: %w", err)
		}
		for _, doc := range docs {
			fcts = append(fcts, facts.Extract(doc)...)
		}
		summary = fmt.Sprintf("Loaded %d indexed chunks from %s (%d documents, %d facts)",
			persisted, cfg.Index.Path, len(docs), len(fcts))
		log.Info("reusing persisted index", "chunks", persisted, "facts", len(fcts))
	} else {
		builder := index.NewBuilder(
			chunker.NewPageChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences),
			embedder, store, log)
		report, built, err := builder.Build(ctx, docs)
		if err != nil {
			closeStore()
			return nil, "", nil, err
		}
		fcts = built
		summary = report.String()
	}

	s := newSynthesizer(cfg, log)
	a := agent.New(embedder, store, fcts, s, nil, cfg.Retrieval.TopK, log)
	return a, summary, closeStore, nil
}
