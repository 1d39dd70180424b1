// Package app assembles the triage pipeline from configuration. Assembly
// never fails hard: a backend that cannot be configured is replaced by its
// degraded stand-in and the pipeline keeps running with reduced quality.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"triage/internal/agent"
	"triage/internal/catalog"
	"triage/internal/chunker"
	"triage/internal/config"
	"triage/internal/domain"
	embgemini "triage/internal/embedding/gemini"
	"triage/internal/embedding/hashing"
	embopenai "triage/internal/embedding/openai"
	gengemini "triage/internal/generation/gemini"
	genopenai "triage/internal/generation/openai"
	"triage/internal/logger"
	"triage/internal/service"
	"triage/internal/summarizer"
	"triage/internal/vectorstore"
	"triage/internal/vectorstore/memory"
	"triage/internal/vectorstore/qdrant"
)

// App bundles the assembled pipeline and its shared components.
type App struct {
	Config   *config.AppConfig
	Embedder domain.Embedder
	RAG      *service.RAGService
	Triage   *service.TriageService
	Catalog  *catalog.Catalog
}

// Assemble builds every component the config names. Misconfigured optional
// backends degrade: the vector stores become no-op indexes, the generator
// becomes nil (routing to Manual, fields from the offline fallback), the
// catalog is skipped.
func Assemble(cfg *config.AppConfig) *App {
	emb := buildEmbedder(cfg)
	tickets := buildIndex(cfg, cfg.VectorStore.TicketCollection, emb.Dimension())
	docs := buildIndex(cfg, cfg.VectorStore.DocCollection, emb.Dimension())
	gen := buildGenerator(cfg)

	opts := []service.Option{
		service.WithTopK(cfg.Retrieval.TicketTopK, cfg.Retrieval.DocTopK),
		service.WithPreview(summarizer.NewFrequency(cfg.Catalog.PreviewSentences)),
	}
	reg := openCatalog(cfg)
	if reg != nil {
		opts = append(opts, service.WithCatalog(reg))
	}

	rag := service.NewRAGService(emb, chunker.NewParagraphChunker(), tickets, docs, opts...)
	return &App{
		Config:   cfg,
		Embedder: emb,
		RAG:      rag,
		Triage:   service.NewTriageService(agent.NewRouter(gen), agent.NewCreator(gen), rag),
		Catalog:  reg,
	}
}

// Close releases resources held by assembled components.
func (a *App) Close() {
	if a.Catalog != nil {
		a.Catalog.Close()
	}
}

func buildEmbedder(cfg *config.AppConfig) domain.Embedder {
	switch cfg.Embedder.Type {
	case "hashing", "":
		return hashing.NewEmbedder(hashingDimension(cfg))
	case "gemini":
		g := cfg.Embedder.Gemini
		if g == nil {
			g = &config.GeminiEmbedderConfig{APIKeyEnv: "GOOGLE_API_KEY"}
		}
		client, err := embgemini.NewClient(embgemini.Config{
			BaseURL:   g.BaseURL,
			APIKeyEnv: g.APIKeyEnv,
			Model:     g.Model,
			Timeout:   time.Duration(g.TimeoutSecs) * time.Second,
			Dimension: g.Dimension,
		})
		if err != nil {
			logger.Warnf("gemini embedder unavailable, falling back to hashing: %v", err)
			return hashing.NewEmbedder(hashingDimension(cfg))
		}
		return client
	case "openai":
		o := cfg.Embedder.OpenAI
		if o == nil {
			logger.Warnf("openai embedder not configured, falling back to hashing")
			return hashing.NewEmbedder(hashingDimension(cfg))
		}
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:   o.BaseURL,
			APIKeyEnv: o.APIKeyEnv,
			Model:     o.Model,
			Timeout:   time.Duration(o.TimeoutSecs) * time.Second,
			Dimension: o.Dimension,
		})
		if err != nil {
			logger.Warnf("openai embedder unavailable, falling back to hashing: %v", err)
			return hashing.NewEmbedder(hashingDimension(cfg))
		}
		return client
	default:
		logger.Warnf("unknown embedder %q, falling back to hashing", cfg.Embedder.Type)
		return hashing.NewEmbedder(hashingDimension(cfg))
	}
}

func hashingDimension(cfg *config.AppConfig) int {
	if cfg.Embedder.Dimension > 0 {
		return cfg.Embedder.Dimension
	}
	return hashing.DefaultDimension
}

func buildIndex(cfg *config.AppConfig, collection string, dimension int) vectorstore.Index {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewIndex()
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			logger.Warnf("qdrant not configured, %s index degraded", collection)
			return vectorstore.Unavailable{}
		}
		idx, err := qdrant.NewIndex(qdrant.Config{
			URL:        q.URL,
			APIKey:     os.Getenv(q.APIKeyEnv),
			Collection: collection,
			Dimension:  dimension,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Warnf("qdrant index %s unavailable: %v", collection, err)
			return vectorstore.Unavailable{}
		}
		return idx
	default:
		logger.Warnf("unknown vector store %q, %s index degraded", cfg.VectorStore.Type, collection)
		return vectorstore.Unavailable{}
	}
}

func buildGenerator(cfg *config.AppConfig) domain.Generator {
	switch cfg.Generator.Type {
	case "gemini", "":
		g := cfg.Generator.Gemini
		if g == nil {
			g = &config.GeneratorBackendConfig{APIKeyEnv: "GOOGLE_API_KEY"}
		}
		client, err := gengemini.NewClient(gengemini.Config{
			BaseURL:   g.BaseURL,
			APIKeyEnv: g.APIKeyEnv,
			Model:     g.Model,
			Timeout:   time.Duration(g.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Warnf("gemini generator unavailable, drafting degrades to fallbacks: %v", err)
			return nil
		}
		return client
	case "openai":
		o := cfg.Generator.OpenAI
		if o == nil {
			logger.Warnf("openai generator not configured, drafting degrades to fallbacks")
			return nil
		}
		client, err := genopenai.NewClient(genopenai.Config{
			BaseURL:   o.BaseURL,
			APIKeyEnv: o.APIKeyEnv,
			Model:     o.Model,
			Timeout:   time.Duration(o.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Warnf("openai generator unavailable, drafting degrades to fallbacks: %v", err)
			return nil
		}
		return client
	case "none":
		return nil
	default:
		logger.Warnf("unknown generator %q, drafting degrades to fallbacks", cfg.Generator.Type)
		return nil
	}
}

func openCatalog(cfg *config.AppConfig) *catalog.Catalog {
	path := cfg.Catalog.Path
	if path == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			logger.Warnf("no catalog path and no user cache dir, catalog disabled: %v", err)
			return nil
		}
		path = filepath.Join(base, "triage", "catalog.db")
	}
	reg, err := catalog.Open(path)
	if err != nil {
		logger.Warnf("catalog unavailable: %v", err)
		return nil
	}
	return reg
}

// Describe summarizes the assembled backends for startup logging.
func (a *App) Describe() string {
	return fmt.Sprintf("embedder=%s store=%s generator=%s",
		a.Embedder.Name(), a.Config.VectorStore.Type, a.Config.Generator.Type)
}
