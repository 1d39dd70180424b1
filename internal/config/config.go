package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Dimension   int    `yaml:"dimension"`
}

// GeminiEmbedderConfig holds configuration for the Gemini embedder.
type GeminiEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Dimension   int    `yaml:"dimension"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Gemini    *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects the vector store backend and names the two
// logical collections.
type VectorStoreConfig struct {
	Type             string        `yaml:"type"`
	TicketCollection string        `yaml:"ticket_collection"`
	DocCollection    string        `yaml:"doc_collection"`
	Qdrant           *QdrantConfig `yaml:"qdrant,omitempty"`
}

// GeneratorBackendConfig configures one generation backend.
type GeneratorBackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig selects and configures the generation backend.
type GeneratorConfig struct {
	Type   string                  `yaml:"type"`
	Gemini *GeneratorBackendConfig `yaml:"gemini,omitempty"`
	OpenAI *GeneratorBackendConfig `yaml:"openai,omitempty"`
}

// RetrievalConfig sets the top-K budgets for the two grounding halves.
type RetrievalConfig struct {
	TicketTopK int `yaml:"ticket_top_k"`
	DocTopK    int `yaml:"doc_top_k"`
}

// CatalogConfig configures the local knowledge-item registry.
type CatalogConfig struct {
	Path             string `yaml:"path"`
	PreviewSentences int    `yaml:"preview_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Catalog     CatalogConfig     `yaml:"catalog"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/triage/config.yaml.
// If neither exists, it writes defaults to ~/.config/triage/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "triage", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "hashing"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Generator:   GeneratorConfig{Type: "gemini", Gemini: &GeneratorBackendConfig{}},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.VectorStore.TicketCollection == "" {
		cfg.VectorStore.TicketCollection = "jira-history"
	}
	if cfg.VectorStore.DocCollection == "" {
		cfg.VectorStore.DocCollection = "architecture-docs"
	}
	if cfg.Retrieval.TicketTopK == 0 {
		cfg.Retrieval.TicketTopK = 3
	}
	if cfg.Retrieval.DocTopK == 0 {
		cfg.Retrieval.DocTopK = 5
	}
	if cfg.Catalog.PreviewSentences == 0 {
		cfg.Catalog.PreviewSentences = 3
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "gemini" && cfg.Embedder.Gemini == nil {
		cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
	}
	if cfg.Embedder.Gemini != nil {
		g := cfg.Embedder.Gemini
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GOOGLE_API_KEY"
		}
		if g.Model == "" {
			g.Model = "text-embedding-004"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 30
		}
		if g.Dimension == 0 {
			g.Dimension = 768
		}
	}
	if cfg.Generator.Type == "gemini" && cfg.Generator.Gemini == nil {
		cfg.Generator.Gemini = &GeneratorBackendConfig{}
	}
	if cfg.Generator.Gemini != nil {
		g := cfg.Generator.Gemini
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GOOGLE_API_KEY"
		}
		if g.Model == "" {
			g.Model = "gemini-2.0-flash-exp"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 60
		}
	}
	if cfg.Generator.Type == "openai" && cfg.Generator.OpenAI != nil {
		o := cfg.Generator.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "gpt-4o-mini"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 60
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		q := cfg.VectorStore.Qdrant
		if q.APIKeyEnv == "" {
			q.APIKeyEnv = "QDRANT_API_KEY"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
}
