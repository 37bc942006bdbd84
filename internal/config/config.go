package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Data          interface{} `json:"data"`
	Model         string      `json:"model"`
	EmbedModel    string      `json:"embed_model"`
	Timeout       int         `json:"timeout"`
	MaxInputChars int         `json:"max_input_chars"`
	// Fallbacks are tried in order when the primary provider fails.
	Fallbacks []AIConfig `json:"fallbacks"`
}

type DocStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type CorpusConfig struct {
	DocStore     DocStoreConfig `json:"doc_store"`
	ChunkSize    int            `json:"chunk_size"`
	ChunkOverlap int            `json:"chunk_overlap"`
	SourcesFile  string         `json:"sources_file"`
}

type CacheConfig struct {
	EmbeddingTTLDays int    `json:"embedding_ttl_days"`
	CleanupCron      string `json:"cleanup_cron"`
}

type Config struct {
	DB               DatabaseConfig   `json:"db"`
	Port             int              `json:"port"`
	AdminSecret      string           `json:"admin_secret"`
	CORSAllowlist    []string         `json:"cors_allowlist"`
	RateLimitSeconds int              `json:"rate_limit_seconds"`
	LogConfig        logger.LogConfig `json:"log_config"`
	AI               AIConfig         `json:"ai"`
	Corpus           CorpusConfig     `json:"corpus"`
	Cache            CacheConfig      `json:"cache"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DB.DSN == "" && (cfg.DB.Host == "" || cfg.DB.DBName == "") {
		return nil, fmt.Errorf("db.dsn or db.host/db.db_name is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.AdminSecret == "" {
		return nil, fmt.Errorf("admin_secret is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 120
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 20000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Corpus.DocStore.Type == "" {
		cfg.Corpus.DocStore.Type = "local"
	}
	if cfg.Corpus.ChunkSize == 0 {
		cfg.Corpus.ChunkSize = 1000
	}
	if cfg.Corpus.ChunkOverlap == 0 {
		cfg.Corpus.ChunkOverlap = 200
	}
	if cfg.Corpus.ChunkOverlap >= cfg.Corpus.ChunkSize {
		return nil, fmt.Errorf("corpus.chunk_overlap must be smaller than corpus.chunk_size")
	}
	if cfg.Cache.EmbeddingTTLDays == 0 {
		cfg.Cache.EmbeddingTTLDays = 30
	}
	if cfg.Cache.CleanupCron == "" {
		cfg.Cache.CleanupCron = "0 4 * * *"
	}
	return &cfg, nil
}
