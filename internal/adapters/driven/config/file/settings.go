// Package file provides TOML-backed settings for semdex.
// Settings live in ~/.semdex/config.toml by default; a missing file
// yields the defaults.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the settings file name inside the config directory.
const DefaultFileName = "config.toml"

// EmbeddingSettings selects and configures the embedding backend.
type EmbeddingSettings struct {
	// Backend is "ollama" (default) or "openai".
	Backend string `toml:"backend"`

	// Model overrides the backend's default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the backend's default API URL.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates against the backend (OpenAI only).
	APIKey string `toml:"api_key"`

	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`

	// RequestsPerSecond throttles embedding calls. Zero keeps the
	// backend's default.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// IndexSettings holds the ingestion and search tunables.
type IndexSettings struct {
	MaxBatchSize        int     `toml:"max_batch_size"`
	EmbedBatchSize      int     `toml:"embed_batch_size"`
	OverfetchMultiplier int     `toml:"overfetch_multiplier"`
	MaxOverfetch        int     `toml:"max_overfetch"`
	ScoreThreshold      float64 `toml:"score_threshold"`
	DefaultTopK         int     `toml:"default_top_k"`
	MinTopK             int     `toml:"min_top_k"`
	MaxTopK             int     `toml:"max_top_k"`
}

// Settings is the full semdex configuration.
type Settings struct {
	Embedding EmbeddingSettings `toml:"embedding"`
	Index     IndexSettings     `toml:"index"`
}

// Defaults returns the settings used when no file exists.
// Zero-valued index tunables defer to the service defaults, so the
// file only needs to name what it changes.
func Defaults() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Backend: "ollama",
		},
	}
}

// DefaultPath returns the default settings file path (~/.semdex/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".semdex", DefaultFileName), nil
}

// Load reads settings from path. An empty path means the default
// location; a missing file returns Defaults() without error.
func Load(path string) (Settings, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Settings{}, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	s := Defaults()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// Save writes settings to path, creating the directory if needed.
// An empty path means the default location.
func Save(path string, s Settings) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
