package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ragchat/internal/simulator"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LatencyConfig is an inclusive-exclusive range of simulated latency.
type LatencyConfig struct {
	Min int `yaml:"min" validate:"gte=0"`
	Max int `yaml:"max" validate:"gtefield=Min"`
}

// SimulatorConfig configures the retrieval simulator's outcome mix.
type SimulatorConfig struct {
	LatencyMs    LatencyConfig `yaml:"latency_ms"`
	FailureRate  float64       `yaml:"failure_rate" validate:"gte=0,lt=1"`
	NullRate     float64       `yaml:"null_rate" validate:"gte=0,lt=1"`
	EmptyRate    float64       `yaml:"empty_rate" validate:"gte=0,lt=1"`
	NoResultRate float64       `yaml:"no_result_rate" validate:"gte=0,lt=1"`
	MaxCitations int           `yaml:"max_citations" validate:"gte=1"`
	// Seed pins the random source; 0 seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

// CorpusConfig selects where documents come from.
type CorpusConfig struct {
	Type              string   `yaml:"type" validate:"omitempty,oneof=builtin yaml text"`
	Path              string   `yaml:"path,omitempty" validate:"required_if=Type yaml"`
	Paths             []string `yaml:"paths,omitempty" validate:"required_if=Type text"`
	SentencesPerPage  int      `yaml:"sentences_per_page"`
	OverlapSentences  int      `yaml:"overlap_sentences"`
	OverviewSentences int      `yaml:"overview_sentences"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. Keys missing from the file keep their default values.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragchat/config.yaml and returns them.
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

// ApplyEnv overrides fields from RAGCHAT_LOG_LEVEL and RAGCHAT_SEED.
func (c *AppConfig) ApplyEnv() error {
	if v := os.Getenv("RAGCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RAGCHAT_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("RAGCHAT_SEED: %w", err)
		}
		c.Simulator.Seed = seed
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	s := c.Simulator
	if sum := s.FailureRate + s.NullRate + s.EmptyRate + s.NoResultRate; sum > 1 {
		return fmt.Errorf("simulator rates sum to %v, must not exceed 1", sum)
	}
	return nil
}

// RetrievalConfig maps the file settings onto the simulator's Config. The
// random source is left nil unless a seed is set.
func (c *AppConfig) RetrievalConfig() simulator.Config {
	s := c.Simulator
	cfg := simulator.Config{
		MinLatency:   time.Duration(s.LatencyMs.Min) * time.Millisecond,
		MaxLatency:   time.Duration(s.LatencyMs.Max) * time.Millisecond,
		FailureRate:  s.FailureRate,
		NullRate:     s.NullRate,
		EmptyRate:    s.EmptyRate,
		NoResultRate: s.NoResultRate,
		MaxCitations: s.MaxCitations,
	}
	if s.Seed != 0 {
		cfg.Random = rand.New(rand.NewPCG(s.Seed, s.Seed))
	}
	return cfg
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultLogPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "ragchat", "ragchat.log")
	}
	return "ragchat.log"
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Simulator: SimulatorConfig{
			LatencyMs:    LatencyConfig{Min: 1000, Max: 2000},
			FailureRate:  0.12,
			NullRate:     0.05,
			EmptyRate:    0.05,
			NoResultRate: 0.08,
			MaxCitations: 3,
		},
		Corpus: CorpusConfig{Type: "builtin", SentencesPerPage: 5, OverlapSentences: 0, OverviewSentences: 2},
		Log:    LogConfig{Level: "info", File: defaultLogPath(), MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	cfg.Corpus.Type = strings.ToLower(strings.TrimSpace(cfg.Corpus.Type))
	if cfg.Corpus.SentencesPerPage == 0 {
		cfg.Corpus.SentencesPerPage = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaultLogPath()
	}
}
