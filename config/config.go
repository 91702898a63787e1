package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the deep-research service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Research  ResearchConfig  `mapstructure:"research"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig describes the upstream generation service
type LLMConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	FinalizeModel  string        `mapstructure:"finalize_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ThinkingBudget int           `mapstructure:"thinking_budget"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// ResearchConfig controls the research/control loop and citation handling
type ResearchConfig struct {
	MaxCycles              int  `mapstructure:"max_cycles"`
	MaxConsecutiveResearch int  `mapstructure:"max_consecutive_research"`
	CitationSummaries      bool `mapstructure:"citation_summaries"`
	SummarySources         int  `mapstructure:"summary_sources"`
	SummaryQueries         int  `mapstructure:"summary_queries"`
	ResolveTitles          bool `mapstructure:"resolve_titles"`
}

func (r ResearchConfig) Validate() error {
	if r.MaxCycles <= 0 {
		return fmt.Errorf("research.max_cycles must be > 0")
	}
	if r.MaxConsecutiveResearch <= 0 {
		return fmt.Errorf("research.max_consecutive_research must be > 0")
	}
	return nil
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return c.Research.Validate()
}

// LoadConfig reads configuration from file and environment.
// Environment variables use the DEEPDIVE_ prefix with dots replaced by
// underscores (e.g. DEEPDIVE_LLM_API_KEY).
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10002")
	viper.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("llm.model", "gemini-2.5-flash")
	viper.SetDefault("llm.timeout", "5m")
	viper.SetDefault("llm.thinking_budget", -1)
	viper.SetDefault("research.max_cycles", 5)
	viper.SetDefault("research.max_consecutive_research", 3)
	viper.SetDefault("research.summary_sources", 10)
	viper.SetDefault("research.summary_queries", 10)
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("DEEPDIVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file is optional; env vars and defaults can carry everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}
	if cfg.FinalizeModelOrDefault() == "" {
		panic(fmt.Errorf("llm.model is required"))
	}
	return &cfg
}

// FinalizeModelOrDefault returns the finalize-phase model, falling back to
// the base model when none is configured.
func (c *Config) FinalizeModelOrDefault() string {
	if strings.TrimSpace(c.LLM.FinalizeModel) != "" {
		return c.LLM.FinalizeModel
	}
	return c.LLM.Model
}
