package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the QA service
type Config struct {
	General   GeneralConfig           `mapstructure:"general"`
	LLM       LLMConfig               `mapstructure:"llm"`
	WebSearch WebSearchConfig         `mapstructure:"web_search"`
	Retrieval RetrievalConfig         `mapstructure:"retrieval"`
	Domains   map[string]DomainConfig `mapstructure:"domains"`
	Storage   StorageConfig           `mapstructure:"storage"`
	Server    ServerConfig            `mapstructure:"server"`
	Telemetry TelemetryConfig         `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	MaxIterations  int           `mapstructure:"max_iterations"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
	Backoff   BackoffConfig          `mapstructure:"backoff"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type    string              `mapstructure:"type"` // openai-compatible endpoints
	APIKey  string              `mapstructure:"api_key"`
	BaseURL string              `mapstructure:"base_url"`
	Models  map[string]LLMModel `mapstructure:"models"`
	Timeout time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string  `mapstructure:"name"`
	APIName         string  `mapstructure:"api_name"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	CostPer1K       float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// LLMRoutingConfig defines which model to use for different stages
type LLMRoutingConfig struct {
	Reasoning  string `mapstructure:"reasoning"`  // ReAct loop and swarm agents
	Rewrite    string `mapstructure:"rewrite"`    // query normalization
	Validation string `mapstructure:"validation"` // answer validation
	Vision     string `mapstructure:"vision"`     // image subject summaries
	Embedding  string `mapstructure:"embedding"`  // vector retrieval
	Fallback   string `mapstructure:"fallback"`
}

// BackoffConfig controls retries for gateway calls that are allowed to retry
type BackoffConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// WebSearchConfig contains web search settings
type WebSearchConfig struct {
	Provider     string        `mapstructure:"provider"` // brave or serper
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// RetrievalConfig contains vector/keyword index settings
type RetrievalConfig struct {
	PersistDir string                 `mapstructure:"persist_dir"`
	Indexes    map[string]IndexConfig `mapstructure:"indexes"` // keyed by domain
}

// IndexConfig describes one domain's prepackaged index
type IndexConfig struct {
	Collection    string  `mapstructure:"collection"`
	PassagesFile  string  `mapstructure:"passages_file"` // JSONL sidecar for the keyword index
	TopK          int     `mapstructure:"top_k"`
	Hybrid        bool    `mapstructure:"hybrid"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

// DomainConfig contains per-domain behavior settings
type DomainConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	SkipValidation bool   `mapstructure:"skip_validation"`
	SiteScope      string `mapstructure:"site_scope"`     // site: restriction for the domain web search tool
	DatabaseLabel  string `mapstructure:"database_label"` // source label for retrieval-backed answers
	Swarm          bool   `mapstructure:"swarm"`          // document analysis swarm available
}

// StorageConfig contains history persistence settings
type StorageConfig struct {
	Type       string        `mapstructure:"type"` // inmemory or redis
	HistoryTTL time.Duration `mapstructure:"history_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// TelemetryConfig contains telemetry settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("atlast_config")
	viper.SetConfigType("json")
	if path != "" {
		viper.AddConfigPath(path)
	}
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("ATLAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional; defaults + env cover the common case
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "60s")
	viper.SetDefault("general.max_iterations", 5)

	viper.SetDefault("llm.routing.reasoning", "gpt-4o")
	viper.SetDefault("llm.routing.rewrite", "gpt-4o-mini")
	viper.SetDefault("llm.routing.validation", "gpt-4o-mini")
	viper.SetDefault("llm.routing.vision", "gpt-4o")
	viper.SetDefault("llm.routing.embedding", "text-embedding-3-small")
	viper.SetDefault("llm.routing.fallback", "gpt-4o-mini")
	viper.SetDefault("llm.backoff.max_attempts", 30)
	viper.SetDefault("llm.backoff.delay", "2s")
	viper.SetDefault("llm.backoff.multiplier", 1.0)

	viper.SetDefault("web_search.provider", "serper")
	viper.SetDefault("web_search.max_results", 5)
	viper.SetDefault("web_search.timeout", "30s")

	viper.SetDefault("retrieval.persist_dir", "./atlast_db")
	for _, d := range []string{"medical", "islamic", "insurance"} {
		viper.SetDefault("retrieval.indexes."+d+".collection", d+"_Agentic_retrieval")
		viper.SetDefault("retrieval.indexes."+d+".top_k", 5)
		viper.SetDefault("retrieval.indexes."+d+".hybrid", false)
		viper.SetDefault("retrieval.indexes."+d+".min_similarity", 0.0)
	}

	viper.SetDefault("domains.medical.enabled", true)
	viper.SetDefault("domains.medical.database_label", "Domain Database (RAG)")
	viper.SetDefault("domains.medical.swarm", true)
	viper.SetDefault("domains.islamic.enabled", true)
	viper.SetDefault("domains.islamic.database_label", "Domain Database (RAG)")
	viper.SetDefault("domains.insurance.enabled", true)
	viper.SetDefault("domains.insurance.skip_validation", true)
	viper.SetDefault("domains.insurance.site_scope", "etiqa.com.my")
	viper.SetDefault("domains.insurance.database_label", "Etiqa Takaful Database")

	viper.SetDefault("storage.type", "inmemory")
	viper.SetDefault("storage.history_ttl", "24h")
	viper.SetDefault("storage.redis.host", "localhost")
	viper.SetDefault("storage.redis.port", 6379)
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.timeout", "5s")

	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.cost_tracking", true)
}

// overrideFromEnv overrides configuration with environment variables
func overrideFromEnv() {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		viper.Set("llm.providers.openai.type", "openai")
		viper.Set("llm.providers.openai.api_key", apiKey)
	}
	if apiKey := os.Getenv("BRAVE_SEARCH_KEY"); apiKey != "" {
		viper.Set("web_search.brave_api_key", apiKey)
	}
	if apiKey := os.Getenv("SERPER_API_KEY"); apiKey != "" {
		viper.Set("web_search.serper_api_key", apiKey)
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		viper.Set("storage.redis.host", host)
		viper.Set("storage.type", "redis")
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("storage.redis.port", p)
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		viper.Set("storage.redis.password", password)
	}

	if dir := os.Getenv("ATLAST_DB_DIR"); dir != "" {
		viper.Set("retrieval.persist_dir", dir)
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if len(config.LLM.Providers) == 0 {
		return fmt.Errorf("at least one LLM provider must be configured")
	}

	// Routing models must exist when providers declare an explicit model list.
	// A provider with no models passes names through to the API as-is.
	declared := false
	for _, provider := range config.LLM.Providers {
		if len(provider.Models) > 0 {
			declared = true
			break
		}
	}
	if declared {
		routingModels := []string{
			config.LLM.Routing.Reasoning,
			config.LLM.Routing.Rewrite,
			config.LLM.Routing.Validation,
			config.LLM.Routing.Vision,
			config.LLM.Routing.Embedding,
			config.LLM.Routing.Fallback,
		}
		for _, model := range routingModels {
			if model == "" {
				continue
			}
			found := false
			for _, provider := range config.LLM.Providers {
				for _, providerModel := range provider.Models {
					if providerModel.Name == model {
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if !found {
				return fmt.Errorf("routing model '%s' not found in any provider", model)
			}
		}
	}

	for name, dc := range config.Domains {
		if !dc.Enabled {
			continue
		}
		if _, ok := config.Retrieval.Indexes[name]; !ok {
			return fmt.Errorf("enabled domain '%s' has no retrieval index configured", name)
		}
	}

	if config.General.MaxIterations <= 0 {
		return fmt.Errorf("general.max_iterations must be positive")
	}

	switch config.Storage.Type {
	case "inmemory", "redis":
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}

	return nil
}
