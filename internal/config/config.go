package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Ventia
type Config struct {
	Server Server `mapstructure:"server"`
	Admin  Admin  `mapstructure:"admin"`
	KB     KB     `mapstructure:"kb"`
	Chat   Chat   `mapstructure:"chat"`
	LLM    LLM    `mapstructure:"llm"`
	Redis  Redis  `mapstructure:"redis"`
}

// Server holds server configuration
type Server struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Admin holds admin authentication configuration
type Admin struct {
	APIKey string `mapstructure:"api_key"`
}

// KB holds knowledge base configuration
type KB struct {
	Dir string `mapstructure:"dir"`
}

// Chat holds conversation pipeline configuration
type Chat struct {
	MinRelevance float64       `mapstructure:"min_relevance"`
	MinItemScore float64       `mapstructure:"min_item_score"`
	SearchLimit  int           `mapstructure:"search_limit"`
	WindowMax    int           `mapstructure:"window_max"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// LLM holds generation provider configuration
type LLM struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float64       `mapstructure:"temperature"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Redis holds optional reply cache backend configuration
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("VENTIA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("admin.api_key", "")

	v.SetDefault("kb.dir", "./kb")

	v.SetDefault("chat.min_relevance", 0.12)
	v.SetDefault("chat.min_item_score", 0.18)
	v.SetDefault("chat.search_limit", 5)
	v.SetDefault("chat.window_max", 8)
	v.SetDefault("chat.cache_ttl", "45s")
	v.SetDefault("chat.session_ttl", "0")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.chat_model", "gpt-4o-mini")
	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", "40s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
