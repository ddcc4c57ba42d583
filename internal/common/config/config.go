// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig             `mapstructure:"app"`
	Server        ServerConfig          `mapstructure:"server"`
	Database      DatabaseConfig        `mapstructure:"database"`
	APIs          APIsConfig            `mapstructure:"apis"`
	Knowledge     KnowledgeConfig       `mapstructure:"knowledge"`
	Gating        GatingConfig          `mapstructure:"gating"`
	Flows         map[string]FlowConfig `mapstructure:"flows"`
	Logging       LoggingConfig         `mapstructure:"logging"`
	Notifications NotificationConfig    `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
	ReadTimeout int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Specific Configuration Sections ---

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`
}

// KnowledgeConfig holds settings for the knowledge augmentation tool.
type KnowledgeConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Index       string `mapstructure:"index"`        // elasticsearch index of grounding passages
	FactsTable  string `mapstructure:"facts_table"`  // postgres table of curated visa facts
	MaxSnippets int    `mapstructure:"max_snippets"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// GatingConfig holds settings for the wish-gating state machine.
type GatingConfig struct {
	MaxFreeWishes int    `mapstructure:"max_free_wishes"`
	SessionTTL    int    `mapstructure:"session_ttl"`    // seconds
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// FlowConfig holds the core settings applicable to every flow.
type FlowConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	Timeout           int     `mapstructure:"timeout"`     // milliseconds
	MaxRetries        int     `mapstructure:"max_retries"` // generation retries, applied by the flow handler
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	DisclaimerEnabled bool    `mapstructure:"disclaimer_enabled"`
}

// NotificationConfig holds settings for the upgrade-confirmation email.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
