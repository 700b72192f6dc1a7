package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Assembly AssemblyAIConfig
	Groq     GroqConfig
	Mail     MailConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_scribe"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration. Redis is optional: when Host is
// empty the run lease falls back to an in-process store.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:""`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds blob storage configuration. Type selects the adapter:
// "minio" for object storage, "local" for the on-disk fallback.
type StorageConfig struct {
	Type            string `envconfig:"STORAGE_TYPE" default:"local"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-scribe"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string `envconfig:"STORAGE_PUBLIC_URL" default:""`
	LocalDir        string `envconfig:"STORAGE_LOCAL_DIR" default:"data"`
}

// AssemblyAIConfig holds speech-to-text provider configuration
type AssemblyAIConfig struct {
	APIKey       string        `envconfig:"ASSEMBLYAI_API_KEY" default:""`
	PollInterval time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"5s"`
	MaxWait      time.Duration `envconfig:"ASSEMBLYAI_MAX_WAIT" default:"30m"`
}

// GroqConfig holds LLM provider configuration
type GroqConfig struct {
	APIKey  string        `envconfig:"GROQ_API_KEY" default:""`
	BaseURL string        `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
	Model   string        `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	Timeout time.Duration `envconfig:"GROQ_TIMEOUT" default:"90s"`
}

// MailConfig holds email delivery configuration. When APIKey is empty the
// mail client writes composed digests to FallbackPath instead of sending.
type MailConfig struct {
	APIKey       string        `envconfig:"MAIL_API_KEY" default:""`
	BaseURL      string        `envconfig:"MAIL_API_URL" default:"https://api.resend.com"`
	From         string        `envconfig:"MAIL_FROM" default:"Meeting Scribe <digest@meeting-scribe.dev>"`
	Timeout      time.Duration `envconfig:"MAIL_TIMEOUT" default:"60s"`
	FallbackPath string        `envconfig:"MAIL_FALLBACK_PATH" default:"data/outbox.log"`
}

// PipelineConfig holds orchestrator tunables
type PipelineConfig struct {
	RunTimeout time.Duration `envconfig:"PIPELINE_RUN_TIMEOUT" default:"45m"`
	LeaseTTL   time.Duration `envconfig:"PIPELINE_LEASE_TTL" default:"45m"`
}

// Load loads configuration from the environment, reading .env first when present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.Type != "minio" && c.Storage.Type != "local" {
		return fmt.Errorf("STORAGE_TYPE must be \"minio\" or \"local\", got %q", c.Storage.Type)
	}
	if c.Assembly.PollInterval <= 0 {
		return fmt.Errorf("ASSEMBLYAI_POLL_INTERVAL must be positive")
	}
	if c.Assembly.MaxWait <= c.Assembly.PollInterval {
		return fmt.Errorf("ASSEMBLYAI_MAX_WAIT must exceed the poll interval")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// RedisEnabled reports whether a Redis host is configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}
