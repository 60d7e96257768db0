package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// ServiceNow credentials and instance
	SnowInstance     string `envconfig:"SNOW_INSTANCE" required:"true"`
	SnowClientID     string `envconfig:"SNOW_CLIENT_ID" required:"true"`
	SnowClientSecret string `envconfig:"SNOW_CLIENT_SECRET" required:"true"`
	SnowUsername     string `envconfig:"SNOW_USER" required:"true"`
	SnowPassword     string `envconfig:"SNOW_PASSWORD" required:"true"`
	// SnowBaseURL overrides the instance-derived base URL, mainly for tests.
	SnowBaseURL string `envconfig:"SNOW_BASE_URL"`

	OpenAIAPIKey    string  `envconfig:"OPENAI_API_KEY" required:"true"`
	EmbeddingModel  string  `envconfig:"EMBEDDING_MODEL"`
	CompletionModel string  `envconfig:"COMPLETION_MODEL"`
	Temperature     float32 `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens       int     `envconfig:"MAX_TOKENS" default:"2048"`

	RetrieveK    int    `envconfig:"RETRIEVE_K" default:"4"`
	SnapshotPath string `envconfig:"SNAPSHOT_PATH" default:"servicenow_incidents.csv"`

	// Optional S3-compatible archive for snapshot CSVs
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"snowbot-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// AdminToken guards the admin endpoints (reindex). Empty disables them.
	AdminToken string `envconfig:"ADMIN_TOKEN"`

	// RefreshInterval enables the periodic snapshot refresh worker when > 0.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SNOWBOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasRefresh() bool {
	return c.RefreshInterval > 0
}

func (c *Config) HasAdmin() bool {
	return c.AdminToken != ""
}
