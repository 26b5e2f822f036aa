package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dbDSNEnv     = "STATUS_SENTIMENT_DB_PATH"
	jwtSecretEnv = "STATUS_SENTIMENT_JWT_SECRET"
	portEnv      = "STATUS_SENTIMENT_PORT"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "console" or "json"
	} `yaml:"logging"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" or "postgres"
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Artifacts ArtifactsConfig `yaml:"artifacts"`

	Pipeline struct {
		MinWords int `yaml:"min_words"`
	} `yaml:"pipeline"`

	Features FeaturesConfig `yaml:"features"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	VK VKConfig `yaml:"vk"`

	Telegram TelegramConfig `yaml:"telegram"`

	Storage struct {
		EncryptionKey string `yaml:"encryption_key"` // base64, 32 bytes
	} `yaml:"storage"`

	// Recommendations overrides the built-in advice lines per label.
	Recommendations map[string][]string `yaml:"recommendations"`
}

// ArtifactsConfig points at the exported, pre-fitted model files.
type ArtifactsConfig struct {
	Vectorizer   string `yaml:"vectorizer"`
	Classifier   string `yaml:"classifier"`
	LabelEncoder string `yaml:"label_encoder"`
}

// FeaturesConfig is the enabled-features set.
type FeaturesConfig struct {
	FeedImport      bool `yaml:"feed_import"`
	Recommendations bool `yaml:"recommendations"`
	Notifications   bool `yaml:"notifications"`
}

// VKConfig configures VK social login and wall import.
type VKConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	APIVersion   string `yaml:"api_version"`
	PostLimit    int    `yaml:"post_limit"`
}

// TelegramConfig configures label alerts.
type TelegramConfig struct {
	BotToken    string   `yaml:"bot_token"`
	ChatID      int64    `yaml:"chat_id"`
	AlertLabels []string `yaml:"alert_labels"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyEnvOverrides()
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}

	c.Auth.JWTSecret = os.ExpandEnv(c.Auth.JWTSecret)
	c.Database.DSN = os.ExpandEnv(c.Database.DSN)
	c.VK.ClientSecret = os.ExpandEnv(c.VK.ClientSecret)
	c.Telegram.BotToken = os.ExpandEnv(c.Telegram.BotToken)
	c.Storage.EncryptionKey = os.ExpandEnv(c.Storage.EncryptionKey)
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "./data/status.db"
	}
	if c.Pipeline.MinWords == 0 {
		c.Pipeline.MinWords = 3
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.VK.APIVersion == "" {
		c.VK.APIVersion = "5.131"
	}
	if c.VK.PostLimit == 0 {
		c.VK.PostLimit = 50
	}
	if len(c.Telegram.AlertLabels) == 0 {
		c.Telegram.AlertLabels = []string{"NEGATIVE", "NEGATIF"}
	}
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.Artifacts.Vectorizer == "" || c.Artifacts.Classifier == "" || c.Artifacts.LabelEncoder == "" {
		errs = append(errs, errors.New("artifacts: vectorizer, classifier and label_encoder paths are required"))
	}
	if c.Pipeline.MinWords < 1 {
		errs = append(errs, fmt.Errorf("pipeline: min_words must be at least 1, got %d", c.Pipeline.MinWords))
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database: dsn is required"))
	}
	if c.Features.Notifications && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("telegram: bot_token and chat_id are required when notifications are enabled"))
	}
	if c.Features.FeedImport && c.VK.ClientID == "" {
		errs = append(errs, errors.New("vk: client_id is required when feed_import is enabled"))
	}

	return errors.Join(errs...)
}
