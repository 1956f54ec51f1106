package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when no language-model credential could be resolved.
var ErrMissingAPIKey = errors.New("missing language-model API key (OPENAI_API_KEY, OPENAI_KEY or API_KEY)")

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		Environment    string        `yaml:"environment"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		AllowedOrigins []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Usage struct {
		Store          string        `yaml:"store"` // memory | sql | redis
		AnonymousQuota int           `yaml:"anonymousQuota"`
		SessionTTL     time.Duration `yaml:"sessionTTL"` // redis only; 0 = never expire
	} `yaml:"usage"`

	OpenAI struct {
		APIKey      string  `yaml:"apiKey"`
		Model       string  `yaml:"model"`
		VisionModel string  `yaml:"visionModel"`
		MaxTokens   int     `yaml:"maxTokens"`
		Temperature *float32 `yaml:"temperature"` // nil = 0.3; 0 is honoured
	} `yaml:"openai"`

	OCR struct {
		Provider        string `yaml:"provider"` // gcpvision | none
		CredentialsFile string `yaml:"credentialsFile"`
		Preprocess      bool   `yaml:"preprocess"`
		MaxDimension    int    `yaml:"maxDimension"`
	} `yaml:"ocr"`

	Timeouts struct {
		OCR        time.Duration `yaml:"ocr"`
		Vision     time.Duration `yaml:"vision"`
		Generation time.Duration `yaml:"generation"`
	} `yaml:"timeouts"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Auth struct {
		// Tokens maps user id -> bearer token.
		Tokens map[string]string `yaml:"tokens"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// secrets are read from the environment only. The first non-empty key wins.
type secrets struct {
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIKey    string `envconfig:"OPENAI_KEY"`
	APIKey       string `envconfig:"API_KEY"`

	DatabasePassword string `envconfig:"DB_PASSWORD"`
	MinioSecretKey   string `envconfig:"MINIO_SECRET_KEY"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
}

// Load baca file config.yaml, then .env and environment overrides.
// A missing file is fine; everything has a default.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	_ = godotenv.Load()
	var s secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applySecrets(s)
	cfg.applyDefaults()

	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return &cfg, nil
}

func (c *Config) applySecrets(s secrets) {
	if key := firstNonEmpty(s.OpenAIAPIKey, s.OpenAIKey, s.APIKey); key != "" {
		c.OpenAI.APIKey = key
	}
	if s.DatabasePassword != "" {
		c.Database.Password = s.DatabasePassword
	}
	if s.MinioSecretKey != "" {
		c.Minio.SecretKey = s.MinioSecretKey
	}
	if s.RedisPassword != "" {
		c.Redis.Password = s.RedisPassword
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Usage.Store == "" {
		c.Usage.Store = "sql"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.VisionModel == "" {
		c.OpenAI.VisionModel = c.OpenAI.Model
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 2048
	}
	if c.OpenAI.Temperature == nil {
		t := float32(0.3)
		c.OpenAI.Temperature = &t
	}
	if c.OCR.Provider == "" {
		c.OCR.Provider = "gcpvision"
	}
	if c.OCR.MaxDimension == 0 {
		c.OCR.MaxDimension = 2000
	}
	if c.Timeouts.OCR == 0 {
		c.Timeouts.OCR = 30 * time.Second
	}
	if c.Timeouts.Vision == 0 {
		c.Timeouts.Vision = 60 * time.Second
	}
	if c.Timeouts.Generation == 0 {
		c.Timeouts.Generation = 60 * time.Second
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
}

// Production is true for "prod" or "production", the same values the
// logger switches to its production config on.
func (c *Config) Production() bool {
	switch strings.ToLower(strings.TrimSpace(c.Server.Environment)) {
	case "prod", "production":
		return true
	}
	return false
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
