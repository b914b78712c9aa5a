package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	DefaultGeminiModel   = "gemini-2.5-flash-preview-04-17"
	DefaultImagenModel   = "imagen-3.0-generate-002"
	DefaultIdeasKey      = "fireTribeBaseIdeas"
	DefaultCredentialKey = "fireTribeBaseUserApiKey"
)

type AppConfig struct {
	Logging          LoggingConfig          `yaml:"logging"`
	Server           ServerConfig           `yaml:"server"`
	Gemini           GeminiConfig           `yaml:"gemini"`
	AIQuota          AIQuotaConfig          `yaml:"ai_quota"`
	Storage          StorageConfig          `yaml:"storage"`
	Mongo            MongoConfig            `yaml:"mongo"`
	Redis            RedisConfig            `yaml:"redis"`
	Kafka            KafkaConfig            `yaml:"kafka"`
	InspirationFeeds []string               `yaml:"inspiration_feeds"`
	SourceEnrichment SourceEnrichmentConfig `yaml:"source_enrichment"`
}

// LoggingConfig 의 Format 은 json 또는 text. 로컬 개발에서는 text 가 읽기 편하다.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Service string `yaml:"service"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type GeminiConfig struct {
	Model          string `yaml:"model"`
	ImageModel     string `yaml:"image_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// AIQuotaConfig 는 Gemini 호출에 대한 속도/일일 한도를 정의한다.
type AIQuotaConfig struct {
	// RequestsPerMinute 는 분당 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay 는 일일 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerDay int `yaml:"requests_per_day"`
}

// StorageConfig selects the key-value backend that holds the idea snapshot
// and the user supplied credential.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // memory | file | mongo | redis
	FilePath      string `yaml:"file_path"`
	IdeasKey      string `yaml:"ideas_key"`
	CredentialKey string `yaml:"credential_key"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig is optional; an empty broker list disables event publishing.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

type SourceEnrichmentConfig struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	c, err := Load(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

// Load reads and parses a config file, then fills in defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "fire-base"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
	if c.Gemini.ImageModel == "" {
		c.Gemini.ImageModel = DefaultImagenModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = 120
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if c.Storage.FilePath == "" {
		c.Storage.FilePath = "data/firebase.json"
	}
	if c.Storage.IdeasKey == "" {
		c.Storage.IdeasKey = DefaultIdeasKey
	}
	if c.Storage.CredentialKey == "" {
		c.Storage.CredentialKey = DefaultCredentialKey
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "firebase"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "fire-base.idea.events"
	}
	if c.SourceEnrichment.TimeoutSeconds <= 0 {
		c.SourceEnrichment.TimeoutSeconds = 5
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// EnvCredential returns the build/environment injected Gemini key.
// Blank values are treated as absent.
func EnvCredential() string {
	for _, key := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
