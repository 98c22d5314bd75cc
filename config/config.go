package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Firecrawl  FirecrawlConfig
	Bannerbear BannerbearConfig
	Shotstack  ShotstackConfig
	Retry      RetryConfig
	Extraction PollConfig
	Render     PollConfig
	Store      StoreConfig
	S3         S3Config
	Server     ServerConfig
	Scheduler  SchedulerConfig
	LogPath    string
	SourcesDir string
	Sources    map[string]*SourceConfig
}

type FirecrawlConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type BannerbearConfig struct {
	APIKey        string
	BaseURL       string
	ProjectID     string
	WebhookURL    string
	WebhookSecret string
	TemplateSetID string
	RatePerSec    float64
}

type ShotstackConfig struct {
	APIKey     string
	BaseURL    string
	TemplateID string
	S3Bucket   string
	S3Region   string
	S3Prefix   string
}

// RetryConfig is the single backoff policy shared by every extraction adapter.
type RetryConfig struct {
	Base        time.Duration
	Multiplier  float64
	Jitter      float64
	MaxAttempts int
}

type PollConfig struct {
	Interval        time.Duration
	MaxAttempts     int
	RequestAttempts int
	RequestBackoff  time.Duration
}

type StoreConfig struct {
	Driver        string
	DBPath        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JobTTL        time.Duration
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type ServerConfig struct {
	Addr           string
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

type SchedulerConfig struct {
	Interval  time.Duration
	Cron      string
	BatchSize int
}

// SourceConfig is the per-site file under config/sources.
type SourceConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Enabled         *bool  `yaml:"enabled"`
	Prompt          string `yaml:"prompt"`
	TemplateID      string `yaml:"template_id"`
	TemplateSetID   string `yaml:"template_set_id"`
	VideoTemplateID string `yaml:"video_template_id"`
}

// IsEnabled treats a missing "enabled" key as true.
func (s *SourceConfig) IsEnabled() bool {
	return s == nil || s.Enabled == nil || *s.Enabled
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Firecrawl: FirecrawlConfig{
			APIKey:  os.Getenv("FIRECRAWL_API_KEY"),
			BaseURL: getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),
			Timeout: getEnvDuration("FIRECRAWL_TIMEOUT", 60*time.Second),
		},
		Bannerbear: BannerbearConfig{
			APIKey:        os.Getenv("BANNERBEAR_API_KEY"),
			BaseURL:       getEnv("BANNERBEAR_BASE_URL", "https://api.bannerbear.com"),
			ProjectID:     os.Getenv("BANNERBEAR_PROJECT_ID"),
			WebhookURL:    os.Getenv("BANNERBEAR_WEBHOOK_URL"),
			WebhookSecret: os.Getenv("BANNERBEAR_WEBHOOK_SECRET"),
			TemplateSetID: os.Getenv("BANNERBEAR_TEMPLATE_SET_UID"),
			RatePerSec:    getEnvFloat("BANNERBEAR_RATE_PER_SEC", 2),
		},
		Shotstack: ShotstackConfig{
			APIKey:     os.Getenv("SHOTSTACK_API_KEY"),
			BaseURL:    getEnv("SHOTSTACK_BASE_URL", "https://api.shotstack.io"),
			TemplateID: os.Getenv("SHOTSTACK_TEMPLATE_ID"),
			S3Bucket:   os.Getenv("SHOTSTACK_S3_BUCKET"),
			S3Region:   getEnv("SHOTSTACK_S3_REGION", "us-east-1"),
			S3Prefix:   getEnv("SHOTSTACK_S3_PREFIX", "videos"),
		},
		Retry: RetryConfig{
			Base:        getEnvDuration("RETRY_BASE", 2*time.Second),
			Multiplier:  getEnvFloat("RETRY_MULTIPLIER", 2.0),
			Jitter:      getEnvFloat("RETRY_JITTER", 0.2),
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Extraction: PollConfig{
			Interval:        getEnvDuration("EXTRACT_POLL_INTERVAL", 2*time.Second),
			MaxAttempts:     getEnvInt("EXTRACT_POLL_ATTEMPTS", 30),
			RequestAttempts: 3,
			RequestBackoff:  time.Second,
		},
		Render: PollConfig{
			Interval:        getEnvDuration("RENDER_POLL_INTERVAL", 3*time.Second),
			MaxAttempts:     getEnvInt("RENDER_POLL_ATTEMPTS", 30),
			RequestAttempts: 3,
			RequestBackoff:  time.Second,
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", "sqlite"),
			DBPath:        getEnv("DB_PATH", "listing_studio.db"),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			JobTTL:        getEnvDuration("JOB_TTL", 0),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			RateLimit:      getEnvInt("HTTP_RATE_LIMIT", 60),
			RateWindow:     getEnvDuration("HTTP_RATE_WINDOW", time.Minute),
			RequestTimeout: getEnvDuration("HTTP_REQUEST_TIMEOUT", 3*time.Minute),
		},
		Scheduler: SchedulerConfig{
			Cron:      os.Getenv("SWEEP_CRON"),
			Interval:  getEnvDuration("SWEEP_INTERVAL", 0),
			BatchSize: getEnvInt("SWEEP_BATCH_SIZE", 20),
		},
		LogPath:    getEnv("LOG_PATH", "listing_studio.log"),
		SourcesDir: getEnv("SOURCES_DIR", "config/sources"),
		Sources:    make(map[string]*SourceConfig),
	}

	if err := cfg.loadSourceConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Source returns the YAML settings for a source id, or nil when none exist.
func (c *Config) Source(id string) *SourceConfig {
	if c == nil || c.Sources == nil {
		return nil
	}
	return c.Sources[id]
}

func (c *Config) loadSourceConfigs() error {
	entries, err := os.ReadDir(c.SourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(c.SourcesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var src SourceConfig
		if err := yaml.Unmarshal(data, &src); err != nil {
			return err
		}
		if src.ID == "" {
			continue
		}

		c.Sources[src.ID] = &src
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
