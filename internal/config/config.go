package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the media service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"media-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MEDIA_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"MEDIA_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"MEDIA_LOG_FORMAT" envDefault:"json"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Media Store Backend Selection
	StoreBackend string `env:"MEDIA_STORE_BACKEND" envDefault:"transcode"` // Options: "transcode" or "s3"

	// Transcode Service Configuration (Cloudinary-style upload API)
	TranscodeBaseURL   string        `env:"MEDIA_TRANSCODE_BASE_URL"`
	TranscodeAPIKey    string        `env:"MEDIA_TRANSCODE_API_KEY"`
	TranscodeChunkSize int64         `env:"MEDIA_TRANSCODE_CHUNK_SIZE" envDefault:"6291456"`
	UploadTimeout      time.Duration `env:"MEDIA_UPLOAD_TIMEOUT" envDefault:"30m"`

	// S3 Store Configuration (template-derived variant URLs)
	S3Endpoint     string `env:"MEDIA_S3_ENDPOINT"`
	S3Region       string `env:"MEDIA_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string `env:"MEDIA_S3_BUCKET"`
	S3AccessKeyID  string `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`
	CDNURLTemplate string `env:"MEDIA_CDN_URL_TEMPLATE"` // e.g. "https://cdn.example.com/{format}/{id}"

	// Media Configuration
	MaxMediaBytes     int64  `env:"MEDIA_MAX_BYTES" envDefault:"524288000"`
	DefaultKind       string `env:"MEDIA_DEFAULT_KIND" envDefault:"video"`
	DefaultFolder     string `env:"MEDIA_DEFAULT_FOLDER" envDefault:"uploads"`
	UploadConcurrency int    `env:"MEDIA_UPLOAD_CONCURRENCY" envDefault:"3"`
	EnableHLS         bool   `env:"MEDIA_ENABLE_HLS" envDefault:"true"`
	EnableThumbnails  bool   `env:"MEDIA_ENABLE_THUMBNAILS" envDefault:"true"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.TranscodeBaseURL = strings.TrimSpace(cfg.TranscodeBaseURL)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.CDNURLTemplate = strings.TrimSpace(cfg.CDNURLTemplate)

	if cfg.MaxMediaBytes <= 0 {
		cfg.MaxMediaBytes = 500 * 1024 * 1024
	}
	if cfg.UploadConcurrency < 1 {
		cfg.UploadConcurrency = 1
	}
	if cfg.IsTranscodeStore() && cfg.TranscodeBaseURL == "" {
		return nil, fmt.Errorf("MEDIA_TRANSCODE_BASE_URL is required when MEDIA_STORE_BACKEND is transcode")
	}
	if cfg.IsS3Store() && cfg.CDNURLTemplate == "" {
		return nil, fmt.Errorf("MEDIA_CDN_URL_TEMPLATE is required when MEDIA_STORE_BACKEND is s3")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsTranscodeStore returns true if the transcode service backend is configured.
func (c *Config) IsTranscodeStore() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StoreBackend))
	return backend == "" || backend == "transcode"
}

// IsS3Store returns true if the S3 backend is configured.
func (c *Config) IsS3Store() bool {
	return strings.ToLower(strings.TrimSpace(c.StoreBackend)) == "s3"
}
