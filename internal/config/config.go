package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, rate limiting,
// authentication, the extractor and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the level implied by Environment when set (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MaxBodyBytes limits the size of request bodies accepted by the API
		MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" env-default:"1048576" yaml:"maxBodyBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// EnablePprof mounts the net/http/pprof handlers under /debug/pprof/
		EnablePprof bool `env:"HTTP_ENABLE_PPROF" env-default:"false" yaml:"enablePprof"`
		// CORSOrigins lists the origins allowed by CORS; "*" allows any origin
		CORSOrigins []string `env:"HTTP_CORS_ORIGINS" env-default:"*" env-separator:"," yaml:"corsOrigins"`
	} `yaml:"http"`

	// RateLimit contains the per client IP request limits of the API
	RateLimit struct {
		// RequestsPerSecond is the sustained request rate of one client; zero disables limiting
		RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" env-default:"20" yaml:"requestsPerSecond"`
		// Burst is the number of requests a client may issue at once
		Burst int `env:"RATE_LIMIT_BURST" env-default:"40" yaml:"burst"`
		// IdleTTL is how long the limiter of an inactive client is kept
		IdleTTL time.Duration `env:"RATE_LIMIT_IDLE_TTL" env-default:"10m" yaml:"idleTTL"`
	} `yaml:"rateLimit"`

	// JWT contains the keys used to sign and verify API tokens
	JWT struct {
		// PublicKey is the PEM encoded RSA public key verifying bearer tokens; empty disables authentication
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM encoded RSA private key used by the jwt command
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
		// TTL is the lifetime of tokens issued by the jwt command
		TTL time.Duration `env:"JWT_TTL" env-default:"720h" yaml:"ttl"`
	} `yaml:"jwt"`

	// Extractor contains the settings of the URL extraction service
	Extractor struct {
		// MaxTextLength is the longest text, in characters, accepted for extraction
		MaxTextLength int `env:"EXTRACTOR_MAX_TEXT_LENGTH" env-default:"4096" yaml:"maxTextLength"`
		// MaxBatchSize is the largest number of texts accepted in one batch
		MaxBatchSize int `env:"EXTRACTOR_MAX_BATCH_SIZE" env-default:"100" yaml:"maxBatchSize"`
		// Dedupe drops repeated URLs from a result, keeping the first occurrence
		Dedupe bool `env:"EXTRACTOR_DEDUPE" env-default:"false" yaml:"dedupe"`
		// Normalize fills in the normalized form of every extracted URL
		Normalize bool `env:"EXTRACTOR_NORMALIZE" env-default:"true" yaml:"normalize"`
		// DefaultScheme is the scheme given to URLs written without a protocol
		DefaultScheme string `env:"EXTRACTOR_DEFAULT_SCHEME" env-default:"http" yaml:"defaultScheme"`
	} `yaml:"extractor"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// An empty path reads the configuration from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
