package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/normalizer"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/publish"

	"github.com/labstack/gommon/bytes"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// CLI input/output
	InputPath  string
	InputKind  string
	OutputPath string

	// Decoding
	BlockErrorPolicy  string
	StrictIndices     bool
	ValidateAddresses bool
	DecodeWorkers     int

	// API settings
	APIAddr      string
	APIKey       string
	DevMode      bool
	HTTPTimeout  time.Duration
	APIBodyLimit string
	APIRateLimit float64
	APIBurst     int

	// Redis settings (flags and pub/sub; disabled when empty)
	RedisAddr string

	// Publishing
	PublishSink      string
	KafkaBrokers     []string
	KafkaTopicPrefix string
}

// Input kinds
const (
	KindTransaction = "transaction"
	KindBlock       = "block"
)

func Load() *Config {
	return &Config{
		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		// CLI
		InputPath:  getEnv("INPUT_PATH", ""),
		InputKind:  strings.ToLower(getEnv("INPUT_KIND", KindBlock)),
		OutputPath: getEnv("OUTPUT_PATH", ""),

		// Decoding
		BlockErrorPolicy:  getEnv("BLOCK_ERROR_POLICY", "fail_fast"),
		StrictIndices:     getBoolEnv("STRICT_INDICES", false),
		ValidateAddresses: getBoolEnv("VALIDATE_ADDRESSES", false),
		DecodeWorkers:     getIntEnv("DECODE_WORKERS", 1),

		// API
		APIAddr:      getEnv("API_ADDR", ":8090"),
		APIKey:       getEnv("API_KEY", ""),
		DevMode:      getBoolEnv("DEV_MODE", false),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		APIBodyLimit: getEnv("API_BODY_LIMIT", "64M"),
		APIRateLimit: getFloatEnv("API_RATE_LIMIT", 20),
		APIBurst:     getIntEnv("API_BURST", 40),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// Publishing
		PublishSink:      strings.ToLower(getEnv("PUBLISH_SINK", publish.SinkNone)),
		KafkaBrokers:     getListEnv("KAFKA_BROKERS"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "solana-normalized"),
	}
}

// Validate checks values that have a fixed set of choices
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.InputKind != KindTransaction && c.InputKind != KindBlock {
		return fmt.Errorf("INPUT_KIND must be %s or %s, got %q", KindTransaction, KindBlock, c.InputKind)
	}
	if _, err := normalizer.ParsePolicy(c.BlockErrorPolicy); err != nil {
		return fmt.Errorf("BLOCK_ERROR_POLICY: %w", err)
	}
	if _, err := bytes.Parse(c.APIBodyLimit); err != nil {
		return fmt.Errorf("API_BODY_LIMIT: %w", err)
	}
	if c.APIRateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be positive, got %v", c.APIRateLimit)
	}
	if c.APIBurst < 1 {
		return fmt.Errorf("API_BURST must be at least 1, got %d", c.APIBurst)
	}
	if c.DecodeWorkers < 1 {
		return fmt.Errorf("DECODE_WORKERS must be at least 1, got %d", c.DecodeWorkers)
	}
	switch c.PublishSink {
	case publish.SinkNone:
	case publish.SinkRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("PUBLISH_SINK=redis requires REDIS_ADDR")
		}
	case publish.SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("PUBLISH_SINK=kafka requires KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("PUBLISH_SINK must be none, redis or kafka, got %q", c.PublishSink)
	}
	return nil
}

// ApplyArgs lets positional CLI arguments override INPUT_PATH and INPUT_KIND
func (c *Config) ApplyArgs(args []string) {
	if len(args) > 0 {
		c.InputPath = args[0]
	}
	if len(args) > 1 {
		c.InputKind = strings.ToLower(args[1])
	}
}

// DecodeOptions returns the normalizer options described by the config
func (c *Config) DecodeOptions() (normalizer.Options, error) {
	policy, err := normalizer.ParsePolicy(c.BlockErrorPolicy)
	if err != nil {
		return normalizer.Options{}, fmt.Errorf("BLOCK_ERROR_POLICY: %w", err)
	}
	return normalizer.Options{
		StrictIndices: c.StrictIndices,
		Policy:        policy,
		Workers:       c.DecodeWorkers,
	}, nil
}

// PublishConfig returns the publisher settings
func (c *Config) PublishConfig() publish.Config {
	return publish.Config{
		Sink:             c.PublishSink,
		RedisAddr:        c.RedisAddr,
		KafkaBrokers:     c.KafkaBrokers,
		KafkaTopicPrefix: c.KafkaTopicPrefix,
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getListEnv(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
