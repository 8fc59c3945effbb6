// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// QueueConfig provides settings for the asynq job queue.
type QueueConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// StorageConfig provides settings for the audio and voice file trees.
type StorageConfig interface {
	GetAudioStoragePath() string
	GetVoiceStoragePath() string
	GetMaxUploadSize() int64
}

// PlaybackConfig provides settings for dialer-facing URL construction.
type PlaybackConfig interface {
	GetPublicBaseURL() string
	GetDialerRateLimit() float64
	GetDialerRateBurst() int
}

// TTSConfig provides settings for the external speech synthesis service.
type TTSConfig interface {
	GetTTSServiceURL() string
	GetTTSTimeout() time.Duration
}

// PhoneConfig provides settings for phone number canonicalization.
type PhoneConfig interface {
	GetPhoneRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	RedisURL         string
	AsynqQueueName   string
	AsynqConcurrency int
	AudioStoragePath string
	VoiceStoragePath string
	MaxUploadSize    int64
	PublicBaseURL    string
	TTSServiceURL    string
	TTSTimeout       time.Duration
	PhoneRegion      string
	DialerRateLimit  float64
	DialerRateBurst  int
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// QueueConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// StorageConfig implementation
func (c *Config) GetAudioStoragePath() string { return c.AudioStoragePath }
func (c *Config) GetVoiceStoragePath() string { return c.VoiceStoragePath }
func (c *Config) GetMaxUploadSize() int64     { return c.MaxUploadSize }

// PlaybackConfig implementation
func (c *Config) GetPublicBaseURL() string    { return c.PublicBaseURL }
func (c *Config) GetDialerRateLimit() float64 { return c.DialerRateLimit }
func (c *Config) GetDialerRateBurst() int     { return c.DialerRateBurst }

// TTSConfig implementation
func (c *Config) GetTTSServiceURL() string    { return c.TTSServiceURL }
func (c *Config) GetTTSTimeout() time.Duration { return c.TTSTimeout }

// PhoneConfig implementation
func (c *Config) GetPhoneRegion() string { return c.PhoneRegion }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "audio_generation"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		AudioStoragePath: getEnv("AUDIO_STORAGE_PATH", "storage/audio"),
		VoiceStoragePath: getEnv("VOICE_STORAGE_PATH", "storage/voices"),
		MaxUploadSize:    mustInt64(getEnv("MAX_UPLOAD_SIZE", "104857600")),
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		TTSServiceURL:    getEnv("TTS_SERVICE_URL", ""),
		TTSTimeout:       mustDuration(getEnv("TTS_TIMEOUT", "120s")),
		PhoneRegion:      getEnv("PHONE_REGION", "US"),
		DialerRateLimit:  mustFloat(getEnv("DIALER_RATE_LIMIT", "50")),
		DialerRateBurst:  mustInt(getEnv("DIALER_RATE_BURST", "100")),
		CORSAllowAll:     strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
	}

	if containsWildcard(cfg.CORSOrigins) {
		cfg.CORSAllowAll = true
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
