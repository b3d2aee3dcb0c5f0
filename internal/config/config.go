package config

import (
	"fmt"
	"os"
	"strconv"

	"idverify/internal/logger"
)

// Config carries the environment-driven settings for the verification
// pipeline. Provider credentials are read and validated where the provider
// client is constructed (the ocr package's FromEnv helpers), not here, so
// the CLI can still run engines that are configured.
type Config struct {
	// OCR provider selection: "clova", "vision" or "docai"
	OCREngine string

	// Provider call behaviour
	OCRTimeoutSeconds int
	OCRMaxRetries     int

	// Pipeline thresholds. These were hardcoded constants in earlier
	// iterations of the ruleset; deployments disagree on the exact values,
	// so they are configuration.
	StudentConfidenceFloor float64
	LicenseConfidenceFloor float64
	ProbeConfidenceFloor   float64
	LineMergeThreshold     float64
	MinTextLength          int
	CardMinAspectRatio     float64
	TextDensityThreshold   float64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCREngine:              getEnv("OCR_ENGINE", "clova"),
		OCRTimeoutSeconds:      getEnvInt("OCR_TIMEOUT_SECONDS", 30),
		OCRMaxRetries:          getEnvInt("OCR_MAX_RETRIES", 2),
		StudentConfidenceFloor: getEnvFloat("STUDENT_CONFIDENCE_FLOOR", 0.8),
		LicenseConfidenceFloor: getEnvFloat("LICENSE_CONFIDENCE_FLOOR", 0.7),
		ProbeConfidenceFloor:   getEnvFloat("PROBE_CONFIDENCE_FLOOR", 0.3),
		LineMergeThreshold:     getEnvFloat("LINE_MERGE_THRESHOLD", 15),
		MinTextLength:          getEnvInt("MIN_TEXT_LENGTH", 10),
		CardMinAspectRatio:     getEnvFloat("CARD_MIN_ASPECT_RATIO", 1.4),
		TextDensityThreshold:   getEnvFloat("TEXT_DENSITY_THRESHOLD", 30000),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:          getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:              getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case "clova", "vision", "docai":
	default:
		return fmt.Errorf("OCR_ENGINE must be one of clova, vision, docai (got %q)", c.OCREngine)
	}
	if c.StudentConfidenceFloor < 0 || c.StudentConfidenceFloor > 1 {
		return fmt.Errorf("STUDENT_CONFIDENCE_FLOOR must be within [0,1]")
	}
	if c.LicenseConfidenceFloor < 0 || c.LicenseConfidenceFloor > 1 {
		return fmt.Errorf("LICENSE_CONFIDENCE_FLOOR must be within [0,1]")
	}
	if c.ProbeConfidenceFloor < 0 || c.ProbeConfidenceFloor > 1 {
		return fmt.Errorf("PROBE_CONFIDENCE_FLOOR must be within [0,1]")
	}
	if c.LineMergeThreshold <= 0 {
		return fmt.Errorf("LINE_MERGE_THRESHOLD must be positive")
	}
	if c.OCRMaxRetries < 0 {
		return fmt.Errorf("OCR_MAX_RETRIES must not be negative")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
