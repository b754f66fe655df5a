package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"enefviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Survey    SurveyConfig
	Trend     TrendConfig
	Paths     PathConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	APIPort      string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SurveyConfig describes the respondent-level file behind the static report
type SurveyConfig struct {
	File           string
	Sentinel       float64
	GroupColumn    string
	ResponseColumn string
	Delimiter      rune
}

// TrendConfig describes the wave-level file behind the dashboard selector
type TrendConfig struct {
	File          string
	DateColumn    string
	LabelColumn   string
	DefaultSeries string
	Delimiter     rune
}

// PathConfig holds file system paths
type PathConfig struct {
	CrossesDir string
	ReportDir  string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	config.Server = *loadServerConfig()

	surveyConfig, err := loadSurveyConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load survey configuration")
	}
	config.Survey = *surveyConfig

	trendConfig, err := loadTrendConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load trend configuration")
	}
	config.Trend = *trendConfig

	config.Paths = *loadPathConfig()
	config.Profiling = *loadProfilingConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		APIPort:      getEnvOrDefault("API_PORT", "8081"),
		GinMode:      getEnvOrDefault("GIN_MODE", "release"),
		ReadTimeout:  getEnvDurationOrDefault("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDurationOrDefault("HTTP_WRITE_TIMEOUT", 30*time.Second),
	}
}

func loadSurveyConfig() (*SurveyConfig, error) {
	delimiter, err := parseDelimiter(getEnvOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	return &SurveyConfig{
		File:           getEnvOrDefault("SURVEY_FILE", ""),
		Sentinel:       getEnvFloatOrDefault("SURVEY_SENTINEL", 99),
		GroupColumn:    getEnvOrDefault("SURVEY_GROUP_COLUMN", "Y3SEXE"),
		ResponseColumn: getEnvOrDefault("SURVEY_RESPONSE_COLUMN", "Y3CERT"),
		Delimiter:      delimiter,
	}, nil
}

func loadTrendConfig() (*TrendConfig, error) {
	delimiter, err := parseDelimiter(getEnvOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	return &TrendConfig{
		File:          getEnvOrDefault("TREND_FILE", ""),
		DateColumn:    getEnvOrDefault("TREND_DATE_COLUMN", "date"),
		LabelColumn:   getEnvOrDefault("TREND_LABEL_COLUMN", "vague"),
		DefaultSeries: getEnvOrDefault("TREND_DEFAULT_SERIES", "INTEURST"),
		Delimiter:     delimiter,
	}, nil
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		CrossesDir: getEnvOrDefault("CROSSES_DIR", "data"),
		ReportDir:  getEnvOrDefault("REPORT_DIR", "reports"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Survey.GroupColumn == "" || config.Survey.ResponseColumn == "" {
		return errors.ConfigInvalid("survey group and response columns are required")
	}
	if config.Survey.GroupColumn == config.Survey.ResponseColumn {
		return errors.ConfigInvalid("survey group and response columns must differ")
	}
	if config.Trend.DateColumn == "" || config.Trend.LabelColumn == "" {
		return errors.ConfigInvalid("trend date and label columns are required")
	}
	return nil
}

// parseDelimiter accepts a single character, or the names "tab" and "semicolon".
func parseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", `\t`:
		return '\t', nil
	case "semicolon":
		return ';', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, errors.ConfigInvalid("CSV_DELIMITER must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
