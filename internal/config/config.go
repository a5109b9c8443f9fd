package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/symptomcheck/predictor-service/internal/encoder"
	"github.com/symptomcheck/predictor-service/internal/predictor"
	"github.com/symptomcheck/predictor-service/internal/session"
)

const (
	defaultPort               = 8080
	defaultModelPath          = "./models/disease_tree.json"
	defaultSuggestionCount    = 3
	defaultSessionTTLMinutes  = 30
	defaultSweepSchedule      = "*/5 * * * *"
	defaultShutdownTimeoutSec = 10
)

type Config struct {
	Port        int    `yaml:"port"`
	CatalogPath string `yaml:"catalog_path"`

	ModelBackend    string `yaml:"model_backend"`
	ModelPath       string `yaml:"model_path"`
	ModelLabelsPath string `yaml:"model_labels_path"`
	ModelInputName  string `yaml:"model_input_name"`
	ModelOutputName string `yaml:"model_output_name"`
	ORTLibraryPath  string `yaml:"ort_library_path"`

	FeatureEncoding        string `yaml:"feature_encoding"`
	UnknownSymptoms        string `yaml:"unknown_symptoms"`
	AllowDimensionFallback bool   `yaml:"allow_dimension_fallback"`
	SuggestionCount        int    `yaml:"suggestion_count"`

	SessionTTLMinutes      int    `yaml:"session_ttl_minutes"`
	SessionSweepSchedule   string `yaml:"session_sweep_schedule"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// Load reads .env, then the YAML file at CONFIG_PATH (default config.yaml),
// then applies environment overrides and defaults.
func Load() (Config, error) {
	cfg := defaultConfig()

	envFile := ".env"
	if p := os.Getenv("ENV_FILE"); p != "" {
		envFile = p
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", envFile, err)
	}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read %s: %w", configPath, err)
	}

	overrides := []error{
		envOverrideInt(&cfg.Port, "PORT"),
		envOverrideInt(&cfg.SuggestionCount, "SUGGESTION_COUNT"),
		envOverrideInt(&cfg.SessionTTLMinutes, "SESSION_TTL_MINUTES"),
		envOverrideInt(&cfg.ShutdownTimeoutSeconds, "SHUTDOWN_TIMEOUT_SECONDS"),
	}
	if err := errors.Join(overrides...); err != nil {
		return cfg, err
	}
	envOverride(&cfg.CatalogPath, "CATALOG_PATH")
	envOverride(&cfg.ModelBackend, "MODEL_BACKEND")
	envOverride(&cfg.ModelPath, "MODEL_PATH")
	envOverride(&cfg.ModelLabelsPath, "MODEL_LABELS_PATH")
	envOverride(&cfg.ModelInputName, "MODEL_INPUT_NAME")
	envOverride(&cfg.ModelOutputName, "MODEL_OUTPUT_NAME")
	envOverride(&cfg.ORTLibraryPath, "ORT_LIBRARY_PATH")
	envOverride(&cfg.FeatureEncoding, "FEATURE_ENCODING")
	envOverride(&cfg.UnknownSymptoms, "UNKNOWN_SYMPTOMS")
	envOverrideBool(&cfg.AllowDimensionFallback, "ALLOW_DIMENSION_FALLBACK")
	envOverrideAllowEmpty(&cfg.SessionSweepSchedule, "SESSION_SWEEP_SCHEDULE")

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// defaultConfig holds the settings for which zero or empty is meaningful.
// Decoding YAML and env on top of it keeps an explicit 0 or "" intact:
// suggestion_count 0 means no suggestions, session_ttl_minutes 0 means
// sessions never expire and an empty session_sweep_schedule disables the sweep.
func defaultConfig() Config {
	return Config{
		SuggestionCount:      defaultSuggestionCount,
		SessionTTLMinutes:    defaultSessionTTLMinutes,
		SessionSweepSchedule: defaultSweepSchedule,
	}
}

// applyDefaults fills settings that have no meaningful zero value.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.ModelBackend == "" {
		c.ModelBackend = string(predictor.BackendTree)
	}
	if c.ModelPath == "" {
		c.ModelPath = defaultModelPath
	}
	if c.FeatureEncoding == "" {
		c.FeatureEncoding = string(encoder.Binary)
	}
	if c.UnknownSymptoms == "" {
		c.UnknownSymptoms = string(encoder.Reject)
	}
	if c.ShutdownTimeoutSeconds == 0 {
		c.ShutdownTimeoutSeconds = defaultShutdownTimeoutSec
	}
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	switch predictor.Backend(strings.ToLower(c.ModelBackend)) {
	case predictor.BackendTree:
	case predictor.BackendONNX:
		if c.ModelLabelsPath == "" {
			return fmt.Errorf("model_labels_path is required when model_backend=onnx")
		}
	default:
		return fmt.Errorf("model_backend must be 'tree' or 'onnx', got '%s'", c.ModelBackend)
	}
	if _, err := encoder.ParseEncoding(c.FeatureEncoding); err != nil {
		return err
	}
	if _, err := encoder.ParsePolicy(c.UnknownSymptoms); err != nil {
		return err
	}
	if c.SuggestionCount < 0 {
		return fmt.Errorf("invalid suggestion_count %d: must be >= 0", c.SuggestionCount)
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("invalid session_ttl_minutes %d: must be >= 0", c.SessionTTLMinutes)
	}
	if c.ShutdownTimeoutSeconds < 1 {
		return fmt.Errorf("invalid shutdown_timeout_seconds %d: must be >= 1", c.ShutdownTimeoutSeconds)
	}
	return session.ValidateSchedule(c.SessionSweepSchedule)
}

// Encoding returns the parsed feature encoding.
func (c Config) Encoding() encoder.Encoding {
	e, _ := encoder.ParseEncoding(c.FeatureEncoding)
	return e
}

// UnknownPolicy returns the parsed unknown-symptom policy.
func (c Config) UnknownPolicy() encoder.UnknownPolicy {
	p, _ := encoder.ParsePolicy(c.UnknownSymptoms)
	return p
}

// Predictor returns the model loading options.
func (c Config) Predictor() predictor.Config {
	return predictor.Config{
		Backend:     predictor.Backend(strings.ToLower(c.ModelBackend)),
		ModelPath:   c.ModelPath,
		LabelsPath:  c.ModelLabelsPath,
		LibraryPath: c.ORTLibraryPath,
		InputName:   c.ModelInputName,
		OutputName:  c.ModelOutputName,
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}
