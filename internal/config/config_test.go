package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/symptomcheck/predictor-service/internal/encoder"
	"github.com/symptomcheck/predictor-service/internal/predictor"
)

// isolate points config and .env lookups at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing-config.yaml"))
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Errorf("unexpected port default: %d", cfg.Port)
	}
	if cfg.ModelBackend != "tree" || cfg.ModelPath != defaultModelPath {
		t.Errorf("unexpected model defaults: %q %q", cfg.ModelBackend, cfg.ModelPath)
	}
	if cfg.Encoding() != encoder.Binary {
		t.Errorf("unexpected encoding default: %q", cfg.Encoding())
	}
	if cfg.UnknownPolicy() != encoder.Reject {
		t.Errorf("unexpected unknown policy default: %q", cfg.UnknownPolicy())
	}
	if cfg.AllowDimensionFallback {
		t.Error("dimension fallback must be off by default")
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Errorf("unexpected session TTL: %s", cfg.SessionTTL())
	}
	if cfg.SessionSweepSchedule != defaultSweepSchedule {
		t.Errorf("unexpected sweep schedule: %q", cfg.SessionSweepSchedule)
	}
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("unexpected shutdown timeout: %s", cfg.ShutdownTimeout())
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, `
port: 9000
catalog_path: "/etc/symptoms.yaml"
model_backend: "onnx"
model_path: "/models/tree.onnx"
model_labels_path: "/models/labels.txt"
feature_encoding: "severity"
unknown_symptoms: "ignore"
allow_dimension_fallback: true
session_ttl_minutes: 45
`)
	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("PORT", "9100")
	t.Setenv("FEATURE_ENCODING", "binary")
	t.Setenv("SESSION_SWEEP_SCHEDULE", "0 * * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9100 {
		t.Errorf("expected env port 9100, got %d", cfg.Port)
	}
	if cfg.CatalogPath != "/etc/symptoms.yaml" {
		t.Errorf("unexpected catalog path: %q", cfg.CatalogPath)
	}
	if cfg.Encoding() != encoder.Binary {
		t.Errorf("expected env encoding to win, got %q", cfg.Encoding())
	}
	if cfg.UnknownPolicy() != encoder.Ignore {
		t.Errorf("expected yaml policy ignore, got %q", cfg.UnknownPolicy())
	}
	if !cfg.AllowDimensionFallback {
		t.Error("expected dimension fallback from yaml")
	}
	if cfg.SessionTTL() != 45*time.Minute {
		t.Errorf("unexpected session TTL: %s", cfg.SessionTTL())
	}
	if cfg.SessionSweepSchedule != "0 * * * *" {
		t.Errorf("unexpected sweep schedule: %q", cfg.SessionSweepSchedule)
	}

	pc := cfg.Predictor()
	if pc.Backend != predictor.BackendONNX || pc.ModelPath != "/models/tree.onnx" || pc.LabelsPath != "/models/labels.txt" {
		t.Errorf("unexpected predictor config: %+v", pc)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "test.env")
	writeFile(t, envPath, "MODEL_PATH=/from/dotenv.json\nUNKNOWN_SYMPTOMS=ignore\n")
	t.Setenv("ENV_FILE", envPath)
	// Real environment beats .env.
	t.Setenv("UNKNOWN_SYMPTOMS", "reject")
	t.Setenv("MODEL_PATH", "")
	os.Unsetenv("MODEL_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModelPath != "/from/dotenv.json" {
		t.Errorf("expected model path from .env, got %q", cfg.ModelPath)
	}
	if cfg.UnknownPolicy() != encoder.Reject {
		t.Errorf("expected process env to win over .env, got %q", cfg.UnknownPolicy())
	}
}

func TestLoadEmptySweepScheduleDisables(t *testing.T) {
	isolate(t)
	t.Setenv("SESSION_SWEEP_SCHEDULE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionSweepSchedule != "" {
		t.Errorf("expected sweep disabled, got %q", cfg.SessionSweepSchedule)
	}
}

func TestLoadKeepsExplicitZeroValuesFromYAML(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, `
suggestion_count: 0
session_ttl_minutes: 0
session_sweep_schedule: ""
`)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SuggestionCount != 0 {
		t.Errorf("expected suggestions off, got %d", cfg.SuggestionCount)
	}
	if cfg.SessionTTL() != 0 {
		t.Errorf("expected sessions to never expire, got %s", cfg.SessionTTL())
	}
	if cfg.SessionSweepSchedule != "" {
		t.Errorf("expected sweep disabled, got %q", cfg.SessionSweepSchedule)
	}
}

func TestLoadKeepsExplicitZeroValuesFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SUGGESTION_COUNT", "0")
	t.Setenv("SESSION_TTL_MINUTES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SuggestionCount != 0 {
		t.Errorf("expected suggestions off, got %d", cfg.SuggestionCount)
	}
	if cfg.SessionTTL() != 0 {
		t.Errorf("expected sessions to never expire, got %s", cfg.SessionTTL())
	}
	if cfg.SessionSweepSchedule != defaultSweepSchedule {
		t.Errorf("expected default sweep schedule, got %q", cfg.SessionSweepSchedule)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, val, want string
	}{
		{"PORT", "abc", "invalid PORT"},
		{"PORT", "70000", "invalid port"},
		{"MODEL_BACKEND", "pickle", "model_backend"},
		{"MODEL_BACKEND", "onnx", "model_labels_path"},
		{"FEATURE_ENCODING", "onehot", "feature encoding"},
		{"UNKNOWN_SYMPTOMS", "guess", "unknown symptom policy"},
		{"SESSION_TTL_MINUTES", "-1", "session_ttl_minutes"},
		{"SUGGESTION_COUNT", "-2", "suggestion_count"},
		{"SESSION_SWEEP_SCHEDULE", "soon", "sweep schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "port: [not, a, number]\n")
	t.Setenv("CONFIG_PATH", cfgPath)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
