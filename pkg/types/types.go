// Package types defines the JSON bodies of the prediction service.
package types

import "time"

// SymptomInfo describes one catalog column.
type SymptomInfo struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Severity int    `json:"severity"`
}

// SymptomsResponse is the response body for GET /symptoms.
type SymptomsResponse struct {
	Symptoms []SymptomInfo `json:"symptoms"`
	Count    int           `json:"count"`
}

// PredictRequest is the request body for stateless prediction.
type PredictRequest struct {
	Symptoms []string `json:"symptoms"`
}

// PredictResponse carries either a label or a warning.
type PredictResponse struct {
	Label      string   `json:"label,omitempty"`
	Warning    string   `json:"warning,omitempty"`
	Encoding   string   `json:"encoding,omitempty"`
	Dimensions int      `json:"dimensions,omitempty"`
	Symptoms   []string `json:"symptoms"`
	Latency    float64  `json:"latency_ms"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error       string              `json:"error"`
	Unknown     []string            `json:"unknown,omitempty"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// SessionResponse is the current state of a session.
type SessionResponse struct {
	ID        string    `json:"id"`
	Symptoms  []string  `json:"symptoms"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddSymptomRequest adds one symptom to a session. Custom symptoms are free
// text and get normalized to catalog naming first.
type AddSymptomRequest struct {
	Symptom string `json:"symptom"`
	Custom  bool   `json:"custom"`
}

// AddSymptomResponse reports the outcome of an add.
type AddSymptomResponse struct {
	Session SessionResponse `json:"session"`
	Symptom string          `json:"symptom"`
	Added   bool            `json:"added"`
	Message string          `json:"message"`
}

// HealthResponse is the response body for health check.
type HealthResponse struct {
	Status          string `json:"status"`
	CatalogSize     int    `json:"catalog_size"`
	ModelDimensions int    `json:"model_dimensions"`
}

// StatsResponse is the response body for stats endpoint.
type StatsResponse struct {
	CatalogSize     int    `json:"catalog_size"`
	ModelDimensions int    `json:"model_dimensions"`
	ModelBackend    string `json:"model_backend"`
	Encoding        string `json:"encoding"`
	UnknownPolicy   string `json:"unknown_policy"`
	Sessions        int    `json:"sessions"`
	Predictions     int64  `json:"predictions"`
}
