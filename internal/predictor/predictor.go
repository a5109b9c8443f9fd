// Package predictor wraps a pre-trained classifier behind a small interface.
//
// Models are loaded once at startup and never mutated, so a Predictor can be
// shared by every request without locking.
package predictor

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// Predictor maps one feature vector to one label.
type Predictor interface {
	// Predict returns the most likely label for features.
	Predict(features []float32) (string, error)

	// Dimensions returns the input width the model was fit on.
	Dimensions() int
}

// Described is implemented by artifacts that record how they were trained.
type Described interface {
	// FeatureNames returns the training column order, or nil if unknown.
	FeatureNames() []string

	// Encoding returns the feature encoding used in training, or "" if unknown.
	Encoding() string
}

// Backend names a model loader.
type Backend string

const (
	// BackendTree loads a JSON decision tree artifact.
	BackendTree Backend = "tree"

	// BackendONNX loads an ONNX classifier through onnxruntime.
	BackendONNX Backend = "onnx"
)

// Config contains the options needed to load a model.
type Config struct {
	Backend     Backend
	ModelPath   string
	LabelsPath  string
	LibraryPath string
	InputName   string
	OutputName  string
}

// Load opens the model described by cfg.
func Load(cfg Config) (Predictor, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: model path is empty", ErrInvalidArtifact)
	}

	switch Backend(strings.ToLower(string(cfg.Backend))) {
	case BackendTree, "":
		return LoadTree(cfg.ModelPath)
	case BackendONNX:
		return LoadONNX(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}

// Verify checks that the catalog columns and the encoding describe the model.
// It returns a *ConfigError on the first disagreement. Encoding and column
// order are checked before width, so a width error means the columns the
// catalog and model share are in the same order.
func Verify(p Predictor, columns []string, encoding string) error {
	if d, ok := p.(Described); ok {
		if trained := d.Encoding(); trained != "" && !strings.EqualFold(trained, encoding) {
			return &ConfigError{
				Kind:   MismatchEncoding,
				Detail: fmt.Sprintf("model was trained on %s features, configured encoding is %s", trained, encoding),
			}
		}

		names := d.FeatureNames()
		for i := 0; i < len(names) && i < len(columns); i++ {
			if names[i] != columns[i] {
				return &ConfigError{
					Kind:   MismatchOrder,
					Detail: fmt.Sprintf("column %d is %s in the model but %s in the catalog", i, names[i], columns[i]),
				}
			}
		}
	}

	if p.Dimensions() != len(columns) {
		return &ConfigError{
			Kind:   MismatchWidth,
			Detail: fmt.Sprintf("catalog has %d symptoms, model expects %d", len(columns), p.Dimensions()),
		}
	}

	return nil
}

// VerifyWithFallback runs Verify and tolerates a width mismatch when
// allowFallback is set, logging a warning instead. Order and encoding
// mismatches are always returned.
func VerifyWithFallback(p Predictor, columns []string, encoding string, allowFallback bool) error {
	err := Verify(p, columns, encoding)
	if err == nil {
		return nil
	}

	var cfgErr *ConfigError
	if allowFallback && errors.As(err, &cfgErr) && cfgErr.Kind == MismatchWidth {
		log.Printf("WARNING: %v; dimension fallback is enabled, vectors will be padded or truncated", err)
		return nil
	}
	return err
}

func checkDimensions(features []float32, want int) error {
	if len(features) != want {
		return &DimensionError{Got: len(features), Want: want}
	}
	return nil
}

// argmax returns the index of the largest score, preferring the lowest index on ties.
func argmax[T float32 | float64](scores []T) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
