package predictor

import (
	"errors"
	"fmt"
)

// Standard errors for model loading and inference
var (
	// ErrDimensionMismatch is returned when a feature vector has the wrong width
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

	// ErrInvalidArtifact is returned when a model artifact cannot be used
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrUnsupportedBackend is returned for an unknown model backend
	ErrUnsupportedBackend = errors.New("unsupported model backend")

	// ErrModelConfig is returned when the catalog and the model disagree
	ErrModelConfig = errors.New("catalog and model disagree")
)

// DimensionError is an input error: the vector does not fit the model.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("feature vector has %d columns, model expects %d", e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// MismatchKind says which part of the catalog/model contract is broken.
type MismatchKind string

const (
	MismatchWidth    MismatchKind = "width"
	MismatchOrder    MismatchKind = "order"
	MismatchEncoding MismatchKind = "encoding"
)

// ConfigError is a startup error: the catalog does not describe the model.
type ConfigError struct {
	Kind   MismatchKind
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("catalog/model %s mismatch: %s", e.Kind, e.Detail)
}

func (e *ConfigError) Unwrap() error {
	return ErrModelConfig
}
