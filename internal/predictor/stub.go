package predictor

import "sync/atomic"

// Stub always returns the same label. It still enforces the input width, so
// handlers and encoders can be tested without a model file.
type Stub struct {
	Label string
	Width int

	calls atomic.Int64
}

// NewStub creates a stub predictor.
func NewStub(label string, width int) *Stub {
	return &Stub{Label: label, Width: width}
}

func (s *Stub) Predict(features []float32) (string, error) {
	if err := checkDimensions(features, s.Width); err != nil {
		return "", err
	}
	s.calls.Add(1)
	return s.Label, nil
}

func (s *Stub) Dimensions() int {
	return s.Width
}

// Calls returns how many successful predictions were served.
func (s *Stub) Calls() int {
	return int(s.calls.Load())
}
