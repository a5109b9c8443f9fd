// Package encoder turns a selection of symptom names into the fixed-width
// feature vector the classifier consumes.
package encoder

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/symptomcheck/predictor-service/internal/catalog"
)

// Encoding selects how a selected column is valued.
type Encoding string

const (
	// Binary sets selected columns to 1.
	Binary Encoding = "binary"

	// Severity sets selected columns to the catalog severity weight.
	Severity Encoding = "severity"
)

// UnknownPolicy decides what happens to names outside the catalog.
type UnknownPolicy string

const (
	// Reject fails the encode with an UnknownSymptomError.
	Reject UnknownPolicy = "reject"

	// Ignore drops unknown names and logs a warning.
	Ignore UnknownPolicy = "ignore"
)

var (
	// ErrNoSymptoms is returned when nothing usable was selected.
	ErrNoSymptoms = errors.New("no symptoms selected")

	// ErrUnknownSymptom is wrapped by UnknownSymptomError.
	ErrUnknownSymptom = errors.New("unknown symptom")

	// ErrWidthMismatch is returned by New when the model width differs from
	// the catalog size and the dimension fallback is off.
	ErrWidthMismatch = errors.New("catalog size does not match model dimensions")
)

// UnknownSymptomError lists the names that are not in the catalog.
type UnknownSymptomError struct {
	Names       []string
	Suggestions map[string][]string
}

func (e *UnknownSymptomError) Error() string {
	return fmt.Sprintf("unknown symptom(s): %s", strings.Join(e.Names, ", "))
}

func (e *UnknownSymptomError) Unwrap() error {
	return ErrUnknownSymptom
}

// Options configures an Encoder.
type Options struct {
	Encoding Encoding
	Unknown  UnknownPolicy

	// Dimensions is the model input width. Zero means the catalog size.
	Dimensions int

	// AllowDimensionFallback pads or truncates vectors to Dimensions when it
	// differs from the catalog size. Every such vector is logged.
	AllowDimensionFallback bool

	// Suggestions is how many close catalog names to attach to an unknown
	// name. Zero attaches none.
	Suggestions int
}

// Encoder maps selections onto catalog columns. It holds no mutable state.
type Encoder struct {
	catalog *catalog.Catalog
	opts    Options
}

// ParseEncoding parses "binary" or "severity", case-insensitively.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case Binary:
		return Binary, nil
	case Severity:
		return Severity, nil
	default:
		return "", fmt.Errorf("unknown feature encoding %q (want binary or severity)", s)
	}
}

// ParsePolicy parses "reject" or "ignore", case-insensitively.
func ParsePolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case Reject:
		return Reject, nil
	case Ignore:
		return Ignore, nil
	default:
		return "", fmt.Errorf("unknown symptom policy %q (want reject or ignore)", s)
	}
}

// New creates an encoder over c.
func New(c *catalog.Catalog, opts Options) (*Encoder, error) {
	if opts.Encoding == "" {
		opts.Encoding = Binary
	}
	if opts.Unknown == "" {
		opts.Unknown = Reject
	}
	switch opts.Encoding {
	case Binary, Severity:
	default:
		return nil, fmt.Errorf("unknown feature encoding %q (want binary or severity)", opts.Encoding)
	}
	switch opts.Unknown {
	case Reject, Ignore:
	default:
		return nil, fmt.Errorf("unknown symptom policy %q (want reject or ignore)", opts.Unknown)
	}
	if opts.Suggestions < 0 {
		return nil, fmt.Errorf("invalid suggestion count %d: must be >= 0", opts.Suggestions)
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = c.Len()
	}

	if opts.Dimensions != c.Len() {
		if !opts.AllowDimensionFallback {
			return nil, fmt.Errorf("%w: catalog %d, model %d", ErrWidthMismatch, c.Len(), opts.Dimensions)
		}
		log.Printf("WARNING: catalog has %d symptoms but model expects %d; vectors will be padded or truncated",
			c.Len(), opts.Dimensions)
	}

	return &Encoder{catalog: c, opts: opts}, nil
}

// Encoding returns the configured encoding.
func (e *Encoder) Encoding() Encoding {
	return e.opts.Encoding
}

// Policy returns the configured unknown-name policy.
func (e *Encoder) Policy() UnknownPolicy {
	return e.opts.Unknown
}

// Width returns the length of every vector Encode produces.
func (e *Encoder) Width() int {
	return e.opts.Dimensions
}

// Known reports whether name is a catalog column.
func (e *Encoder) Known(name string) bool {
	return e.catalog.Contains(name)
}

// Unknown builds the error reported for names outside the catalog.
func (e *Encoder) Unknown(names ...string) *UnknownSymptomError {
	err := &UnknownSymptomError{
		Names:       names,
		Suggestions: make(map[string][]string, len(names)),
	}
	for _, n := range names {
		if s := e.catalog.Suggest(n, e.opts.Suggestions); len(s) > 0 {
			err.Suggestions[n] = s
		}
	}
	return err
}

// Encode produces the feature vector for selected. The result depends only on
// the set of names, not their order or repetition.
func (e *Encoder) Encode(selected []string) ([]float32, error) {
	if len(selected) == 0 {
		return nil, ErrNoSymptoms
	}

	vec := make([]float32, e.catalog.Len())
	var unknown []string
	seenUnknown := make(map[string]struct{})
	known := 0

	for _, name := range selected {
		i, ok := e.catalog.Index(name)
		if !ok {
			if _, dup := seenUnknown[name]; !dup {
				seenUnknown[name] = struct{}{}
				unknown = append(unknown, name)
			}
			continue
		}
		known++
		switch e.opts.Encoding {
		case Severity:
			vec[i] = float32(e.catalog.At(i).Severity)
		default:
			vec[i] = 1
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		if e.opts.Unknown != Ignore {
			return nil, e.Unknown(unknown...)
		}
		log.Printf("WARNING: ignoring symptoms not in catalog: %s", strings.Join(unknown, ", "))
	}
	if known == 0 {
		return nil, ErrNoSymptoms
	}

	if len(vec) != e.opts.Dimensions {
		vec = Fit(vec, e.opts.Dimensions)
	}
	return vec, nil
}

// Fit pads with zeros or truncates vec to width. It exists only for the
// explicit dimension fallback and always logs what it did.
func Fit(vec []float32, width int) []float32 {
	switch {
	case len(vec) == width:
		return vec
	case len(vec) < width:
		log.Printf("WARNING: padding feature vector from %d to %d columns", len(vec), width)
		out := make([]float32, width)
		copy(out, vec)
		return out
	default:
		log.Printf("WARNING: truncating feature vector from %d to %d columns", len(vec), width)
		out := make([]float32, width)
		copy(out, vec[:width])
		return out
	}
}
