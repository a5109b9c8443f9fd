// Package catalog holds the ordered symptom catalog.
//
// The order of the catalog defines the column order of the feature vector the
// model was fit on. A Catalog is immutable once built and is safe to share
// across goroutines.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TargetColumn is the label column of the training table. It is never a symptom.
const TargetColumn = "prognosis"

var (
	// ErrEmptyCatalog is returned when a catalog has no entries.
	ErrEmptyCatalog = errors.New("catalog has no symptoms")

	// ErrDuplicateSymptom is returned when a name appears more than once.
	ErrDuplicateSymptom = errors.New("duplicate symptom")

	// ErrInvalidSeverity is returned for a severity weight below 1.
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrInvalidName is returned for an empty name or the training target column.
	ErrInvalidName = errors.New("invalid symptom name")
)

// Symptom is a single catalog entry.
type Symptom struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
}

// Catalog is an ordered, immutable list of known symptoms.
type Catalog struct {
	symptoms []Symptom
	index    map[string]int
	grams    []trigrams
}

// New builds a catalog from symptoms in column order.
func New(symptoms []Symptom) (*Catalog, error) {
	if len(symptoms) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		symptoms: make([]Symptom, len(symptoms)),
		index:    make(map[string]int, len(symptoms)),
		grams:    make([]trigrams, len(symptoms)),
	}

	for i, s := range symptoms {
		name := strings.TrimSpace(s.Name)
		if name == "" || name == TargetColumn {
			return nil, fmt.Errorf("%w at position %d: %q", ErrInvalidName, i, s.Name)
		}
		if s.Severity < 1 {
			return nil, fmt.Errorf("%w for %s: %d", ErrInvalidSeverity, name, s.Severity)
		}
		if prev, ok := c.index[name]; ok {
			return nil, fmt.Errorf("%w %s at positions %d and %d", ErrDuplicateSymptom, name, prev, i)
		}
		c.symptoms[i] = Symptom{Name: name, Severity: s.Severity}
		c.index[name] = i
		c.grams[i] = newTrigrams(name)
	}

	return c, nil
}

// Len returns the number of symptoms, which is the feature vector width.
func (c *Catalog) Len() int {
	return len(c.symptoms)
}

// At returns the symptom in column i.
func (c *Catalog) At(i int) Symptom {
	return c.symptoms[i]
}

// Index returns the column of name.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Contains reports whether name is a known symptom.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Symptoms returns a copy of the entries in column order.
func (c *Catalog) Symptoms() []Symptom {
	out := make([]Symptom, len(c.symptoms))
	copy(out, c.symptoms)
	return out
}

// Names returns the symptom names in column order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.symptoms))
	for i, s := range c.symptoms {
		out[i] = s.Name
	}
	return out
}

// Label turns a catalog name into display text, e.g. "high_fever" -> "High fever".
func Label(name string) string {
	text := strings.ReplaceAll(name, "_", " ")
	if text == "" {
		return text
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}
