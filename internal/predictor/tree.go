package predictor

import (
	"encoding/json"
	"fmt"
	"os"
)

// TreeArtifact is a fitted decision tree in flat array form: node n splits on
// Feature[n] at Threshold[n], with children ChildrenLeft[n] and
// ChildrenRight[n] (-1 on a leaf). Value[n] holds per-class weights.
type TreeArtifact struct {
	Encoding      string      `json:"encoding,omitempty"`
	FeatureNames  []string    `json:"feature_names,omitempty"`
	NFeatures     int         `json:"n_features"`
	Classes       []string    `json:"classes"`
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// TreeModel evaluates a TreeArtifact.
type TreeModel struct {
	artifact TreeArtifact
	width    int
}

// LoadTree reads a JSON tree artifact from path.
func LoadTree(path string) (*TreeModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var a TreeArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidArtifact, path, err)
	}
	return NewTree(a)
}

// NewTree validates a and returns a model over it.
func NewTree(a TreeArtifact) (*TreeModel, error) {
	width := a.NFeatures
	if width == 0 {
		width = len(a.FeatureNames)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: feature count is not set", ErrInvalidArtifact)
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != width {
		return nil, fmt.Errorf("%w: %d feature names for %d features", ErrInvalidArtifact, len(a.FeatureNames), width)
	}
	if len(a.Classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrInvalidArtifact)
	}

	nodes := len(a.ChildrenLeft)
	if nodes == 0 {
		return nil, fmt.Errorf("%w: tree has no nodes", ErrInvalidArtifact)
	}
	if len(a.ChildrenRight) != nodes || len(a.Feature) != nodes || len(a.Threshold) != nodes || len(a.Value) != nodes {
		return nil, fmt.Errorf("%w: node arrays have different lengths", ErrInvalidArtifact)
	}

	for n := 0; n < nodes; n++ {
		left, right := a.ChildrenLeft[n], a.ChildrenRight[n]
		if left == -1 || right == -1 {
			if left != right {
				return nil, fmt.Errorf("%w: node %d has one child", ErrInvalidArtifact, n)
			}
			if len(a.Value[n]) != len(a.Classes) {
				return nil, fmt.Errorf("%w: leaf %d has %d values for %d classes", ErrInvalidArtifact, n, len(a.Value[n]), len(a.Classes))
			}
			continue
		}
		// Children always follow their parent, which also rules out cycles.
		if left <= n || left >= nodes || right <= n || right >= nodes {
			return nil, fmt.Errorf("%w: node %d has out of range children %d, %d", ErrInvalidArtifact, n, left, right)
		}
		if f := a.Feature[n]; f < 0 || f >= width {
			return nil, fmt.Errorf("%w: node %d splits on feature %d of %d", ErrInvalidArtifact, n, f, width)
		}
	}

	return &TreeModel{artifact: a, width: width}, nil
}

// Predict walks the tree from the root to a leaf and returns its majority class.
func (m *TreeModel) Predict(features []float32) (string, error) {
	if err := checkDimensions(features, m.width); err != nil {
		return "", err
	}

	a := &m.artifact
	n := 0
	for a.ChildrenLeft[n] != -1 {
		if float64(features[a.Feature[n]]) <= a.Threshold[n] {
			n = a.ChildrenLeft[n]
		} else {
			n = a.ChildrenRight[n]
		}
	}

	return a.Classes[argmax(a.Value[n])], nil
}

// Dimensions returns the number of input features.
func (m *TreeModel) Dimensions() int {
	return m.width
}

// FeatureNames returns the training column order, if the artifact recorded it.
func (m *TreeModel) FeatureNames() []string {
	return m.artifact.FeatureNames
}

// Encoding returns the training feature encoding, if the artifact recorded it.
func (m *TreeModel) Encoding() string {
	return m.artifact.Encoding
}

// Classes returns the labels the tree can produce.
func (m *TreeModel) Classes() []string {
	return m.artifact.Classes
}
