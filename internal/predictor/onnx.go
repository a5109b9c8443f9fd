package predictor

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

// Output name used by classifiers exported without a ZipMap node.
const defaultONNXOutput = "probabilities"

// ONNXModel runs an exported classifier with onnxruntime. The model must take
// a [1, N] float32 input and emit [1, C] float32 class scores; labels maps
// score columns to class names.
type ONNXModel struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	width      int
	labels     []string
}

// LoadONNX initializes onnxruntime and opens the model in cfg.ModelPath.
func LoadONNX(cfg Config) (*ONNXModel, error) {
	if cfg.LabelsPath == "" {
		return nil, fmt.Errorf("%w: onnx backend needs a labels file", ErrInvalidArtifact)
	}
	labels, err := readLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect %s: %v", ErrInvalidArtifact, cfg.ModelPath, err)
	}

	input, err := pickIO(inputs, cfg.InputName, "input")
	if err != nil {
		return nil, err
	}
	outputName := cfg.OutputName
	if outputName == "" {
		outputName = defaultONNXOutput
	}
	output, err := pickIO(outputs, outputName, "output")
	if err != nil {
		return nil, err
	}

	width := lastDim(input.Dimensions)
	if width <= 0 {
		return nil, fmt.Errorf("%w: input %s has no fixed feature width (%v)", ErrInvalidArtifact, input.Name, input.Dimensions)
	}
	if classes := lastDim(output.Dimensions); classes > 0 && classes != len(labels) {
		return nil, fmt.Errorf("%w: model has %d classes, labels file has %d", ErrInvalidArtifact, classes, len(labels))
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, []string{input.Name}, []string{output.Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open session: %v", ErrInvalidArtifact, err)
	}

	return &ONNXModel{
		session:    session,
		inputName:  input.Name,
		outputName: output.Name,
		width:      width,
		labels:     labels,
	}, nil
}

// Predict runs one inference and returns the highest-scoring label.
func (m *ONNXModel) Predict(features []float32) (string, error) {
	if err := checkDimensions(features, m.width); err != nil {
		return "", err
	}

	data := make([]float32, len(features))
	copy(data, features)
	input, err := ort.NewTensor(ort.NewShape(1, int64(m.width)), data)
	if err != nil {
		return "", fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(m.labels))))
	if err != nil {
		return "", fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return "", fmt.Errorf("run %s: %w", m.outputName, err)
	}

	return m.labels[argmax(output.GetData())], nil
}

// Dimensions returns the model input width.
func (m *ONNXModel) Dimensions() int {
	return m.width
}

// Close releases the session and the onnxruntime environment.
func (m *ONNXModel) Close() error {
	if m.session != nil {
		if err := m.session.Destroy(); err != nil {
			return err
		}
		m.session = nil
	}
	return ort.DestroyEnvironment()
}

func pickIO(infos []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("%w: model has no %s", ErrInvalidArtifact, kind)
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ort.InputOutputInfo{}, fmt.Errorf("%w: model has no %s named %q", ErrInvalidArtifact, kind, name)
}

func lastDim(s ort.Shape) int {
	if len(s) == 0 {
		return 0
	}
	return int(s[len(s)-1])
}

// readLabels reads one class label per line, skipping blanks.
func readLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: labels file %s is empty", ErrInvalidArtifact, path)
	}
	return labels, nil
}
