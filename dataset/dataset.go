// Package dataset reads and writes the plain-text files used by the polyreg
// command: the training dataset, the test inputs and the learned parameters.
//
// All formats are whitespace separated numbers. Line breaks are not significant
// when reading.
package dataset

import (
	"io"
	"os"

	"github.com/YuminosukeSato/polyreg/linear"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// UnsetMaxIterations marks a dataset that does not specify an iteration limit.
const UnsetMaxIterations = -1

// Dataset is a parsed training file:
//
//	numFeatures numDataPoints order
//	x_11 ... x_1F y_1
//	...
//	x_N1 ... x_NF y_N
//	learningRate [maxIterations]
type Dataset struct {
	NumFeatures   int
	NumDataPoints int
	Order         int

	Features [][]float64
	Targets  []float64

	LearningRate float64
	// MaxIterations is linear.DefaultMaxIterations when the file omits it or
	// gives UnsetMaxIterations.
	MaxIterations int
}

// Read parses a dataset from r.
func Read(r io.Reader) (*Dataset, error) {
	const op = "dataset.Read"
	t := newTokenReader(op, r)

	d := &Dataset{}
	var err error
	if d.NumFeatures, err = t.readInt("numFeatures"); err != nil {
		return nil, err
	}
	if d.NumDataPoints, err = t.readInt("numDataPoints"); err != nil {
		return nil, err
	}
	if d.Order, err = t.readInt("order"); err != nil {
		return nil, err
	}
	if d.NumFeatures < 1 {
		return nil, errors.NewValidationError("numFeatures", "must be at least 1", d.NumFeatures)
	}
	if d.NumDataPoints < 1 {
		return nil, errors.NewValidationError("numDataPoints", "must be at least 1", d.NumDataPoints)
	}
	if d.Order < 1 {
		return nil, errors.NewValidationError("order", "must be at least 1", d.Order)
	}

	d.Features = make([][]float64, d.NumDataPoints)
	d.Targets = make([]float64, d.NumDataPoints)
	for i := range d.Features {
		d.Features[i] = make([]float64, d.NumFeatures)
		if err := t.readFloats(d.Features[i], "feature"); err != nil {
			return nil, err
		}
		if d.Targets[i], err = t.readFloat("target"); err != nil {
			return nil, err
		}
	}

	if d.LearningRate, err = t.readFloat("learningRate"); err != nil {
		return nil, err
	}

	maxIter, ok, err := t.optionalInt("maxIterations")
	if err != nil {
		return nil, err
	}
	switch {
	case !ok || maxIter == UnsetMaxIterations:
		d.MaxIterations = linear.DefaultMaxIterations
	case maxIter < 1:
		return nil, errors.NewValidationError("maxIterations", "must be at least 1 or -1 for the default", maxIter)
	default:
		d.MaxIterations = maxIter
	}

	return d, nil
}

// Load reads a dataset from the file at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load %s", path)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load %s", path)
	}
	return d, nil
}

// NewModel builds a model over the dataset's features and targets.
func (d *Dataset) NewModel(regularization float64, opts ...linear.Option) (*linear.PolynomialRegression, error) {
	return linear.NewPolynomialRegression(d.Features, d.Targets, d.NumFeatures, d.NumDataPoints, d.Order, regularization, opts...)
}

// ReadTestInputs parses a count followed by count rows of numFeatures values.
// An empty input, or a count of -1, yields no rows.
func ReadTestInputs(r io.Reader, numFeatures int) ([][]float64, error) {
	const op = "dataset.ReadTestInputs"
	t := newTokenReader(op, r)

	count, ok, err := t.optionalInt("count")
	if err != nil {
		return nil, err
	}
	if !ok || count == -1 {
		return nil, nil
	}
	if count < 0 {
		return nil, errors.NewValidationError("count", "must be >= 0 or -1", count)
	}

	inputs := make([][]float64, count)
	for i := range inputs {
		inputs[i] = make([]float64, numFeatures)
		if err := t.readFloats(inputs[i], "test input"); err != nil {
			return nil, err
		}
	}
	return inputs, nil
}

// LoadTestInputs reads test inputs from the file at path. The returned error
// matches fs.ErrNotExist when the file is missing.
func LoadTestInputs(path string, numFeatures int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadTestInputs %s", path)
	}
	defer f.Close()

	inputs, err := ReadTestInputs(f, numFeatures)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadTestInputs %s", path)
	}
	return inputs, nil
}
