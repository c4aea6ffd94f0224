package dataset

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// WriteParameters writes one line of space separated coefficients per order,
// then the intercept. There is no trailing newline.
//
// params has the layout returned by PolynomialRegression.GetParameters.
func WriteParameters(w io.Writer, params [][]float64) error {
	if len(params) < 2 {
		return errors.NewDimensionError("dataset.WriteParameters", 2, len(params), errors.AxisOrders)
	}
	last := params[len(params)-1]
	if len(last) != 1 {
		return errors.NewDimensionError("dataset.WriteParameters", 1, len(last), errors.AxisFeatures)
	}

	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for _, coefs := range params[:len(params)-1] {
		for j, v := range coefs {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.Write(strconv.AppendFloat(buf[:0], v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	bw.Write(strconv.AppendFloat(buf[:0], last[0], 'g', -1, 64))

	return errors.Wrap(bw.Flush(), "dataset.WriteParameters")
}

// SaveParameters writes params to the file at path, replacing it.
func SaveParameters(path string, params [][]float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dataset.SaveParameters %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "dataset.SaveParameters %s", path)
		}
	}()
	return WriteParameters(f, params)
}

// ReadParameters parses the output of WriteParameters for a model with the
// given order and feature count.
func ReadParameters(r io.Reader, order, numFeatures int) ([][]float64, error) {
	t := newTokenReader("dataset.ReadParameters", r)

	params := make([][]float64, order+1)
	for k := 0; k < order; k++ {
		params[k] = make([]float64, numFeatures)
		if err := t.readFloats(params[k], "coefficient"); err != nil {
			return nil, err
		}
	}
	params[order] = make([]float64, 1)
	if err := t.readFloats(params[order], "intercept"); err != nil {
		return nil, err
	}
	return params, nil
}
