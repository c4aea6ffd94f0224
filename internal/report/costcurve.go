// Package report renders training diagnostics.
package report

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// CostPoints pairs each recorded cost with its accepted iteration. costs[i]
// was recorded at iteration (i+1)*interval.
func CostPoints(costs []float64, interval int) plotter.XYs {
	xys := make(plotter.XYs, len(costs))
	for i, c := range costs {
		xys[i] = plotter.XY{X: float64((i + 1) * interval), Y: c}
	}
	return xys
}

// SaveCostCurve writes a PNG of cost against iteration to path. The y axis is
// logarithmic when every cost is positive.
func SaveCostCurve(path string, costs []float64, interval int) error {
	const op = "report.SaveCostCurve"
	if len(costs) == 0 {
		return errors.NewModelError(op, "no recorded costs", errors.ErrEmptyData)
	}
	if interval < 1 {
		return errors.NewValidationError("interval", "must be at least 1", interval)
	}

	xys := CostPoints(costs, interval)

	p := plot.New()
	p.Title.Text = "Training cost"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "cost"

	positive := true
	for _, xy := range xys {
		if !errors.IsFinite(xy.Y) {
			return errors.NewNumericalInstabilityError("cost curve", costs, int(xy.X))
		}
		if xy.Y <= 0 {
			positive = false
		}
	}
	if positive {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, op)
	}
	line.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	line.Width = vg.Points(1.2)
	p.Add(plotter.NewGrid(), line)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "%s: create %s", op, dir)
		}
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "%s: save %s", op, path)
	}
	return nil
}
