// Package polyreg fits polynomial regression models with batch gradient
// descent and L2 regularization, and predicts outputs for new inputs.
//
// A model of order K over F features predicts
//
//	y = intercept + Σ_{k=1..K} dot(x^k, coefficients[k-1])
//
// where x^k is the elementwise k-th power of the input. There are no cross
// terms between features.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/polyreg/linear"
//	)
//
//	func main() {
//	    X := [][]float64{{1}, {2}, {3}}
//	    y := []float64{2, 4, 6}
//
//	    model, err := linear.NewPolynomialRegression(X, y, 1, len(X), 1, 0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := model.Train(0.01, linear.DefaultMaxIterations); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, _ := model.Predict([]float64{4})
//	    fmt.Println(pred) // ≈ 8
//	}
//
// # Training
//
// Train runs up to maxIterations full-batch steps. A step that raises the
// cost, lowers it by no more than 1e-20, or makes it NaN or Inf is undone
// exactly and training stops. Reaching the iteration limit emits a
// ConvergenceWarning through pkg/errors. Progress is reported through
// callbacks (linear.WithCallbacks, linear.LogProgress, linear.RecordCost)
// every linear.WithProgressInterval accepted steps.
//
// # Packages
//
//   - linear: PolynomialRegression, update rules, training callbacks
//   - preprocessing: PowerFeatures, the x → [x, x², …] expansion
//   - metrics: MSE, RMSE, MAE, R² and the regularized training cost
//   - dataset: text formats for datasets, test inputs and parameters
//   - core/model: estimator interfaces and fitted-state bookkeeping
//   - core/parallel: row-range parallelism for large inputs
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging on zerolog and slog
//   - cmd/polyreg: the command-line program
//
// # Performance
//
// Building the power matrices and the per-sample residuals fans out across
// CPU cores for datasets with more than 1000 rows. Results do not depend on
// the number of cores.
package polyreg
