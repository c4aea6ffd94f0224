// Package linear implements polynomial regression trained by batch gradient
// descent with L2 regularization.
package linear

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyreg/core/model"
	"github.com/YuminosukeSato/polyreg/core/parallel"
	"github.com/YuminosukeSato/polyreg/metrics"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"github.com/YuminosukeSato/polyreg/pkg/log"
	"github.com/YuminosukeSato/polyreg/preprocessing"
)

const (
	// DefaultMaxIterations is used when a dataset does not specify an
	// iteration limit.
	DefaultMaxIterations = 40000

	// DefaultProgressInterval is the number of accepted iterations between
	// progress callbacks.
	DefaultProgressInterval = 1000

	// ConvergenceThreshold is the smallest cost decrease that still counts
	// as progress.
	ConvergenceThreshold = 1e-20
)

// StopReason records why Train stopped.
type StopReason string

const (
	// StopConverged means the cost decreased by no more than ConvergenceThreshold.
	StopConverged StopReason = "converged"
	// StopDiverged means the cost increased or stopped being finite.
	StopDiverged StopReason = "diverged"
	// StopMaxIterations means the iteration limit was reached.
	StopMaxIterations StopReason = "max_iterations"
)

// TrainResult summarizes one Train call.
type TrainResult struct {
	// Iterations is the number of accepted steps.
	Iterations int
	// FinalCost is the regularized cost at the returned parameters.
	FinalCost  float64
	StopReason StopReason
}

// PolynomialRegression は多項式回帰モデル
//
// 予測値は intercept + Σ_{k=1..order} dot(x^k, coefficients[k-1]) で、
// x^k は入力の要素ごとの k 乗。交差項は持たない。
// 学習はL2正則化付きの二乗誤差を最急降下法で最小化する。
type PolynomialRegression struct {
	mu    sync.RWMutex
	state *model.StateManager

	id     string
	logger log.Logger

	features *preprocessing.PowerFeatures
	powers   []*mat.Dense // powers[k-1] = X^k
	y        mat.Vector

	order          int
	regularization float64
	nFeatures      int
	nSamples       int

	coefficients []*mat.VecDense
	intercept    float64

	updateRule       UpdateRule
	progressInterval int
	callbacks        []Callback
}

var _ model.Regressor = (*PolynomialRegression)(nil)

// NewPolynomialRegression は行スライス形式のデータセットからモデルを作成する
//
// features は numDataPoints 行、各行 numFeatures 列でなければならない。
// データは一度だけ密行列にコピーされる。
//
// 使用例:
//
//	m, err := linear.NewPolynomialRegression(X, y, 1, len(X), 2, 0.01)
//	if err != nil {
//	    return err
//	}
//	res, err := m.Train(0.01, linear.DefaultMaxIterations)
func NewPolynomialRegression(features [][]float64, targets []float64, numFeatures, numDataPoints, order int, regularization float64, opts ...Option) (*PolynomialRegression, error) {
	const op = "NewPolynomialRegression"

	if numFeatures < 1 {
		return nil, errors.NewValidationError("numFeatures", "must be at least 1", numFeatures)
	}
	if numDataPoints < 1 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if len(features) != numDataPoints {
		return nil, errors.NewDimensionError(op, numDataPoints, len(features), errors.AxisRows)
	}
	if len(targets) != numDataPoints {
		return nil, errors.NewDimensionError(op, numDataPoints, len(targets), errors.AxisRows)
	}

	X := mat.NewDense(numDataPoints, numFeatures, nil)
	for i, row := range features {
		if len(row) != numFeatures {
			return nil, errors.NewDimensionError(op, numFeatures, len(row), errors.AxisFeatures)
		}
		X.SetRow(i, row)
	}
	y := mat.NewVecDense(numDataPoints, append([]float64(nil), targets...))

	return NewPolynomialRegressionFromMatrix(X, y, order, regularization, opts...)
}

// NewPolynomialRegressionFromMatrix は gonum の行列とベクトルからモデルを作成する
//
// X と y は参照として保持されるので、モデルの生存中に変更してはならない。
func NewPolynomialRegressionFromMatrix(X mat.Matrix, y mat.Vector, order int, regularization float64, opts ...Option) (*PolynomialRegression, error) {
	const op = "NewPolynomialRegressionFromMatrix"

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return nil, errors.NewDimensionError(op, r, y.Len(), errors.AxisRows)
	}
	if order < 1 {
		return nil, errors.NewValidationError("order", "must be at least 1", order)
	}
	if !errors.IsFinite(regularization) || regularization < 0 {
		return nil, errors.NewValidationError("regularization", "must be a finite value >= 0", regularization)
	}

	p := &PolynomialRegression{
		state:            model.NewStateManager(),
		id:               uuid.NewString(),
		logger:           log.GetLoggerWithName("linear"),
		y:                y,
		order:            order,
		regularization:   regularization,
		nFeatures:        c,
		nSamples:         r,
		updateRule:       UpdateSimultaneous,
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.progressInterval < 1 {
		return nil, errors.NewValidationError("progressInterval", "must be at least 1", p.progressInterval)
	}
	if p.updateRule != UpdateSimultaneous && p.updateRule != UpdateSequential {
		return nil, errors.NewValidationError("updateRule", "unknown update rule", int(p.updateRule))
	}

	p.logger = p.logger.With(
		log.ModelNameKey, "PolynomialRegression",
		log.EstimatorIDKey, p.id,
	)

	features, err := preprocessing.NewPowerFeatures(order)
	if err != nil {
		return nil, err
	}
	if err := features.Fit(X); err != nil {
		return nil, err
	}
	powers, err := features.Powers(X)
	if err != nil {
		return nil, err
	}
	p.features = features
	p.powers = powers

	p.coefficients = make([]*mat.VecDense, order)
	for k := range p.coefficients {
		p.coefficients[k] = mat.NewVecDense(c, nil)
	}
	p.state.SetDimensions(c, r)

	p.logger.Debug("Model created",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.OrderKey, order,
		log.RegularizationKey, regularization,
		log.UpdateRuleKey, p.updateRule.String(),
	)

	return p, nil
}

// ID returns the estimator's unique identifier.
func (p *PolynomialRegression) ID() string { return p.id }

// Order returns the highest power of the inputs the model uses.
func (p *PolynomialRegression) Order() int { return p.order }

// NumFeatures returns the number of input features.
func (p *PolynomialRegression) NumFeatures() int { return p.nFeatures }

// NIterations returns the accepted steps across every Train call.
func (p *PolynomialRegression) NIterations() int { return p.state.NIterations() }

// IsFitted reports whether Train has run at least once.
func (p *PolynomialRegression) IsFitted() bool { return p.state.IsFitted() }

// Predict は1サンプルに対する予測値を返す
//
// 未学習のモデルは切片のみ（0）を返す。
func (p *PolynomialRegression) Predict(input []float64) (_ float64, err error) {
	defer errors.Recover(&err, "PolynomialRegression.Predict")

	if len(input) != p.nFeatures {
		return 0, errors.NewDimensionError("PolynomialRegression.Predict", p.nFeatures, len(input), errors.AxisFeatures)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	pow := make([]float64, len(input))
	out := p.intercept
	for k, c := range p.coefficients {
		pow = preprocessing.PowVec(pow, input, k+1)
		out += floats.Dot(pow, c.RawVector().Data)
	}
	return out, nil
}

// PredictBatch は X の各行に対する予測値を返す
func (p *PolynomialRegression) PredictBatch(X mat.Matrix) (_ *mat.VecDense, err error) {
	defer errors.Recover(&err, "PolynomialRegression.PredictBatch")

	r, c := X.Dims()
	if c != p.nFeatures {
		return nil, errors.NewDimensionError("PolynomialRegression.PredictBatch", p.nFeatures, c, errors.AxisFeatures)
	}
	if r == 0 {
		return nil, errors.NewModelError("PolynomialRegression.PredictBatch", "empty data", errors.ErrEmptyData)
	}

	p.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	powers, err := p.features.Powers(X)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := mat.NewVecDense(r, nil)
	predictRows(out, powers, p.coefficients, p.intercept)

	p.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, r,
	)
	return out, nil
}

// Score は決定係数 R² を返す。y は n×1 の列ベクトル。
func (p *PolynomialRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer errors.Recover(&err, "PolynomialRegression.Score")

	ry, cy := y.Dims()
	if cy != 1 {
		return 0, errors.NewValueError("PolynomialRegression.Score", "y must be a column vector")
	}
	if r, _ := X.Dims(); r != ry {
		return 0, errors.NewDimensionError("PolynomialRegression.Score", r, ry, errors.AxisRows)
	}

	preds, err := p.PredictBatch(X)
	if err != nil {
		return 0, err
	}

	yTrue := mat.NewVecDense(ry, nil)
	for i := 0; i < ry; i++ {
		yTrue.SetVec(i, y.At(i, 0))
	}

	score, err := metrics.R2Score(yTrue, preds)
	if err != nil {
		return 0, err
	}
	p.logger.Debug("Score computed",
		log.OperationKey, log.OperationScore,
		log.R2ScoreKey, score,
	)
	return score, nil
}

// GetParams はハイパーパラメータを返す
func (p *PolynomialRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"order":             p.order,
		"regularization":    p.regularization,
		"update_rule":       p.updateRule.String(),
		"progress_interval": p.progressInterval,
	}
}

// GetParameters は order 個の係数ベクトルと、最後に切片1つだけのスライスを返す
//
// 戻り値はコピーなので変更してもモデルに影響しない。
func (p *PolynomialRegression) GetParameters() [][]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	params := make([][]float64, 0, p.order+1)
	for _, c := range p.coefficients {
		params = append(params, append([]float64(nil), c.RawVector().Data...))
	}
	return append(params, []float64{p.intercept})
}

// SetParameters はGetParametersと同じ形式のパラメータを読み込む
func (p *PolynomialRegression) SetParameters(params [][]float64) error {
	const op = "PolynomialRegression.SetParameters"

	if len(params) != p.order+1 {
		return errors.NewDimensionError(op, p.order+1, len(params), errors.AxisOrders)
	}
	for k := 0; k < p.order; k++ {
		if len(params[k]) != p.nFeatures {
			return errors.NewDimensionError(op, p.nFeatures, len(params[k]), errors.AxisFeatures)
		}
	}
	if len(params[p.order]) != 1 {
		return errors.NewDimensionError(op, 1, len(params[p.order]), errors.AxisFeatures)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for k, c := range p.coefficients {
		copy(c.RawVector().Data, params[k])
	}
	p.intercept = params[p.order][0]
	return nil
}

// Train は最急降下法でパラメータを更新する
//
// 各イテレーションでコストが増加した場合、減少幅が ConvergenceThreshold 以下の場合、
// またはコストが有限でなくなった場合は、そのステップを取り消して終了する。
// 再度呼び出すと現在のパラメータから学習を続ける。
func (p *PolynomialRegression) Train(learningRate float64, maxIterations int) (_ *TrainResult, err error) {
	defer errors.Recover(&err, "PolynomialRegression.Train")

	if !errors.IsFinite(learningRate) || learningRate <= 0 {
		return nil, errors.NewValidationError("learningRate", "must be a finite value > 0", learningRate)
	}
	if maxIterations < 1 {
		return nil, errors.NewValidationError("maxIterations", "must be at least 1", maxIterations)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	p.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, p.nSamples,
		log.FeaturesKey, p.nFeatures,
		log.OrderKey, p.order,
		log.LearningRateKey, learningRate,
		log.RegularizationKey, p.regularization,
		log.MaxIterationsKey, maxIterations,
		log.UpdateRuleKey, p.updateRule.String(),
	)

	residuals := mat.NewVecDense(p.nSamples, nil)
	p.computeResiduals(residuals)
	cost := p.costFrom(residuals)

	saved := make([]*mat.VecDense, p.order)
	for k := range saved {
		saved[k] = mat.NewVecDense(p.nFeatures, nil)
	}
	savedResiduals := mat.NewVecDense(p.nSamples, nil)

	accepted := 0
	reason := StopMaxIterations
	for i := 1; i <= maxIterations; i++ {
		for k, c := range p.coefficients {
			saved[k].CopyVec(c)
		}
		savedIntercept := p.intercept
		savedResiduals.CopyVec(residuals)

		p.step(learningRate, residuals)
		p.computeResiduals(residuals)
		newCost := p.costFrom(residuals)

		stop := false
		switch {
		case !errors.IsFinite(newCost):
			errors.Warn(errors.NewNumericalInstabilityError("cost", []float64{newCost}, i))
			reason, stop = StopDiverged, true
		case newCost > cost:
			reason, stop = StopDiverged, true
		case cost-newCost <= ConvergenceThreshold:
			reason, stop = StopConverged, true
		}
		if stop {
			for k, c := range p.coefficients {
				c.CopyVec(saved[k])
			}
			p.intercept = savedIntercept
			residuals.CopyVec(savedResiduals)
			break
		}

		cost = newCost
		accepted++
		if accepted%p.progressInterval == 0 {
			p.notify(&CallbackEnv{
				EstimatorID: p.id,
				Iteration:   accepted,
				Cost:        cost,
				Elapsed:     time.Since(start),
			})
		}
	}

	if reason == StopMaxIterations {
		errors.Warn(errors.NewConvergenceWarning("PolynomialRegression", maxIterations, ""))
	}

	p.state.AddIterations(accepted)
	p.state.SetFitted()

	duration := time.Since(start)
	p.notify(&CallbackEnv{
		EstimatorID: p.id,
		Iteration:   accepted,
		Cost:        cost,
		Elapsed:     duration,
		Final:       true,
		StopReason:  reason,
	})

	p.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.IterationKey, accepted,
		log.LossKey, cost,
		log.StopReasonKey, string(reason),
		log.DurationMsKey, duration.Milliseconds(),
	)

	return &TrainResult{Iterations: accepted, FinalCost: cost, StopReason: reason}, nil
}

func (p *PolynomialRegression) notify(env *CallbackEnv) {
	for _, cb := range p.callbacks {
		cb(env)
	}
}

// step は1回分のパラメータ更新を行う。residuals は更新前のパラメータに対する残差で、
// UpdateSequential では途中で書き換えられる。
func (p *PolynomialRegression) step(learningRate float64, residuals *mat.VecDense) {
	switch p.updateRule {
	case UpdateSequential:
		grad := mat.NewVecDense(p.nFeatures, nil)
		for k, c := range p.coefficients {
			if k > 0 {
				p.computeResiduals(residuals)
			}
			p.coefficientGradientInto(grad, k, residuals)
			c.AddScaledVec(c, -learningRate, grad)
		}
		p.computeResiduals(residuals)
		p.intercept -= learningRate * p.interceptGradientFrom(residuals)

	default:
		grads := make([]*mat.VecDense, p.order)
		for k := range grads {
			grads[k] = mat.NewVecDense(p.nFeatures, nil)
			p.coefficientGradientInto(grads[k], k, residuals)
		}
		interceptGrad := p.interceptGradientFrom(residuals)

		for k, c := range p.coefficients {
			c.AddScaledVec(c, -learningRate, grads[k])
		}
		p.intercept -= learningRate * interceptGrad
	}
}

// computeResiduals は各サンプルについて predict(x_i) - y_i を dst に書き込む
func (p *PolynomialRegression) computeResiduals(dst *mat.VecDense) {
	predictRows(dst, p.powers, p.coefficients, p.intercept)
	data := dst.RawVector().Data
	for i := range data {
		data[i] -= p.y.AtVec(i)
	}
}

// predictRows は powers から各行の予測値を dst に書き込む
func predictRows(dst *mat.VecDense, powers []*mat.Dense, coefficients []*mat.VecDense, intercept float64) {
	n := dst.Len()
	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out := intercept
			for k, c := range coefficients {
				out += floats.Dot(powers[k].RawRowView(i), c.RawVector().Data)
			}
			dst.SetVec(i, out)
		}
	})
}

func (p *PolynomialRegression) coefficientVectors() []mat.Vector {
	vs := make([]mat.Vector, len(p.coefficients))
	for k, c := range p.coefficients {
		vs[k] = c
	}
	return vs
}

func (p *PolynomialRegression) costFrom(residuals *mat.VecDense) float64 {
	return metrics.RegularizedCost(residuals, p.coefficientVectors(), p.regularization)
}

// coefficientGradientInto は order k+1 の係数に対する勾配
// [ X^(k+1)ᵀ r + λ c ] / N を dst に書き込む
func (p *PolynomialRegression) coefficientGradientInto(dst *mat.VecDense, k int, residuals *mat.VecDense) {
	dst.MulVec(p.powers[k].T(), residuals)
	dst.AddScaledVec(dst, p.regularization, p.coefficients[k])
	dst.ScaleVec(1/float64(p.nSamples), dst)
}

func (p *PolynomialRegression) interceptGradientFrom(residuals *mat.VecDense) float64 {
	return floats.Sum(residuals.RawVector().Data) / float64(p.nSamples)
}

// cost returns the regularized cost at the current parameters.
func (p *PolynomialRegression) cost() float64 {
	r := mat.NewVecDense(p.nSamples, nil)
	p.computeResiduals(r)
	return p.costFrom(r)
}

// coefficientGradient returns the gradient for order k (1-based) at the
// current parameters.
func (p *PolynomialRegression) coefficientGradient(k int) *mat.VecDense {
	r := mat.NewVecDense(p.nSamples, nil)
	p.computeResiduals(r)
	grad := mat.NewVecDense(p.nFeatures, nil)
	p.coefficientGradientInto(grad, k-1, r)
	return grad
}

func (p *PolynomialRegression) interceptGradient() float64 {
	r := mat.NewVecDense(p.nSamples, nil)
	p.computeResiduals(r)
	return p.interceptGradientFrom(r)
}
