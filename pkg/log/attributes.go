// Standard attribute keys for polyreg log records.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so records can be filtered by prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "PolynomialRegression".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one model instance (a UUID).
	EstimatorIDKey = "estimator.id"

	// OperationKey is the operation being performed: "fit", "predict", "score".
	OperationKey = "ml.operation"

	// ComponentKey is the package doing the work: "linear", "dataset", "cmd".
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase: "training", "inference".
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	OrderKey    = "model.order"
	PathKey     = "data.path"
)

// Performance and training progress.
const (
	DurationMsKey = "perf.duration_ms"
	LossKey       = "metrics.loss"
	R2ScoreKey    = "metrics.r2_score"
	IterationKey  = "training.iteration"

	// StopReasonKey records why the optimizer stopped: "converged", "diverged",
	// "non_finite", "max_iterations".
	StopReasonKey = "training.stop_reason"

	// UpdateRuleKey records the gradient update rule in use.
	UpdateRuleKey = "training.update_rule"
)

// Predictions.
const (
	PredsKey = "preds.count"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters.
const (
	LearningRateKey   = "hyperparams.learning_rate"
	RegularizationKey = "hyperparams.regularization"
	MaxIterationsKey  = "hyperparams.max_iterations"
)

// Standard values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
)
