package linear

import (
	"time"

	"github.com/YuminosukeSato/polyreg/pkg/log"
)

// CallbackEnv is passed to every callback during Train.
type CallbackEnv struct {
	EstimatorID string

	// Iteration counts accepted steps in the current Train call.
	Iteration int
	Cost      float64
	Elapsed   time.Duration

	// Final is set on the last event of a Train call. StopReason is only
	// meaningful then.
	Final      bool
	StopReason StopReason
}

// Callback observes training progress. Callbacks run while the model is
// locked for training and must not call methods on the model.
type Callback func(env *CallbackEnv)

// LogProgress logs each progress event at Info level.
func LogProgress(logger log.Logger) Callback {
	return func(env *CallbackEnv) {
		if env.Final {
			logger.Info("Final cost",
				log.EstimatorIDKey, env.EstimatorID,
				log.IterationKey, env.Iteration,
				log.LossKey, env.Cost,
				log.StopReasonKey, string(env.StopReason),
				log.DurationMsKey, env.Elapsed.Milliseconds(),
			)
			return
		}
		logger.Info("Training progress",
			log.EstimatorIDKey, env.EstimatorID,
			log.IterationKey, env.Iteration,
			log.LossKey, env.Cost,
		)
	}
}

// RecordCost appends the cost of every periodic progress event to history.
// The final event repeats the last accepted cost and is not recorded.
func RecordCost(history *[]float64) Callback {
	return func(env *CallbackEnv) {
		if env.Final {
			return
		}
		*history = append(*history, env.Cost)
	}
}
