// Command polyreg trains a polynomial regression model on a text dataset,
// writes the learned parameters and prints predictions for the test inputs.
//
// Paths and training options come from an optional YAML file named by
// POLYREG_CONFIG, from the environment, or from a .env file in the working
// directory. Without any configuration it reads data.txt and test.txt and
// writes parameters.txt.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyreg/core/model"
	"github.com/YuminosukeSato/polyreg/dataset"
	"github.com/YuminosukeSato/polyreg/internal/config"
	"github.com/YuminosukeSato/polyreg/internal/report"
	"github.com/YuminosukeSato/polyreg/linear"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"github.com/YuminosukeSato/polyreg/pkg/log"
)

func main() {
	if err := run(os.Stdout, os.Stderr); err != nil {
		slog.Error("polyreg failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
	if err != nil {
		return err
	}

	logger, err := setupLogging(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded",
		log.PathKey, cfg.DataPath,
		log.SamplesKey, ds.NumDataPoints,
		log.FeaturesKey, ds.NumFeatures,
		log.OrderKey, ds.Order,
	)

	var history []float64
	opts := append(cfg.ModelOptions(),
		linear.WithCallbacks(linear.LogProgress(logger), linear.RecordCost(&history)),
	)
	m, err := ds.NewModel(cfg.Regularization, opts...)
	if err != nil {
		return err
	}

	res, err := m.Train(ds.LearningRate, ds.MaxIterations)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Final cost after %d iterations : %s\n", res.Iterations, formatFloat(res.FinalCost))

	logFit(logger, m, ds)

	if err := dataset.SaveParameters(cfg.ParametersPath, m.GetParameters()); err != nil {
		return err
	}
	logger.Info("Parameters written", log.PathKey, cfg.ParametersPath)

	if cfg.PlotPath != "" {
		if len(history) == 0 {
			logger.Warn("No progress events recorded, skipping cost plot",
				log.IterationKey, res.Iterations,
				log.PathKey, cfg.PlotPath,
			)
		} else if err := report.SaveCostCurve(cfg.PlotPath, history, cfg.ProgressInterval); err != nil {
			return err
		} else {
			logger.Info("Cost curve written", log.PathKey, cfg.PlotPath)
		}
	}

	inputs, err := dataset.LoadTestInputs(cfg.TestPath, ds.NumFeatures)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("No test inputs", log.PathKey, cfg.TestPath)
		return nil
	}
	if err != nil {
		return err
	}
	return printPredictions(stdout, m, inputs)
}

// setupLogging routes zerolog, slog and pkg/errors warnings to w.
func setupLogging(w io.Writer, levelName string) (log.Logger, error) {
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	if err := log.SetupLogger(w, levelName); err != nil {
		return nil, err
	}
	provider := log.NewZerologProvider(w, level)
	log.SetProvider(provider)
	errors.SetZerologWarnFunc(provider.WarnFunc())
	return log.GetLoggerWithName("cmd"), nil
}

// logFit logs the R² of the trained model on its own training data.
func logFit(logger log.Logger, m model.Scorer, ds *dataset.Dataset) {
	X := mat.NewDense(ds.NumDataPoints, ds.NumFeatures, nil)
	for i, row := range ds.Features {
		X.SetRow(i, row)
	}
	y := mat.NewDense(ds.NumDataPoints, 1, append([]float64(nil), ds.Targets...))

	score, err := m.Score(X, y)
	if err != nil {
		logger.Debug("Training score unavailable", "reason", err.Error())
		return
	}
	logger.Info("Training fit", log.R2ScoreKey, score)
}

func printPredictions(w io.Writer, m model.VectorPredictor, inputs [][]float64) error {
	var sb strings.Builder
	for _, in := range inputs {
		y, err := m.Predict(in)
		if err != nil {
			return err
		}

		sb.Reset()
		sb.WriteString("Result for input { ")
		for _, v := range in {
			sb.WriteString(formatFloat(v))
			sb.WriteByte(' ')
		}
		sb.WriteString("}: ")
		sb.WriteString(formatFloat(y))
		sb.WriteByte('\n')

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return errors.Wrap(err, "print predictions")
		}
	}
	return nil
}

// formatFloat prints six significant digits, the way the console output has
// always looked.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
