package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/polyreg/linear"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvDataPath, EnvTestPath, EnvParametersPath, EnvPlotPath,
		EnvRegularization, EnvProgressInterval, EnvUpdateRule, EnvLogLevel,
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "data.txt", cfg.DataPath)
	assert.Equal(t, "test.txt", cfg.TestPath)
	assert.Equal(t, "parameters.txt", cfg.ParametersPath)
	assert.Empty(t, cfg.PlotPath)
	assert.Equal(t, 1000, cfg.ProgressInterval)
	assert.Equal(t, UpdateRule(linear.UpdateSimultaneous), cfg.UpdateRule)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "polyreg.yaml", `
data_path: in/data.txt
plot_path: out/cost.png
regularization: 0.25
progress_interval: 50
update_rule: sequential
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "in/data.txt", cfg.DataPath)
	assert.Equal(t, "test.txt", cfg.TestPath)
	assert.Equal(t, "out/cost.png", cfg.PlotPath)
	assert.Equal(t, 0.25, cfg.Regularization)
	assert.Equal(t, 50, cfg.ProgressInterval)
	assert.Equal(t, UpdateRule(linear.UpdateSequential), cfg.UpdateRule)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Len(t, cfg.ModelOptions(), 2)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "polyreg.yaml", "data_path: from-yaml.txt\nprogress_interval: 50\n")
	t.Setenv(EnvDataPath, "from-env.txt")
	t.Setenv(EnvProgressInterval, "7")
	t.Setenv(EnvUpdateRule, "sequential")
	t.Setenv(EnvRegularization, "1.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.txt", cfg.DataPath)
	assert.Equal(t, 7, cfg.ProgressInterval)
	assert.Equal(t, UpdateRule(linear.UpdateSequential), cfg.UpdateRule)
	assert.Equal(t, 1.5, cfg.Regularization)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   map[string]string
		param string
	}{
		{name: "negative regularization", yaml: "regularization: -1\n", param: "regularization"},
		{name: "zero interval", yaml: "progress_interval: 0\n", param: "progress_interval"},
		{name: "interval env not a number", env: map[string]string{EnvProgressInterval: "often"}, param: EnvProgressInterval},
		{name: "unknown update rule env", env: map[string]string{EnvUpdateRule: "random"}, param: "update_rule"},
		{name: "unknown update rule yaml", yaml: "update_rule: random\n", param: "update_rule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "polyreg.yaml", tt.yaml)
			}

			_, err := Load(path)
			require.Error(t, err)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}

	t.Run("invalid log level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvLogLevel, "loud")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvPlotPath)
	path := writeFile(t, ".env", "POLYREG_PLOT=cost.png\n")
	t.Cleanup(func() { os.Unsetenv(EnvPlotPath) })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "cost.png", cfg.PlotPath)
}

func TestUpdateRuleYAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Rule UpdateRule `yaml:"rule"`
	}{UpdateRule(linear.UpdateSequential)})
	require.NoError(t, err)
	assert.Equal(t, "rule: sequential\n", string(out))
}
