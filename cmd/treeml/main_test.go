package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/treeml/datasets"
	"github.com/YuminosukeSato/treeml/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeCSV writes y = 2x + 1 for x = 0..n-1, or a two-class split at n/2.
func writeCSV(t *testing.T, n int, classes bool) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("x,noise,y\n")
	for i := 0; i < n; i++ {
		y := float64(2*i + 1)
		if classes {
			y = 0
			if i >= n/2 {
				y = 1
			}
		}
		fmt.Fprintf(&sb, "%d,%d,%g\n", i, i%3, y)
	}
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "[1 1 38] -> 1\n")
	assert.Contains(t, out, "x=10 -> ")
}

func TestFitOLS(t *testing.T) {
	data := writeCSV(t, 20, false)
	preds := filepath.Join(t.TempDir(), "pred.npy")

	out, err := execute(t, "fit", "--model", "ols", "--data", data, "--test-size", "0", "--predictions", preds)
	require.NoError(t, err)
	assert.Contains(t, out, "r2")
	assert.Contains(t, out, "1.0000")

	pred, err := datasets.LoadNPY(preds)
	require.NoError(t, err)
	r, _ := pred.Dims()
	assert.Equal(t, 20, r)
}

func TestFitTreeRender(t *testing.T) {
	data := writeCSV(t, 20, true)
	render := filepath.Join(t.TempDir(), "tree.dot")

	out, err := execute(t, "fit", "-m", "tree", "-d", data, "--render", render, "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy")

	dot, err := os.ReadFile(render)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "x <")
}

func TestFitBoostingCurve(t *testing.T) {
	data := writeCSV(t, 30, false)
	curve := filepath.Join(t.TempDir(), "curve.png")

	_, err := execute(t, "fit", "--model", "xgb", "--data", data, "--curve", curve, "--progress")
	require.NoError(t, err)
	info, err := os.Stat(curve)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCrossValidateKNN(t *testing.T) {
	data := writeCSV(t, 20, true)

	out, err := execute(t, "cv", "--model", "knn", "--data", data, "--folds", "4", "--scale", "standard")
	require.NoError(t, err)
	out = strings.ToLower(out)
	assert.Contains(t, out, "knn")
	assert.Contains(t, out, "mean")
}

func TestConfigFileParams(t *testing.T) {
	data := writeCSV(t, 10, true)
	cfg := filepath.Join(t.TempDir(), "treeml.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("model: knn\ntest-size: 0\nparams:\n  n_neighbors: 50\n"), 0o600))

	_, err := execute(t, "fit", "--config", cfg, "--data", data)
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "n_neighbors", verr.ParamName)
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv("TREEML_MODEL", "nope")
	_, err := execute(t, "fit", "--data", writeCSV(t, 10, false))
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "model", verr.ParamName)
}

func TestFitErrors(t *testing.T) {
	_, err := execute(t, "fit", "--model", "ols")
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "data", verr.ParamName)

	_, err = execute(t, "demo", "--log-format", "xml")
	require.True(t, errors.As(err, &verr))

	_, err = execute(t, "fit", "--model", "ols", "--data", writeCSV(t, 10, false), "--curve", "c.png")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "curve", verr.ParamName)
}
