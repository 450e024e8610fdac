package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/impulse/internal/config"
	"github.com/vango-dev/impulse/internal/errors"
	"github.com/vango-dev/impulse/pkg/impulse"
	"github.com/vango-dev/impulse/pkg/tracing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionLong(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
	assert.Contains(t, out, "Guards:")
}

func TestBenchJSON(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "bench", "-c", dir,
		"--cells", "20", "--emitters", "5", "--fanout", "3",
		"--batches", "10", "--batch-size", "2", "--seed", "7",
		"--output", "json")
	require.NoError(t, err)

	var report benchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, workloadInfo{Cells: 20, Emitters: 5, Fanout: 3, Batches: 10, BatchSize: 2, Seed: 7}, report.Workload)
	assert.Equal(t, uint64(20), report.Totals.Writes)
	assert.Equal(t, uint64(10), report.Totals.Flushes)
	assert.LessOrEqual(t, report.LatencyUS.Min, report.LatencyUS.Max)
	assert.Equal(t, int(report.Totals.EmittersNotified), report.Totals.Reruns)
}

func TestBenchText(t *testing.T) {
	out, err := execute(t, "bench", "-c", t.TempDir(), "--cells", "4", "--emitters", "2", "--fanout", "2", "--batches", "3", "--batch-size", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "=== impulse batch benchmark ===")
	assert.Contains(t, out, "Writes: 3 changed")
}

func TestBenchUsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bench:\n  cells: 6\n  emitters: 2\n  fanout: 2\n  batches: 4\n  batchSize: 1\n"), 0644))

	out, err := execute(t, "bench", "--config", path, "--output", "json", "--batches", "2")
	require.NoError(t, err)

	var report benchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 6, report.Workload.Cells)
	assert.Equal(t, 2, report.Workload.Batches, "flags override the file")
}

func TestBenchErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"output", []string{"--output", "xml"}, "E301"},
		{"fanout", []string{"--cells", "2", "--fanout", "5"}, "E207"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"bench", "-c", t.TempDir()}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)

			var ie *errors.ImpulseError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.code, ie.Code)
		})
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "config", "-c", dir, "--format", "json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)

	out, err = execute(t, "config", "-c", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "guards:\n  mode: warn")

	saved := filepath.Join(dir, config.YAMLFileName)
	out, err = execute(t, "config", "-c", dir, "--save", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	loaded, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded.Path())
}

func TestPrintError(t *testing.T) {
	errors.DisableColors()
	defer errors.EnableColors()

	var buf bytes.Buffer
	printError(&buf, errors.New("E206"))
	assert.Contains(t, buf.String(), "E206")

	buf.Reset()
	printError(&buf, io.EOF)
	assert.Contains(t, buf.String(), "EOF")
}

func TestDemoTick(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	rt := impulse.NewRuntime(impulse.WithLogger(logger))
	d := newDemo(rt, tracing.New(rt), logger)
	defer d.close()

	assert.Equal(t, 10, d.total.Peek())
	assert.Equal(t, []int{10}, d.history.Peek())

	stats := d.tick(context.Background())
	assert.Equal(t, 3, stats.Writes, "quantity, price and the history side effect")
	assert.Equal(t, 22, d.total.Peek())

	for i := 0; i < 3; i++ {
		d.tick(context.Background())
	}
	assert.True(t, d.expensive.Value())
	assert.Contains(t, logs.String(), "cart threshold crossed")

	d.tick(context.Background())
	assert.Equal(t, 10, d.total.Peek())
	assert.False(t, d.expensive.Value())
	assert.Len(t, d.history.Peek(), 6)
	assert.False(t, strings.Contains(logs.String(), "level=ERROR"), "demo must not trigger guard violations")
}

func TestRunServeStopsOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Devtools.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runServe(ctx, cfg, 10*time.Millisecond, io.Discard)
	assert.NoError(t, err)
}

func TestRunServeWithoutDevtools(t *testing.T) {
	cfg := config.New()
	cfg.Devtools.Enabled = false
	cfg.Devtools.Addr = "127.0.0.1:-1"
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var logs bytes.Buffer
	err := runServe(ctx, cfg, 10*time.Millisecond, &logs)
	assert.NoError(t, err, "the unusable address must not be bound")
	assert.Contains(t, logs.String(), "devtools disabled")
}

func TestRunServeStartsDevtools(t *testing.T) {
	cfg := config.New()
	cfg.Devtools.Addr = "127.0.0.1:-1"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := runServe(ctx, cfg, time.Second, io.Discard)
	assert.Error(t, err, "listening on an invalid port fails")
}
