package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/impulse/internal/config"
	"github.com/vango-dev/impulse/internal/errors"
	"github.com/vango-dev/impulse/pkg/devtools"
	"github.com/vango-dev/impulse/pkg/impulse"
)

func benchCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		output string
		flags  config.BenchConfig
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic batch workload",
		Long: `Build a random graph of impulses and emitters, run batches of writes
against it and report flush latency, notification counts and GC activity.

Settings come from the bench section of the config file and can be
overridden with flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return errors.New("E301").WithDetail(fmt.Sprintf("--output %q must be text or json", output))
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("cells") {
				cfg.Bench.Cells = flags.Cells
			}
			if f.Changed("emitters") {
				cfg.Bench.Emitters = flags.Emitters
			}
			if f.Changed("fanout") {
				cfg.Bench.Fanout = flags.Fanout
			}
			if f.Changed("batches") {
				cfg.Bench.Batches = flags.Batches
			}
			if f.Changed("batch-size") {
				cfg.Bench.BatchSize = flags.BatchSize
			}
			if f.Changed("seed") {
				cfg.Bench.Seed = flags.Seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			report := runBench(cfg)
			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			writeSummary(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().IntVar(&flags.Cells, "cells", 0, "Number of impulses")
	cmd.Flags().IntVar(&flags.Emitters, "emitters", 0, "Number of emitters")
	cmd.Flags().IntVar(&flags.Fanout, "fanout", 0, "Impulses read by each emitter")
	cmd.Flags().IntVar(&flags.Batches, "batches", 0, "Number of batches")
	cmd.Flags().IntVar(&flags.BatchSize, "batch-size", 0, "Writes per batch")
	cmd.Flags().Int64Var(&flags.Seed, "seed", 0, "Random seed")

	return cmd
}

type benchReport struct {
	Version   string         `json:"version"`
	Run       runInfo        `json:"run"`
	Workload  workloadInfo   `json:"workload"`
	Totals    totalsInfo     `json:"totals"`
	LatencyUS latencyInfo    `json:"latency_us"`
	Rate      throughputInfo `json:"throughput"`
	GC        gcInfo         `json:"gc"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Guards    bool   `json:"guards"`
}

type workloadInfo struct {
	Cells     int   `json:"cells"`
	Emitters  int   `json:"emitters"`
	Fanout    int   `json:"fanout"`
	Batches   int   `json:"batches"`
	BatchSize int   `json:"batch_size"`
	Seed      int64 `json:"seed"`
}

type totalsInfo struct {
	Writes            uint64 `json:"writes"`
	UnchangedWrites   uint64 `json:"unchanged_writes"`
	Flushes           uint64 `json:"flushes"`
	EmittersNotified  uint64 `json:"emitters_notified"`
	ListenersNotified uint64 `json:"listeners_notified"`
	Reruns            int    `json:"reruns"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	ElapsedMS    float64 `json:"elapsed_ms"`
	BatchesPerS  float64 `json:"batches_per_sec"`
	WritesPerSec float64 `json:"writes_per_sec"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

// runBench builds the graph described by cfg.Bench and drives it. Every
// emitter re-tracks its cells on notification, the way a subscription would.
func runBench(cfg *config.Config) benchReport {
	b := cfg.Bench
	rng := rand.New(rand.NewSource(b.Seed))
	rec := devtools.NewRecorder(nil)
	rt := impulse.NewRuntime(
		impulse.WithObserver(rec),
		impulse.WithGuardMode(cfg.GuardMode()),
		impulse.WithLogger(cfg.Logger(io.Discard)),
	)

	cells := make([]*impulse.Impulse[int], b.Cells)
	for i := range cells {
		cells[i] = impulse.Of(0, impulse.InRuntime(rt))
	}

	reruns := 0
	stops := make([]func(), 0, b.Emitters)
	for i := 0; i < b.Emitters; i++ {
		read := rng.Perm(b.Cells)[:b.Fanout]
		first := true
		stops = append(stops, impulse.Subscribe(func(s impulse.Scope) {
			sum := 0
			for _, idx := range read {
				sum += cells[idx].Get(s)
			}
			_ = sum
			if !first {
				reruns++
			}
			first = false
		}, impulse.InRuntime(rt)))
	}
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	latencies := make([]time.Duration, 0, b.Batches)
	start := time.Now()
	for i := 0; i < b.Batches; i++ {
		stats := rt.BatchReport("bench", func() {
			for j := 0; j < b.BatchSize; j++ {
				cells[rng.Intn(b.Cells)].Update(func(n int) int { return n + 1 })
			}
		})
		latencies = append(latencies, stats.Duration)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	totals := rec.Stats()

	report := benchReport{
		Version: version,
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Guards:    impulse.GuardsEnabled,
		},
		Workload: workloadInfo{
			Cells:     b.Cells,
			Emitters:  b.Emitters,
			Fanout:    b.Fanout,
			Batches:   b.Batches,
			BatchSize: b.BatchSize,
			Seed:      b.Seed,
		},
		Totals: totalsInfo{
			Writes:            totals.WritesChanged,
			UnchangedWrites:   totals.WritesUnchanged,
			Flushes:           totals.Flushes,
			EmittersNotified:  totals.EmittersNotified,
			ListenersNotified: totals.ListenersNotified,
			Reruns:            reruns,
		},
		LatencyUS: latencyInfo{
			Min: us(percentile(latencies, 0)),
			P50: us(percentile(latencies, 0.50)),
			P95: us(percentile(latencies, 0.95)),
			P99: us(percentile(latencies, 0.99)),
			Max: us(percentile(latencies, 1)),
		},
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: float64(after.PauseTotalNs-before.PauseTotalNs) / float64(time.Millisecond),
		},
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.Rate = throughputInfo{
			ElapsedMS:    float64(elapsed) / float64(time.Millisecond),
			BatchesPerS:  float64(b.Batches) / secs,
			WritesPerSec: float64(totals.WritesChanged) / secs,
		}
	}
	return report
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== impulse batch benchmark ===")
	fmt.Fprintf(w, "Cells: %d  Emitters: %d  Fanout: %d\n", report.Workload.Cells, report.Workload.Emitters, report.Workload.Fanout)
	fmt.Fprintf(w, "Batches: %d x %d writes (seed %d)\n", report.Workload.Batches, report.Workload.BatchSize, report.Workload.Seed)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Writes: %d changed, %d unchanged\n", report.Totals.Writes, report.Totals.UnchangedWrites)
	fmt.Fprintf(w, "Flushes: %d\n", report.Totals.Flushes)
	fmt.Fprintf(w, "Notified: %d emitters, %d listeners\n", report.Totals.EmittersNotified, report.Totals.ListenersNotified)
	fmt.Fprintf(w, "Throughput: %.0f batches/s, %.0f writes/s\n", report.Rate.BatchesPerS, report.Rate.WritesPerSec)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Batch latency (work + flush):")
	fmt.Fprintf(w, "  min: %.1f µs\n", report.LatencyUS.Min)
	fmt.Fprintf(w, "  p50: %.1f µs\n", report.LatencyUS.P50)
	fmt.Fprintf(w, "  p95: %.1f µs\n", report.LatencyUS.P95)
	fmt.Fprintf(w, "  p99: %.1f µs\n", report.LatencyUS.P99)
	fmt.Fprintf(w, "  max: %.1f µs\n", report.LatencyUS.Max)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC:")
	fmt.Fprintf(w, "  alloc:    %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  num_gc:   %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause: %.2f ms (total)\n", report.GC.PauseTotalMS)
}
