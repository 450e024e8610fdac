package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/impulse/internal/config"
	"github.com/vango-dev/impulse/pkg/devtools"
	"github.com/vango-dev/impulse/pkg/impulse"
	"github.com/vango-dev/impulse/pkg/metrics"
	"github.com/vango-dev/impulse/pkg/tracing"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a live demo graph with devtools",
		Long: `Run a small reactive graph that ticks on a timer and expose it through
the devtools server:

  /debug/impulse/stats    JSON counters
  /debug/impulse/events   websocket stream of flushes and violations
  /metrics                Prometheus metrics

Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Devtools.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, interval, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultDevtoolsAddr, "Devtools listen address")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Tick interval of the demo graph")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, interval time.Duration, logOut io.Writer) error {
	logger := cfg.Logger(logOut)

	shutdown, err := tracing.Setup(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	srv := devtools.New(
		devtools.WithAddr(cfg.Devtools.Addr),
		devtools.WithEventBuffer(cfg.Devtools.EventBuffer),
		devtools.WithGatherer(reg),
		devtools.WithLogger(logger),
	)
	obs := metrics.New(
		metrics.WithRegistry(reg),
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithSubsystem(cfg.Metrics.Subsystem),
	)
	rt := impulse.NewRuntime(append(
		cfg.RuntimeOptions(logOut),
		impulse.WithObserver(impulse.Observers(srv.Recorder(), obs)),
	)...)

	d := newDemo(rt, tracing.New(rt), logger)
	defer d.close()

	// A nil channel never delivers, so with devtools disabled only the
	// ticker and ctx drive the loop.
	var errCh chan error
	if cfg.Devtools.Enabled {
		errCh = make(chan error, 1)
		go func() {
			errCh <- srv.Run(ctx)
		}()
	} else {
		logger.Info("devtools disabled")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.tick(ctx)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			if errCh == nil {
				return nil
			}
			return <-errCh
		}
	}
}

// demo is a shopping cart: quantity and unit price feed a derived total,
// a watcher logs threshold crossings and a subscription mirrors the total
// into a history cell.
type demo struct {
	rt     *impulse.Runtime
	tracer *tracing.Tracer
	logger *slog.Logger

	ticks    int
	quantity *impulse.Impulse[int]
	price    *impulse.Impulse[int]
	total    *impulse.Transmitting[int]
	history  *impulse.Impulse[[]int]

	expensive *impulse.Watcher[bool]
	stop      func()
}

func newDemo(rt *impulse.Runtime, tracer *tracing.Tracer, logger *slog.Logger) *demo {
	d := &demo{rt: rt, tracer: tracer, logger: logger}
	d.quantity = impulse.Of(1, impulse.InRuntime(rt))
	d.price = impulse.Of(10, impulse.InRuntime(rt))
	d.total = impulse.Derive(func(s impulse.Scope) int {
		return d.quantity.Get(s) * d.price.Get(s)
	}, impulse.InRuntime(rt))
	d.history = impulse.Of([]int(nil), impulse.InRuntime(rt))

	d.expensive = impulse.Watch(func(s impulse.Scope) bool {
		return d.total.Get(s) >= 100
	}, func(expensive bool) {
		logger.Info("cart threshold crossed", "expensive", expensive, "total", d.total.Peek())
	}, impulse.InRuntime(rt))

	d.stop = impulse.Subscribe(func(s impulse.Scope) {
		total := d.total.Get(s)
		d.history.Update(func(h []int) []int {
			h = append(h, total)
			if len(h) > 32 {
				h = h[len(h)-32:]
			}
			return h
		})
	}, impulse.InRuntime(rt))

	return d
}

// tick changes quantity and price in one traced batch; every fifth tick
// resets the cart.
func (d *demo) tick(ctx context.Context) impulse.FlushStats {
	d.ticks++
	return d.tracer.Batch(ctx, "demo-tick", func(context.Context) {
		if d.ticks%5 == 0 {
			d.quantity.Set(1)
			d.price.Set(10)
			return
		}
		d.quantity.Update(func(n int) int { return n + 1 })
		d.price.Update(func(p int) int { return p + d.ticks })
	})
}

func (d *demo) close() {
	d.stop()
	d.expensive.Close()
}
