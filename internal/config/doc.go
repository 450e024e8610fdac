// Package config provides configuration parsing for the impulse CLI and
// devtools server.
//
// The configuration is stored in impulse.json or impulse.yaml in the working
// directory. Every field can be overridden with an IMPULSE_* environment
// variable, for example IMPULSE_LOG_LEVEL=debug or IMPULSE_BENCH_CELLS=5000.
//
// # Configuration File Structure
//
//	log:
//	  level: info
//	  format: text
//	guards:
//	  mode: warn
//	metrics:
//	  namespace: impulse
//	tracing:
//	  endpoint: http://localhost:4318
//	devtools:
//	  enabled: true
//	  addr: localhost:6060
//	bench:
//	  cells: 1000
//	  emitters: 200
//	  fanout: 8
//	  batches: 1000
//	  batchSize: 16
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt := impulse.NewRuntime(cfg.RuntimeOptions(os.Stderr)...)
package config
