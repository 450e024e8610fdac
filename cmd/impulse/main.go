package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/impulse/internal/config"
	"github.com/vango-dev/impulse/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦┌┬┐┌─┐┬ ┬┬  ┌─┐┌─┐
  ║│││├─┘│ ││  └─┐├┤
  ╩┴ ┴┴  └─┘┴─┘└─┘└─┘
`

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "impulse",
		Short: "Fine-grained reactive state for Go",
		Long: `impulse is a reactive value graph for Go.

Cells hold values, emitters track the cells they read, and batches
coalesce writes so each observer is notified once. This tool runs
synthetic workloads against the engine and serves a live demo with
devtools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file or directory (default: current directory)")

	load := func() (*config.Config, error) {
		return loadConfig(configPath)
	}

	rootCmd.AddCommand(
		benchCmd(load),
		serveCmd(load),
		configCmd(load),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads path as a file, or as a directory holding impulse.json
// or impulse.yaml.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load(".")
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return config.Load(path)
	}
	return config.LoadFile(path)
}

// printError prints coded errors with their details and anything else on
// one line.
func printError(w io.Writer, err error) {
	var ie *errors.ImpulseError
	if stderrors.As(err, &ie) {
		errors.Fprint(w, ie)
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}
