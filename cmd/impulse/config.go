package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/impulse/internal/config"
	"github.com/vango-dev/impulse/internal/errors"
)

func configCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		format string
		save   string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and IMPULSE_*
environment variables have been applied.

Use --save to write it to a file; the format follows the extension.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return errors.New("E301").WithDetail(fmt.Sprintf("--format %q must be yaml or json", format))
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if save != "" {
				if err := cfg.SaveTo(save); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m wrote %s\n", save)
				return nil
			}
			return cfg.Encode(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVar(&save, "save", "", "Write the configuration to this file instead of stdout")

	return cmd
}
