package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/asciidiag/asciidiag/pkg/external"
)

func (c *CLI) toolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Show which external renderers are installed",
		Long: `Tools probes PATH for the configured external diagram renderers
and reports which ones asciidiag will delegate to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config()

			runner := external.NewRunner(external.Options{
				Enabled: true,
				D2:      cfg.External.D2,
				Diagon:  cfg.External.Diagon,
				Timeout: time.Duration(cfg.External.TimeoutSeconds) * time.Second,
			}, nil, nil, c.Logger)

			probe := func(name, bin string) {
				if runner.Available(ctx, bin) {
					printSuccess("%s (%s) installed", name, bin)
				} else {
					printWarning("%s (%s) not found", name, bin)
				}
			}
			probe("d2", cfg.External.D2)
			probe("diagon", cfg.External.Diagon)

			if !cfg.External.Enabled {
				printInfo("external delegation is disabled in config")
			}
			return nil
		},
	}
	return cmd
}
