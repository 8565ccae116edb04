package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/dot"
)

func (c *CLI) exportCommand() *cobra.Command {
	var (
		format     string
		blockIndex int
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a diagram's graph as DOT or SVG",
		Long: `Export parses a diagram block and writes its graph in Graphviz DOT
form, or renders it to SVG with the embedded graphviz layout engine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			srcs := diagram.Diagrams(diagram.ScanBlocks(content))
			if len(srcs) == 0 {
				return fmt.Errorf("no diagram blocks found")
			}
			if blockIndex < 1 || blockIndex > len(srcs) {
				return fmt.Errorf("document has %d diagram block(s), requested %d", len(srcs), blockIndex)
			}

			runner := c.newRunner(ctx, false)
			defer runner.Close()

			opts := c.pipelineOptions(0, true, false)
			opts.Source = srcs[blockIndex-1]

			g, err := runner.Parse(ctx, opts)
			if err != nil {
				return fmt.Errorf("parse diagram: %w", err)
			}

			var out []byte
			switch strings.ToLower(format) {
			case "dot":
				out = []byte(dot.ToDOT(g))
			case "svg":
				out, err = dot.RenderSVG(dot.ToDOT(g))
				if err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
			default:
				return fmt.Errorf("unknown format %q (want dot or svg)", format)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, out, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				printSuccess("exported %s", strings.ToUpper(format))
				printFile("output", outPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot or svg")
	cmd.Flags().IntVar(&blockIndex, "block", 1, "diagram block to export (1-based)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to file instead of stdout")

	return cmd
}
