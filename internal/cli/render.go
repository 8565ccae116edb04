package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/pipeline"
)

func (c *CLI) renderCommand() *cobra.Command {
	var (
		zoom       float64
		blockIndex int
		outPath    string
		noCache    bool
		noExternal bool
		refresh    bool
		stats      bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render diagram blocks to terminal text",
		Long: `Render reads a markdown document (or "-" for stdin), finds fenced
diagram blocks, and replaces each with its box-drawing rendering. With
--block N only the Nth diagram block is rendered and printed on its own.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			runner := c.newRunner(ctx, noCache)
			defer runner.Close()

			opts := c.pipelineOptions(zoom, noExternal, refresh)

			var out string
			if blockIndex > 0 {
				res, src, err := renderSingle(cmd, runner, content, blockIndex, opts)
				if err != nil {
					return err
				}
				out = res.Artifact.Text()
				if res.Note != "" {
					printWarning("%s", res.Note)
				}
				if stats {
					printRenderStats(src, res)
				}
			} else {
				blocks, err := runner.ExecuteDocument(ctx, content, opts)
				if err != nil {
					return err
				}
				out = pipeline.Splice(content, blocks)
				reportBlocks(blocks, stats)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				printSuccess("rendered output written")
				printFile("output", outPath)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&zoom, "zoom", pipeline.DefaultZoom, "zoom factor")
	cmd.Flags().IntVar(&blockIndex, "block", 0, "render only the Nth diagram block (1-based)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noExternal, "no-external", false, "disable external tool delegation")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&stats, "stats", false, "print render statistics")

	return cmd
}

// renderSingle renders the nth diagram block of the document.
func renderSingle(cmd *cobra.Command, runner *pipeline.Runner, content string, n int, opts pipeline.Options) (*pipeline.Result, diagram.Source, error) {
	srcs := diagram.Diagrams(diagram.ScanBlocks(content))
	if n > len(srcs) {
		return nil, diagram.Source{}, fmt.Errorf("document has %d diagram block(s), requested %d", len(srcs), n)
	}
	opts.Source = srcs[n-1]
	res, err := runner.Execute(cmd.Context(), opts)
	if err != nil {
		return nil, opts.Source, err
	}
	return res, opts.Source, nil
}

func reportBlocks(blocks []pipeline.Block, stats bool) {
	rendered, failed := 0, 0
	for _, b := range blocks {
		if b.Result == nil {
			continue
		}
		if b.Err != nil {
			failed++
			printWarning("block at line %d: %v", b.Source.Line, b.Err)
			continue
		}
		rendered++
		if b.Result.Note != "" {
			printDetail("line %d: %s", b.Source.Line, b.Result.Note)
		}
		if stats {
			printRenderStats(b.Source, b.Result)
		}
	}
	if rendered+failed > 0 {
		printInfo("%d diagram(s) rendered, %d failed", rendered, failed)
	}
}

func printRenderStats(src diagram.Source, res *pipeline.Result) {
	rows := [][2]string{
		{"dialect", string(src.Dialect)},
		{"kind", string(src.Kind)},
		{"tool", res.Artifact.Tool},
		{"size", fmt.Sprintf("%dx%d", res.Artifact.Width, res.Artifact.Height)},
		{"nodes", fmt.Sprintf("%d", res.Stats.NodeCount)},
		{"edges", fmt.Sprintf("%d", res.Stats.EdgeCount)},
		{"cache", fmt.Sprintf("parse=%v artifact=%v", res.CacheInfo.ParseHit, res.CacheInfo.ArtifactHit)},
	}
	printStats(fmt.Sprintf("Diagram at line %d", src.Line), rows)
}
