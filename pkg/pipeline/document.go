package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/asciidiag/asciidiag/pkg/canvas"
	"github.com/asciidiag/asciidiag/pkg/diagram"
)

// Block is one fenced block of a document after a pipeline pass. Result is
// nil for non-diagram blocks, which pass through untouched. A block whose
// render failed still carries a Result: its artifact is a placeholder and
// Err holds the underlying failure.
type Block struct {
	Source diagram.Source
	Result *Result
	Err    error
}

// ExecuteDocument scans a markdown document and renders every diagram block
// in it. One failing block never aborts the document: it gets a bordered
// placeholder artifact describing the failure, and its siblings render
// normally. Only context cancellation stops the pass.
func (r *Runner) ExecuteDocument(ctx context.Context, content string, opts Options) ([]Block, error) {
	sources := diagram.ScanBlocks(content)

	blocks := make([]Block, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !src.Renderable() {
			blocks = append(blocks, Block{Source: src})
			continue
		}

		o := opts
		o.Source = src
		o.validated = false

		res, err := r.Execute(ctx, o)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.Logger.Warn("block failed, using placeholder",
				"line", src.Line+1,
				"err", err)
			res = &Result{
				Artifact: canvas.Placeholder(src.Dialect, src.Kind,
					fmt.Sprintf("diagram could not be rendered\n%v", err)),
				Note: err.Error(),
			}
		}
		blocks = append(blocks, Block{Source: src, Result: res, Err: err})
	}
	return blocks, nil
}

// Splice replaces each rendered block's fenced source with its artifact
// lines and returns the assembled document. Non-diagram blocks and the prose
// between blocks stay as they are.
func Splice(content string, blocks []Block) string {
	lines := strings.Split(content, "\n")

	var out []string
	next := 0
	for i := 0; i < len(lines); i++ {
		if next < len(blocks) && blocks[next].Source.Line == i {
			b := blocks[next]
			next++
			if b.Result == nil || b.Result.Artifact == nil {
				for ; i <= b.Source.EndLine && i < len(lines); i++ {
					out = append(out, lines[i])
				}
				i--
				continue
			}
			out = append(out, b.Result.Artifact.Lines...)
			i = b.Source.EndLine
			continue
		}
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}
