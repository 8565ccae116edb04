package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return New(io.Discard, log.ErrorLevel)
}

func TestNew(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	if c.Logger == nil {
		t.Fatal("New() left Logger nil")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	c := testCLI(t)
	root := c.RootCommand()

	want := map[string]bool{
		"render": false, "view": false, "export": false, "serve": false,
		"tools": false, "cache": false, "completion": false,
	}
	for _, sub := range root.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "asciidiag") {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestPipelineOptions(t *testing.T) {
	c := testCLI(t)
	opts := c.pipelineOptions(1.5, false, true)

	if opts.Zoom != 1.5 {
		t.Errorf("Zoom = %v", opts.Zoom)
	}
	if !opts.External {
		t.Error("External should follow the enabled config default")
	}
	if !opts.Refresh {
		t.Error("Refresh not carried")
	}
	if opts.Layout.MinLaneWidth != 12 || opts.Limits.MaxWidth != 4000 {
		t.Errorf("config mapping wrong: %+v %+v", opts.Layout, opts.Limits)
	}

	opts = c.pipelineOptions(1, true, false)
	if opts.External {
		t.Error("--no-external should win over the config")
	}
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testDoc = `# Title

` + "```mermaid" + `
flowchart TD
  A[Start] --> B[Done]
` + "```" + `

Trailing prose.
`

func runCommand(t *testing.T, c *CLI, args ...string) string {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute(%v) error = %v", args, err)
	}
	return out.String()
}

func TestRenderCommandDocument(t *testing.T) {
	c := testCLI(t)
	path := writeDoc(t, testDoc)

	out := runCommand(t, c, "render", path, "--no-cache", "--no-external")

	if !strings.Contains(out, "# Title") || !strings.Contains(out, "Trailing prose.") {
		t.Errorf("prose not preserved:\n%s", out)
	}
	if strings.Contains(out, "```mermaid") {
		t.Errorf("fence not replaced:\n%s", out)
	}
	for _, want := range []string{"Start", "Done", "┌", "▼"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendering missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCommandSingleBlock(t *testing.T) {
	c := testCLI(t)
	path := writeDoc(t, testDoc)

	out := runCommand(t, c, "render", path, "--block", "1", "--no-cache", "--no-external")

	if strings.Contains(out, "# Title") {
		t.Errorf("single-block mode should not echo the document:\n%s", out)
	}
	if !strings.Contains(out, "Start") || !strings.Contains(out, "▼") {
		t.Errorf("diagram not rendered:\n%s", out)
	}
}

func TestRenderCommandMissingBlock(t *testing.T) {
	c := testCLI(t)
	path := writeDoc(t, testDoc)

	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"render", path, "--block", "5", "--no-cache", "--no-external"})
	if err := root.Execute(); err == nil {
		t.Error("render accepted an out-of-range block index")
	}
}

func TestRenderCommandOutFile(t *testing.T) {
	c := testCLI(t)
	path := writeDoc(t, testDoc)
	outPath := filepath.Join(t.TempDir(), "out.md")

	runCommand(t, c, "render", path, "--out", outPath, "--no-cache", "--no-external")

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), "Start") {
		t.Errorf("output file missing rendering:\n%s", data)
	}
}

func TestExportCommandDOT(t *testing.T) {
	c := testCLI(t)
	path := writeDoc(t, testDoc)

	out := runCommand(t, c, "export", path, "--format", "dot")

	if !strings.Contains(out, "digraph") {
		t.Errorf("export missing digraph header:\n%s", out)
	}
	if !strings.Contains(out, "Start") {
		t.Errorf("export missing node label:\n%s", out)
	}
}

func TestCachePathCommand(t *testing.T) {
	c := testCLI(t)
	out := runCommand(t, c, "cache", "path")
	if !strings.Contains(out, "asciidiag") {
		t.Errorf("cache path output = %q", out)
	}
}
