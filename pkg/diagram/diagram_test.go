package diagram

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		body    string
		dialect Dialect
		kind    SubKind
	}{
		{"mermaid sequence", "mermaid", "sequenceDiagram\n  A->>B: hi", DialectMermaid, KindSequence},
		{"mermaid flowchart", "mermaid", "flowchart TD\n  A --> B", DialectMermaid, KindFlow},
		{"mermaid graph", "mermaid", "graph LR\n  A --> B", DialectMermaid, KindFlow},
		{"mermaid class", "mermaid", "classDiagram\n  class A", DialectMermaid, KindClass},
		{"mermaid er", "mermaid", "erDiagram\n  A ||--o{ B : has", DialectMermaid, KindUnknown},
		{"mermaid unknown header", "mermaid", "something weird", DialectMermaid, KindUnknown},
		{"mermaid comment skipped", "mermaid", "%% note\nflowchart TD", DialectMermaid, KindFlow},
		{"mermaid empty", "mermaid", "", DialectMermaid, KindUnknown},
		{"mmd alias", "mmd", "flowchart TD\n  A --> B", DialectMermaid, KindFlow},
		{"d2", "d2", "a -> b", DialectD2, KindNodeEdge},
		{"sequence", "sequence", "A -> B: hi", DialectSequence, KindSequence},
		{"math", "math", `\frac{a}{b}`, DialectMath, KindMath},
		{"latex alias", "latex", `e^{i\pi} + 1 = 0`, DialectMath, KindMath},
		{"seq alias", "seq", "A -> B: hi", DialectSequence, KindSequence},
		{"diagon alias", "diagon", "A -> B: hi", DialectSequence, KindSequence},
		{"tag case folded", "Mermaid", "flowchart TD", DialectMermaid, KindFlow},
		{"python fence", "python", "print(1)", DialectUnsupported, KindUnknown},
		{"bare fence", "", "text", DialectUnsupported, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, kind := Classify(tt.tag, tt.body)
			if dialect != tt.dialect || kind != tt.kind {
				t.Errorf("Classify() = %s/%s, want %s/%s", dialect, kind, tt.dialect, tt.kind)
			}
		})
	}
}

func TestScanBlocks(t *testing.T) {
	doc := `# Title

Some prose.

` + "```mermaid" + `
flowchart TD
  A --> B
` + "```" + `

More prose.

` + "```python" + `
print("hi")
` + "```" + `

` + "```d2" + `
a -> b
` + "```"

	blocks := ScanBlocks(doc)
	if len(blocks) != 3 {
		t.Fatalf("ScanBlocks() found %d blocks, want 3", len(blocks))
	}

	if blocks[0].Dialect != DialectMermaid || blocks[0].Kind != KindFlow {
		t.Errorf("block 0 = %s/%s, want mermaid/flowchart", blocks[0].Dialect, blocks[0].Kind)
	}
	if blocks[0].Line != 4 || blocks[0].EndLine != 7 {
		t.Errorf("block 0 lines = %d..%d, want 4..7", blocks[0].Line, blocks[0].EndLine)
	}
	if blocks[0].Text != "flowchart TD\n  A --> B" {
		t.Errorf("block 0 text = %q", blocks[0].Text)
	}

	if blocks[1].Dialect != DialectUnsupported {
		t.Errorf("python block classified as %s, want unsupported", blocks[1].Dialect)
	}
	if blocks[2].Dialect != DialectD2 {
		t.Errorf("d2 block classified as %s", blocks[2].Dialect)
	}

	diagrams := Diagrams(blocks)
	if len(diagrams) != 2 {
		t.Errorf("Diagrams() = %d blocks, want 2", len(diagrams))
	}
}

func TestScanBlocksUnterminated(t *testing.T) {
	doc := "before\n```mermaid\nflowchart TD\n  A --> B"
	blocks := ScanBlocks(doc)
	if len(blocks) != 1 {
		t.Fatalf("ScanBlocks() found %d blocks, want 1", len(blocks))
	}
	if blocks[0].EndLine != 3 {
		t.Errorf("unterminated block end = %d, want last line", blocks[0].EndLine)
	}
	if blocks[0].Text != "flowchart TD\n  A --> B" {
		t.Errorf("unterminated block text = %q", blocks[0].Text)
	}
}

func TestScanBlocksIndentedFence(t *testing.T) {
	doc := "  ```mermaid\n  flowchart TD\n  ```"
	blocks := ScanBlocks(doc)
	if len(blocks) != 1 {
		t.Fatalf("ScanBlocks() found %d blocks, want 1", len(blocks))
	}
	if blocks[0].Dialect != DialectMermaid {
		t.Errorf("dialect = %s, want mermaid", blocks[0].Dialect)
	}
}

func TestScanBlocksEmptyDocument(t *testing.T) {
	if blocks := ScanBlocks(""); len(blocks) != 0 {
		t.Errorf("ScanBlocks(empty) = %d blocks, want 0", len(blocks))
	}
}
