package loader

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Block structure
// is flattened to paragraphs separated by blank lines; coding markers are
// plain text to Markdown and pass through untouched.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		collectBlocks(n, src, &blocks)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// collectBlocks appends the text of a block node, recursing into container
// blocks (lists, quotes) that carry no source lines of their own.
func collectBlocks(n ast.Node, src []byte, blocks *[]string) {
	if h, ok := n.(*ast.Heading); ok {
		if t := string(h.Text(src)); t != "" {
			*blocks = append(*blocks, t)
		}
		return
	}
	if lines := n.Lines(); lines.Len() > 0 {
		var buf bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if t := strings.TrimRight(buf.String(), "\n"); t != "" {
			*blocks = append(*blocks, t)
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectBlocks(c, src, blocks)
	}
}
