package loader

import (
	"strings"
	"testing"
)

func TestMarkdownExtractor_KeepsMarkupInOrder(t *testing.T) {
	input := "# Interview 3\n\nBefore the code.\n\n(QCODE) the coded passage (/QCODE){#theme}\n\nAfter the code."
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader(input), "interview3.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "(QCODE) the coded passage (/QCODE){#theme}") {
		t.Errorf("coding markup lost: %q", got)
	}
	before := strings.Index(got, "Before the code.")
	coded := strings.Index(got, "(QCODE)")
	after := strings.Index(got, "After the code.")
	if before < 0 || coded < 0 || after < 0 || !(before < coded && coded < after) {
		t.Errorf("blocks out of document order: %q", got)
	}
}

func TestMarkdownExtractor_HeadingsBecomePlainText(t *testing.T) {
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader("## Section Title\n\nBody text."), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "##") {
		t.Errorf("heading markers should be stripped: %q", got)
	}
	if !strings.Contains(got, "Section Title") || !strings.Contains(got, "Body text.") {
		t.Errorf("missing content: %q", got)
	}
}

func TestMarkdownExtractor_ListItems(t *testing.T) {
	e := &MarkdownExtractor{}
	got, err := e.Extract(strings.NewReader("- first item\n- (QCODE)second(/QCODE){#x}\n"), "list.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "first item") || !strings.Contains(got, "(QCODE)second(/QCODE){#x}") {
		t.Errorf("list content missing: %q", got)
	}
}
