package qcode

import (
	"strings"
	"testing"
)

func TestValidate_WellFormedDocumentIsClean(t *testing.T) {
	toks := Tokenize("pre (QCODE)a(/QCODE){#x} mid (QCODE)b(/QCODE){#y} post")
	diags := Validate("doc", toks)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestValidate_CountMismatch(t *testing.T) {
	toks := Tokenize("(QCODE) dangling open")
	diags := Validate("doc", toks)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if diags[0].Kind != DiagUnbalancedTags {
		t.Errorf("expected %s, got %s", DiagUnbalancedTags, diags[0].Kind)
	}
	if diags[0].DocID != "doc" {
		t.Errorf("diagnostic attributed to %q, want %q", diags[0].DocID, "doc")
	}
}

func TestValidate_MissingLabelBlockQuotesFragment(t *testing.T) {
	toks := Tokenize("(QCODE) x (/QCODE)no-label-here")
	diags := Validate("doc", toks)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if diags[0].Kind != DiagMissingLabelBlock {
		t.Errorf("expected %s, got %s", DiagMissingLabelBlock, diags[0].Kind)
	}
	if !strings.Contains(diags[0].Detail, "no-label-here") {
		t.Errorf("detail should quote the offending fragment, got %q", diags[0].Detail)
	}
}

func TestValidate_BlobWithoutSigil(t *testing.T) {
	toks := Tokenize("(QCODE)x(/QCODE){oops}")
	diags := Validate("doc", toks)
	if len(diags) != 1 || diags[0].Kind != DiagMissingLabelBlock {
		t.Fatalf("expected one missing_label_block diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Detail, "{oops}") {
		t.Errorf("detail should quote the malformed block, got %q", diags[0].Detail)
	}
}

func TestValidate_LongFragmentIsTruncated(t *testing.T) {
	toks := Tokenize("(QCODE)x(/QCODE)" + strings.Repeat("y", 200))
	diags := Validate("doc", toks)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if len(diags[0].Detail) > 120 {
		t.Errorf("detail not truncated: %d bytes", len(diags[0].Detail))
	}
}
