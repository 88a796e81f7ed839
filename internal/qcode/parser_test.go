package qcode

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_UnmarkedDocumentYieldsNothing(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "no markup in here at all"})
	if len(records) != 0 {
		t.Errorf("expected no records, got %v", records)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestParse_SingleCodedSpan(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "ignore (QCODE) keep this (/QCODE){#topic} ignore"})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := Record{DocID: "doc", Code: "topic", Text: " keep this "}
	if records[0] != want {
		t.Errorf("expected %+v, got %+v", want, records[0])
	}
}

func TestParse_NestedSpansAreInclusive(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "(QCODE) outer (QCODE) inner (/QCODE){#b} tail (/QCODE){#a}"})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(records), records)
	}
	// Inner closes first, so it is emitted first.
	if records[0].Code != "b" || records[0].Text != " inner " {
		t.Errorf("inner record: got %+v", records[0])
	}
	if records[1].Code != "a" || records[1].Text != " outer  inner  tail " {
		t.Errorf("outer record: got %+v", records[1])
	}
	// The outer span contains the inner span's text with no markup.
	if !strings.Contains(records[1].Text, records[0].Text) {
		t.Errorf("outer text %q should contain inner text %q", records[1].Text, records[0].Text)
	}
	if strings.Contains(records[1].Text, OpenMarker) || strings.Contains(records[1].Text, CloseMarker) {
		t.Errorf("outer text %q still contains markup", records[1].Text)
	}
}

func TestParse_DirectlyAdjacentMarkers(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "(QCODE)(QCODE)in(/QCODE){#i}(/QCODE){#o}"})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Code != "i" || records[0].Text != "in" {
		t.Errorf("inner record: got %+v", records[0])
	}
	if records[1].Code != "o" || records[1].Text != "in" {
		t.Errorf("outer record: got %+v", records[1])
	}
}

func TestParse_MultiLabelCloseSharesText(t *testing.T) {
	records, _ := Parse(Document{ID: "doc", Text: "(QCODE)shared(/QCODE){#a, b}"})
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Code != "a" || records[1].Code != "b" {
		t.Errorf("expected codes a then b, got %q then %q", records[0].Code, records[1].Code)
	}
	if records[0].Text != "shared" || records[1].Text != "shared" {
		t.Errorf("records must share identical text: %q vs %q", records[0].Text, records[1].Text)
	}
}

func TestParse_DanglingOpen(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "(QCODE) never closed"})
	if len(records) != 0 {
		t.Errorf("expected no records, got %v", records)
	}
	if len(diags) != 1 || diags[0].Kind != DiagUnbalancedTags {
		t.Fatalf("expected one unbalanced_tags diagnostic, got %v", diags)
	}
}

func TestParse_CloseWithoutOpen(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "stray (/QCODE){#x} text"})
	if len(records) != 0 {
		t.Errorf("a close with no matching open owns no span, got %v", records)
	}
	unbalanced := 0
	for _, d := range diags {
		if d.Kind == DiagUnbalancedTags {
			unbalanced++
		}
	}
	if unbalanced == 0 {
		t.Fatalf("expected unbalanced_tags diagnostics, got %v", diags)
	}
}

func TestParse_MissingLabelBlockKeepsSpan(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "(QCODE) x (/QCODE)no-label-here"})
	if len(diags) != 1 || diags[0].Kind != DiagMissingLabelBlock {
		t.Fatalf("expected one missing_label_block diagnostic, got %v", diags)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Code != UnresolvedCode {
		t.Errorf("expected unresolved placeholder, got %q", records[0].Code)
	}
	if records[0].Text != " x " {
		t.Errorf("expected span text %q, got %q", " x ", records[0].Text)
	}
}

func TestParse_EmptyLabelBlock(t *testing.T) {
	records, diags := Parse(Document{ID: "doc", Text: "(QCODE)x(/QCODE){#}"})
	if len(diags) != 1 || diags[0].Kind != DiagEmptyLabel {
		t.Fatalf("expected one empty_label diagnostic, got %v", diags)
	}
	if len(records) != 1 || records[0].Code != UnresolvedCode {
		t.Fatalf("expected one unresolved record, got %v", records)
	}
}

func TestParse_NewlinesCollapseToLineBreakMarker(t *testing.T) {
	records, _ := Parse(Document{ID: "doc", Text: "(QCODE)a\r\nb\n\nc(/QCODE){#n}"})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := "a" + LineBreak + "b" + LineBreak + "c"
	if records[0].Text != want {
		t.Errorf("expected %q, got %q", want, records[0].Text)
	}
}

func TestParse_RoundTripOfTopLevelSpans(t *testing.T) {
	text := "pre (QCODE)alpha(/QCODE){#x} mid (QCODE)beta(/QCODE){#y} post"
	records, diags := Parse(Document{ID: "doc", Text: text})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	// Inter-tag text plus top-level span text reconstructs the markup-free document.
	got := "pre " + records[0].Text + " mid " + records[1].Text + " post"
	want := strings.NewReplacer(OpenMarker, "", CloseMarker+"{#x}", "", CloseMarker+"{#y}", "").Replace(text)
	if got != want {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestParse_RecordOrderFollowsCloseOrder(t *testing.T) {
	text := "(QCODE)one(/QCODE){#1} and (QCODE)two(/QCODE){#2} and (QCODE)three(/QCODE){#3}"
	records, _ := Parse(Document{ID: "doc", Text: text})
	var codes []string
	for _, r := range records {
		codes = append(codes, r.Code)
	}
	if !reflect.DeepEqual(codes, []string{"1", "2", "3"}) {
		t.Errorf("expected close order 1,2,3, got %v", codes)
	}
}

func TestParse_Idempotent(t *testing.T) {
	doc := Document{ID: "doc", Text: "(QCODE)a(QCODE)b(/QCODE){#i}(/QCODE){#o} (QCODE)c(/QCODE)broken"}
	r1, d1 := Parse(doc)
	r2, d2 := Parse(doc)
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("records differ across runs:\n%v\n%v", r1, r2)
	}
	if !reflect.DeepEqual(d1, d2) {
		t.Errorf("diagnostics differ across runs:\n%v\n%v", d1, d2)
	}
}

func TestParseAll_ConcatenatesInTableOrder(t *testing.T) {
	docs := []Document{
		{ID: "a", Text: "(QCODE)x(/QCODE){#one}"},
		{ID: "b", Text: "nothing"},
		{ID: "c", Text: "(QCODE)y(/QCODE){#two}"},
	}
	records, diags := ParseAll(docs)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].DocID != "a" || records[1].DocID != "c" {
		t.Errorf("records out of table order: %v", records)
	}
}

func TestCodes_DistinctResolvedInFirstSeenOrder(t *testing.T) {
	records := []Record{
		{Code: "b"}, {Code: "a"}, {Code: "b"}, {Code: UnresolvedCode}, {Code: "c"},
	}
	got := Codes(records)
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("expected [b a c], got %v", got)
	}
}
