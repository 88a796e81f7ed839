package qcode

import (
	"fmt"
	"regexp"
)

// LineBreak is the canonical marker every run of carriage-return and/or
// line-feed characters in emitted span text collapses to.
const LineBreak = "<br>"

var newlineRun = regexp.MustCompile(`[\r\n]+`)

// Parse extracts every coded span of one document into records, one record
// per (close marker, label) pair in left-to-right close order. It is a pure
// function of the document: no shared state, no I/O, and re-running it
// yields identical output.
//
// Parse never fails. Structural problems in the markup degrade to
// diagnostics, and a span whose label block is unusable is emitted under
// UnresolvedCode rather than dropped.
func Parse(doc Document) ([]Record, []Diagnostic) {
	toks := Tokenize(doc.Text)
	diags := Validate(doc.ID, toks)

	var records []Record
	var res spanResolver
	for _, tok := range toks {
		switch tok.Kind {
		case TokenText:
			res.text(tok.Text)
		case TokenOpen:
			res.open(tok.Pos)
		case TokenClose:
			span, ok := res.resolve()
			if !ok {
				diags = append(diags, Diagnostic{
					DocID:  doc.ID,
					Kind:   DiagUnbalancedTags,
					Detail: fmt.Sprintf("close marker at byte %d has no matching open", tok.Pos),
				})
				continue
			}
			text := newlineRun.ReplaceAllString(span, LineBreak)

			labels, wellFormed := ExtractLabels(tok.Blob)
			if wellFormed && len(labels) == 0 {
				diags = append(diags, Diagnostic{
					DocID:  doc.ID,
					Kind:   DiagEmptyLabel,
					Detail: fmt.Sprintf("label block %q at byte %d has no usable labels", tok.Blob, tok.Pos),
				})
			}
			if len(labels) == 0 {
				// Malformed block already reported by Validate; keep the span.
				labels = []string{UnresolvedCode}
			}
			for _, label := range labels {
				records = append(records, Record{DocID: doc.ID, Code: label, Text: text})
			}
		}
	}
	// Unclosed opens at end of document are covered by the validator's
	// count check; their accumulated text owns no close and no label, so
	// no record is emitted for them.
	return records, diags
}

// ParseAll parses an ordered table of documents sequentially, concatenating
// per-document output in table order. Documents are independent; callers
// that want concurrency can fan out over Parse directly.
func ParseAll(docs []Document) ([]Record, []Diagnostic) {
	var records []Record
	var diags []Diagnostic
	for _, doc := range docs {
		r, d := Parse(doc)
		records = append(records, r...)
		diags = append(diags, d...)
	}
	return records, diags
}

// Codes returns the distinct resolved codes of a record set in first-seen
// order, excluding the unresolved placeholder. This is the list handed to
// the code registry after a parse.
func Codes(records []Record) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range records {
		if r.Code == UnresolvedCode || seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		codes = append(codes, r.Code)
	}
	return codes
}
