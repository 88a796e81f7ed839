package qcode

import "fmt"

// maxFragment bounds how much offending source text a diagnostic quotes.
const maxFragment = 40

// Validate runs the structural checks over a document's token stream. It
// never fails hard: every problem becomes a Diagnostic and parsing proceeds
// to produce whatever records it can.
//
// Checks: the open and close marker counts must match, and every close
// marker must be immediately followed by a well-formed label block.
func Validate(docID string, toks []Token) []Diagnostic {
	var diags []Diagnostic
	opens, closes := 0, 0
	for i, tok := range toks {
		switch tok.Kind {
		case TokenOpen:
			opens++
		case TokenClose:
			closes++
			if !WellFormedBlob(tok.Blob) {
				diags = append(diags, Diagnostic{
					DocID:  docID,
					Kind:   DiagMissingLabelBlock,
					Detail: fmt.Sprintf("close marker at byte %d lacks a label block: %q", tok.Pos, followingFragment(toks, i)),
				})
			}
		}
	}
	if opens != closes {
		diags = append(diags, Diagnostic{
			DocID:  docID,
			Kind:   DiagUnbalancedTags,
			Detail: fmt.Sprintf("%d open markers vs %d close markers", opens, closes),
		})
	}
	return diags
}

// followingFragment quotes what actually follows the close marker at toks[i],
// so the operator can locate the bad markup in the source.
func followingFragment(toks []Token, i int) string {
	if toks[i].Blob != "" {
		return truncate(toks[i].Blob)
	}
	if i+1 < len(toks) && toks[i+1].Kind == TokenText {
		return truncate(toks[i+1].Text)
	}
	return ""
}

func truncate(s string) string {
	if len(s) > maxFragment {
		return s[:maxFragment] + "..."
	}
	return s
}
