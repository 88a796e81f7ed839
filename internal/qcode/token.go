package qcode

import "strings"

// Markup literals. A close marker must be immediately followed by a label
// block of the form {#label[,label...]} to be well formed; any other byte
// between the close literal and the block makes the block ordinary text.
const (
	OpenMarker  = "(QCODE)"
	CloseMarker = "(/QCODE)"

	blobPrefix = "{#"
	blobSuffix = "}"
)

// TokenKind discriminates the three token variants.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenOpen
	TokenClose
)

// Token is one lexical unit of an annotated document. Concatenating, in
// order, every token's source form (Text content, the open literal, or the
// close literal plus Blob) reconstructs the input exactly.
type Token struct {
	Kind TokenKind
	Text string // TokenText: chunk content, may be empty between adjacent markers
	Blob string // TokenClose: raw label block including braces; empty if absent
	Pos  int    // byte offset of the token in the source text
}

// Tokenize scans a document's text into an ordered token sequence. It is a
// pure function of the input and never fails: an unterminated label block is
// left as trailing text for the validator to report.
//
// A Text token is emitted before every marker and at end of input even when
// empty, so adjacency of two markers is preserved in the stream.
func Tokenize(text string) []Token {
	var toks []Token
	pos := 0
	for pos <= len(text) {
		rel := nextMarker(text[pos:])
		if rel < 0 {
			toks = append(toks, Token{Kind: TokenText, Text: text[pos:], Pos: pos})
			break
		}
		at := pos + rel
		toks = append(toks, Token{Kind: TokenText, Text: text[pos:at], Pos: pos})

		if strings.HasPrefix(text[at:], OpenMarker) {
			toks = append(toks, Token{Kind: TokenOpen, Pos: at})
			pos = at + len(OpenMarker)
			continue
		}

		end := at + len(CloseMarker)
		blob := captureBlob(text[end:])
		toks = append(toks, Token{Kind: TokenClose, Blob: blob, Pos: at})
		pos = end + len(blob)
	}
	return toks
}

// nextMarker returns the offset of the nearest open or close marker, or -1.
func nextMarker(s string) int {
	io := strings.Index(s, OpenMarker)
	ic := strings.Index(s, CloseMarker)
	switch {
	case io < 0:
		return ic
	case ic < 0:
		return io
	case io < ic:
		return io
	default:
		return ic
	}
}

// captureBlob takes the raw label block directly following a close marker,
// braces included. A brace-delimited block is captured even without the #
// sigil so the validator can report the offending fragment; a block whose
// closing brace never arrives is not captured at all.
func captureBlob(s string) string {
	if !strings.HasPrefix(s, "{") {
		return ""
	}
	end := strings.Index(s, blobSuffix)
	if end < 0 {
		return ""
	}
	return s[:end+len(blobSuffix)]
}

// WellFormedBlob reports whether a captured blob has the {#...} shape.
func WellFormedBlob(blob string) bool {
	return strings.HasPrefix(blob, blobPrefix) && strings.HasSuffix(blob, blobSuffix)
}
