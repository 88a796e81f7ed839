package qcode

import "strings"

// openMark is one pending open marker. start is the length of the
// accumulated text buffer at the moment the marker was pushed, which is
// exactly where this span's text begins.
type openMark struct {
	start int
	pos   int // byte offset of the open marker in the source, for diagnostics
}

// nestingStack is the LIFO discipline matching closes to opens: the most
// recently opened unclosed marker is the one a close terminates.
type nestingStack struct {
	marks []openMark
}

func (s *nestingStack) push(m openMark) {
	s.marks = append(s.marks, m)
}

func (s *nestingStack) pop() (openMark, bool) {
	if len(s.marks) == 0 {
		return openMark{}, false
	}
	m := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	return m, true
}

func (s *nestingStack) depth() int {
	return len(s.marks)
}

// spanResolver accumulates markup-free text and resolves the span owned by
// each close marker. Only Text token content ever enters the buffer, so a
// span sliced out of it contains the full text of every nested child with
// all markup already excised, and child text is never recomputed: a parent's
// span is simply a longer slice of the same buffer.
type spanResolver struct {
	buf   strings.Builder
	stack nestingStack
}

// text appends a text chunk to the accumulation buffer.
func (r *spanResolver) text(chunk string) {
	r.buf.WriteString(chunk)
}

// open records a pending span starting at the current buffer position.
func (r *spanResolver) open(pos int) {
	r.stack.push(openMark{start: r.buf.Len(), pos: pos})
}

// resolve pops the matching open and returns the span text accumulated since
// it was pushed. ok is false when the stack is empty, i.e. a close with no
// matching open; such a close owns no span.
func (r *spanResolver) resolve() (span string, ok bool) {
	m, ok := r.stack.pop()
	if !ok {
		return "", false
	}
	return r.buf.String()[m.start:], true
}

// pending returns how many opens are still unmatched.
func (r *spanResolver) pending() int {
	return r.stack.depth()
}
