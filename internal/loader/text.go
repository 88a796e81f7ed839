package loader

import "io"

// TextExtractor handles plain text files. The bytes are the document:
// nothing is reflowed, so marker adjacency and spacing survive verbatim.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
