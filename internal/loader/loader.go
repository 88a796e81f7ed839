package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmcnabb/qcodex/internal/qcode"
)

// Extractor converts raw document bytes into plain text with the coding
// markup intact. Formatting (headings, emphasis, cell layout) is discarded;
// the annotation markers are ordinary text in every supported format and
// survive extraction for the parser to consume.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// DocID derives a document id from a filename: the base name without its
// extension, with path separators stripped.
func DocID(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads one file into a document.
func LoadFile(path string) (qcode.Document, error) {
	ex, err := ForFile(path)
	if err != nil {
		return qcode.Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return qcode.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	text, err := ex.Extract(f, filepath.Base(path))
	if err != nil {
		return qcode.Document{}, fmt.Errorf("extract %s: %w", path, err)
	}
	return qcode.Document{ID: DocID(path), Text: text}, nil
}

// LoadDir reads every supported file directly under dir into an ordered
// document table, sorted by filename so the table order is stable.
// Unsupported extensions are skipped, not errors.
func LoadDir(dir string) ([]qcode.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var docs []qcode.Document
	for _, name := range names {
		doc, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
