package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/diccas/internal/teitree"
)

// ErrUnsupportedFormat is returned by ForFile for extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Parser converts raw document bytes into a teitree.Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*teitree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xml":  true,
	".tei":  true,
	".html": true,
	".htm":  true,
}

// ForFile returns the appropriate parser for a filename. TEI input gets the
// recovering XML parser; HTML exports of TEI go straight to the tag-soup parser.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml", ".tei":
		return &XMLParser{Recover: true}, nil
	case ".html", ".htm":
		return &TagSoupParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
