package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/diccas/internal/parser"
	"github.com/dgallion1/diccas/internal/segment"
	"github.com/dgallion1/diccas/internal/teitree"
	"github.com/dgallion1/diccas/internal/vrt"
	"github.com/dgallion1/diccas/internal/walker"
	"github.com/dgallion1/diccas/internal/writer"
)

// Converter runs parse, linearize and write for one document. The CLI and
// the job workers share it.
type Converter struct {
	linearizer *vrt.Linearizer
	log        *slog.Logger
}

func NewConverter(w *walker.Walker, policy segment.Policy, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}
	return &Converter{linearizer: vrt.New(w, policy, log), log: log}
}

// Parse picks a parser from the filename extension and reads r. A document
// that only the recovering parser could read is logged at Warn.
func (c *Converter) Parse(r io.Reader, filename string) (*teitree.Document, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	if doc.RecoveredFrom != nil {
		c.log.Warn("malformed XML, recovered with tag-soup parser", "file", filename, "error", doc.RecoveredFrom)
	}
	return doc, nil
}

// Linearize produces every output stream for doc.
func (c *Converter) Linearize(ctx context.Context, doc *teitree.Document) (*vrt.Result, error) {
	res, err := c.linearizer.Run(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("linearize %s: %w", doc.Source, err)
	}
	return res, nil
}

// ConvertFile converts the file at path and writes all outputs under dir
// as name.<suffix>.
func (c *Converter) ConvertFile(ctx context.Context, path, dir, name string) (*vrt.Result, map[writer.Kind]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	doc, err := c.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	res, err := c.Linearize(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	files, err := writer.WriteAll(dir, name, res)
	if err != nil {
		return nil, nil, err
	}
	c.log.Info("converted",
		"file", path,
		"paragraphs", res.Stats.Paragraphs,
		"sentences", res.Stats.Sentences,
		"tokens", res.Stats.Tokens,
	)
	return res, files, nil
}
