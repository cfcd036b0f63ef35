// Package writer serializes a linearization result to its output files.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/diccas/internal/report"
	"github.com/dgallion1/diccas/internal/vrt"
)

// Kind names one output file.
type Kind string

const (
	Vert   Kind = "vert"
	Conllu Kind = "conllu"
	JSON   Kind = "json"
	Idx    Kind = "idx"
	Struct Kind = "struct"
	Report Kind = "report"
)

// Kinds lists every output in write order.
var Kinds = []Kind{Vert, Conllu, JSON, Idx, Struct, Report}

var suffixes = map[Kind]string{
	Vert:   ".vert",
	Conllu: ".conllu",
	JSON:   ".json",
	Idx:    ".vrt.idx",
	Struct: ".vrt.struct",
	Report: ".report.md",
}

// ParseKind resolves an output name.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := suffixes[k]
	return k, ok
}

// Path returns the file an output kind is written to.
func Path(dir, name string, k Kind) string {
	return filepath.Join(dir, name+suffixes[k])
}

// IdxColumns is the flat-format column schema written to the idx sidecar.
var IdxColumns = []string{"word", "role", "term_type", "term_translation"}

// WriteAll writes every output for res under dir. The first failure aborts
// the run; files already written are left in place.
func WriteAll(dir, name string, res *vrt.Result) (map[Kind]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	writers := map[Kind]func(io.Writer) error{
		Vert:   func(w io.Writer) error { return WriteLines(w, res.Flat) },
		Conllu: func(w io.Writer) error { return WriteLines(w, res.Dependency) },
		JSON:   func(w io.Writer) error { return WriteJSONLines(w, res.Paragraphs) },
		Idx:    WriteIdx,
		Struct: func(w io.Writer) error { return WriteStruct(w, res.Types, res.ParagraphPages) },
		Report: func(w io.Writer) error { return report.Write(w, name, res) },
	}

	paths := make(map[Kind]string, len(Kinds))
	for _, k := range Kinds {
		p := Path(dir, name, k)
		if err := writeFile(p, writers[k]); err != nil {
			return paths, err
		}
		paths[k] = p
	}
	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteLines writes each line followed by a newline.
func WriteLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSONLines writes one JSON object per paragraph per line.
func WriteJSONLines(w io.Writer, recs []vrt.ParagraphRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			return fmt.Errorf("paragraph %d: %w", recs[i].ID, err)
		}
	}
	return nil
}

// WriteIdx writes the column schema sidecar.
func WriteIdx(w io.Writer) error {
	return WriteLines(w, IdxColumns)
}

// WriteStruct writes one line per structural type, in the order given,
// naming the attributes that type carries.
func WriteStruct(w io.Writer, types []string, paragraphPages bool) error {
	for _, t := range types {
		attrs := "n,title"
		if t == vrt.ParagraphType {
			attrs = "translation"
			if paragraphPages {
				attrs += ",pages"
			}
		}
		if _, err := fmt.Fprintf(w, "%s\tattributes:%s\n", t, attrs); err != nil {
			return err
		}
	}
	return nil
}
