package vert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Annotation is the lemma and universal POS an external tagger assigned to a token.
type Annotation struct {
	Lemma string
	UPOS  string
}

// ReadAnnotations collects lemma/upos pairs from a CoNLL-U file. Both the
// ten-column standard layout and the five-column layout written by the
// converter keep lemma in column 3 and the POS in column 4. Comments,
// blank lines, multiword ranges (1-2) and empty nodes (1.1) are skipped.
func ReadAnnotations(r io.Reader) ([]Annotation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	var out []Annotation
	num := 0
	for sc.Scan() {
		num++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 10 && len(fields) != 5 {
			return nil, fmt.Errorf("conllu line %d: %w: want 10 or 5, got %d", num, ErrColumnCount, len(fields))
		}
		if strings.ContainsAny(fields[0], "-.") {
			continue
		}
		out = append(out, Annotation{Lemma: fields[2], UPOS: fields[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read conllu: %w", err)
	}
	return out, nil
}

// MergeResult counts what Merge consumed.
type MergeResult struct {
	Tokens      int
	Annotations int
}

// Unused reports how many annotation rows were left over.
func (m MergeResult) Unused() int { return m.Annotations - m.Tokens }

// Merge copies the flat file to w, appending lemma and upos from anns to
// each token line in order. Structural and blank lines pass through unchanged.
func Merge(flat io.Reader, anns []Annotation, w io.Writer) (MergeResult, error) {
	res := MergeResult{Annotations: len(anns)}
	rd := NewReader(flat, TokenColumns)
	bw := bufio.NewWriter(w)
	for {
		l, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		out := l.Raw
		if l.Kind == Token {
			if res.Tokens >= len(anns) {
				return res, fmt.Errorf("line %d: %w (%d annotations)", l.Num, ErrShortAnnotation, len(anns))
			}
			a := anns[res.Tokens]
			out += "\t" + a.Lemma + "\t" + a.UPOS
			res.Tokens++
		}
		if _, err := bw.WriteString(out + "\n"); err != nil {
			return res, fmt.Errorf("write merged: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("write merged: %w", err)
	}
	return res, nil
}
