// Package vert reads the flat vertical format back in. It backs the two
// downstream steps: merging external annotations into a flat file, and
// rebuilding paragraph and term-index JSON from one.
package vert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// ErrColumnCount marks a token or annotation row with the wrong number
	// of columns: the files are corrupt or do not belong together.
	ErrColumnCount = errors.New("unexpected column count")
	// ErrShortAnnotation is returned by Merge when the annotation file runs
	// out before the flat file's token lines do.
	ErrShortAnnotation = errors.New("fewer annotation rows than token lines")
	// ErrUnbalanced marks a close tag that does not match the open element.
	ErrUnbalanced = errors.New("unbalanced structural tags")
)

// TokenColumns is the column count of a token line as written by the converter.
const TokenColumns = 6

// MergedColumns is the column count after Merge appends lemma and upos.
const MergedColumns = TokenColumns + 2

// LineKind classifies a flat-format line.
type LineKind int

const (
	Blank LineKind = iota
	Open
	Close
	Token
)

// Line is one classified line of a flat file.
type Line struct {
	Num    int
	Kind   LineKind
	Raw    string
	Tag    string            // Open and Close
	Attrs  map[string]string // Open
	Fields []string          // Token
}

var attrRe = regexp.MustCompile(`([\w:-]+)="([^"]*)"`)

// Reader yields classified lines and checks token column counts.
type Reader struct {
	sc      *bufio.Scanner
	num     int
	columns int
}

// NewReader reads a flat file whose token lines have the given column count.
func NewReader(r io.Reader, columns int) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	return &Reader{sc: sc, columns: columns}
}

// Next returns the next line, or io.EOF.
func (r *Reader) Next() (Line, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Line{}, fmt.Errorf("read line %d: %w", r.num+1, err)
		}
		return Line{}, io.EOF
	}
	r.num++
	raw := strings.TrimRight(r.sc.Text(), "\r\n")
	l := Line{Num: r.num, Raw: raw}

	switch {
	case strings.TrimSpace(raw) == "":
		l.Kind = Blank
	case strings.HasPrefix(raw, "</"):
		l.Kind = Close
		l.Tag = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "</"), ">"))
	case strings.HasPrefix(raw, "<"):
		l.Kind = Open
		body := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
		name, rest, _ := strings.Cut(body, " ")
		l.Tag = name
		l.Attrs = make(map[string]string)
		for _, m := range attrRe.FindAllStringSubmatch(rest, -1) {
			l.Attrs[m[1]] = m[2]
		}
	default:
		l.Kind = Token
		l.Fields = strings.Split(raw, "\t")
		if len(l.Fields) != r.columns {
			return l, fmt.Errorf("line %d: %w: want %d, got %d", l.Num, ErrColumnCount, r.columns, len(l.Fields))
		}
	}
	return l, nil
}
