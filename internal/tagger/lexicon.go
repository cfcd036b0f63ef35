package tagger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LexiconEntry is the analysis a lexicon assigns to a form.
type LexiconEntry struct {
	Lemma string
	POS   string
}

// Lexicon maps surface forms to analyses. A nil Lexicon matches nothing.
type Lexicon map[string]LexiconEntry

// Lookup returns the entry for form.
func (l Lexicon) Lookup(form string) (LexiconEntry, bool) {
	e, ok := l[form]
	return e, ok
}

// ReadLexicon parses tab-separated "form<TAB>lemma<TAB>pos" lines. Blank
// lines and lines starting with '#' are ignored. Later lines win.
func ReadLexicon(r io.Reader) (Lexicon, error) {
	lex := make(Lexicon)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) != 3 {
			return nil, fmt.Errorf("lexicon line %d: expected 3 columns, got %d", line, len(cols))
		}
		lex[cols[0]] = LexiconEntry{Lemma: field(cols[1]), POS: field(cols[2])}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return lex, nil
}

// LoadLexicon reads a lexicon file.
func LoadLexicon(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()
	return ReadLexicon(f)
}
