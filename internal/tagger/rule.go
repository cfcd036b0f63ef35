package tagger

import (
	"context"
	"strings"
	"unicode"
)

// Part-of-speech tags assigned without a lexicon.
const (
	POSPunct   = "punc"
	POSDigit   = "digit"
	POSUnknown = "_"
)

// Rule is an offline tagger. It splits on whitespace and makes every
// punctuation or symbol character a token of its own. Words are looked up
// in the lexicon when one is set; otherwise the lemma is the form itself.
type Rule struct {
	Lexicon Lexicon
}

func (r *Rule) Tag(_ context.Context, text string) ([]Analysis, error) {
	words := Tokenize(text)
	out := make([]Analysis, 0, len(words))
	for _, w := range words {
		a := Analysis{Form: w, Lemma: w, POS: classify(w)}
		if e, ok := r.Lexicon.Lookup(w); ok {
			a.Lemma = e.Lemma
			a.POS = e.POS
		}
		out = append(out, a)
	}
	return out, nil
}

// Tokenize splits text into words and standalone punctuation/symbol tokens.
func Tokenize(text string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			out = append(out, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func classify(w string) string {
	allDigits := true
	for _, r := range w {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return POSPunct
		}
		if !unicode.IsDigit(r) {
			allDigits = false
		}
	}
	if allDigits {
		return POSDigit
	}
	return POSUnknown
}
