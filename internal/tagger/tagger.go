// Package tagger turns a normalized text span into analysed tokens.
//
// A Tagger is treated as a pure function of its input: the same span always
// yields the same analyses. Implementations range from the offline Rule
// tagger (tokenization plus an optional lexicon) to HTTPTagger, which calls
// an external morphological disambiguation service.
package tagger

import (
	"context"
	"strings"
)

// Analysis is one token with its part-of-speech and lemma.
type Analysis struct {
	Form  string `json:"form"`
	POS   string `json:"pos"`
	Lemma string `json:"lemma"`
}

// Tagger tokenizes and tags a span of text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Analysis, error)
}

// Sanitize makes an analysis safe for tab-separated output: tabs and line
// breaks inside fields become spaces, empty fields become "_", and "<" in
// the form and lemma is written as "&lt;" so no token line can be read as a
// structural tag. It reports false when the form is empty, in which case
// the token should be dropped.
func Sanitize(a *Analysis) bool {
	a.Form = angleReplacer.Replace(field(a.Form))
	a.POS = field(a.POS)
	a.Lemma = angleReplacer.Replace(field(a.Lemma))
	return a.Form != "_"
}

var (
	fieldReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	angleReplacer = strings.NewReplacer("<", "&lt;")
)

func field(s string) string {
	s = strings.TrimSpace(fieldReplacer.Replace(s))
	if s == "" {
		return "_"
	}
	return s
}
