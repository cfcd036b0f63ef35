// Package walker flattens the inline content of a paragraph into a token
// stream. Each token carries the annotation scope (speaker role, term type,
// term translations) that was active where its text appeared; page breaks
// become marker tokens in document order.
package walker

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/diccas/internal/normalize"
	"github.com/dgallion1/diccas/internal/tagger"
	"github.com/dgallion1/diccas/internal/teitree"
)

// Default is the value of any absent annotation.
const Default = "_"

// Kind distinguishes real tokens from page markers.
type Kind int

const (
	Word Kind = iota
	PageMarker
)

// Token is one element of the walker's output. For a PageMarker only Page is set.
type Token struct {
	Kind             Kind
	Form             string
	POS              string
	Lemma            string
	Role             string
	TermType         string
	TermTranslations []string
	Page             string
}

// Translations joins the term translations with sep, or "_" when none.
func (t Token) Translations(sep string) string {
	if len(t.TermTranslations) == 0 {
		return Default
	}
	return strings.Join(t.TermTranslations, sep)
}

// Scope is the annotation context inherited by text inside an element.
type Scope struct {
	Role             string
	TermType         string
	TermTranslations []string
}

// RootScope is the scope at the start of every paragraph.
func RootScope() Scope {
	return Scope{Role: Default, TermType: Default, TermTranslations: []string{Default}}
}

// Walker turns inline markup into tokens.
type Walker struct {
	norm   *normalize.Normalizer
	tagger tagger.Tagger
}

func New(norm *normalize.Normalizer, tg tagger.Tagger) *Walker {
	return &Walker{norm: norm, tagger: tg}
}

// Walk returns the tokens of n and its descendants in document order,
// starting from the root scope. Errors come only from the tagger.
func (w *Walker) Walk(ctx context.Context, n *teitree.Node) ([]Token, error) {
	var out []Token
	if err := w.walk(ctx, n, RootScope(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Walker) walk(ctx context.Context, n *teitree.Node, scope Scope, out *[]Token) error {
	switch {
	case n.Is("pb"):
		*out = append(*out, Token{Kind: PageMarker, Page: normalize.Page(n.AttrOr("n", ""))})
	case n.Is("gloss"):
		return nil
	case n.Is("term"):
		scope.TermType = n.AttrOr("type", Default)
		if v, ok := n.Attr("translation"); ok {
			scope.TermTranslations = splitTranslations(v)
		}
	case n.Is("placeName"):
		scope.TermType = "place"
		if v, ok := n.Attr("translation"); ok {
			scope.TermTranslations = splitTranslations(v)
		}
	case n.Is("persName"):
		if v, ok := n.Attr("role"); ok && strings.TrimSpace(v) != "" {
			scope.Role = strings.TrimSpace(v)
		}
	}

	for _, c := range n.Children {
		if c.Type == teitree.TextNode {
			if err := w.text(ctx, c.Data, scope, out); err != nil {
				return err
			}
			continue
		}
		if err := w.walk(ctx, c, scope, out); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) text(ctx context.Context, raw string, scope Scope, out *[]Token) error {
	text := w.norm.Text(raw)
	if text == "" {
		return nil
	}
	analyses, err := w.tagger.Tag(ctx, text)
	if err != nil {
		return fmt.Errorf("tag %q: %w", truncate(text, 40), err)
	}
	for _, a := range analyses {
		if !tagger.Sanitize(&a) {
			continue
		}
		*out = append(*out, Token{
			Kind:             Word,
			Form:             a.Form,
			POS:              a.POS,
			Lemma:            a.Lemma,
			Role:             scope.Role,
			TermType:         scope.TermType,
			TermTranslations: scope.TermTranslations,
		})
	}
	return nil
}

// splitTranslations splits a comma-separated translation attribute.
// Blank entries are dropped; a blank attribute yields "_".
func splitTranslations(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = normalize.Attribute(part)
		if part != Default {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{Default}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
