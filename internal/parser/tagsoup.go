package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/diccas/internal/teitree"
)

// TagSoupParser builds a tree from markup that is not well-formed. It reads
// tokens with the x/net/html tokenizer and keeps its own open-element stack:
// an end tag closes the nearest open element of the same name, and end tags
// with no open match are dropped. Whatever is still open at EOF is closed.
type TagSoupParser struct{}

func (p *TagSoupParser) Parse(r io.Reader, filename string) (*teitree.Document, error) {
	z := html.NewTokenizer(r)
	doc := teitree.NewElement("#document")
	stack := []*teitree.Node{doc}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return finish(doc, filename)
			}
			return nil, fmt.Errorf("parse %s: %w", filename, z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			// TEI has no raw-text elements; title and style must hold markup.
			z.NextIsNotRawText()
			tok := z.Token()
			el := teitree.NewElement(teitree.LocalName(tok.Data))
			for _, a := range tok.Attr {
				if a.Key == "xmlns" || strings.HasPrefix(a.Key, "xmlns:") {
					continue
				}
				el.Attrs = append(el.Attrs, teitree.Attr{Name: teitree.LocalName(a.Key), Value: a.Val})
			}
			stack[len(stack)-1].Append(el)
			if tt == html.StartTagToken {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			tok := z.Token()
			name := teitree.LocalName(tok.Data)
			for i := len(stack) - 1; i > 0; i-- {
				if strings.EqualFold(stack[i].Tag, name) {
					stack = stack[:i]
					break
				}
			}

		case html.TextToken:
			stack[len(stack)-1].Append(teitree.NewText(string(z.Text())))
		}
	}
}

func finish(doc *teitree.Node, filename string) (*teitree.Document, error) {
	for _, c := range doc.Children {
		if c.Type == teitree.ElementNode {
			c.Parent = nil
			return &teitree.Document{Root: c, Source: filename}, nil
		}
	}
	return nil, fmt.Errorf("parse %s: no root element", filename)
}
