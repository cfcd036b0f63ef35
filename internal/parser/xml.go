package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"

	"github.com/dgallion1/diccas/internal/teitree"
)

// XMLParser reads TEI with a non-strict decoder. Mismatched end tags and
// unknown HTML entities are tolerated by the decoder itself; anything worse
// (truncated input, broken markup) falls back to TagSoupParser when Recover is set.
type XMLParser struct {
	Recover bool
}

// ParseError wraps the failure of the strict pass.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse xml %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (p *XMLParser) Parse(r io.Reader, filename string) (*teitree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	root, err := parseXML(data)
	if err == nil {
		return &teitree.Document{Root: root, Source: filename}, nil
	}
	if !p.Recover {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	doc, rerr := (&TagSoupParser{}).Parse(bytes.NewReader(data), filename)
	if rerr != nil {
		return nil, errors.Join(&ParseError{Filename: filename, Err: err}, rerr)
	}
	doc.RecoveredFrom = &ParseError{Filename: filename, Err: err}
	return doc, nil
}

func parseXML(data []byte) (*teitree.Node, error) {
	doc, err := xmlquery.ParseWithOptions(bytes.NewReader(data), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:    false,
			AutoClose: xml.HTMLAutoClose,
			Entity:    xml.HTMLEntity,
		},
	})
	if err != nil {
		return nil, err
	}

	var root *teitree.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			root = convert(c)
			break
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

func convert(n *xmlquery.Node) *teitree.Node {
	el := teitree.NewElement(teitree.LocalName(n.Data))
	for _, a := range n.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		el.Attrs = append(el.Attrs, teitree.Attr{Name: a.Name.Local, Value: a.Value})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			el.Append(convert(c))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			el.Append(teitree.NewText(c.Data))
		}
	}
	return el
}
