package vert

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/diccas/internal/vrt"
)

const defaultValue = "_"

// ContentPOS lists the parts of speech whose lemmas the tag index keeps.
var ContentPOS = map[string]bool{
	"noun":      true,
	"noun_prop": true,
	"verb":      true,
	"adj":       true,
	"adv":       true,
}

// ReadParagraphs rebuilds paragraph records from a flat file. Token lines
// must have exactly columns fields (TokenColumns, or MergedColumns for a
// merged file). Sentence identifiers are reassigned from s1 in file order,
// which reproduces the converter's numbering.
func ReadParagraphs(r io.Reader, columns int) ([]vrt.ParagraphRecord, error) {
	rd := NewReader(r, columns)

	type open struct {
		tag   string
		attrs map[string]string
	}
	var (
		stack []open
		out   []vrt.ParagraphRecord
		para  *vrt.ParagraphRecord
		sent  *vrt.SentenceRecord
		nsent int
	)

	for {
		l, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch l.Kind {
		case Open:
			stack = append(stack, open{tag: l.Tag, attrs: l.Attrs})
			switch l.Tag {
			case vrt.ParagraphType:
				var ctx []vrt.Binding
				for _, o := range stack[:len(stack)-1] {
					ctx = append(ctx, vrt.Binding{Type: o.tag, N: attrOr(o.attrs, "n"), Title: attrOr(o.attrs, "title")})
				}
				para = &vrt.ParagraphRecord{
					ID:          len(out) + 1,
					Context:     ctx,
					Translation: attrOr(l.Attrs, "translation"),
					Pages:       splitList(l.Attrs["pages"], ","),
					Sentences:   []vrt.SentenceRecord{},
				}
			case "s":
				nsent++
				sent = &vrt.SentenceRecord{
					ID:     "s" + strconv.Itoa(nsent),
					Pages:  splitList(l.Attrs["pages"], ","),
					Tokens: []vrt.TokenRecord{},
				}
			}

		case Close:
			if len(stack) == 0 || stack[len(stack)-1].tag != l.Tag {
				return nil, fmt.Errorf("line %d: %w: </%s>", l.Num, ErrUnbalanced, l.Tag)
			}
			stack = stack[:len(stack)-1]
			switch l.Tag {
			case "s":
				if sent != nil && para != nil {
					para.Sentences = append(para.Sentences, *sent)
				}
				sent = nil
			case vrt.ParagraphType:
				if para != nil {
					out = append(out, *para)
				}
				para = nil
			}

		case Token:
			if sent == nil {
				return nil, fmt.Errorf("line %d: token outside a sentence", l.Num)
			}
			f := l.Fields
			sent.Tokens = append(sent.Tokens, vrt.TokenRecord{
				Form:            f[0],
				POS:             f[1],
				Lemma:           f[2],
				Role:            defaultValue,
				TermType:        f[3],
				TermTranslation: splitList(f[4], ";"),
				Page:            f[5],
			})
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: <%s> never closed", ErrUnbalanced, stack[len(stack)-1].tag)
	}
	return out, nil
}

func attrOr(attrs map[string]string, name string) string {
	if v, ok := attrs[name]; ok && v != "" {
		return v
	}
	return defaultValue
}

func splitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TagEntry aggregates the tokens annotated with one term translation.
type TagEntry struct {
	Count  int      `json:"count"`
	Lemmas []string `json:"lemmas"`
}

// TagIndex maps term type, then translation value, to its entry.
type TagIndex map[string]map[string]*TagEntry

// BuildTagIndex aggregates every annotated token. Each translation value
// of a token counts once; lemmas are kept only for ContentPOS tokens.
func BuildTagIndex(paras []vrt.ParagraphRecord) TagIndex {
	idx := make(TagIndex)
	lemmas := make(map[*TagEntry]map[string]bool)
	for _, p := range paras {
		for _, s := range p.Sentences {
			for _, t := range s.Tokens {
				if t.TermType == defaultValue {
					continue
				}
				byValue := idx[t.TermType]
				if byValue == nil {
					byValue = make(map[string]*TagEntry)
					idx[t.TermType] = byValue
				}
				for _, v := range t.TermTranslation {
					e := byValue[v]
					if e == nil {
						e = &TagEntry{Lemmas: []string{}}
						byValue[v] = e
						lemmas[e] = make(map[string]bool)
					}
					e.Count++
					if ContentPOS[t.POS] && t.Lemma != defaultValue {
						lemmas[e][t.Lemma] = true
					}
				}
			}
		}
	}
	for e, set := range lemmas {
		e.Lemmas = slices.Sorted(maps.Keys(set))
		if e.Lemmas == nil {
			e.Lemmas = []string{}
		}
	}
	return idx
}
