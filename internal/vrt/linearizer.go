// Package vrt linearizes a TEI division tree into the flat vertical format
// and its parallel dependency-format and JSON streams.
//
// A Linearizer walks every book-typed division depth-first. Division open
// and close tags bracket their content, so the flat stream is always
// balanced. Each paragraph is walked into tokens, cut into sentences, and
// written to all three streams in step. Sentence identifiers are unique and
// increasing across a whole run.
package vrt

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/diccas/internal/normalize"
	"github.com/dgallion1/diccas/internal/segment"
	"github.com/dgallion1/diccas/internal/teitree"
	"github.com/dgallion1/diccas/internal/walker"
)

// ParagraphType is the structural type name of paragraphs.
const ParagraphType = "p"

// BookType is the division type every run starts from.
const BookType = "book"

// Result holds the three output streams plus what the sidecars need.
type Result struct {
	Flat       []string
	Dependency []string
	Paragraphs []ParagraphRecord
	// Types lists every structural type opened during the run, including
	// ParagraphType when any paragraph was written, sorted.
	Types []string
	// ParagraphPages reports whether any paragraph carried a pages attribute.
	ParagraphPages bool
	Stats          Stats
}

// Linearizer converts documents. Run keeps its state per call, so one
// Linearizer may serve concurrent runs when its tagger allows it.
type Linearizer struct {
	walker *walker.Walker
	policy segment.Policy
	log    *slog.Logger
}

func New(w *walker.Walker, policy segment.Policy, log *slog.Logger) *Linearizer {
	if log == nil {
		log = slog.Default()
	}
	return &Linearizer{walker: w, policy: policy, log: log}
}

// run is the mutable state of one Run call.
type run struct {
	*Linearizer
	res        *Result
	nextSent   int
	types      map[string]bool
	pages      map[string]bool
	paragraphs int
}

// Run converts doc. The only errors are tagger failures and context cancellation.
func (l *Linearizer) Run(ctx context.Context, doc *teitree.Document) (*Result, error) {
	r := &run{
		Linearizer: l,
		res:        &Result{Stats: newStats()},
		nextSent:   1,
		types:      make(map[string]bool),
		pages:      make(map[string]bool),
	}
	r.res.Stats.Recovered = doc.RecoveredFrom != nil

	books := doc.Root.FindAll(func(n *teitree.Node) bool {
		return isDivision(n) && n.AttrOr("type", "") == BookType
	})
	if len(books) == 0 {
		l.log.Warn("no book divisions found", "source", doc.Source)
	}
	for _, b := range books {
		if err := r.division(ctx, b, BookType, Context{}); err != nil {
			return nil, err
		}
		r.res.Stats.Books++
	}

	for t := range r.types {
		r.res.Types = append(r.res.Types, t)
	}
	slices.Sort(r.res.Types)
	r.res.Stats.Pages = len(r.pages)
	return r.res, nil
}

func isDivision(n *teitree.Node) bool {
	return n.Type == teitree.ElementNode && strings.HasPrefix(strings.ToLower(n.Tag), "div")
}

func (r *run) division(ctx context.Context, n *teitree.Node, typ string, parent Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	num := strings.TrimSpace(n.AttrOr("n", ""))
	if num == "" {
		num = walker.Default
	}
	b := Binding{Type: typ, N: num, Title: headTitle(n)}
	cur := parent.With(b)

	r.types[typ] = true
	r.res.Stats.Divisions[typ]++
	r.res.Flat = append(r.res.Flat, fmt.Sprintf(`<%s n="%s" title="%s">`, typ, b.N, b.Title))
	r.log.Debug("division", "type", typ, "n", b.N, "depth", cur.Len())

	for _, c := range n.Elements() {
		switch {
		case isDivision(c):
			if err := r.division(ctx, c, divisionType(c), cur); err != nil {
				return err
			}
		case c.Is(ParagraphType):
			if err := r.paragraph(ctx, c, cur); err != nil {
				return err
			}
		}
	}

	r.res.Flat = append(r.res.Flat, fmt.Sprintf("</%s>", typ), "")
	return nil
}

func divisionType(n *teitree.Node) string {
	if t := strings.TrimSpace(n.AttrOr("type", "")); t != "" {
		return t
	}
	return n.Tag
}

// headTitle returns the cleaned text of head/title, or "_".
func headTitle(div *teitree.Node) string {
	head := div.Child("head")
	if head == nil {
		return walker.Default
	}
	title := head.Child("title")
	if title == nil {
		return walker.Default
	}
	return normalize.Attribute(title.Text())
}

// glossTranslation returns the first gloss text run in the paragraph, cleaned.
func glossTranslation(p *teitree.Node) string {
	for _, g := range p.FindAll(func(n *teitree.Node) bool { return n.Is("gloss") }) {
		for _, t := range g.OwnText() {
			if strings.TrimSpace(t) != "" {
				return normalize.Attribute(t)
			}
		}
	}
	return walker.Default
}

func relabelHi(tag string) string {
	if strings.EqualFold(tag, "hi") {
		return "span"
	}
	return tag
}

func (r *run) paragraph(ctx context.Context, p *teitree.Node, c Context) error {
	translation := glossTranslation(p)
	tokens, err := r.walker.Walk(ctx, p.Clone(relabelHi))
	if err != nil {
		return err
	}
	sentences := segment.Split(tokens, r.policy)

	r.paragraphs++
	r.types[ParagraphType] = true
	r.res.Stats.Paragraphs++

	rec := ParagraphRecord{
		ID:          r.paragraphs,
		Context:     c.Bindings(),
		Translation: translation,
		Pages:       []string{},
		Sentences:   []SentenceRecord{},
	}

	open := len(r.res.Flat)
	r.res.Flat = append(r.res.Flat, fmt.Sprintf(`<p translation="%s">`, translation))

	page := walker.Default
	var paraPages []string
	for _, sent := range sentences {
		pages := sentencePages(sent)
		paraPages = appendUnique(paraPages, pages...)
		srec := r.sentence(sent, pages, translation, c, &page)
		rec.Sentences = append(rec.Sentences, srec)
	}

	if len(paraPages) > 0 {
		r.res.Flat[open] = fmt.Sprintf(`<p translation="%s" pages="%s">`, translation, strings.Join(paraPages, ","))
		r.res.ParagraphPages = true
		rec.Pages = paraPages
	}
	r.res.Flat = append(r.res.Flat, "</p>")
	r.res.Paragraphs = append(r.res.Paragraphs, rec)
	return nil
}

// sentence writes one sentence to the flat and dependency streams. page is
// the running page of the enclosing paragraph.
func (r *run) sentence(sent []walker.Token, pages []string, translation string, c Context, page *string) SentenceRecord {
	id := "s" + strconv.Itoa(r.nextSent)
	r.nextSent++
	r.res.Stats.Sentences++

	if len(pages) > 0 {
		r.res.Flat = append(r.res.Flat, fmt.Sprintf(`<s pages="%s">`, strings.Join(pages, ",")))
	} else {
		r.res.Flat = append(r.res.Flat, "<s>")
	}

	dep := []string{"# sent_id = " + id}
	if len(pages) > 0 {
		dep = append(dep, fmt.Sprintf(`# pages = "%s"`, strings.Join(pages, ",")))
	}
	dep = append(dep, "# translation = "+translation)
	for _, b := range c.bindings {
		dep = append(dep, fmt.Sprintf("# %s = %s", b.Type, b.N), fmt.Sprintf("# %s_title = %s", b.Type, b.Title))
	}

	srec := SentenceRecord{ID: id, Pages: pages, Tokens: []TokenRecord{}}
	if srec.Pages == nil {
		srec.Pages = []string{}
	}
	idx := 0
	for _, tok := range sent {
		if tok.Kind == walker.PageMarker {
			if tok.Page != walker.Default {
				*page = tok.Page
				r.pages[tok.Page] = true
			}
			continue
		}
		idx++
		translations := tok.Translations(";")
		r.res.Flat = append(r.res.Flat, strings.Join([]string{
			tok.Form, tok.POS, tok.Lemma, tok.TermType, translations, *page,
		}, "\t"))
		dep = append(dep, strings.Join([]string{
			strconv.Itoa(idx), tok.Form, tok.Lemma, tok.POS, misc(tok, translations, *page),
		}, "\t"))
		srec.Tokens = append(srec.Tokens, TokenRecord{
			Form:            tok.Form,
			POS:             tok.POS,
			Lemma:           tok.Lemma,
			Role:            tok.Role,
			TermType:        tok.TermType,
			TermTranslation: tok.TermTranslations,
			Page:            *page,
		})
		r.res.Stats.Tokens++
		if tok.TermType != walker.Default {
			r.res.Stats.TermTypes[tok.TermType]++
		}
		if tok.Role != walker.Default {
			r.res.Stats.Roles[tok.Role]++
		}
	}

	r.res.Flat = append(r.res.Flat, "</s>")
	r.res.Dependency = append(r.res.Dependency, dep...)
	r.res.Dependency = append(r.res.Dependency, "")
	return srec
}

// sentencePages lists the numbered page markers of a sentence, first-seen order.
func sentencePages(sent []walker.Token) []string {
	var out []string
	for _, tok := range sent {
		if tok.Kind == walker.PageMarker && tok.Page != walker.Default {
			out = appendUnique(out, tok.Page)
		}
	}
	return out
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

// misc builds the dependency-format annotation column.
func misc(tok walker.Token, translations, page string) string {
	var parts []string
	if tok.Role != walker.Default {
		parts = append(parts, "Role="+tok.Role)
	}
	if tok.TermType != walker.Default {
		parts = append(parts, "TermType="+tok.TermType)
	}
	if translations != walker.Default {
		parts = append(parts, "TermTranslation="+translations)
	}
	if page != walker.Default {
		parts = append(parts, "Page="+page)
	}
	if len(parts) == 0 {
		return walker.Default
	}
	return strings.Join(parts, "|")
}
