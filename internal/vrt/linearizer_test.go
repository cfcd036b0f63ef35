package vrt

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/diccas/internal/normalize"
	"github.com/dgallion1/diccas/internal/parser"
	"github.com/dgallion1/diccas/internal/segment"
	"github.com/dgallion1/diccas/internal/tagger"
	"github.com/dgallion1/diccas/internal/walker"
)

func convert(t *testing.T, body string, policy segment.Policy) *Result {
	t.Helper()
	xml := `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body>` + body + `</body></text></TEI>`
	doc, err := (&parser.XMLParser{Recover: true}).Parse(strings.NewReader(xml), "t.xml")
	require.NoError(t, err)
	w := walker.New(normalize.New(normalize.DefaultOptions()), &tagger.Rule{})
	res, err := New(w, policy, nil).Run(context.Background(), doc)
	require.NoError(t, err)
	return res
}

func tokenLines(lines []string) [][]string {
	var out [][]string
	for _, l := range lines {
		if l == "" || strings.HasPrefix(l, "<") {
			continue
		}
		out = append(out, strings.Split(l, "\t"))
	}
	return out
}

func assertBalanced(t *testing.T, flat []string) {
	t.Helper()
	var stack []string
	for _, l := range flat {
		if !strings.HasPrefix(l, "<") {
			continue
		}
		if strings.HasPrefix(l, "</") {
			name := strings.TrimSuffix(strings.TrimPrefix(l, "</"), ">")
			require.NotEmpty(t, stack, "close %s without open", name)
			require.Equal(t, stack[len(stack)-1], name, "close out of order")
			stack = stack[:len(stack)-1]
			continue
		}
		name := strings.TrimPrefix(l, "<")
		if i := strings.IndexAny(name, " >"); i >= 0 {
			name = name[:i]
		}
		stack = append(stack, name)
	}
	assert.Empty(t, stack, "unclosed tags")
}

func TestGlossParagraph(t *testing.T) {
	res := convert(t, `<div type="book" n="1"><p><gloss>EN   "text"</gloss>حسنا.</p></div>`, segment.Paragraph)

	assert.Equal(t, []string{
		`<book n="1" title="_">`,
		`<p translation="EN 'text'">`,
		`<s>`,
		"حسنا\t_\tحسنا\t_\t_\t_",
		".\tpunc\t.\t_\t_\t_",
		`</s>`,
		`</p>`,
		`</book>`,
		``,
	}, res.Flat)

	assert.Equal(t, []string{
		"# sent_id = s1",
		"# translation = EN 'text'",
		"# book = 1",
		"# book_title = _",
		"1\tحسنا\tحسنا\t_\t_",
		"2\t.\t.\tpunc\t_",
		"",
	}, res.Dependency)

	assert.Equal(t, []string{"book", "p"}, res.Types)
	assert.False(t, res.ParagraphPages)
}

func TestNestedContextComments(t *testing.T) {
	res := convert(t, `
<div type="book" n="1"><head><title>Kitab
  al-Tarikh</title></head>
  <div type="chapter" n="2"><p>نص</p></div>
</div>`, segment.Paragraph)

	assert.Equal(t, []string{
		"# sent_id = s1",
		"# translation = _",
		"# book = 1",
		"# book_title = Kitab al-Tarikh",
		"# chapter = 2",
		"# chapter_title = _",
		"1\tنص\tنص\t_\t_",
		"",
	}, res.Dependency)
	assertBalanced(t, res.Flat)
	assert.Contains(t, res.Flat, `<chapter n="2" title="_">`)
}

func TestSiblingContextsDoNotLeak(t *testing.T) {
	res := convert(t, `
<div type="book" n="1">
  <div type="section" n="A"><div type="chapter" n="1"><p>الف</p></div></div>
  <div type="section" n="B"><p>باء</p></div>
</div>`, segment.Paragraph)

	require.Len(t, res.Paragraphs, 2)
	assert.Equal(t, []Binding{
		{Type: "book", N: "1", Title: "_"},
		{Type: "section", N: "A", Title: "_"},
		{Type: "chapter", N: "1", Title: "_"},
	}, res.Paragraphs[0].Context)
	assert.Equal(t, []Binding{
		{Type: "book", N: "1", Title: "_"},
		{Type: "section", N: "B", Title: "_"},
	}, res.Paragraphs[1].Context)

	at := indexOf(res.Dependency, "# sent_id = s2")
	require.GreaterOrEqual(t, at, 0)
	second := strings.Join(res.Dependency[at:], "\n")
	assert.NotContains(t, second, "# chapter")
	assert.Contains(t, second, "# section = B")
	assertBalanced(t, res.Flat)
}

func indexOf(lines []string, want string) int {
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	return -1
}

func TestDivTypeFallsBackToTagName(t *testing.T) {
	res := convert(t, `<div type="book"><div1 n="3"><div2><p>x</p></div2></div1><div type="chapter"/></div>`, segment.Paragraph)
	assert.Equal(t, []string{"book", "chapter", "div1", "div2", "p"}, res.Types)
	assert.Contains(t, res.Flat, `<div1 n="3" title="_">`)
	assert.Contains(t, res.Flat, `<div2 n="_" title="_">`)
	assertBalanced(t, res.Flat)
}

func TestEmptyChapter(t *testing.T) {
	res := convert(t, `<div type="book" n="1"><div type="chapter" n="9"><head>only head</head></div></div>`, segment.Paragraph)
	assert.Equal(t, []string{
		`<book n="1" title="_">`,
		`<chapter n="9" title="_">`,
		`</chapter>`,
		``,
		`</book>`,
		``,
	}, res.Flat)
	assert.Empty(t, res.Dependency)
}

func TestPagesTrackedAndRetrofitted(t *testing.T) {
	res := convert(t, `<div type="book"><p><pb n="12"/>قال له <pb n="13"/>نعم</p><p>بعد</p></div>`, segment.Paragraph)

	assert.Contains(t, res.Flat, `<p translation="_" pages="12,13">`)
	assert.Contains(t, res.Flat, `<s pages="12,13">`)
	assert.True(t, res.ParagraphPages)

	rows := tokenLines(res.Flat)
	require.Len(t, rows, 4)
	assert.Equal(t, "12", rows[0][5])
	assert.Equal(t, "12", rows[1][5])
	assert.Equal(t, "13", rows[2][5])
	assert.Equal(t, "_", rows[3][5], "page resets for each paragraph")
	for _, r := range rows {
		assert.Len(t, r, 6)
	}

	assert.Contains(t, res.Dependency, `# pages = "12,13"`)
	assert.Contains(t, res.Dependency, "3\tنعم\tنعم\t_\tPage=13")
	assert.Equal(t, 2, res.Stats.Pages)
}

func TestPunctuationPolicy(t *testing.T) {
	res := convert(t, `
<div type="book">
  <p>الف. باء<pb n="4"/> جيم؟ دال</p>
  <p>هاء!</p>
</div>`, segment.Punctuation)

	var ids []string
	for _, l := range res.Dependency {
		if strings.HasPrefix(l, "# sent_id = ") {
			ids = append(ids, strings.TrimPrefix(l, "# sent_id = "))
		}
	}
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, ids)

	assert.Equal(t, 4, res.Stats.Sentences)
	require.Len(t, res.Paragraphs[0].Sentences, 3)
	assert.Equal(t, []string{"4"}, res.Paragraphs[0].Sentences[1].Pages)
	assert.Equal(t, []string{}, res.Paragraphs[0].Sentences[2].Pages)
	assert.Equal(t, "4", res.Paragraphs[0].Sentences[2].Tokens[0].Page, "page carries across sentences in a paragraph")
	assert.Equal(t, []string{"4"}, res.Paragraphs[0].Pages)
	assertBalanced(t, res.Flat)
}

func TestSentenceIDsAcrossBooks(t *testing.T) {
	res := convert(t, `
<div type="book" n="1"><p>a</p><p>b</p></div>
<div type="book" n="2"><div type="chapter"><p>c</p></div></div>`, segment.Paragraph)

	var ids []string
	for _, l := range res.Dependency {
		if strings.HasPrefix(l, "# sent_id = ") {
			ids = append(ids, strings.TrimPrefix(l, "# sent_id = "))
		}
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)
	assert.Equal(t, 2, res.Stats.Books)
	assert.Equal(t, 3, res.Paragraphs[2].ID)
}

func TestTermAnnotationsInOutputs(t *testing.T) {
	res := convert(t, `<div type="book"><p><persName role="witness">زيد</persName> في <term type="place" translation="Mecca, Makkah">مكة</term></p></div>`, segment.Paragraph)

	rows := tokenLines(res.Flat)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"مكة", "_", "مكة", "place", "Mecca;Makkah", "_"}, rows[2])

	assert.Contains(t, res.Dependency, "1\tزيد\tزيد\t_\tRole=witness")
	assert.Contains(t, res.Dependency, "2\tفي\tفي\t_\t_")
	assert.Contains(t, res.Dependency, "3\tمكة\tمكة\t_\tTermType=place|TermTranslation=Mecca;Makkah")

	tok := res.Paragraphs[0].Sentences[0].Tokens[2]
	assert.Equal(t, []string{"Mecca", "Makkah"}, tok.TermTranslation)
	assert.Equal(t, map[string]int{"place": 1}, res.Stats.TermTypes)
	assert.Equal(t, map[string]int{"witness": 1}, res.Stats.Roles)
}

func TestHiRelabelKeepsText(t *testing.T) {
	res := convert(t, `<div type="book"><p>قال <hi rend="red">الشيخ</hi></p></div>`, segment.Paragraph)
	assert.Len(t, tokenLines(res.Flat), 2)
}

func TestNoBooks(t *testing.T) {
	res := convert(t, `<div type="chapter"><p>x</p></div>`, segment.Paragraph)
	assert.Empty(t, res.Flat)
	assert.Empty(t, res.Types)
}

func TestContextWithIsCopyOnWrite(t *testing.T) {
	base := Context{}.With(Binding{Type: "book", N: "1"})
	a := base.With(Binding{Type: "chapter", N: "1"})
	b := base.With(Binding{Type: "chapter", N: "2"})
	replaced := a.With(Binding{Type: "book", N: "9"})

	assert.Equal(t, 1, base.Len())
	ca, _ := a.Lookup("chapter")
	cb, _ := b.Lookup("chapter")
	assert.Equal(t, "1", ca.N)
	assert.Equal(t, "2", cb.N)

	assert.Equal(t, []Binding{{Type: "book", N: "9"}, {Type: "chapter", N: "1"}}, replaced.Bindings())
	bk, _ := a.Lookup("book")
	assert.Equal(t, "1", bk.N)
	_, ok := base.Lookup("chapter")
	assert.False(t, ok)
}
