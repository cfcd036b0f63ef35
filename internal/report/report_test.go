package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/diccas/internal/vrt"
)

func sampleResult() *vrt.Result {
	return &vrt.Result{Stats: vrt.Stats{
		Books:      1,
		Paragraphs: 2,
		Sentences:  3,
		Tokens:     40,
		Pages:      2,
		Divisions:  map[string]int{"book": 1, "chapter": 2},
		TermTypes:  map[string]int{"place": 4, "catastrophe": 1},
		Roles:      map[string]int{},
		Recovered:  true,
	}}
}

func TestMarkdown(t *testing.T) {
	out := Markdown("corpus|x", sampleResult())
	assert.Contains(t, out, `# Corpus report: corpus\|x`)
	assert.Contains(t, out, "| Tokens | 40 |")
	assert.Contains(t, out, "not well-formed")
	assert.Less(t, strings.Index(out, "| catastrophe | 1 |"), strings.Index(out, "| place | 4 |"))
	assert.NotContains(t, out, "Speaker roles", "empty tables are omitted")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML([]byte(Markdown("c", sampleResult())))
	require.NoError(t, err)
	s := string(html)
	assert.Contains(t, s, "<h1>Corpus report: c</h1>")
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<td>chapter</td>")
}
