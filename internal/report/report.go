// Package report summarises a conversion run as Markdown and renders it to
// HTML for the service's report page.
package report

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/diccas/internal/vrt"
)

// Write renders the Markdown report for res.
func Write(w io.Writer, name string, res *vrt.Result) error {
	_, err := io.WriteString(w, Markdown(name, res))
	return err
}

// Markdown builds the report text.
func Markdown(name string, res *vrt.Result) string {
	st := res.Stats
	var b strings.Builder

	fmt.Fprintf(&b, "# Corpus report: %s\n\n", escape(name))
	if st.Recovered {
		b.WriteString("> The source was not well-formed XML. The tree was recovered leniently; check the output against the source.\n\n")
	}

	b.WriteString("| Measure | Count |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Books | %d |\n", st.Books)
	fmt.Fprintf(&b, "| Paragraphs | %d |\n", st.Paragraphs)
	fmt.Fprintf(&b, "| Sentences | %d |\n", st.Sentences)
	fmt.Fprintf(&b, "| Tokens | %d |\n", st.Tokens)
	fmt.Fprintf(&b, "| Distinct pages | %d |\n", st.Pages)
	b.WriteString("\n")

	table(&b, "Structural types", "Type", st.Divisions)
	table(&b, "Term types", "Term type", st.TermTypes)
	table(&b, "Speaker roles", "Role", st.Roles)
	return b.String()
}

func table(b *strings.Builder, title, col string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n| %s | Count |\n|---|---:|\n", title, col)
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(b, "| %s | %d |\n", escape(k), counts[k])
	}
	b.WriteString("\n")
}

var cellEscaper = strings.NewReplacer("|", `\|`, "<", "&lt;", ">", "&gt;")

func escape(s string) string { return cellEscaper.Replace(s) }

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts report Markdown to an HTML fragment.
func RenderHTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
