package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/diccas/internal/walker"
)

// Policy selects how a paragraph's token stream is cut into sentences.
type Policy string

const (
	// Paragraph makes every paragraph exactly one sentence.
	Paragraph Policy = "paragraph"
	// Punctuation ends a sentence after each '.', '؟' or '!' token.
	Punctuation Policy = "punctuation"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognised names.
var ErrUnknownPolicy = errors.New("unknown sentence policy")

// ParsePolicy resolves a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Paragraph, Punctuation:
		return p, nil
	case "":
		return Paragraph, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

var terminators = map[string]bool{".": true, "؟": true, "!": true}

// IsTerminator reports whether a token form ends a sentence under Punctuation.
func IsTerminator(form string) bool {
	return terminators[form]
}

// Split cuts tokens into sentences. Every returned sentence holds at least
// one word token. Page markers stay in order; markers left after the final
// boundary are appended to the last sentence. A stream without words yields nil.
func Split(tokens []walker.Token, p Policy) [][]walker.Token {
	var (
		out   [][]walker.Token
		cur   []walker.Token
		words int
	)
	for _, tok := range tokens {
		cur = append(cur, tok)
		if tok.Kind != walker.Word {
			continue
		}
		words++
		if p == Punctuation && IsTerminator(tok.Form) {
			out = append(out, cur)
			cur, words = nil, 0
		}
	}
	switch {
	case words > 0:
		out = append(out, cur)
	case len(cur) > 0 && len(out) > 0:
		out[len(out)-1] = append(out[len(out)-1], cur...)
	}
	return out
}
