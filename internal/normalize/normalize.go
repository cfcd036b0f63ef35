// Package normalize strips Arabic diacritics and presentation marks from
// text before tokenization, and cleans attribute values (titles,
// translations, page numbers) before they are written to any output.
//
// All functions are pure and safe for concurrent use.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"
)

const tatweel = 'ـ'

var (
	smallLetters = map[rune]bool{'ۥ': true, 'ۦ': true}
	quranicSigns = map[rune]bool{'۝': true, '۞': true, '۩': true, '࣢': true}
)

// quoteSet lists every quote-like character folded to ASCII apostrophe in
// attribute values.
const quoteSet = "\"'‘’“”«»‹›„‟‚‛＂＇`´ˈʹˋˮ"

// Options selects the optional removals. Combining marks (Mn, Me) are
// always removed, which covers most ARABIC SMALL HIGH code points;
// RemoveSmallLetters governs the spacing small letters that remain.
type Options struct {
	RemoveTatweel      bool
	RemoveSuperSubs    bool
	RemoveSmallLetters bool
	RemoveQuranicSigns bool

	// FoldCompatibility decomposes compatibility characters (Arabic
	// presentation forms, ligatures) to their base letters.
	FoldCompatibility bool
}

// DefaultOptions enables every removal.
func DefaultOptions() Options {
	return Options{
		RemoveTatweel:      true,
		RemoveSuperSubs:    true,
		RemoveSmallLetters: true,
		RemoveQuranicSigns: true,
		FoldCompatibility:  true,
	}
}

// Normalizer applies Options to text. The zero value removes only combining marks.
type Normalizer struct {
	opts Options
}

func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Text decomposes s, drops the selected characters, recomposes, and
// collapses whitespace runs to single spaces. Text(Text(s)) == Text(s).
//
// Removal runs on both sides of the decomposition: before it so that
// superscripts are not folded into plain digits, after it for the marks
// that precomposed letters carry.
func (n *Normalizer) Text(s string) string {
	decompose := norm.NFD
	if n.opts.FoldCompatibility {
		decompose = norm.NFKD
	}
	drop := runes.Predicate(n.drop)
	// transform.Chain is not reentrant, so build one per call.
	t := transform.Chain(runes.Remove(drop), decompose, runes.Remove(drop), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return collapse(out)
}

func (n *Normalizer) drop(r rune) bool {
	if unicode.In(r, unicode.Mn, unicode.Me) {
		return true
	}
	if n.opts.RemoveTatweel && r == tatweel {
		return true
	}
	if n.opts.RemoveSuperSubs && r >= 0x2070 && r <= 0x209F {
		return true
	}
	if n.opts.RemoveSmallLetters && (smallLetters[r] || isArabicSmall(r)) {
		return true
	}
	if n.opts.RemoveQuranicSigns && quranicSigns[r] {
		return true
	}
	return false
}

func isArabicSmall(r rune) bool {
	if !unicode.Is(unicode.Arabic, r) {
		return false
	}
	return strings.HasPrefix(runenames.Name(r), "ARABIC SMALL ")
}

// Attribute cleans a title or translation value: whitespace collapsed,
// every quote-like character folded to an apostrophe, "_" when empty.
func Attribute(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(quoteSet, r) {
			return '\''
		}
		return r
	}, s)
	s = collapse(s)
	if s == "" {
		return "_"
	}
	return s
}

// Page canonicalises a page-break number. Values made only of decimal
// digits in any script are rewritten as ASCII digits with leading zeros
// stripped; anything else is returned trimmed. Empty values become "_".
func Page(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range s {
		d := digitValue(r)
		if d < 0 {
			return s
		}
		if d == 0 && b.Len() == 0 {
			continue
		}
		b.WriteByte(byte('0' + d))
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

// digitValue returns the value of a decimal digit rune, or -1. Every Nd
// range starts at a zero and spans whole blocks of ten.
func digitValue(r rune) int {
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10
		}
	}
	return -1
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
