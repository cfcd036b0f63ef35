package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextStripsDiacritics(t *testing.T) {
	n := New(DefaultOptions())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fatha kasra shadda", "كَتَبَ مُحَمَّدٌ", "كتب محمد"},
		{"tatweel", "كـــتب", "كتب"},
		{"alef madda decomposes", "آمن", "امن"},
		{"small high letters", "ذٰلِكَ", "ذلك"},
		{"small waw", "داوۥد", "داود"},
		{"quranic sign", "الله ۞ اكبر", "الله اكبر"},
		{"superscript", "x⁴ₙ", "x"},
		{"presentation forms", "ﻻ", "لا"},
		{"whitespace collapsed", "  قال \n\t لي  ", "قال لي"},
		{"latin untouched", "Mecca", "Mecca"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Text(tt.in))
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	n := New(DefaultOptions())
	inputs := []string{
		"بِسْمِ ٱللَّهِ ٱلرَّحْمَٰنِ ٱلرَّحِيمِ",
		"ﻵ ﷲ ﷺ",
		"قـَالَ ۝١ ²₃",
		"é ñ ü",
	}
	for _, in := range inputs {
		once := n.Text(in)
		assert.Equal(t, once, n.Text(once), "input %q", in)
	}
}

func TestTextOptionalRemovalsDisabled(t *testing.T) {
	n := New(Options{})
	assert.Equal(t, "كـتب", n.Text("كـتَب"))
	assert.Equal(t, "الله ۞", n.Text("الله ۞"))
	assert.Equal(t, "x²", n.Text("x²"))
	assert.Equal(t, "داوۥد", n.Text("داوۥد"), "spacing small letters kept")
	assert.Equal(t, "ذلك", n.Text("ذٰلِكَ"), "small high marks are combining and always go")
}

func TestAttribute(t *testing.T) {
	assert.Equal(t, "the 'Book' of x", Attribute("the “Book” of \n x"))
	assert.Equal(t, "it's 'fine'", Attribute(`it’s "fine"`))
	assert.Equal(t, "'a'", Attribute("«a»"))
	assert.Equal(t, "_", Attribute("   "))
}

func TestPage(t *testing.T) {
	assert.Equal(t, "12", Page("12"))
	assert.Equal(t, "12", Page("١٢"))
	assert.Equal(t, "305", Page("۳۰۵"))
	assert.Equal(t, "7", Page(" 007 "))
	assert.Equal(t, "12a", Page("12a"))
	assert.Equal(t, "_", Page(""))
	assert.Equal(t, "0", Page("000"))
	assert.Equal(t, "99999999999999999999999", Page("99999999999999999999999"))
	assert.Equal(t, "12000000000000000000000", Page(" ٠١٢٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠٠ "))
}
