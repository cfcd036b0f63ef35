package vrt

// TokenRecord is the JSON form of one token.
type TokenRecord struct {
	Form            string   `json:"form"`
	POS             string   `json:"pos"`
	Lemma           string   `json:"lemma"`
	Role            string   `json:"role"`
	TermType        string   `json:"term_type"`
	TermTranslation []string `json:"term_translation"`
	Page            string   `json:"page"`
}

// SentenceRecord is the JSON form of one sentence.
type SentenceRecord struct {
	ID     string        `json:"id"`
	Pages  []string      `json:"pages"`
	Tokens []TokenRecord `json:"tokens"`
}

// ParagraphRecord is one line of the JSON output.
type ParagraphRecord struct {
	ID          int              `json:"id"`
	Context     []Binding        `json:"context"`
	Translation string           `json:"translation"`
	Pages       []string         `json:"pages"`
	Sentences   []SentenceRecord `json:"sentences"`
}

// Stats summarises a conversion run.
type Stats struct {
	Books      int            `json:"books"`
	Divisions  map[string]int `json:"divisions"`
	Paragraphs int            `json:"paragraphs"`
	Sentences  int            `json:"sentences"`
	Tokens     int            `json:"tokens"`
	Pages      int            `json:"pages"`
	TermTypes  map[string]int `json:"term_types"`
	Roles      map[string]int `json:"roles"`
	Recovered  bool           `json:"recovered"`
}

func newStats() Stats {
	return Stats{
		Divisions: make(map[string]int),
		TermTypes: make(map[string]int),
		Roles:     make(map[string]int),
	}
}
