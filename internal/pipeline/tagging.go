package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/diccas/internal/config"
	"github.com/dgallion1/diccas/internal/metrics"
	"github.com/dgallion1/diccas/internal/tagger"
)

// Tagging is the tagger assembled from configuration.
type Tagging struct {
	Tagger tagger.Tagger
	// Stats is set only for the HTTP tagger.
	Stats *tagger.LatencyStats
	http  *tagger.HTTPTagger
}

// Close releases the HTTP tagger's idle connections.
func (t *Tagging) Close() {
	if t.http != nil {
		t.http.Close()
	}
}

// NewTagging builds the configured tagger, wrapped in an LRU cache when
// cfg.CacheSize > 0. m may be nil.
func NewTagging(cfg config.TaggerConfig, m *metrics.Metrics, log *slog.Logger) (*Tagging, error) {
	t := &Tagging{}
	switch cfg.Kind {
	case config.TaggerRule, "":
		t.Tagger = &tagger.Rule{}
	case config.TaggerLexicon:
		lex, err := tagger.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
		log.Info("lexicon loaded", "path", cfg.LexiconPath, "entries", len(lex))
		t.Tagger = &tagger.Rule{Lexicon: lex}
	case config.TaggerHTTP:
		t.Stats = tagger.NewLatencyStats(cfg.StatsWindow)
		opts := []tagger.HTTPOption{
			tagger.WithTimeout(cfg.Timeout),
			tagger.WithStats(t.Stats),
			tagger.WithLogger(log),
		}
		if m != nil {
			opts = append(opts, tagger.WithObserver(m.ObserveTagger))
		}
		t.http = tagger.NewHTTPTagger(cfg.URL, opts...)
		t.Tagger = t.http
	default:
		return nil, fmt.Errorf("unknown tagger kind %q", cfg.Kind)
	}

	if cfg.CacheSize > 0 {
		cached, err := tagger.NewCached(t.Tagger, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		t.Tagger = cached
	}
	return t, nil
}
