package config

import (
	"time"

	"github.com/dgallion1/diccas/internal/normalize"
)

// Config is the root configuration shared by the CLI and the server.
type Config struct {
	Port        string          `yaml:"port"         env:"PORT"           env-default:"8090"`
	APIKey      string          `yaml:"api_key"      env:"DICCAS_API_KEY"`
	SplitPolicy string          `yaml:"split_policy" env:"SPLIT_POLICY"   env-default:"paragraph"`
	Log         LogConfig       `yaml:"log"`
	Normalize   NormalizeConfig `yaml:"normalize"`
	Tagger      TaggerConfig    `yaml:"tagger"`
	Output      OutputConfig    `yaml:"output"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"   env:"WORKER_COUNT"   env-default:"4"`
	MaxQueueSize int `yaml:"max_queue_size" env:"MAX_QUEUE_SIZE" env-default:"100"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"52428800"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl" env:"JOB_TTL" env-default:"1h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// NormalizeConfig turns off individual character removals. All removals are
// on by default; the zero value keeps them on.
type NormalizeConfig struct {
	KeepTatweel            bool `yaml:"keep_tatweel"             env:"NORMALIZE_KEEP_TATWEEL"`
	KeepSuperSubs          bool `yaml:"keep_supersubs"           env:"NORMALIZE_KEEP_SUPERSUBS"`
	KeepSmallLetters       bool `yaml:"keep_small_letters"       env:"NORMALIZE_KEEP_SMALL_LETTERS"`
	KeepQuranicSigns       bool `yaml:"keep_quranic_signs"       env:"NORMALIZE_KEEP_QURANIC_SIGNS"`
	KeepCompatibilityForms bool `yaml:"keep_compatibility_forms" env:"NORMALIZE_KEEP_COMPATIBILITY_FORMS"`
}

// ToOptions converts to normalizer options.
func (n NormalizeConfig) ToOptions() normalize.Options {
	return normalize.Options{
		RemoveTatweel:      !n.KeepTatweel,
		RemoveSuperSubs:    !n.KeepSuperSubs,
		RemoveSmallLetters: !n.KeepSmallLetters,
		RemoveQuranicSigns: !n.KeepQuranicSigns,
		FoldCompatibility:  !n.KeepCompatibilityForms,
	}
}

// Tagger kinds.
const (
	TaggerRule    = "rule"
	TaggerLexicon = "lexicon"
	TaggerHTTP    = "http"
)

// TaggerConfig selects and configures the morphological tagger.
type TaggerConfig struct {
	Kind        string        `yaml:"kind"         env:"TAGGER_KIND"         env-default:"rule"`
	URL         string        `yaml:"url"          env:"TAGGER_URL"`
	LexiconPath string        `yaml:"lexicon_path" env:"TAGGER_LEXICON_PATH"`
	Timeout     time.Duration `yaml:"timeout"      env:"TAGGER_TIMEOUT"      env-default:"30s"`
	CacheSize   int           `yaml:"cache_size"   env:"TAGGER_CACHE_SIZE"   env-default:"4096"`
	StatsWindow time.Duration `yaml:"stats_window" env:"TAGGER_STATS_WINDOW" env-default:"1h"`
}

// OutputConfig names where converted files go.
type OutputConfig struct {
	Dir  string `yaml:"dir"  env:"OUTPUT_DIR"  env-default:"."`
	Name string `yaml:"name" env:"OUTPUT_NAME" env-default:"corpus_DiCCAS"`
}
