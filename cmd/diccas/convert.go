package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/diccas/internal/config"
	"github.com/dgallion1/diccas/internal/normalize"
	"github.com/dgallion1/diccas/internal/pipeline"
	"github.com/dgallion1/diccas/internal/walker"
	"github.com/dgallion1/diccas/internal/writer"
)

func newConvertCmd(root *rootOptions) *cobra.Command {
	var (
		outDir    string
		name      string
		policy    string
		kind      string
		lexicon   string
		taggerURL string
	)
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert one TEI file into every output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *root.cfg
			flags := cmd.Flags()
			if flags.Changed("out-dir") {
				cfg.Output.Dir = outDir
			}
			if flags.Changed("name") {
				cfg.Output.Name = name
			}
			if flags.Changed("split-policy") {
				cfg.SplitPolicy = policy
			}
			if flags.Changed("tagger") {
				cfg.Tagger.Kind = kind
			}
			if flags.Changed("lexicon") {
				cfg.Tagger.LexiconPath = lexicon
				if !flags.Changed("tagger") {
					cfg.Tagger.Kind = config.TaggerLexicon
				}
			}
			if flags.Changed("tagger-url") {
				cfg.Tagger.URL = taggerURL
				if !flags.Changed("tagger") {
					cfg.Tagger.Kind = config.TaggerHTTP
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			tagging, err := pipeline.NewTagging(cfg.Tagger, nil, root.log)
			if err != nil {
				return err
			}
			defer tagging.Close()

			w := walker.New(normalize.New(cfg.Normalize.ToOptions()), tagging.Tagger)
			conv := pipeline.NewConverter(w, cfg.Policy(), root.log)
			res, files, err := conv.ConvertFile(cmd.Context(), args[0], cfg.Output.Dir, cfg.Output.Name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, k := range writer.Kinds {
				if p, ok := files[k]; ok {
					fmt.Fprintf(out, "%-7s %s\n", k, p)
				}
			}
			fmt.Fprintf(out, "%d books, %d paragraphs, %d sentences, %d tokens\n",
				res.Stats.Books, res.Stats.Paragraphs, res.Stats.Sentences, res.Stats.Tokens)
			if tagging.Stats != nil {
				snap := tagging.Stats.Snapshot()
				fmt.Fprintf(out, "tagger: %d requests, %d failures, p95 %.0fms\n", snap.Requests, snap.Failures, snap.P95Ms)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "output directory")
	cmd.Flags().StringVarP(&name, "name", "n", "", "output file basename")
	cmd.Flags().StringVar(&policy, "split-policy", "", "sentence policy: paragraph or punctuation")
	cmd.Flags().StringVar(&kind, "tagger", "", "tagger: rule, lexicon or http")
	cmd.Flags().StringVar(&lexicon, "lexicon", "", "form/lemma/pos TSV lexicon (implies --tagger lexicon)")
	cmd.Flags().StringVar(&taggerURL, "tagger-url", "", "disambiguation service URL (implies --tagger http)")
	return cmd
}
