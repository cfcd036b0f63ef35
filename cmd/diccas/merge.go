package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/diccas/internal/vert"
)

func newMergeCmd(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge VERT CONLLU",
		Short: "Append lemma and UPOS from an annotated CoNLL-U file to each vertical token line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := os.Open(args[1])
			if err != nil {
				return err
			}
			anns, err := vert.ReadAnnotations(cf)
			cf.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			vf, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer vf.Close()

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(out)
			res, err := vert.Merge(vf, anns, bw)
			if err == nil {
				err = bw.Flush()
			}
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("merge %s: %w", args[0], err)
			}

			if n := res.Unused(); n > 0 {
				root.log.Warn("annotation rows left over", "unused", n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d tokens into %s\n", res.Tokens, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "corpus_DiCCAS_merged.vert", "merged output file")
	return cmd
}
