package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/diccas/internal/vert"
	"github.com/dgallion1/diccas/internal/writer"
)

func newVert2JSONCmd(root *rootOptions) *cobra.Command {
	var (
		outDir string
		merged bool
	)
	cmd := &cobra.Command{
		Use:   "vert2json VERT",
		Short: "Rebuild paragraph JSON and the term tag index from a vertical file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := vert.TokenColumns
			if merged {
				columns = vert.MergedColumns
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			paras, err := vert.ReadParagraphs(f, columns)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			paraPath := filepath.Join(outDir, "DiCCAS_paragraphs.json")
			if err := writeFile(paraPath, func(f *os.File) error {
				return writer.WriteJSONLines(f, paras)
			}); err != nil {
				return err
			}

			idx := vert.BuildTagIndex(paras)
			tagPath := filepath.Join(outDir, "DiCCAS_tags.json")
			if err := writeFile(tagPath, func(f *os.File) error {
				enc := json.NewEncoder(f)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(idx)
			}); err != nil {
				return err
			}

			root.log.Info("vert2json done", "paragraphs", len(paras), "tag_types", len(idx))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", paraPath, tagPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "data", "output directory")
	cmd.Flags().BoolVar(&merged, "merged", false, "input carries the two merged annotation columns")
	return cmd
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
