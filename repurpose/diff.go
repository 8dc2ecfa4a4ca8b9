package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"repurpose.znkr.io/repurpose/diff"
	"repurpose.znkr.io/repurpose/highlight"
	"repurpose.znkr.io/repurpose/server"
	"repurpose.znkr.io/repurpose/tokens"
)

func diffCmd() *cobra.Command {
	var (
		format, tokenizer, algorithm, out string
		literal, noAutoJunk               bool
	)
	cmd := &cobra.Command{
		Use:   "diff ORIGINAL REVISED",
		Short: "Compare two texts word by word",
		Long: "Compare two texts word by word. ORIGINAL and REVISED are file names, or the texts " +
			"themselves with --strings.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, revised := args[0], args[1]
			if !literal {
				a, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading original: %v", err)
				}
				b, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("reading revised: %v", err)
				}
				original, revised = string(a), string(b)
			}

			tokenize, err := tokens.ByName(tokenizer)
			if err != nil {
				return err
			}
			alg, err := diff.ByName(algorithm)
			if err != nil {
				return err
			}
			c := highlight.Compare(original, revised,
				highlight.WithTokenizer(tokenize),
				highlight.WithDiffOptions(alg, diff.AutoJunk(!noAutoJunk)),
			)

			if out != "" {
				title := "Diff"
				if !literal {
					title = args[0] + " → " + args[1]
				}
				b, err := server.DiffPage(title, c)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("writing page: %v", err)
				}
				return nil
			}

			w := cmd.OutOrStdout()
			switch format {
			case "text":
				fmt.Fprintln(w, highlight.Text(c.Spans))
			case "html":
				fmt.Fprintln(w, highlight.HTML(c.Spans))
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Spans      []highlight.Span `json:"spans"`
					Opcodes    []diff.Opcode    `json:"opcodes"`
					Similarity float64          `json:"similarity"`
				}{c.Spans, c.Opcodes, c.Similarity()})
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, html or json")
	cmd.Flags().StringVar(&tokenizer, "tokenizer", tokens.NameSplit, "tokenizer: split or uax29")
	cmd.Flags().StringVar(&algorithm, "algorithm", diff.NameGreedy, "alignment algorithm: greedy or myers")
	cmd.Flags().BoolVar(&literal, "strings", false, "treat ORIGINAL and REVISED as texts instead of file names")
	cmd.Flags().BoolVar(&noAutoJunk, "no-autojunk", false, "don't ignore very frequent tokens in long texts (greedy only)")
	cmd.Flags().StringVar(&out, "out", "", "write a standalone HTML page to this file instead")
	return cmd
}
