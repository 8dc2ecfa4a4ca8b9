package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"repurpose.znkr.io/repurpose/rewrite"
)

func rewriteCmd() *cobra.Command {
	var (
		req     rewrite.Request
		catalog string
	)
	cmd := &cobra.Command{
		Use:   "rewrite FILE",
		Short: "Rewrite the text in FILE (- for stdin) and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				text []byte
				err  error
			)
			if args[0] == "-" {
				text, err = io.ReadAll(cmd.InOrStdin())
			} else {
				text, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading text: %v", err)
			}
			req.Text = string(text)

			cat, err := loadCatalog(catalog)
			if err != nil {
				return fmt.Errorf("loading catalog: %v", err)
			}
			if req.Major == "" {
				req.Major = cat.MajorOf(req.Minor)
			}
			c, err := rewrite.OpenAIFromEnv()
			if err != nil {
				return err
			}

			s := &rewrite.Service{Catalog: cat, Completer: c}
			res, err := s.Rewrite(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Major, "major", "", "major purpose (default: derived from --minor)")
	f.StringVar(&req.Minor, "minor", "", "minor purpose, e.g., Email")
	f.StringVar(&req.Tone, "tone", "", "tone")
	f.StringVar(&req.Style, "style", "", "style")
	f.StringVar(&req.Audience, "audience", "", "audience")
	f.StringVar(&req.Persona, "persona", "", "who is writing")
	f.StringVar(&req.Length, "length", "", "length preset (default: first preset of the catalog)")
	f.StringVar(&req.Intensity, "intensity", "", "edit intensity preset (default: first preset of the catalog)")
	f.BoolVar(&req.Expand, "expand", false, "also expand the content for the purpose")
	f.StringVar(&req.Model, "model", "", "model (default: first model of the catalog)")
	f.Float64Var(&req.Temperature, "temperature", rewrite.DefaultTemperature, "creativity between 0 and 1")
	f.StringVar(&catalog, "catalog", "", "purpose catalog file (default: built-in catalog)")
	cmd.MarkFlagRequired("minor")
	return cmd
}
