package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fontd/internal/variant"
	"fontd/pkg/types"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "catalog [PREFIX]",
		Short:   "List catalog families and their variants",
		Example: "  fontd catalog --category serif\n  fontd catalog Rob --json",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			c := build(cfg, nil, log)
			defer c.mgr.Close()

			fams, err := c.mgr.Families(cmd.Context())
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			fams = filterFamilies(fams, prefix, category)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(types.FamiliesResponse{Families: fams})
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tCATEGORY\tVARIANTS")
			for _, f := range fams {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Family, f.Category, variantTokens(f.Variants))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list families in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

// filterFamilies keeps families whose name starts with prefix (case-insensitive)
// and whose category equals category when set.
func filterFamilies(in []types.Family, prefix, category string) []types.Family {
	prefix = strings.ToLower(prefix)
	out := in[:0:0]
	for _, f := range in {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(f.Family), prefix) {
			continue
		}
		if category != "" && !strings.EqualFold(f.Category, category) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func variantTokens(vs []types.Variant) string {
	toks := make([]string, 0, len(vs))
	for _, v := range vs {
		toks = append(toks, variant.Token(variant.Key{Weight: v.Weight, Style: variant.Style(v.Style)}))
	}
	return strings.Join(toks, ",")
}
