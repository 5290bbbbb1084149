package main

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fontd/internal/common/fsutil"
	"fontd/internal/fontmeta"
	"fontd/internal/variant"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var (
		weight int
		style  string
		out    string
		force  bool
	)
	cmd := &cobra.Command{
		Use:     "fetch FAMILY",
		Short:   "Download the outline payload nearest to a weight and style",
		Example: "  fontd fetch Roboto --weight 700 --style italic -o roboto.ttf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			st, err := variant.ParseStyle(style)
			if err != nil {
				return err
			}
			c := build(cfg, nil, log)
			defer c.mgr.Close()

			family := args[0]
			e, err := c.mgr.Binary(cmd.Context(), family, weight, st)
			if err != nil {
				return err
			}
			target := out
			if target == "" {
				target = defaultFileName(family, e.Variant, e.URL)
			}
			if !force && fsutil.PathExists(target) {
				return fmt.Errorf("%s exists (use --force to overwrite)", target)
			}
			if err := fsutil.WriteFileAtomic(target, e.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			name := fontmeta.PostScriptName(e.Data, family, e.Variant)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\t%s\n", target, name, len(e.Data), e.Variant)
			return nil
		},
	}
	cmd.Flags().IntVar(&weight, "weight", 400, "Requested weight (100-900)")
	cmd.Flags().StringVar(&style, "style", "normal", "Requested style: normal|italic")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing output file")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (defaults to <Family>-<variant><ext> in the working directory)")
	return cmd
}

// defaultFileName names a payload after its family and resolved variant, keeping
// the extension of the source URL.
func defaultFileName(family string, k variant.Key, url string) string {
	ext := path.Ext(strings.SplitN(url, "?", 2)[0])
	if ext == "" {
		ext = ".ttf"
	}
	base := strings.ReplaceAll(family, " ", "") + "-" + variant.Token(k) + ext
	return filepath.Clean(base)
}
