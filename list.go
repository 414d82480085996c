package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/snapgen/snapgen/internal/scaffold"
)

func newListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered scaffold kinds",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, _, err := opts.loadRuntime()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(stdOut, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tSTABILITY\tLANGUAGE\tENABLED\tDIRECTORY\tDESCRIPTION")
			for _, meta := range scaffold.List() {
				dir := cfg.EffectiveDirectory(meta, "")
				if dir == "" {
					dir = "."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
					meta.Key, meta.Stability, meta.Language, cfg.KindEnabled(meta.Key), dir, meta.Description)
			}
			return w.Flush()
		},
	}
}
