package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/survey-features/internal/manifest"
)

func newManifestCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect and convert column manifests",
	}
	cmd.AddCommand(newManifestShowCmd(g))
	cmd.AddCommand(newManifestImportCmd())
	return cmd
}

func newManifestShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "List the columns of a manifest",
		Long: `List the columns of a manifest in order. Reserved columns, which are never
used as features, are marked. Without a path the configured manifest is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			path := cfg.Manifest.Path
			if len(args) > 0 {
				path = args[0]
			}
			m, err := manifest.Load(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d columns)\n", m.Source(), m.Len())
			for i, col := range m.Columns() {
				mark := ""
				if slices.Contains(cfg.Clean.ReservedColumns, col) {
					mark = "  (reserved)"
				}
				fmt.Fprintf(out, "%4d  %s%s\n", i+1, col, mark)
			}
			return nil
		},
	}
}

func newManifestImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <source> <database>",
		Short: "Store a manifest in a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := manifest.SaveSQLite(cmd.Context(), args[1], m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d columns into %s\n", m.Len(), args[1])
			return nil
		},
	}
}
