// Package cli wires configuration, the pipeline and the export sinks behind
// the survey-features command line.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

// NewRootCmd builds the command tree. A fresh tree is built per invocation so
// flag state never leaks between runs.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:     "survey-features",
		Version: version,
		Short:   "Turn developer-survey exports into an encoded feature matrix",
		Long: `survey-features reads yearly developer-survey exports, keeps respondents in
data roles with a reported salary, one-hot encodes the manifest columns and
writes a single matrix with the salary as its label column.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file overlaid on the environment")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(g))
	root.AddCommand(newManifestCmd(g))
	return root
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// Execute runs the command line against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
