// Package cli implements the curator command line
package cli

import (
	"os"

	"curator/internal/core/version"
	"curator/internal/platform/logger"

	"github.com/spf13/cobra"
)

// Globals are the persistent flags shared by every subcommand
type Globals struct {
	Store     string
	Fixture   string
	LogLevel  string
	LogFormat string
}

// NewRootCommand builds the curator command tree
func NewRootCommand() *cobra.Command {
	g := &Globals{}

	cmd := &cobra.Command{
		Use:           "curator",
		Short:         "Keep derived analyses of catalog entities up to date",
		Version:       version.Info().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// flags win over env; pushed into env so config readers see one source
			setEnv("CURATOR_FIXTURE", g.Fixture)
			setEnv("LOG_LEVEL", g.LogLevel)
			setEnv("LOG_FORMAT", g.LogFormat)
			opt := logger.FromEnv()
			opt.Writer = cmd.ErrOrStderr()
			logger.Init(opt)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.Store, "store", "", "catalog backend: memory, sqlite or pg (default $CURATOR_STORE or memory)")
	pf.StringVar(&g.Fixture, "fixture", "", "yaml catalog fixture to seed (default $CURATOR_FIXTURE)")
	pf.StringVar(&g.LogLevel, "log-level", "", "log level (default $LOG_LEVEL or info)")
	pf.StringVar(&g.LogFormat, "log-format", "", "console or json (default $LOG_FORMAT or console)")

	cmd.AddCommand(
		newRunCommand(g),
		newBrowseCommand(g),
		newEventsCommand(g),
		newServeCommand(g),
	)
	return cmd
}

func setEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}
