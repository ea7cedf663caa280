package cli

import (
	"fmt"
	"os"
	"strings"

	"cyberorganism/internal/config"
	"cyberorganism/internal/store"
	"cyberorganism/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	DataDir string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cyberorganism",
		Short:        "Terminal task organizer with a live suggestion feed",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Start the TUI; tasks.json lives in the data dir from config (default .)
  cyberorganism

  # Keep the task file somewhere specific
  cyberorganism --data-dir ~/notes
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", envOr("CYBERORGANISM_DATA_DIR", ""), "Directory holding tasks.json (overrides config)")

	return cmd
}

func runTUI(app *App) error {
	cfg, err := config.Load()
	if err != nil {
		// A bad config file is a warning: defaults and the remaining
		// layers still apply.
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	if app.DataDir != "" {
		cfg.Storage.DataDir = app.DataDir
	}

	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	return tui.Run(cfg, st)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
