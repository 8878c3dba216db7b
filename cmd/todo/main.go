// The todo program is a scriptable command line interface to Todoist. Each invocation loads the state saved in
// lib/todoist, performs remote operations, mirrors their results locally and saves the state again, also after a
// failure, so that a running acme interface (cmd/todoist) picks the changes up.
package main // import "github.com/nicolagi/todoist-rest/cmd/todo"

import (
	"context"
	"fmt"
	"os"

	todoist "github.com/nicolagi/todoist-rest"
	"github.com/nicolagi/todoist-rest/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	outputFmt  string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	client *todoist.Client
)

var rootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "Manage Todoist projects and tasks",
	Long:          `Add, list, edit, complete, move and delete Todoist projects and tasks from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		if noColor {
			disableColor()
		}
		switch outputFmt {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q, want text, json or yaml", outputFmt)
		}
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if client, err = cfg.NewClient(); err != nil {
			return err
		}
		if err := client.Load(cfg.StateDir); err != nil && !os.IsNotExist(err) {
			log.WithField("cause", err).Warning("Could not load local data, starting empty")
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default ~/lib/todoist/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log API calls")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// execute runs the command line and then saves the local state, also when the command failed: a command acting on
// several tasks may have completed some remote changes before failing.
func execute(ctx context.Context) error {
	cfg, client = nil, nil
	err := rootCmd.ExecuteContext(ctx)
	if client == nil {
		return err
	}
	if dumpErr := client.Dump(cfg.StateDir); dumpErr != nil {
		dumpErr = fmt.Errorf("saving state: %w", dumpErr)
		if err == nil {
			return dumpErr
		}
		log.WithField("cause", dumpErr).Error("Could not save local data")
	}
	return err
}

func main() {
	if err := execute(context.Background()); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
