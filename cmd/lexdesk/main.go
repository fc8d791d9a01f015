package main

import (
	"fmt"
	"lexdesk/config"
	"lexdesk/db"
	"lexdesk/logging"
	"lexdesk/models"
	"lexdesk/services/autoreply"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lexdesk",
		Short:         "LexDesk case messaging, auto-replies and notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateParticipantCommand(),
		newRulesCommand(),
		newPreviewCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDatabase loads configuration, installs the logger and connects to the
// database with migrations applied.
func openDatabase() (*config.Config, error) {
	cfg := config.Load()
	logging.New(cfg.Environment)

	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		db.Close()
		return nil, err
	}
	return cfg, nil
}

// loadRules reads the configured rule table, or the built-in one.
func loadRules(path string) (*autoreply.RuleTable, error) {
	if path == "" {
		return autoreply.DefaultRules(), nil
	}
	return autoreply.LoadRules(path)
}
