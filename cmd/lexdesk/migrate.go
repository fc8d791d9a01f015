package main

import (
	"lexdesk/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := openDatabase(); err != nil {
				return err
			}
			defer db.Close()
			zap.S().Info("Schema is up to date")
			return nil
		},
	}
}
