package main

import (
	"fmt"
	"lexdesk/db"
	"lexdesk/models"
	"lexdesk/services/i18n"
	"strings"

	"github.com/spf13/cobra"
)

func newCreateParticipantCommand() *cobra.Command {
	var user models.User
	var firmID string

	cmd := &cobra.Command{
		Use:   "create-participant",
		Short: "Register a client, lawyer, judge or admin",
		Args:  cobra.NoArgs,
		Example: `  lexdesk create-participant --name "Ana Client" --email ana@example.com --role client --language es
  lexdesk create-participant --name "Luis Lawyer" --email luis@rivera.law --role lawyer --firm <firm-id>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user.Name = strings.TrimSpace(user.Name)
			user.Email = strings.ToLower(strings.TrimSpace(user.Email))
			if user.Name == "" || user.Email == "" {
				return fmt.Errorf("--name and --email are required")
			}
			if !models.IsValidRole(user.Role) {
				return fmt.Errorf("invalid role %q", user.Role)
			}
			if user.Language != "" {
				user.Language = i18n.Normalize(user.Language, "")
				if user.Language == "" {
					return fmt.Errorf("unsupported language; use one of %v", i18n.SupportedLanguages)
				}
			}
			if firmID != "" {
				user.FirmID = &firmID
			}
			user.IsActive = true

			if _, err := openDatabase(); err != nil {
				return err
			}
			defer db.Close()

			var count int64
			if err := db.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("user with email %s already exists", user.Email)
			}
			if err := db.DB.Omit("Firm").Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create participant: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\nID: %s\n", user.Role, user.Name, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&user.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&user.Role, "role", models.RoleClient, "client, lawyer, judge or admin")
	cmd.Flags().StringVar(&user.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&user.Language, "language", "", "Preferred language (en, es)")
	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	return cmd
}
