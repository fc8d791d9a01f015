package main

import (
	"context"
	"fmt"
	"lexdesk/db"
	"lexdesk/services"
	"lexdesk/services/autoreply"
	"strings"

	"github.com/spf13/cobra"
)

func newPreviewCommand() *cobra.Command {
	var caseID, hearingID, lang string

	cmd := &cobra.Command{
		Use:     "preview TEXT",
		Short:   "Render the auto-reply a client message would get, without sending it",
		Args:    cobra.MinimumNArgs(1),
		Example: `  lexdesk preview --case <case-id> --lang es "¿cuándo es mi audiencia?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if caseID == "" {
				return fmt.Errorf("--case is required")
			}
			cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			rules, err := loadRules(cfg.AutoReplyRulesPath)
			if err != nil {
				return err
			}
			dispatcher := autoreply.NewDispatcher(rules, services.NewCaseDirectory(db.DB), nil, nil, autoreply.Options{
				Enabled:        true,
				DefaultLang:    cfg.DefaultLocale,
				AppURL:         cfg.AppURL,
				EmergencyPhone: cfg.EmergencyContactPhone,
				UpcomingLimit:  cfg.AutoReplyUpcomingLimit,
				DocumentLimit:  cfg.AutoReplyDocumentLimit,
			})

			var hearing *string
			if hearingID != "" {
				hearing = &hearingID
			}
			content := services.SanitizeMessageContent(strings.Join(args, " "))
			p, err := dispatcher.Preview(context.Background(), caseID, hearing, content, lang)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Category: %s\nLanguage: %s\n", p.Category, p.Lang)
			if p.Skip != autoreply.SkipNone {
				fmt.Fprintf(out, "No reply: %s\n", p.Skip)
				return nil
			}
			fmt.Fprintf(out, "\n%s\n", p.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&caseID, "case", "", "Case ID")
	cmd.Flags().StringVar(&hearingID, "hearing", "", "Hearing ID for a hearing conversation")
	cmd.Flags().StringVar(&lang, "lang", "", "Locale used when the client has no language set")
	return cmd
}
