package main

import (
	"fmt"
	"lexdesk/config"
	"lexdesk/services/autoreply"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRulesCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the auto-reply rule table",
		Example: `  lexdesk rules show
  lexdesk rules check ./rules.yaml
  lexdesk rules match "when is my court date?"`,
	}
	cmd.PersistentFlags().StringVar(&path, "file", "", "Rule file (default: AUTO_REPLY_RULES_PATH or the built-in rules)")

	resolve := func() (*autoreply.RuleTable, error) {
		if path == "" {
			path = config.Load().AutoReplyRulesPath
		}
		return loadRules(path)
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the rules in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := resolve()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(table)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	check := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a rule file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := autoreply.LoadRules(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rules, fallback %s\n", len(table.Rules), table.Fallback.Category)
			return nil
		},
	}

	match := &cobra.Command{
		Use:   "match TEXT",
		Short: "Show which rule a message selects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := resolve()
			if err != nil {
				return err
			}
			rule := autoreply.NewSelector(table).Select(strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "%s (template %s)\n", rule.Category, rule.TemplateID())
			return nil
		},
	}

	cmd.AddCommand(show, check, match)
	return cmd
}
