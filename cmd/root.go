// Package cmd holds the root command of the bellsync CLI. Subcommands live
// in cmd/bellsync and register themselves on RootCmd.
package cmd

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/cristianoliveira/bellsync/internal/config"
	"github.com/cristianoliveira/bellsync/internal/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "bellsync",
	Short: "Keep a live, filtered view of your notification inbox.",
	Long: `Keep a live, filtered view of your notification inbox.

Notifications are fetched page by page for a filter, kept in sync with the
realtime stream and updated optimistically when you act on them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	flagEmail      string
	flagExternalID string
	flagDebug      bool
)

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	defaultHelp := RootCmd.HelpFunc()
	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd.HasParent() {
			defaultHelp(cmd, args)
			return
		}
		printHelpText(cmd)
	})

	RootCmd.PersistentFlags().StringVar(&flagEmail, "email", "", "Act as the user with this email (overrides user_email)")
	RootCmd.PersistentFlags().StringVar(&flagExternalID, "external-id", "", "Act as the user with this external ID (overrides user_external_id)")
	RootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Print debug output")
}

// setup loads the configuration and applies the global flags on top of it.
func setup(cmd *cobra.Command, _ []string) error {
	config.Load()
	flags := cmd.Flags()
	if flags.Changed("email") {
		config.Set("user_email", flagEmail)
	}
	if flags.Changed("external-id") {
		config.Set("user_external_id", flagExternalID)
	}
	if flags.Changed("debug") && flagDebug {
		config.Set("debug", "true")
		config.Set("logging_level", "debug")
	}
	colors.SetDebug(config.GetBool("debug", false))
	return nil
}

func printHelpText(cmd *cobra.Command) {
	commandOrder := []string{
		"list",
		"read",
		"unread",
		"archive",
		"unarchive",
		"delete",
		"read-all",
		"seen-all",
		"status",
		"watch",
		"follow",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Use, found.Short))
	}

	helpText := fmt.Sprintf(`bellsync %s

%s

USAGE:
    bellsync [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --email <email>         Act as the user with this email
    --external-id <id>      Act as the user with this external ID
    --debug                 Print debug output
    -h, --help              Show help message
`, version.String(), cmd.Short, strings.Join(cmdLines, "\n"))
	fmt.Fprint(cmd.OutOrStdout(), helpText)
}
