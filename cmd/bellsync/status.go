package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cristianoliveira/bellsync/cmd"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/formatter"
	"github.com/cristianoliveira/bellsync/internal/store"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command with explicit dependencies.
func NewStatusCmd(open sessionOpener) *cobra.Command {
	if open == nil {
		panic("NewStatusCmd: session opener cannot be nil")
	}

	var filters filterFlags
	var template string
	presets := formatter.NewPresetRegistry()

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the counters of a filter on one line",
		Long:  statusLong(presets),
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			predicate, err := filters.predicate()
			if err != nil {
				return err
			}
			engine := formatter.NewTemplateEngine()
			tmpl := formatter.Resolve(presets, template)
			vars, err := engine.Parse(tmpl)
			if err != nil {
				return err
			}
			for _, v := range vars {
				if !slices.Contains(formatter.Variables, v) {
					return fmt.Errorf("unknown variable %q in --format", v)
				}
			}

			s, err := open("status")
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			st := s.Store(predicate)
			if _, err := st.Refresh(c.Context()); err != nil {
				return err
			}
			out, err := engine.Substitute(tmpl, variableContext(st, s.user.Realtime.Status().String()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), out)
			return err
		},
	}

	filters.register(statusCmd)
	statusCmd.Flags().StringVar(&template, "format", "compact", "Preset name or template with ${variable} placeholders")
	return statusCmd
}

// variableContext snapshots the counters of st for template rendering.
func variableContext(st *store.Store, connection string) formatter.VariableContext {
	ctx := formatter.VariableContext{
		TotalCount:  st.TotalCount(),
		UnreadCount: st.UnreadCount(),
		UnseenCount: st.UnseenCount(),
		LoadedCount: st.Len(),
		Connection:  connection,
	}
	latest := domain.SortNotifications(st.Notifications(), domain.DefaultSortOptions())
	if len(latest) > 0 {
		ctx.LatestTitle = latest[0].Title
		ctx.LatestCategory = domain.StringValue(latest[0].Category)
	}
	return ctx
}

func statusLong(presets formatter.PresetRegistry) string {
	var lines []string
	for _, p := range presets.List() {
		lines = append(lines, fmt.Sprintf("    %-12s %s", p.Name, p.Description))
	}
	return fmt.Sprintf(`Print the counters of a filter on one line, for shell prompts and status bars.

USAGE:
    bellsync status [OPTIONS]

PRESETS:
%s

VARIABLES:
    %s`, strings.Join(lines, "\n"), strings.Join(formatter.Variables, ", "))
}

func init() {
	cmd.RootCmd.AddCommand(NewStatusCmd(openSession))
}
