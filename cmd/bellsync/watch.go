package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/bellsync/cmd"
	"github.com/cristianoliveira/bellsync/internal/client"
	"github.com/cristianoliveira/bellsync/internal/realtime"
	"github.com/cristianoliveira/bellsync/internal/tui/state"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command with explicit dependencies.
func NewWatchCmd(open sessionOpener) *cobra.Command {
	if open == nil {
		panic("NewWatchCmd: session opener cannot be nil")
	}

	var filters filterFlags
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Interactive terminal UI for notifications",
		Long: `Interactive terminal UI for a live notification list.

USAGE:
    bellsync watch [OPTIONS]

KEY BINDINGS:
    j/k         Move down/up in the list
    n           Load the next page
    g           Refresh
    r/u         Mark selected read/unread
    a/A         Archive/unarchive selected
    d           Delete selected
    R/S         Mark all read/seen
    q           Quit`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			predicate, err := filters.predicate()
			if err != nil {
				return err
			}

			bridge := state.NewBridge()
			s, err := open("watch", client.WithConnectorOptions(realtime.WithStatusListener(bridge.StatusListener())))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			st := s.Store(predicate)
			bridge.Attach(st)
			defer bridge.Detach()

			ctx := c.Context()
			p := tea.NewProgram(
				state.NewModel(ctx, st, bridge),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running watch view: %w", err)
			}
			return nil
		},
	}

	filters.register(watchCmd)
	return watchCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewWatchCmd(openSession))
}
