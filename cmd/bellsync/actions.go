package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianoliveira/bellsync/cmd"
	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/store"
	"github.com/spf13/cobra"
)

// notificationAction applies one action to a notification loaded in a
// store. Store methods fit as method expressions.
type notificationAction func(st *store.Store, ctx context.Context, n *domain.Notification) (*domain.Notification, error)

// actionDef describes a single-notification command.
type actionDef struct {
	use   string
	short string
	done  string
	// archived searches the archived view instead of the inbox.
	archived bool
	apply    notificationAction
}

var actionDefs = []actionDef{
	{use: "read", short: "Mark notifications as read", done: "marked as read", apply: (*store.Store).MarkAsRead},
	{use: "unread", short: "Mark notifications as unread", done: "marked as unread", apply: (*store.Store).MarkAsUnread},
	{use: "archive", short: "Archive notifications", done: "archived", apply: (*store.Store).Archive},
	{
		use:      "unarchive",
		short:    "Move archived notifications back to the inbox",
		done:     "unarchived",
		archived: true,
		apply:    (*store.Store).Unarchive,
	},
	{
		use:   "delete",
		short: "Delete notifications",
		done:  "deleted",
		apply: func(st *store.Store, ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
			return n, st.Delete(ctx, n)
		},
	},
}

// NewActionCmd creates a command that applies def to notifications by ID.
func NewActionCmd(open sessionOpener, def actionDef) *cobra.Command {
	if open == nil {
		panic("NewActionCmd: session opener cannot be nil")
	}

	archived := def.archived
	actionCmd := &cobra.Command{
		Use:   def.use + " <id>...",
		Short: def.short,
		Long: fmt.Sprintf(`%s by ID.

The notifications are looked up in the inbox (or the archive with
--archived) page by page before the action is sent.

USAGE:
    bellsync %s <id>... [OPTIONS]`, def.short, def.use),
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			s, err := open(def.use)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			st := s.Store(domain.NewPredicate(domain.WithArchived(archived)))
			if _, err := st.Refresh(c.Context()); err != nil {
				return err
			}

			var errs []error
			for _, id := range args {
				if err := applyByID(c.Context(), st, id, def.apply); err != nil {
					colors.Error(fmt.Sprintf("%s %s: %v", def.use, id, err))
					errs = append(errs, err)
					continue
				}
				colors.Success(fmt.Sprintf("Notification %s %s", id, def.done))
			}
			if len(errs) > 0 {
				return fmt.Errorf("%s: %d of %d failed: %w", def.use, len(errs), len(args), errors.Join(errs...))
			}
			return nil
		},
	}
	if !def.archived {
		actionCmd.Flags().BoolVar(&archived, "archived", false, "Look the notifications up in the archive")
	}
	return actionCmd
}

// applyByID loads pages of st until id is found, then applies fn to it.
func applyByID(ctx context.Context, st *store.Store, id string, fn notificationAction) error {
	n, err := locate(ctx, st, id)
	if err != nil {
		return err
	}
	_, err = fn(st, ctx, n)
	return err
}

func locate(ctx context.Context, st *store.Store, id string) (*domain.Notification, error) {
	for {
		if i := st.IndexOf(id); i >= 0 {
			return st.At(i), nil
		}
		if !st.HasNextPage() {
			return nil, domain.ErrNotificationNotFound
		}
		page, err := st.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return nil, domain.ErrNotificationNotFound
		}
	}
}

// bulkDef describes a command acting on every notification.
type bulkDef struct {
	use   string
	short string
	done  string
	apply func(ctx context.Context, st *store.Store) error
}

var bulkDefs = []bulkDef{
	{
		use:   "read-all",
		short: "Mark every notification as read",
		done:  "All notifications marked as read",
		apply: func(ctx context.Context, st *store.Store) error { return st.MarkAllAsRead(ctx) },
	},
	{
		use:   "seen-all",
		short: "Mark every notification as seen",
		done:  "All notifications marked as seen",
		apply: func(ctx context.Context, st *store.Store) error { return st.MarkAllAsSeen(ctx) },
	},
}

// NewBulkCmd creates a command that applies def to the whole inbox.
func NewBulkCmd(open sessionOpener, def bulkDef) *cobra.Command {
	if open == nil {
		panic("NewBulkCmd: session opener cannot be nil")
	}

	return &cobra.Command{
		Use:   def.use,
		Short: def.short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			s, err := open(def.use)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := def.apply(c.Context(), s.Store(domain.NewPredicate())); err != nil {
				return err
			}
			colors.Success(def.done)
			return nil
		},
	}
}

func init() {
	for _, def := range actionDefs {
		cmd.RootCmd.AddCommand(NewActionCmd(openSession, def))
	}
	for _, def := range bulkDefs {
		cmd.RootCmd.AddCommand(NewBulkCmd(openSession, def))
	}
}
