package main

import (
	"fmt"

	"github.com/cristianoliveira/bellsync/cmd"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/format"
	"github.com/cristianoliveira/bellsync/internal/search"
	"github.com/cristianoliveira/bellsync/internal/store"
	"github.com/spf13/cobra"
)

const listCommandLong = `List notifications with filters and formats.

USAGE:
    bellsync list [OPTIONS]

OPTIONS:
    --filter <status>     Filter by read status: read, unread
    --seen <status>       Filter by seen status: seen, unseen
    --archived            Show archived notifications instead of the inbox
    --category <name>     Only notifications in this category (repeatable)
    --topic <name>        Only notifications in this topic (repeatable)
    --pages <n>           Number of pages to load (default: 1)
    --all-pages           Load every page
    --search <pattern>    Search titles and content (substring match)
    --regex               Use regex search with --search
    --tokens              Match every word of --search; "read"/"unread" filter
    --ignore-case         Case-insensitive --search
    --sort <field>        Sort by: sent_at (default), title, category, read_status
    --order <order>       Sort order: desc (default), asc
    --format=<format>     Output format: simple (default), table, compact, json
    -h, --help            Show this help`

// listOptions holds all parameters of the list command.
type listOptions struct {
	filters    filterFlags
	pages      int
	allPages   bool
	search     string
	regex      bool
	tokens     bool
	ignoreCase bool
	sortBy     string
	order      string
	format     string
}

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(open sessionOpener) *cobra.Command {
	if open == nil {
		panic("NewListCmd: session opener cannot be nil")
	}

	var opts listOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications with filters and formats",
		Long:  listCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			predicate, err := opts.filters.predicate()
			if err != nil {
				return err
			}
			sortOpts, err := domain.ParseSortOptions(opts.sortBy, opts.order)
			if err != nil {
				return err
			}
			formatterType, err := format.ParseFormatterType(opts.format)
			if err != nil {
				return err
			}
			provider, err := opts.searchProvider()
			if err != nil {
				return err
			}
			if opts.pages < 1 {
				return fmt.Errorf("invalid pages value: %d (must be at least 1)", opts.pages)
			}

			s, err := open("list")
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			st := s.Store(predicate)
			if err := loadPages(c, st, opts.pages, opts.allPages); err != nil {
				return err
			}

			notifs := search.Filter(st.Notifications(), provider, opts.search)
			notifs = domain.SortNotifications(notifs, sortOpts)
			return format.NewFormatter(formatterType).FormatNotifications(notifs, c.OutOrStdout())
		},
	}

	opts.filters.register(listCmd)
	listCmd.Flags().IntVar(&opts.pages, "pages", 1, "Number of pages to load")
	listCmd.Flags().BoolVar(&opts.allPages, "all-pages", false, "Load every page")
	listCmd.Flags().StringVar(&opts.search, "search", "", "Search titles and content (substring match)")
	listCmd.Flags().BoolVar(&opts.regex, "regex", false, "Use regex search with --search")
	listCmd.Flags().BoolVar(&opts.tokens, "tokens", false, "Match every word of --search")
	listCmd.Flags().BoolVar(&opts.ignoreCase, "ignore-case", false, "Case-insensitive --search")
	listCmd.Flags().StringVar(&opts.sortBy, "sort", "", "Sort by: sent_at, title, category, read_status")
	listCmd.Flags().StringVar(&opts.order, "order", "", "Sort order: desc, asc")
	listCmd.Flags().StringVar(&opts.format, "format", "simple", "Output format: simple, table, compact, json")
	listCmd.MarkFlagsMutuallyExclusive("regex", "tokens")

	return listCmd
}

// searchProvider picks the provider for --search. An invalid regex is
// rejected up front rather than matching nothing.
func (o listOptions) searchProvider() (search.Provider, error) {
	searchOpts := []search.Option{search.WithCaseInsensitive(o.ignoreCase)}
	switch {
	case o.regex:
		p := search.NewRegexProvider(searchOpts...).(*search.RegexProvider)
		if o.search != "" {
			if _, err := p.Compile(o.search); err != nil {
				return nil, fmt.Errorf("invalid search pattern: %w", err)
			}
		}
		return p, nil
	case o.tokens:
		return search.NewTokenProvider(searchOpts...), nil
	default:
		return search.NewSubstringProvider(searchOpts...), nil
	}
}

// loadPages refreshes st and then fetches until pages are loaded, or until
// the last page when all is set.
func loadPages(c *cobra.Command, st *store.Store, pages int, all bool) error {
	ctx := c.Context()
	if _, err := st.Refresh(ctx); err != nil {
		return err
	}
	for loaded := 1; st.HasNextPage() && (all || loaded < pages); loaded++ {
		page, err := st.Fetch(ctx)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
	}
	return nil
}

// listCmd represents the list command
var listCmd = NewListCmd(openSession)

func init() {
	cmd.RootCmd.AddCommand(listCmd)
}
