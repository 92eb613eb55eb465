package main

import (
	"github.com/cristianoliveira/bellsync/internal/client"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/spf13/cobra"
)

// sessionOpener opens the session of the configured user. command names the
// log file.
type sessionOpener func(command string, opts ...client.Option) (*session, error)

// filterFlags are the store filter flags shared by list, status, watch and follow.
type filterFlags struct {
	read       string
	seen       string
	archived   bool
	categories []string
	topics     []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.read, "filter", "", "Filter by read status: read, unread")
	cmd.Flags().StringVar(&f.seen, "seen", "", "Filter by seen status: seen, unseen")
	cmd.Flags().BoolVar(&f.archived, "archived", false, "Show archived notifications instead of the inbox")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Only notifications in these categories (repeatable)")
	cmd.Flags().StringSliceVar(&f.topics, "topic", nil, "Only notifications in these topics (repeatable)")
}

func (f *filterFlags) predicate() (domain.Predicate, error) {
	return domain.PredicateOptions{
		Read:       f.read,
		Seen:       f.seen,
		Archived:   f.archived,
		Categories: f.categories,
		Topics:     f.topics,
	}.ToPredicate()
}
