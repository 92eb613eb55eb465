package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortByField specifies which field to sort notifications by.
type SortByField string

const (
	SortBySentAtField     SortByField = "sent_at"
	SortByTitleField      SortByField = "title"
	SortByCategoryField   SortByField = "category"
	SortByReadStatusField SortByField = "read_status"
)

// IsValid checks if the sort by field is valid.
func (s SortByField) IsValid() bool {
	switch s {
	case SortBySentAtField, SortByTitleField, SortByCategoryField, SortByReadStatusField:
		return true
	default:
		return false
	}
}

// SortOrder specifies the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// IsValid checks if the sort order is valid.
func (s SortOrder) IsValid() bool {
	return s == SortOrderAsc || s == SortOrderDesc
}

// SortOptions holds sorting options for notifications.
type SortOptions struct {
	Field SortByField
	Order SortOrder
}

// DefaultSortOptions returns the default sort options (sent_at descending).
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortBySentAtField, Order: SortOrderDesc}
}

// SortNotifications returns a sorted copy of notifs. The pointers are shared
// with the input; only the slice is new.
func SortNotifications(notifs []*Notification, opts SortOptions) []*Notification {
	if !opts.Field.IsValid() {
		opts.Field = SortBySentAtField
	}
	if !opts.Order.IsValid() {
		opts.Order = SortOrderDesc
	}

	sorted := make([]*Notification, len(notifs))
	copy(sorted, notifs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if opts.Order == SortOrderDesc {
			return less(sorted[j], sorted[i], opts.Field)
		}
		return less(sorted[i], sorted[j], opts.Field)
	})
	return sorted
}

func less(a, b *Notification, field SortByField) bool {
	switch field {
	case SortByTitleField:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortByCategoryField:
		return StringValue(a.Category) < StringValue(b.Category)
	case SortByReadStatusField:
		// ascending puts unread first
		return !a.IsRead() && b.IsRead()
	default:
		return a.SentAt.Before(b.SentAt)
	}
}

// ParseSortOptions parses field and order strings. Empty values fall back to
// the defaults.
func ParseSortOptions(field, order string) (SortOptions, error) {
	opts := DefaultSortOptions()
	if field != "" {
		f := SortByField(field)
		if !f.IsValid() {
			return SortOptions{}, fmt.Errorf("invalid sort field: %s", field)
		}
		opts.Field = f
	}
	if order != "" {
		o := SortOrder(order)
		if !o.IsValid() {
			return SortOptions{}, fmt.Errorf("invalid sort order: %s", order)
		}
		opts.Order = o
	}
	return opts, nil
}
