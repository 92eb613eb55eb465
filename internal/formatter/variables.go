package formatter

import (
	"fmt"
	"strconv"
	"strings"
)

// VariableContext contains all data needed for template variable resolution.
type VariableContext struct {
	// Counters reported by the store
	TotalCount  int
	UnreadCount int
	UnseenCount int
	LoadedCount int

	// Content variables
	LatestTitle    string
	LatestCategory string

	// Realtime connection status
	Connection string
}

// Variables lists the names accepted by the resolver.
var Variables = []string{
	"total-count",
	"unread-count",
	"unseen-count",
	"read-count",
	"loaded-count",
	"latest-title",
	"latest-category",
	"has-unread",
	"has-unseen",
	"connection",
}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	// Resolve returns the string value for a given variable name and context.
	Resolve(varName string, ctx VariableContext) (string, error)
}

// variableResolver implements VariableResolver interface.
type variableResolver struct{}

// NewVariableResolver creates a new variable resolver instance.
func NewVariableResolver() VariableResolver {
	return &variableResolver{}
}

// Resolve returns the string value for a variable from the context.
func (vr *variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	switch varName {
	case "total-count":
		return strconv.Itoa(ctx.TotalCount), nil
	case "unread-count":
		return strconv.Itoa(ctx.UnreadCount), nil
	case "unseen-count":
		return strconv.Itoa(ctx.UnseenCount), nil
	case "read-count":
		return strconv.Itoa(max(ctx.TotalCount-ctx.UnreadCount, 0)), nil
	case "loaded-count":
		return strconv.Itoa(ctx.LoadedCount), nil
	case "latest-title":
		return ctx.LatestTitle, nil
	case "latest-category":
		return ctx.LatestCategory, nil
	case "has-unread":
		return strconv.FormatBool(ctx.UnreadCount > 0), nil
	case "has-unseen":
		return strconv.FormatBool(ctx.UnseenCount > 0), nil
	case "connection":
		return ctx.Connection, nil
	default:
		return "", fmt.Errorf("unknown variable: %s (available: %s)", varName, strings.Join(Variables, ", "))
	}
}
