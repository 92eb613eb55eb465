// Package formatter provides template parsing, variable resolution, and preset management
// for the status line of a notification store.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateEngine provides template parsing and variable substitution.
type TemplateEngine interface {
	// Parse returns a list of variables found in the template.
	Parse(template string) ([]string, error)

	// Substitute replaces variables in the template with values from the context.
	Substitute(template string, ctx VariableContext) (string, error)
}

// templateEngine implements TemplateEngine interface.
type templateEngine struct {
	variablePattern *regexp.Regexp
	resolver        VariableResolver
}

// NewTemplateEngine creates a new template engine instance.
func NewTemplateEngine() TemplateEngine {
	return &templateEngine{
		variablePattern: regexp.MustCompile(`\$\{([a-z0-9-]+)\}`),
		resolver:        NewVariableResolver(),
	}
}

// Parse identifies all variables in a template string using ${variable-name} syntax.
// Returns a list of variable names found, without duplicates.
func (te *templateEngine) Parse(template string) ([]string, error) {
	if err := validateTemplate(template); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	variables := []string{}
	for _, match := range te.variablePattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if !seen[name] {
			variables = append(variables, name)
			seen[name] = true
		}
	}
	return variables, nil
}

// Substitute replaces all variables in the template with values from the context.
// Unknown variables are an error.
func (te *templateEngine) Substitute(template string, ctx VariableContext) (string, error) {
	if err := validateTemplate(template); err != nil {
		return "", err
	}

	var resolveErr error
	result := te.variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := te.variablePattern.FindStringSubmatch(match)[1]
		value, err := te.resolver.Resolve(name, ctx)
		if err != nil && resolveErr == nil {
			resolveErr = err
		}
		return value
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}

// validateTemplate checks for unclosed variable delimiters.
func validateTemplate(template string) error {
	opens := strings.Count(template, "${")
	closes := strings.Count(template, "}")
	if opens > closes {
		return fmt.Errorf("mismatched variable delimiters: %d opens, %d closes", opens, closes)
	}
	return nil
}
