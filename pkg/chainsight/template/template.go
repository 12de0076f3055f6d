// Package template provides ${var} placeholder expansion for strings.
//
// It backs the deterministic prompt built for the text generation
// capability and the headline templates used by the synthetic event
// generator. Only the brace style (${var}) is supported; placeholder
// names are alphanumeric plus underscore.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// bracePattern matches ${name} where name is alphanumeric or underscore.
var bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// MissingAction specifies how to handle placeholders with no value.
type MissingAction int

const (
	// MissingKeep leaves the placeholder in place. This is the default.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError makes Expand return an UndefinedVariableError.
	MissingError
)

// UndefinedVariableError reports placeholders with no value when the
// expander is configured with MissingError.
type UndefinedVariableError struct {
	// Names are the undefined placeholder names, in order of appearance.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return "undefined variable: " + strings.Join(e.Names, ", ")
}

// Expander expands ${var} placeholders in strings.
// It is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
}

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing placeholders are handled.
// Default: MissingKeep.
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}

// NewExpander creates a new Expander with the given options.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missingAction: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces ${var} placeholders in s using the provided vars.
//
// An error is only returned when MissingAction is MissingError and a
// placeholder has no value; the other actions never fail.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
			return match
		default:
			return match
		}
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand expands placeholders and panics on error. Use only with
// MissingKeep/MissingEmpty, which never fail, or when every placeholder
// is known to be present.
func (e *Expander) MustExpand(s string, vars map[string]any) string {
	result, err := e.Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// defaultExpander backs the package-level Expand.
var defaultExpander = NewExpander()

// Expand replaces ${var} placeholders using the default expander
// (missing placeholders are kept as-is).
func Expand(s string, vars map[string]any) string {
	result, _ := defaultExpander.Expand(s, vars)
	return result
}
