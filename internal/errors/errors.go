// Package errors extends the standard library errors package with a builder
// for attaching component, category, and structured context to errors.
// It re-exports Is/As/New/Unwrap so call sites need a single import.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies an error for reporting and handling decisions.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryNetwork       Category = "network"
	CategoryNotFound      Category = "not-found"
	CategoryConfiguration Category = "configuration"
	CategoryDatabase      Category = "database"
	CategoryState         Category = "state"
)

// New returns an error with the given text. Mirrors errors.New.
func New(text string) error { return errors.New(text) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target.
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap returns the result of calling Unwrap on err, if any.
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join wraps errors.Join.
func Join(errs ...error) error { return errors.Join(errs...) }

// EnhancedError carries a component, category, and key/value context
// alongside the underlying error.
type EnhancedError struct {
	err       error
	component string
	category  Category
	context   map[string]any
}

// Error renders the message with component and context appended.
func (e *EnhancedError) Error() string {
	var b strings.Builder
	if e.component != "" {
		b.WriteString(e.component)
		b.WriteString(": ")
	}
	b.WriteString(e.err.Error())
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.context[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *EnhancedError) Unwrap() error { return e.err }

// GetComponent returns the component label, if set.
func (e *EnhancedError) GetComponent() string { return e.component }

// GetCategory returns the error category, if set.
func (e *EnhancedError) GetCategory() Category { return e.category }

// GetContext returns the context value for key.
func (e *EnhancedError) GetContext(key string) (any, bool) {
	v, ok := e.context[key]
	return v, ok
}

// Builder assembles an EnhancedError. Terminate the chain with Build.
type Builder struct {
	e *EnhancedError
}

// Newf starts a builder from a formatted message.
func Newf(format string, args ...any) *Builder {
	return &Builder{e: &EnhancedError{
		err:     fmt.Errorf(format, args...),
		context: make(map[string]any),
	}}
}

// Wrap starts a builder around an existing error.
func Wrap(err error) *Builder {
	return &Builder{e: &EnhancedError{err: err, context: make(map[string]any)}}
}

// Component sets the originating component label.
func (b *Builder) Component(name string) *Builder {
	b.e.component = name
	return b
}

// Category sets the error category.
func (b *Builder) Category(c Category) *Builder {
	b.e.category = c
	return b
}

// Context attaches a key/value pair.
func (b *Builder) Context(key string, value any) *Builder {
	b.e.context[key] = value
	return b
}

// Build returns the assembled error.
func (b *Builder) Build() error { return b.e }
