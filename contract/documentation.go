package contract

import (
	"fmt"
	"strings"
	"text/template"
)

// Documentation is text attached to an interface. Its source is one of:
//   - a string, returned as is
//   - a *template.Template, executed with the locals
//   - func(locals any) string
//   - func(locals any) (string, error)
type Documentation struct {
	Source any

	target *Interface
}

// NewDocumentation creates documentation from source.
func NewDocumentation(source any) *Documentation {
	return &Documentation{Source: source}
}

// Compile renders the documentation. Nil locals default to the interface
// the documentation is attached to.
func (d *Documentation) Compile(locals any) (string, error) {
	if locals == nil && d.target != nil {
		locals = d.target
	}
	switch src := d.Source.(type) {
	case nil:
		return "", nil
	case string:
		return src, nil
	case *template.Template:
		var sb strings.Builder
		if err := src.Execute(&sb, locals); err != nil {
			return "", fmt.Errorf("compiling documentation: %w", err)
		}
		return sb.String(), nil
	case func(any) string:
		return src(locals), nil
	case func(any) (string, error):
		return src(locals)
	case fmt.Stringer:
		return src.String(), nil
	}
	return "", fmt.Errorf("unsupported documentation source %T", d.Source)
}
