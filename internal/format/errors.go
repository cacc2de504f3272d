package format

import (
	"fmt"
	"strings"

	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

// InvalidItemError reports a node the formatter cannot render.
type InvalidItemError struct {
	Span text.Span
	Kind string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("cannot format %s at %s", e.Kind, e.Span)
}

// IOError wraps a failure of the destination writer.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return "write formatted output: " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// nodeKind names the dynamic type of n, e.g. "IfStatement".
func nodeKind(n syntax.Node) string {
	name := fmt.Sprintf("%T", n)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimPrefix(name, "*")
}
