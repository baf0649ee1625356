// Package printer renders constraint trees to EvitaQL text, optionally
// replacing literal arguments with positional placeholders.
package printer

import (
	"strings"

	"github.com/krew-solutions/evita-client-go/evita/option"
	"github.com/krew-solutions/evita-client-go/evita/query/constraint"
)

const (
	Placeholder   = "?"
	QueryName     = "query"
	argsSeparator = ","
)

// Composite is a root made of independent constraint trees, such as a query.
type Composite interface {
	Parts() []constraint.Constraint
}

type Option func(*PrettyPrintingVisitor)

// WithIndent spreads nested constraints over lines, one indent per level.
func WithIndent(indent string) Option {
	return func(v *PrettyPrintingVisitor) {
		v.indent = option.Some(indent)
	}
}

// ExtractParameters replaces literals with Placeholder and collects them.
func ExtractParameters() Option {
	return func(v *PrettyPrintingVisitor) {
		v.extractParameters = true
	}
}

func QuotedStrings() Option {
	return WithLiteralFormatter(FormatQuotedLiteral)
}

func WithLiteralFormatter(formatter LiteralFormatter) Option {
	return func(v *PrettyPrintingVisitor) {
		v.format = formatter
	}
}

func NewPrettyPrintingVisitor(opts ...Option) *PrettyPrintingVisitor {
	v := &PrettyPrintingVisitor{
		indent: option.Nothing[string](),
		format: FormatLiteral,
	}
	for i := range opts {
		opts[i](v)
	}
	return v
}

// PrettyPrintingVisitor is single-use; create one per rendering.
type PrettyPrintingVisitor struct {
	buf               strings.Builder
	indent            option.Option[string]
	level             int
	extractParameters bool
	format            LiteralFormatter
	parameters        []any
}

func (v *PrettyPrintingVisitor) Visit(c constraint.Constraint) error {
	suffixed := v.writeName(c)
	v.buf.WriteString("(")
	args := v.printableArguments(c, suffixed)

	container, ok := c.(constraint.Container)
	if !ok || container.ChildrenCount() == 0 {
		for i, arg := range args {
			if i > 0 {
				v.buf.WriteString(argsSeparator)
			}
			if err := v.writeArgument(arg); err != nil {
				return err
			}
		}
		v.buf.WriteString(")")
		return nil
	}

	v.level++
	first := true
	next := func() {
		if !first {
			v.buf.WriteString(argsSeparator)
		}
		first = false
		v.newLine()
	}
	for _, arg := range args {
		next()
		if err := v.writeArgument(arg); err != nil {
			return err
		}
	}
	for _, child := range container.AdditionalChildren() {
		next()
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	for _, child := range container.Children() {
		next()
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	v.level--
	v.newLine()
	v.buf.WriteString(")")
	return nil
}

// VisitComposite renders query(part,part,...) skipping absent parts.
func (v *PrettyPrintingVisitor) VisitComposite(name string, root Composite) error {
	v.buf.WriteString(name)
	v.buf.WriteString("(")
	parts := make([]constraint.Constraint, 0, 4)
	for _, part := range root.Parts() {
		if !constraint.IsAbsent(part) {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		v.buf.WriteString(")")
		return nil
	}
	v.level++
	for i, part := range parts {
		if i > 0 {
			v.buf.WriteString(argsSeparator)
		}
		v.newLine()
		if err := part.Accept(v); err != nil {
			return err
		}
	}
	v.level--
	v.newLine()
	v.buf.WriteString(")")
	return nil
}

func (v *PrettyPrintingVisitor) writeName(c constraint.Constraint) bool {
	v.buf.WriteString(c.Name())
	elider, ok := c.(constraint.SuffixElider)
	if !ok {
		return false
	}
	suffix, ok := elider.Suffix()
	if !ok {
		return false
	}
	v.buf.WriteString(suffix)
	return true
}

func (v *PrettyPrintingVisitor) printableArguments(c constraint.Constraint, suffixed bool) []any {
	elider, _ := c.(constraint.SuffixElider)
	args := c.Arguments()
	printable := args[:0]
	for _, arg := range args {
		if constraint.IsAbsent(arg) {
			continue
		}
		if suffixed && elider.IsArgImpliedInSuffix(arg) {
			continue
		}
		printable = append(printable, arg)
	}
	return printable
}

func (v *PrettyPrintingVisitor) writeArgument(arg any) error {
	if nested, ok := arg.(constraint.Constraint); ok {
		return nested.Accept(v)
	}
	if v.extractParameters {
		v.parameters = append(v.parameters, arg)
		v.buf.WriteString(Placeholder)
		return nil
	}
	v.buf.WriteString(v.format(arg))
	return nil
}

func (v *PrettyPrintingVisitor) newLine() {
	indent, ok := v.indent.Get()
	if !ok {
		return
	}
	v.buf.WriteString("\n")
	v.buf.WriteString(strings.Repeat(indent, v.level))
}

func (v *PrettyPrintingVisitor) Result() (text string, parameters []any) {
	return v.buf.String(), v.parameters
}

// Render renders a single constraint tree.
func Render(c constraint.Constraint, opts ...Option) (text string, parameters []any) {
	v := NewPrettyPrintingVisitor(opts...)
	if constraint.IsAbsent(c) {
		return "", nil
	}
	// Rendering never fails.
	_ = c.Accept(v)
	return v.Result()
}

// RenderQuery renders query(collection,filterBy,orderBy,require).
func RenderQuery(root Composite, opts ...Option) (text string, parameters []any) {
	v := NewPrettyPrintingVisitor(opts...)
	_ = v.VisitComposite(QueryName, root)
	return v.Result()
}
