// Package selector builds CSS selectors programmatically.
//
// A Builder accumulates the parts of one compound selector (element, id,
// classes, attributes, pseudo-classes, pseudo-element) through chained calls
// and renders them in CSS grammar order. Builders are immutable values: every
// call returns a new Builder, so a partial chain can be kept and extended in
// several directions without the branches corrupting one another.
//
// Part calls validate eagerly. A violation is recorded at the offending call
// together with the offending part, later calls become no-ops, and the error
// surfaces from Build or Err. Two violation kinds exist: ErrDuplicatePart for
// a repeated singular part and ErrPartOrder for a part added out of grammar
// order. Use errors.Is to tell them apart.
//
// Combine joins two selectors with a relational combinator into a Composite,
// which renders as "<left> <combinator> <right>" and can itself be combined
// further.
package selector

import (
	"errors"
	"fmt"
	"strings"
)

// part identifies a selector-part category. Declaration order is CSS grammar
// order and drives the ordering checks.
type part int

const (
	partNone part = iota
	partElement
	partID
	partClass
	partAttribute
	partPseudoClass
	partPseudoElement
)

// String returns the category name used in violation messages.
func (p part) String() string {
	switch p {
	case partElement:
		return "element"
	case partID:
		return "id"
	case partClass:
		return "class"
	case partAttribute:
		return "attribute"
	case partPseudoClass:
		return "pseudo-class"
	case partPseudoElement:
		return "pseudo-element"
	default:
		return "none"
	}
}

var (
	// ErrDuplicatePart reports a second element, id or pseudo-element on the
	// same selector.
	ErrDuplicatePart = errors.New("element, id and pseudo-element may occur only once inside a selector")

	// ErrPartOrder reports a part added after a later category was already
	// populated.
	ErrPartOrder = errors.New("selector parts must be arranged as element, id, class, attribute, pseudo-class, pseudo-element")
)

// Builder accumulates the parts of a single compound selector. The zero value
// is an empty selector; New returns one for readability.
//
// Builder has value semantics. Part calls never mutate the receiver, and the
// multi-valued sequences (classes, attributes, pseudo-classes) are copied on
// append, so two builders derived from the same chain stay independent.
type Builder struct {
	element       string
	id            string
	classes       []string
	attributes    []string
	pseudoClasses []string
	pseudoElement string

	last part  // highest category populated so far
	err  error // first violation, sticky
}

// New returns an empty selector builder.
func New() Builder {
	return Builder{}
}

// Element sets the tag name. It fails when the element is already set, or
// when any later category is already populated.
func (b Builder) Element(name string) Builder {
	if b.err != nil {
		return b
	}
	if b.element != "" {
		b.err = fmt.Errorf("element %q: %w", name, ErrDuplicatePart)
		return b
	}
	if b.last > partElement {
		b.err = fmt.Errorf("element %q after %s: %w", name, b.last, ErrPartOrder)
		return b
	}
	b.element = name
	b.last = partElement
	return b
}

// ID sets the id part. It fails when the id is already set, or when any later
// category is already populated.
func (b Builder) ID(name string) Builder {
	if b.err != nil {
		return b
	}
	if b.id != "" {
		b.err = fmt.Errorf("id %q: %w", name, ErrDuplicatePart)
		return b
	}
	if b.last > partID {
		b.err = fmt.Errorf("id %q after %s: %w", name, b.last, ErrPartOrder)
		return b
	}
	b.id = name
	b.last = partID
	return b
}

// Class appends a class. Repeats are allowed and kept in call order. It fails
// when attributes, pseudo-classes or the pseudo-element are already populated.
func (b Builder) Class(name string) Builder {
	if b.err != nil {
		return b
	}
	if b.last > partClass {
		b.err = fmt.Errorf("class %q after %s: %w", name, b.last, ErrPartOrder)
		return b
	}
	b.classes = appendPart(b.classes, name)
	b.last = partClass
	return b
}

// Attr appends a raw attribute selector, e.g. `href$=".png"`. The text is
// rendered inside brackets as given. It fails when pseudo-classes or the
// pseudo-element are already populated.
func (b Builder) Attr(spec string) Builder {
	if b.err != nil {
		return b
	}
	if b.last > partAttribute {
		b.err = fmt.Errorf("attribute %q after %s: %w", spec, b.last, ErrPartOrder)
		return b
	}
	b.attributes = appendPart(b.attributes, spec)
	b.last = partAttribute
	return b
}

// PseudoClass appends a pseudo-class. It fails when the pseudo-element is
// already set.
func (b Builder) PseudoClass(name string) Builder {
	if b.err != nil {
		return b
	}
	if b.last > partPseudoClass {
		b.err = fmt.Errorf("pseudo-class %q after %s: %w", name, b.last, ErrPartOrder)
		return b
	}
	b.pseudoClasses = appendPart(b.pseudoClasses, name)
	b.last = partPseudoClass
	return b
}

// PseudoElement sets the pseudo-element. It is the last category, so only the
// duplicate check applies.
func (b Builder) PseudoElement(name string) Builder {
	if b.err != nil {
		return b
	}
	if b.pseudoElement != "" {
		b.err = fmt.Errorf("pseudo-element %q: %w", name, ErrDuplicatePart)
		return b
	}
	b.pseudoElement = name
	b.last = partPseudoElement
	return b
}

// Err returns the first violation recorded by part calls, if any.
func (b Builder) Err() error {
	return b.err
}

// Build renders the selector, or returns the first recorded violation.
// Building does not consume the builder; repeated calls agree.
func (b Builder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return b.render(), nil
}

// String renders the selector, or the empty string when a violation is
// pending. Use Build to observe the error.
func (b Builder) String() string {
	if b.err != nil {
		return ""
	}
	return b.render()
}

// render concatenates the populated parts in fixed category order: element,
// #id, .classes, [attributes], :pseudo-classes, ::pseudo-element.
func (b Builder) render() string {
	var sb strings.Builder
	sb.WriteString(b.element)
	if b.id != "" {
		sb.WriteByte('#')
		sb.WriteString(b.id)
	}
	for _, name := range b.classes {
		sb.WriteByte('.')
		sb.WriteString(name)
	}
	for _, spec := range b.attributes {
		sb.WriteByte('[')
		sb.WriteString(spec)
		sb.WriteByte(']')
	}
	for _, name := range b.pseudoClasses {
		sb.WriteByte(':')
		sb.WriteString(name)
	}
	if b.pseudoElement != "" {
		sb.WriteString("::")
		sb.WriteString(b.pseudoElement)
	}
	return sb.String()
}

func (b Builder) resolve() (string, error) {
	return b.Build()
}

// appendPart copies before appending so sibling builders never share a
// backing array.
func appendPart(parts []string, v string) []string {
	out := make([]string, len(parts), len(parts)+1)
	copy(out, parts)
	return append(out, v)
}
