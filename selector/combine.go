package selector

import (
	"fmt"
	"strings"
)

// Combinator is a CSS relational operator joining two selectors.
type Combinator int

const (
	Descendant      Combinator = iota // " "
	Child                             // ">"
	AdjacentSibling                   // "+"
	GeneralSibling                    // "~"
)

// String returns the combinator symbol as it appears between selectors.
// The descendant combinator is a single space.
func (c Combinator) String() string {
	switch c {
	case Descendant:
		return " "
	case Child:
		return ">"
	case AdjacentSibling:
		return "+"
	case GeneralSibling:
		return "~"
	default:
		return ""
	}
}

// ParseCombinator maps a combinator symbol or spelled-out name to a
// Combinator. Whitespace-only input is the descendant combinator; names are
// matched case-insensitively.
func ParseCombinator(s string) (Combinator, error) {
	if s != "" && strings.TrimSpace(s) == "" {
		return Descendant, nil
	}
	switch strings.ToLower(s) {
	case "descendant":
		return Descendant, nil
	case ">", "child":
		return Child, nil
	case "+", "adjacent", "adjacent-sibling":
		return AdjacentSibling, nil
	case "~", "sibling", "general-sibling":
		return GeneralSibling, nil
	}
	return 0, fmt.Errorf("unknown combinator %q", s)
}

// Operand is a value Combine accepts on either side of a composite selector:
// a Builder, a previously built Composite, or Raw for literal selector text.
type Operand interface {
	resolve() (string, error)
}

// Raw adapts literal selector text for use as a Combine operand.
type Raw string

func (r Raw) resolve() (string, error) {
	return string(r), nil
}

// String returns the literal text.
func (r Raw) String() string {
	return string(r)
}

// Composite is two selectors joined by a combinator. It is produced by
// Combine and can itself be used as a further Combine operand.
type Composite struct {
	left  string
	op    Combinator
	right string
	err   error
}

// Combine joins two selectors with the given combinator. Operands are
// resolved immediately; when an operand carries a recorded violation the
// composite fails on Build with that violation.
func Combine(left Operand, op Combinator, right Operand) Composite {
	c := Composite{op: op}
	var err error
	if c.left, err = left.resolve(); err != nil {
		c.err = err
		return c
	}
	if c.right, err = right.resolve(); err != nil {
		c.err = err
	}
	return c
}

// Build renders "<left> <combinator> <right>" with single spaces around the
// combinator symbol. The descendant symbol is itself a space, so the rendered
// separator is three spaces in a row.
func (c Composite) Build() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.left + " " + c.op.String() + " " + c.right, nil
}

// Err returns the violation carried over from an operand, if any.
func (c Composite) Err() error {
	return c.err
}

// String renders the composite, or the empty string when an operand
// violation is pending.
func (c Composite) String() string {
	if c.err != nil {
		return ""
	}
	s, _ := c.Build()
	return s
}

func (c Composite) resolve() (string, error) {
	return c.Build()
}
