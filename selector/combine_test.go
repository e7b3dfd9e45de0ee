package selector_test

import (
	"errors"
	"testing"

	"cssb/selector"
)

func TestCombinatorString(t *testing.T) {
	tests := []struct {
		op       selector.Combinator
		expected string
	}{
		{selector.Descendant, " "},
		{selector.Child, ">"},
		{selector.AdjacentSibling, "+"},
		{selector.GeneralSibling, "~"},
		{selector.Combinator(99), ""},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("Combinator(%d).String() = %q, want %q", int(tt.op), got, tt.expected)
		}
	}
}

func TestParseCombinator(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  selector.Combinator
		shouldErr bool
	}{
		{"single space", " ", selector.Descendant, false},
		{"several spaces", "   ", selector.Descendant, false},
		{"descendant name", "descendant", selector.Descendant, false},
		{"child symbol", ">", selector.Child, false},
		{"child name", "child", selector.Child, false},
		{"child name uppercase", "CHILD", selector.Child, false},
		{"adjacent symbol", "+", selector.AdjacentSibling, false},
		{"adjacent name", "adjacent", selector.AdjacentSibling, false},
		{"adjacent-sibling name", "adjacent-sibling", selector.AdjacentSibling, false},
		{"sibling symbol", "~", selector.GeneralSibling, false},
		{"sibling name", "sibling", selector.GeneralSibling, false},
		{"general-sibling name", "general-sibling", selector.GeneralSibling, false},
		{"empty", "", 0, true},
		{"unknown", "inside", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selector.ParseCombinator(tt.input)
			if tt.shouldErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCombinator(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseCombinator(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		left     selector.Operand
		op       selector.Combinator
		right    selector.Operand
		expected string
	}{
		{
			name:     "child of builders",
			left:     selector.New().Element("div").ID("main"),
			op:       selector.Child,
			right:    selector.New().Element("ul").Class("menu"),
			expected: "div#main > ul.menu",
		},
		{
			name:     "adjacent sibling",
			left:     selector.New().Element("p"),
			op:       selector.AdjacentSibling,
			right:    selector.New().Element("img"),
			expected: "p + img",
		},
		{
			name:     "general sibling of raw operands",
			left:     selector.Raw("h2"),
			op:       selector.GeneralSibling,
			right:    selector.Raw("p"),
			expected: "h2 ~ p",
		},
		{
			// The descendant combinator is a space itself; surrounded by the
			// separator spaces the result carries three in a row.
			name:     "descendant keeps three spaces",
			left:     selector.Raw("p"),
			op:       selector.Descendant,
			right:    selector.Raw("div"),
			expected: "p   div",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := selector.Combine(tt.left, tt.op, tt.right)
			got, err := c.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Build() = %q, want %q", got, tt.expected)
			}
			if s := c.String(); s != tt.expected {
				t.Errorf("String() = %q, want %q", s, tt.expected)
			}
		})
	}
}

func TestCombineNested(t *testing.T) {
	inner := selector.Combine(
		selector.New().Element("ul"),
		selector.Child,
		selector.New().Element("li"),
	)
	outer := selector.Combine(inner, selector.AdjacentSibling, selector.Raw("p"))

	want := "ul > li + p"
	got, err := outer.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestCombineAgreesWithSeparateBuilds(t *testing.T) {
	a := selector.New().Element("p").PseudoClass("focus")
	b := selector.New().Element("a").Attr("href")

	as, err := a.Build()
	if err != nil {
		t.Fatalf("a.Build() error = %v", err)
	}
	bs, err := b.Build()
	if err != nil {
		t.Fatalf("b.Build() error = %v", err)
	}

	got, err := selector.Combine(a, selector.AdjacentSibling, b).Build()
	if err != nil {
		t.Fatalf("Combine Build() error = %v", err)
	}
	if want := as + " + " + bs; got != want {
		t.Errorf("Combine = %q, want %q", got, want)
	}
}

func TestCombinePropagatesOperandError(t *testing.T) {
	bad := selector.New().Class("lead").Element("p") // order violation
	c := selector.Combine(bad, selector.Child, selector.Raw("div"))

	if _, err := c.Build(); !errors.Is(err, selector.ErrPartOrder) {
		t.Errorf("Build() error = %v, want ErrPartOrder", err)
	}
	if !errors.Is(c.Err(), selector.ErrPartOrder) {
		t.Errorf("Err() = %v, want ErrPartOrder", c.Err())
	}
	if s := c.String(); s != "" {
		t.Errorf("String() = %q, want empty", s)
	}

	// Error on the right operand is reported as well.
	c = selector.Combine(selector.Raw("div"), selector.Child, bad)
	if _, err := c.Build(); !errors.Is(err, selector.ErrPartOrder) {
		t.Errorf("right operand: Build() error = %v, want ErrPartOrder", err)
	}
}
