package selector_test

import (
	"errors"
	"testing"

	"cssb/selector"
)

func TestBuilderRender(t *testing.T) {
	tests := []struct {
		name     string
		build    func() selector.Builder
		expected string
	}{
		{
			name:     "element only",
			build:    func() selector.Builder { return selector.New().Element("a") },
			expected: "a",
		},
		{
			name:     "id only",
			build:    func() selector.Builder { return selector.New().ID("main") },
			expected: "#main",
		},
		{
			name: "id with repeated classes",
			build: func() selector.Builder {
				return selector.New().ID("main").Class("container").Class("editable")
			},
			expected: "#main.container.editable",
		},
		{
			name: "element attribute pseudo-class",
			build: func() selector.Builder {
				return selector.New().Element("a").Attr(`href$=".png"`).PseudoClass("focus")
			},
			expected: `a[href$=".png"]:focus`,
		},
		{
			name: "duplicate class names preserved in order",
			build: func() selector.Builder {
				return selector.New().Class("a").Class("a").Class("b")
			},
			expected: ".a.a.b",
		},
		{
			name:     "empty builder",
			build:    func() selector.Builder { return selector.New() },
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()
			got, err := b.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Build() = %q, want %q", got, tt.expected)
			}
			if s := b.String(); s != tt.expected {
				t.Errorf("String() = %q, want %q", s, tt.expected)
			}
		})
	}
}

func TestBuilderRenderFull(t *testing.T) {
	b := selector.New().
		Element("div").
		ID("x").
		Class("menu").
		Class("wide").
		Attr("draggable").
		Attr(`lang|="en"`).
		PseudoClass("hover").
		PseudoClass("focus").
		PseudoElement("before")

	want := `div#x.menu.wide[draggable][lang|="en"]:hover:focus::before`
	got, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuilderOrdering(t *testing.T) {
	tests := []struct {
		name  string
		build func() selector.Builder
	}{
		{
			name:  "element after id",
			build: func() selector.Builder { return selector.New().ID("main").Element("div") },
		},
		{
			name:  "element after class",
			build: func() selector.Builder { return selector.New().Class("lead").Element("p") },
		},
		{
			name:  "id after class",
			build: func() selector.Builder { return selector.New().Class("lead").ID("main") },
		},
		{
			name:  "class after attribute",
			build: func() selector.Builder { return selector.New().Attr("checked").Class("lead") },
		},
		{
			name:  "attribute after pseudo-class",
			build: func() selector.Builder { return selector.New().PseudoClass("hover").Attr("checked") },
		},
		{
			name: "pseudo-class after pseudo-element",
			build: func() selector.Builder {
				return selector.New().PseudoElement("before").PseudoClass("hover")
			},
		},
		{
			name:  "element after pseudo-element",
			build: func() selector.Builder { return selector.New().PseudoElement("after").Element("p") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()
			if _, err := b.Build(); !errors.Is(err, selector.ErrPartOrder) {
				t.Errorf("Build() error = %v, want ErrPartOrder", err)
			}
			if err := b.Err(); !errors.Is(err, selector.ErrPartOrder) {
				t.Errorf("Err() = %v, want ErrPartOrder", err)
			}
		})
	}
}

func TestBuilderDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		build func() selector.Builder
	}{
		{
			name:  "element twice",
			build: func() selector.Builder { return selector.New().Element("div").Element("p") },
		},
		{
			name:  "id twice",
			build: func() selector.Builder { return selector.New().ID("a").ID("b") },
		},
		{
			name: "pseudo-element twice",
			build: func() selector.Builder {
				return selector.New().PseudoElement("before").PseudoElement("after")
			},
		},
		{
			// Both rules are violated here; the duplicate diagnosis is the
			// more specific one and wins.
			name: "element repeated after id",
			build: func() selector.Builder {
				return selector.New().Element("div").ID("main").Element("p")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()
			if _, err := b.Build(); !errors.Is(err, selector.ErrDuplicatePart) {
				t.Errorf("Build() error = %v, want ErrDuplicatePart", err)
			}
		})
	}
}

func TestBuilderErrorSticky(t *testing.T) {
	b := selector.New().Class("lead").ID("main") // order violation recorded here
	first := b.Err()
	if !errors.Is(first, selector.ErrPartOrder) {
		t.Fatalf("Err() = %v, want ErrPartOrder", first)
	}

	// Later calls, valid or not, must not replace the first violation.
	b = b.Element("div").Class("x").PseudoElement("before").PseudoElement("after")
	if got := b.Err(); got.Error() != first.Error() {
		t.Errorf("Err() after more calls = %v, want first violation %v", got, first)
	}

	if s, err := b.Build(); err == nil || s != "" {
		t.Errorf("Build() = (%q, %v), want empty string and error", s, err)
	}
	if s := b.String(); s != "" {
		t.Errorf("String() with pending violation = %q, want empty", s)
	}
}

func TestBuilderImmutability(t *testing.T) {
	base := selector.New().Element("ul").Class("menu")

	left := base.Class("open")
	right := base.Class("closed")

	if got := base.String(); got != "ul.menu" {
		t.Errorf("base = %q, want %q", got, "ul.menu")
	}
	if got := left.String(); got != "ul.menu.open" {
		t.Errorf("left = %q, want %q", got, "ul.menu.open")
	}
	if got := right.String(); got != "ul.menu.closed" {
		t.Errorf("right = %q, want %q", got, "ul.menu.closed")
	}

	// A violation on one branch must not leak into its siblings.
	bad := base.ID("late")
	if !errors.Is(bad.Err(), selector.ErrPartOrder) {
		t.Fatalf("bad.Err() = %v, want ErrPartOrder", bad.Err())
	}
	if err := base.Err(); err != nil {
		t.Errorf("base.Err() = %v, want nil", err)
	}
	if err := left.Err(); err != nil {
		t.Errorf("left.Err() = %v, want nil", err)
	}
}

func TestBuilderRepeatableBuild(t *testing.T) {
	b := selector.New().Element("x")

	first, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := b.Build()
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	if first != second {
		t.Errorf("repeated Build() disagree: %q vs %q", first, second)
	}

	// A separate fresh builder is unaffected by prior builds.
	if got := selector.New().Element("x").String(); got != "x" {
		t.Errorf("fresh builder = %q, want %q", got, "x")
	}
}
