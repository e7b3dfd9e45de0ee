package shape_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"cssb/geom"
	"cssb/shape"
)

func TestSerialize(t *testing.T) {
	type sample struct {
		B     int      `json:"b"`
		A     string   `json:"a"`
		Items []int    `json:"items"`
		Sub   struct { // nolint:unused
			X bool `json:"x"`
		} `json:"sub"`
	}

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"string", "hi", `"hi"`},
		{"number", 42.5, "42.5"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"array", []any{1.0, "two", false}, `[1,"two",false]`},
		{
			// Struct fields serialize in declaration order, not sorted.
			name:     "struct keeps declaration order",
			value:    sample{B: 1, A: "x", Items: []int{3, 2}},
			expected: `{"b":1,"a":"x","items":[3,2],"sub":{"x":false}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shape.Serialize(tt.value)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Serialize() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	// A generic re-parse of the serialized text must be deep-equal to the
	// generic form of the input.
	values := []any{
		map[string]any{"a": 1.0, "b": []any{true, nil, "s"}},
		[]any{[]any{1.5, 2.5}, map[string]any{"k": "v"}},
		"plain",
		false,
	}

	for _, v := range values {
		text, err := shape.Serialize(v)
		if err != nil {
			t.Fatalf("Serialize(%v) error = %v", v, err)
		}
		var back any
		if err := json.Unmarshal([]byte(text), &back); err != nil {
			t.Fatalf("re-parse of %s error = %v", text, err)
		}
		if !reflect.DeepEqual(back, v) {
			t.Errorf("round trip = %#v, want %#v", back, v)
		}
	}
}

func TestDeserialize(t *testing.T) {
	t.Run("pointer descriptor", func(t *testing.T) {
		got, err := shape.Deserialize(&geom.Rectangle{}, `{"width":10,"height":20}`)
		if err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		r, ok := got.(*geom.Rectangle)
		if !ok {
			t.Fatalf("Deserialize() returned %T, want *geom.Rectangle", got)
		}
		if r.Width != 10 || r.Height != 20 {
			t.Errorf("dimensions = %v x %v, want 10 x 20", r.Width, r.Height)
		}
		if got := r.Area(); got != 200 {
			t.Errorf("Area() = %v, want 200", got)
		}
	})

	t.Run("typed nil descriptor", func(t *testing.T) {
		got, err := shape.Deserialize((*geom.Rectangle)(nil), `{"width":3,"height":4}`)
		if err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		if r := got.(*geom.Rectangle); r.Area() != 12 {
			t.Errorf("Area() = %v, want 12", r.Area())
		}
	})

	t.Run("descriptor data is not copied", func(t *testing.T) {
		proto := geom.NewRectangle(999, 999)
		got, err := shape.Deserialize(proto, `{"width":1,"height":2}`)
		if err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		r := got.(*geom.Rectangle)
		if r.Width != 1 || r.Height != 2 {
			t.Errorf("dimensions = %v x %v, want text values 1 x 2", r.Width, r.Height)
		}
		if r.Area() != 2 {
			t.Errorf("Area() = %v, want 2 from text, not descriptor", r.Area())
		}
		if proto.Width != 999 || proto.Area() != 999*999 {
			t.Error("descriptor was modified")
		}
	})

	t.Run("value descriptor yields value", func(t *testing.T) {
		type point struct {
			X int `json:"x"`
			Y int `json:"y"`
		}
		got, err := shape.Deserialize(point{}, `{"x":1,"y":2}`)
		if err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		p, ok := got.(point)
		if !ok {
			t.Fatalf("Deserialize() returned %T, want point value", got)
		}
		if p.X != 1 || p.Y != 2 {
			t.Errorf("point = %+v, want {1 2}", p)
		}
	})

	t.Run("round trip through serialize", func(t *testing.T) {
		x := geom.NewRectangle(6, 7)
		text, err := shape.Serialize(x)
		if err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		got, err := shape.Deserialize((*geom.Rectangle)(nil), text)
		if err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		r := got.(*geom.Rectangle)
		if r.Width != x.Width || r.Height != x.Height {
			t.Errorf("fields = %v x %v, want %v x %v", r.Width, r.Height, x.Width, x.Height)
		}
		if r.Area() != x.Area() {
			t.Errorf("Area() = %v, want %v", r.Area(), x.Area())
		}
	})

	t.Run("nil descriptor", func(t *testing.T) {
		if _, err := shape.Deserialize(nil, "{}"); err == nil {
			t.Error("expected error for nil descriptor")
		}
	})

	t.Run("malformed text", func(t *testing.T) {
		_, err := shape.Deserialize(&geom.Rectangle{}, `{"width":`)
		if err == nil {
			t.Fatal("expected parse error")
		}
		var syntax *json.SyntaxError
		if !errors.As(err, &syntax) {
			t.Errorf("error = %v, want wrapped *json.SyntaxError", err)
		}
		if !strings.Contains(err.Error(), "deserialize") {
			t.Errorf("error %q lacks context", err)
		}
	})
}
