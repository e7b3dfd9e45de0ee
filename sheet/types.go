// Package sheet defines the declarative stylesheet document format and its
// compilation into CSS. Documents arrive as YAML or JSON, selectors inside
// them are assembled through the selector package so every ordering and
// duplicate rule is enforced on document input too.
package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"cssb/shape"
)

// DocumentVersion is the only document format version this build understands.
const DocumentVersion = 1

// Document is the root of a stylesheet definition.
type Document struct {
	Version int      `yaml:"version" json:"version"`
	ID      string   `yaml:"id,omitempty" json:"id,omitempty"`
	Title   string   `yaml:"title,omitempty" json:"title,omitempty"`
	Imports []string `yaml:"imports,omitempty" json:"imports,omitempty"`
	Fonts   []Font   `yaml:"fonts,omitempty" json:"fonts,omitempty"`
	Rules   []Rule   `yaml:"rules,omitempty" json:"rules,omitempty"`
	Media   []Media  `yaml:"media,omitempty" json:"media,omitempty"`
}

// Font describes one @font-face block.
type Font struct {
	Family  string `yaml:"family" json:"family"`
	Src     string `yaml:"src" json:"src"`
	Style   string `yaml:"style,omitempty" json:"style,omitempty"`
	Weight  string `yaml:"weight,omitempty" json:"weight,omitempty"`
	Stretch string `yaml:"stretch,omitempty" json:"stretch,omitempty"`
}

// Media groups rules under a media query.
type Media struct {
	Query string `yaml:"query" json:"query"`
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Rule pairs a selector group with an ordered declaration block.
type Rule struct {
	Selectors    []Selector      `yaml:"selectors" json:"selectors"`
	Declarations DeclarationList `yaml:"declarations,omitempty" json:"declarations,omitempty"`
}

// Selector describes one selector of a rule. Exactly one of Parts, Combine
// and Raw must be populated: Parts assembles a compound selector part by part
// in authored order, Combine joins two selectors with a relational
// combinator, Raw passes literal selector text through untouched. A plain
// string in the document is shorthand for Raw.
type Selector struct {
	Parts   []Part   `yaml:"parts,omitempty" json:"parts,omitempty"`
	Combine *Combine `yaml:"combine,omitempty" json:"combine,omitempty"`
	Raw     string   `yaml:"raw,omitempty" json:"raw,omitempty"`

	line int // document line, 0 when decoded from JSON
}

// Line returns the selector's line in the source document, 0 when unknown.
func (s *Selector) Line() int {
	return s.line
}

// UnmarshalYAML accepts either a mapping or the plain-string shorthand and
// records the node line for error attribution.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*s = Selector{Raw: raw, line: node.Line}
		return nil
	}

	type plain Selector
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Selector(p)
	s.line = node.Line
	return nil
}

// UnmarshalJSON accepts either an object or the plain-string shorthand.
func (s *Selector) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = Selector{Raw: raw}
		return nil
	}

	type plain Selector
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Selector(p)
	return nil
}

// Part populates a single selector slot. Exactly one field must be set.
type Part struct {
	Element       string `yaml:"element,omitempty" json:"element,omitempty"`
	ID            string `yaml:"id,omitempty" json:"id,omitempty"`
	Class         string `yaml:"class,omitempty" json:"class,omitempty"`
	Attr          string `yaml:"attr,omitempty" json:"attr,omitempty"`
	PseudoClass   string `yaml:"pseudo-class,omitempty" json:"pseudo-class,omitempty"`
	PseudoElement string `yaml:"pseudo-element,omitempty" json:"pseudo-element,omitempty"`
}

// Combine joins two selectors with a relational combinator. Op accepts the
// CSS symbol (">", "+", "~", a space for descendant) or a spelled-out name.
type Combine struct {
	Left  *Selector `yaml:"left" json:"left"`
	Op    string    `yaml:"op" json:"op"`
	Right *Selector `yaml:"right" json:"right"`
}

// Declaration is one property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// DeclarationList is an ordered sequence of declarations. It decodes from a
// mapping while keeping authored key order, which plain Go maps would lose.
type DeclarationList []Declaration

// Get returns the value of the last declaration for property.
func (d DeclarationList) Get(property string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == property {
			return d[i].Value, true
		}
	}
	return "", false
}

// UnmarshalYAML walks the mapping node pairwise so authored order survives.
// Anchored values are resolved, which lets documents share common values
// through YAML aliases.
func (d *DeclarationList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: declarations must be a mapping", node.Line)
	}

	list := make(DeclarationList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind == yaml.AliasNode && key.Alias != nil {
			key = key.Alias
		}
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: declaration property must be a scalar", key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: declaration %q: value must be a scalar", val.Line, key.Value)
		}
		list = append(list, Declaration{Property: key.Value, Value: val.Value})
	}
	*d = list
	return nil
}

// MarshalYAML renders the list back into a mapping in stored order.
func (d DeclarationList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, decl := range d {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: decl.Property},
			&yaml.Node{Kind: yaml.ScalarNode, Value: decl.Value})
	}
	return node, nil
}

// UnmarshalJSON reads the object through ordered decoding so document key
// order survives. Number and boolean values are rendered into their CSS text.
func (d *DeclarationList) UnmarshalJSON(data []byte) error {
	var obj shape.Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("declarations: %w", err)
	}

	list := make(DeclarationList, 0, obj.Len())
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		text, err := declarationValueText(v)
		if err != nil {
			return fmt.Errorf("declaration %q: %w", key, err)
		}
		list = append(list, Declaration{Property: key, Value: text})
	}
	*d = list
	return nil
}

// MarshalJSON writes the list as an ordered object.
func (d DeclarationList) MarshalJSON() ([]byte, error) {
	obj := shape.NewObject()
	for _, decl := range d {
		obj.Set(decl.Property, decl.Value)
	}
	return json.Marshal(obj)
}

func declarationValueText(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", errors.New("value must be a string, number or boolean")
	}
}
