package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"cssb/css"
	"cssb/selector"
)

// Compile renders the document into a stylesheet. Selector failures are
// collected per rule and aggregated, so one bad selector does not hide the
// next. When the document carries no ID a fresh one is generated on the
// receiver, the compiled output is tied to it.
func (doc *Document) Compile() (*css.Stylesheet, error) {
	if doc.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("unable to generate document ID: %w", err)
		}
		doc.ID = id.String()
	}

	var errs error
	sheet := &css.Stylesheet{}

	for _, target := range doc.Imports {
		imp := target
		sheet.Items = append(sheet.Items, css.StylesheetItem{Import: &imp})
	}

	for i := range doc.Fonts {
		ff, err := doc.Fonts[i].fontFace()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("font %d: %w", i+1, err))
			continue
		}
		sheet.Items = append(sheet.Items, css.StylesheetItem{FontFace: ff})
	}

	for i := range doc.Rules {
		rule, err := doc.Rules[i].compile()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rule %d: %w", i+1, err))
			continue
		}
		sheet.Items = append(sheet.Items, css.StylesheetItem{Rule: rule})
	}

	for i := range doc.Media {
		m := &doc.Media[i]
		if strings.TrimSpace(m.Query) == "" {
			errs = multierr.Append(errs, fmt.Errorf("media block %d: query is empty", i+1))
			continue
		}
		block := &css.MediaBlock{Query: m.Query}
		for j := range m.Rules {
			rule, err := m.Rules[j].compile()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("media %q rule %d: %w", m.Query, j+1, err))
				continue
			}
			block.Rules = append(block.Rules, *rule)
		}
		sheet.Items = append(sheet.Items, css.StylesheetItem{MediaBlock: block})
	}

	if errs != nil {
		return nil, errs
	}
	return sheet, nil
}

func (f *Font) fontFace() (*css.FontFace, error) {
	if strings.TrimSpace(f.Family) == "" {
		return nil, errors.New("family is required")
	}
	if strings.TrimSpace(f.Src) == "" {
		return nil, errors.New("src is required")
	}
	return &css.FontFace{
		Family:  f.Family,
		Src:     f.Src,
		Style:   f.Style,
		Weight:  f.Weight,
		Stretch: f.Stretch,
	}, nil
}

func (r *Rule) compile() (*css.Rule, error) {
	if len(r.Selectors) == 0 {
		return nil, errors.New("rule has no selectors")
	}

	out := &css.Rule{}
	var errs error
	for i := range r.Selectors {
		s := &r.Selectors[i]
		text, err := s.Text()
		if err != nil {
			if s.line > 0 {
				err = fmt.Errorf("line %d: %w", s.line, err)
			}
			errs = multierr.Append(errs, fmt.Errorf("selector %d: %w", i+1, err))
			continue
		}
		out.Selectors = append(out.Selectors, text)
		if out.SourceLine == 0 {
			out.SourceLine = s.line
		}
	}
	if errs != nil {
		return nil, errs
	}

	for _, d := range r.Declarations {
		out.Declarations = append(out.Declarations, css.Declaration{Property: d.Property, Value: d.Value})
	}
	return out, nil
}

// Text resolves the selector into its CSS form.
func (s *Selector) Text() (string, error) {
	populated := 0
	if len(s.Parts) > 0 {
		populated++
	}
	if s.Combine != nil {
		populated++
	}
	if strings.TrimSpace(s.Raw) != "" {
		populated++
	}
	switch populated {
	case 0:
		return "", errors.New("selector specifies none of parts, combine or raw")
	case 1:
	default:
		return "", errors.New("selector must specify exactly one of parts, combine or raw")
	}

	switch {
	case s.Combine != nil:
		return s.Combine.text()
	case len(s.Parts) > 0:
		b := selector.New()
		for i := range s.Parts {
			next, err := s.Parts[i].apply(b)
			if err == nil {
				err = next.Err()
			}
			if err != nil {
				return "", fmt.Errorf("part %d: %w", i+1, err)
			}
			b = next
		}
		return b.Build()
	default:
		return strings.TrimSpace(s.Raw), nil
	}
}

func (c *Combine) text() (string, error) {
	if c.Left == nil || c.Right == nil {
		return "", errors.New("combine requires both left and right selectors")
	}
	op, err := selector.ParseCombinator(c.Op)
	if err != nil {
		return "", err
	}
	left, err := c.Left.Text()
	if err != nil {
		return "", fmt.Errorf("left: %w", err)
	}
	right, err := c.Right.Text()
	if err != nil {
		return "", fmt.Errorf("right: %w", err)
	}
	return selector.Combine(selector.Raw(left), op, selector.Raw(right)).Build()
}

// apply adds the single slot this part populates to the builder.
func (p *Part) apply(b selector.Builder) (selector.Builder, error) {
	set := 0
	out := b
	if p.Element != "" {
		set++
		out = b.Element(p.Element)
	}
	if p.ID != "" {
		set++
		out = b.ID(p.ID)
	}
	if p.Class != "" {
		set++
		out = b.Class(p.Class)
	}
	if p.Attr != "" {
		set++
		out = b.Attr(p.Attr)
	}
	if p.PseudoClass != "" {
		set++
		out = b.PseudoClass(p.PseudoClass)
	}
	if p.PseudoElement != "" {
		set++
		out = b.PseudoElement(p.PseudoElement)
	}
	switch set {
	case 0:
		return b, errors.New("selector part is empty")
	case 1:
		return out, nil
	default:
		return b, errors.New("selector part must populate exactly one of element, id, class, attr, pseudo-class or pseudo-element")
	}
}
