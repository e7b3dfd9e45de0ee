package sheet

import (
	"cssb/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the document. It exists for manual
// inspection, debug reports store it next to the compiled output.
func (doc *Document) String() string {
	if doc == nil {
		return "<nil Document>"
	}
	return treeWriter{debug.NewTreeWriter()}.document(doc).String()
}

func (tw treeWriter) document(doc *Document) treeWriter {
	tw.Line(0, "Document version=%d id=%q", doc.Version, doc.ID)
	if doc.Title != "" {
		tw.TextBlock(1, "Title", doc.Title)
	}
	for i, target := range doc.Imports {
		tw.Line(1, "Import[%d]=%q", i, target)
	}
	for i := range doc.Fonts {
		f := &doc.Fonts[i]
		tw.Line(1, "Font[%d] family=%q src=%q style=%q weight=%q stretch=%q", i, f.Family, f.Src, f.Style, f.Weight, f.Stretch)
	}
	for i := range doc.Rules {
		tw.rule(1, &doc.Rules[i], i)
	}
	for i := range doc.Media {
		m := &doc.Media[i]
		tw.Line(1, "Media[%d] query=%q", i, m.Query)
		for j := range m.Rules {
			tw.rule(2, &m.Rules[j], j)
		}
	}
	return tw
}

func (tw treeWriter) rule(depth int, rule *Rule, index int) {
	tw.Line(depth, "Rule[%d]", index)
	for i := range rule.Selectors {
		tw.selector(depth+1, &rule.Selectors[i], i)
	}
	for _, d := range rule.Declarations {
		tw.TextBlock(depth+1, d.Property, d.Value)
	}
}

func (tw treeWriter) selector(depth int, s *Selector, index int) {
	switch {
	case s.Combine != nil:
		tw.Line(depth, "Selector[%d] combine op=%q line=%d", index, s.Combine.Op, s.line)
		if s.Combine.Left != nil {
			tw.selector(depth+1, s.Combine.Left, 0)
		}
		if s.Combine.Right != nil {
			tw.selector(depth+1, s.Combine.Right, 1)
		}
	case len(s.Parts) > 0:
		tw.Line(depth, "Selector[%d] parts=%d line=%d", index, len(s.Parts), s.line)
		for i := range s.Parts {
			tw.part(depth+1, &s.Parts[i], i)
		}
	default:
		tw.Line(depth, "Selector[%d] raw=%q line=%d", index, s.Raw, s.line)
	}
}

func (tw treeWriter) part(depth int, p *Part, index int) {
	switch {
	case p.Element != "":
		tw.Line(depth, "Part[%d] element=%q", index, p.Element)
	case p.ID != "":
		tw.Line(depth, "Part[%d] id=%q", index, p.ID)
	case p.Class != "":
		tw.Line(depth, "Part[%d] class=%q", index, p.Class)
	case p.Attr != "":
		tw.Line(depth, "Part[%d] attr=%q", index, p.Attr)
	case p.PseudoClass != "":
		tw.Line(depth, "Part[%d] pseudo-class=%q", index, p.PseudoClass)
	case p.PseudoElement != "":
		tw.Line(depth, "Part[%d] pseudo-element=%q", index, p.PseudoElement)
	default:
		tw.Line(depth, "Part[%d] (empty)", index)
	}
}
