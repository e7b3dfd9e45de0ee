package css

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Declaration is a single "property: value" pair. Declarations are kept in
// slices, never maps: the order they were authored in is the order they render
// in.
type Declaration struct {
	Property string
	Value    string
}

// Rule is a single style rule: one or more selectors sharing an ordered
// declaration block.
type Rule struct {
	Selectors    []string      // rendered comma-joined
	Declarations []Declaration // rendered in order
	SourceLine   int           // line in the source document, for diagnostics
}

// SelectorText returns the rule's selectors joined the way they render.
func (r Rule) SelectorText() string {
	return strings.Join(r.Selectors, ", ")
}

// Value returns the value of the property's last declaration. Within a block
// the last declaration wins, as in CSS proper.
func (r Rule) Value(property string) (string, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i].Value, true
		}
	}
	return "", false
}

// FontFace is an @font-face block.
type FontFace struct {
	Family  string // font-family value, always double-quoted on output
	Src     string // src value, usually one or more url() references
	Style   string // font-style: normal, italic
	Weight  string // font-weight: normal, bold, 400, 700
	Stretch string // font-stretch: condensed, expanded
}

// MediaBlock is an @media block with its query and nested rules.
type MediaBlock struct {
	Query string
	Rules []Rule
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule, MediaBlock, FontFace, or Import is non-nil.
type StylesheetItem struct {
	Rule       *Rule       // a plain rule (selectors + declarations)
	MediaBlock *MediaBlock // a @media block containing nested rules
	FontFace   *FontFace   // a @font-face declaration
	Import     *string     // an @import URL
}

// Stylesheet is an ordered collection of top-level stylesheet items.
type Stylesheet struct {
	Items []StylesheetItem
}

// Imports returns all @import URLs from the stylesheet in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.Import != nil {
			urls = append(urls, *item.Import)
		}
	}
	return urls
}

// FontFaces returns all @font-face declarations in source order. Only
// font-faces with a non-empty Family are included.
func (s *Stylesheet) FontFaces() []FontFace {
	var faces []FontFace
	for _, item := range s.Items {
		if item.FontFace != nil && item.FontFace.Family != "" {
			faces = append(faces, *item.FontFace)
		}
	}
	return faces
}

// Rules returns all rules in source order, including rules nested in @media
// blocks.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		switch {
		case item.Rule != nil:
			rules = append(rules, *item.Rule)
		case item.MediaBlock != nil:
			rules = append(rules, item.MediaBlock.Rules...)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules that list the given selector.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule == nil {
			continue
		}
		for _, sel := range item.Rule.Selectors {
			if sel == selector {
				matches = append(matches, *item.Rule)
				break
			}
		}
	}
	return matches
}

// WriteTo writes the stylesheet to w in source order, implementing
// io.WriterTo. Declarations render in authored order.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, item := range s.Items {
		var n int
		var err error

		switch {
		case item.Import != nil:
			n, err = fmt.Fprintf(w, "@import url(\"%s\");\n", cssEscapeDoubleQuoted(*item.Import))
		case item.FontFace != nil:
			n, err = writeFontFace(w, item.FontFace)
		case item.MediaBlock != nil:
			n, err = writeMediaBlock(w, item.MediaBlock)
		case item.Rule != nil:
			n, err = writeRule(w, item.Rule, "")
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		// Blank line between items (except after last).
		if i < len(s.Items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// WriteCompact writes the stylesheet to w without indentation or blank lines,
// one item after another. Order is unchanged from WriteTo.
func (s *Stylesheet) WriteCompact(w io.Writer) (int64, error) {
	var total int64
	for _, item := range s.Items {
		var n int
		var err error

		switch {
		case item.Import != nil:
			n, err = fmt.Fprintf(w, "@import url(\"%s\");", cssEscapeDoubleQuoted(*item.Import))
		case item.FontFace != nil:
			n, err = fmt.Fprintf(w, "@font-face{%s}", compactDeclarations(fontFaceDeclarations(item.FontFace)))
		case item.MediaBlock != nil:
			n, err = writeCompactMedia(w, item.MediaBlock)
		case item.Rule != nil:
			n, err = writeCompactRule(w, item.Rule)
		}

		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeRule writes a single rule to w with the given base indent.
func writeRule(w io.Writer, rule *Rule, indent string) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, rule.SelectorText())
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		n, err = fmt.Fprintf(w, "%s  %s: %s;\n", indent, d.Property, d.Value)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// writeFontFace writes an @font-face block to w.
func writeFontFace(w io.Writer, ff *FontFace) (int, error) {
	var total int
	n, err := fmt.Fprint(w, "@font-face {\n")
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range fontFaceDeclarations(ff) {
		n, err = fmt.Fprintf(w, "  %s: %s;\n", d.Property, d.Value)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

// Declarations expands the font face into ordered declarations, skipping
// empty slots.
func (ff *FontFace) Declarations() []Declaration {
	return fontFaceDeclarations(ff)
}

// fontFaceDeclarations expands a font face into ordered declarations,
// skipping empty slots.
func fontFaceDeclarations(ff *FontFace) []Declaration {
	var decls []Declaration
	if ff.Family != "" {
		decls = append(decls, Declaration{"font-family", `"` + cssEscapeDoubleQuoted(ff.Family) + `"`})
	}
	if ff.Src != "" {
		decls = append(decls, Declaration{"src", ff.Src})
	}
	if ff.Style != "" {
		decls = append(decls, Declaration{"font-style", ff.Style})
	}
	if ff.Weight != "" {
		decls = append(decls, Declaration{"font-weight", ff.Weight})
	}
	if ff.Stretch != "" {
		decls = append(decls, Declaration{"font-stretch", ff.Stretch})
	}
	return decls
}

// writeMediaBlock writes an @media block to w.
func writeMediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s {\n", mb.Query)
	total += n
	if err != nil {
		return total, err
	}

	for i := range mb.Rules {
		n, err = writeRule(w, &mb.Rules[i], "  ")
		total += n
		if err != nil {
			return total, err
		}

		// Blank line between rules in a media block (except after last).
		if i < len(mb.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

func writeCompactRule(w io.Writer, rule *Rule) (int, error) {
	return fmt.Fprintf(w, "%s{%s}", strings.Join(rule.Selectors, ","), compactDeclarations(rule.Declarations))
}

func writeCompactMedia(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s{", mb.Query)
	total += n
	if err != nil {
		return total, err
	}
	for i := range mb.Rules {
		n, err = writeCompactRule(w, &mb.Rules[i])
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}")
	total += n
	return total, err
}

func compactDeclarations(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+":"+d.Value)
	}
	return strings.Join(parts, ";")
}

// urlRewritePattern matches url() references in CSS values for RewriteURLs.
// Handles: url("path"), url('path'), url(path)
var urlRewritePattern = regexp.MustCompile(`url\s*\(\s*(?:["']([^"']*)["']|([^)"]*))\s*\)`)

// ExtractURLs returns the url() reference targets in a CSS value, in order of
// appearance, with quotes and surrounding whitespace removed.
func ExtractURLs(value string) []string {
	var urls []string
	for _, sub := range urlRewritePattern.FindAllStringSubmatch(value, -1) {
		u := sub[1]
		if u == "" {
			u = sub[2]
		}
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// RewriteURLs walks all URL references in the stylesheet and applies fn to
// each. This covers @import URLs, @font-face src, and url() references in
// declaration values.
func (s *Stylesheet) RewriteURLs(fn func(originalURL string) string) {
	for i := range s.Items {
		item := &s.Items[i]

		switch {
		case item.Import != nil:
			newURL := fn(*item.Import)
			item.Import = &newURL

		case item.FontFace != nil:
			item.FontFace.Src = rewriteURLsInValue(item.FontFace.Src, fn)

		case item.Rule != nil:
			rewriteURLsInDeclarations(item.Rule.Declarations, fn)

		case item.MediaBlock != nil:
			for j := range item.MediaBlock.Rules {
				rewriteURLsInDeclarations(item.MediaBlock.Rules[j].Declarations, fn)
			}
		}
	}
}

// rewriteURLsInDeclarations rewrites url() references in declaration values
// in place.
func rewriteURLsInDeclarations(decls []Declaration, fn func(string) string) {
	for i := range decls {
		if strings.Contains(decls[i].Value, "url(") {
			decls[i].Value = rewriteURLsInValue(decls[i].Value, fn)
		}
	}
}

// rewriteURLsInValue replaces url() references in a CSS value string.
func rewriteURLsInValue(value string, fn func(string) string) string {
	return urlRewritePattern.ReplaceAllStringFunc(value, func(match string) string {
		sub := urlRewritePattern.FindStringSubmatch(match)
		if len(sub) < 3 {
			return match
		}
		// Group 1 is the quoted URL, group 2 the unquoted one.
		originalURL := sub[1]
		if originalURL == "" {
			originalURL = sub[2]
		}
		originalURL = strings.TrimSpace(originalURL)
		newURL := fn(originalURL)
		return fmt.Sprintf("url(\"%s\")", cssEscapeDoubleQuoted(newURL))
	})
}
