// Enumerations shared between configuration parsing and the build pipeline
// live in their own package so that neither has to import the other to get at
// them.
package common

// Specification of requested output type.
// ENUM(css, xhtml, bundle)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtCss:
		return ".css"
	case OutputFmtXhtml:
		return ".xhtml"
	case OutputFmtBundle:
		return ".zip"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Specification of stylesheet rendering mode.
// ENUM(pretty, compact)
type RenderMode int

func (r RenderMode) IsCompact() bool {
	return r == RenderModeCompact
}
