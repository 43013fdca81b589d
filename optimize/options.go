// Package optimize rewrites SVG icon documents: normalizes colors and titles,
// scales and translates geometry to the requested size and runs minification.
package optimize

// Options controls which passes are assembled into the pipeline for a
// document. Zero value of numeric fields means "not requested".
type Options struct {
	// Min runs the minification pass set and compacts rendered markup.
	Min bool
	// RemoveColor replaces "#..." fill and stroke values with currentColor.
	RemoveColor bool
	// RemoveTitle drops <title> elements, title attributes become <title> children.
	RemoveTitle bool
	// RemoveRoot unwraps single top level <svg> element.
	RemoveRoot bool
	// RemoveAttrs lists "[element:]attribute[:value]" patterns to drop.
	RemoveAttrs []string

	Height   float64
	MinWidth float64
	OffsetX  float64
	OffsetY  float64
}

// Resize reports whether geometry pass has anything to do.
func (o *Options) Resize() bool {
	return o.Height != 0 || o.MinWidth != 0 || o.OffsetX != 0 || o.OffsetY != 0
}
