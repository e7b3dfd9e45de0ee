// Package geom provides small geometric value types.
package geom

import "encoding/json"

// Rectangle is an axis-aligned box. The area is captured when the rectangle
// is constructed or decoded, so mutating Width or Height afterwards does not
// change Area.
type Rectangle struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	area float64
}

// NewRectangle returns a rectangle with the area captured from the given
// dimensions.
func NewRectangle(width, height float64) *Rectangle {
	return &Rectangle{Width: width, Height: height, area: width * height}
}

// Area returns the captured width*height product.
func (r *Rectangle) Area() float64 {
	return r.area
}

// UnmarshalJSON decodes the dimensions and captures the area, the same way
// NewRectangle does at construction.
func (r *Rectangle) UnmarshalJSON(data []byte) error {
	type plain Rectangle
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.Width, r.Height = p.Width, p.Height
	r.area = p.Width * p.Height
	return nil
}
