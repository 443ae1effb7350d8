package narrative

import "fmt"

// Color is a display color, typically a CSS hex value.
type Color string

// Palette is a fixed, ordered list of colors consumed cyclically by index.
type Palette []Color

// DefaultPalette is the palette of the original experience.
var DefaultPalette = Palette{
	"#8A2BE2", "#FF1493", "#00CED1", "#FFD700",
	"#FF4500", "#32CD32", "#FF69B4", "#1E90FF",
}

// NewPalette copies colors into a palette. At least one color is required.
func NewPalette(colors ...string) (Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette needs at least one color")
	}
	p := make(Palette, 0, len(colors))
	for i, c := range colors {
		if c == "" {
			return nil, fmt.Errorf("palette color %d is empty", i)
		}
		p = append(p, Color(c))
	}
	return p, nil
}

// ColorFor returns the color at index, wrapping modulo the palette size.
func (p Palette) ColorFor(index int) Color {
	if len(p) == 0 {
		return ""
	}
	i := index % len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}
