package cubegate

import "strings"

// Color is a sticker color. The zero value None marks a cubie side that
// faces the interior of the cube.
type Color byte

const (
	None   Color = 0
	White  Color = 1 // Up face when solved
	Yellow Color = 2 // Down face when solved
	Green  Color = 3 // Front face when solved
	Blue   Color = 4 // Back face when solved
	Red    Color = 5 // Right face when solved
	Orange Color = 6 // Left face when solved
)

// Colors lists the six sticker colors.
var Colors = []Color{White, Yellow, Green, Blue, Red, Orange}

// String returns the one-letter code used in cube nets.
func (c Color) String() string {
	switch c {
	case None:
		return "-"
	case White:
		return "W"
	case Yellow:
		return "Y"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Red:
		return "R"
	case Orange:
		return "O"
	default:
		return "?"
	}
}

// Name returns the lowercase color name.
func (c Color) Name() string {
	switch c {
	case None:
		return "none"
	case White:
		return "white"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Red:
		return "red"
	case Orange:
		return "orange"
	default:
		return "unknown"
	}
}

// Valid reports whether c is None or one of the six sticker colors.
func (c Color) Valid() bool {
	return c <= Orange
}

// ParseColor parses a color name ("red") or code ("R").
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "-":
		return None, true
	case "white", "w":
		return White, true
	case "yellow", "y":
		return Yellow, true
	case "green", "g":
		return Green, true
	case "blue", "b":
		return Blue, true
	case "red", "r":
		return Red, true
	case "orange", "o":
		return Orange, true
	}
	return None, false
}

// MarshalText encodes the color by name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Name()), nil
}
