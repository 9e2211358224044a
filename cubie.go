package cubegate

import "fmt"

// Cubie is one of the 27 elements of the cube: its integer position and the
// color of each of its six sides, indexed by Face. Sides facing the interior
// are None.
type Cubie struct {
	ID     int      `json:"id"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Z      int      `json:"z"`
	Colors [6]Color `json:"colors"`
}

// Coord returns the cubie's coordinate on axis a.
func (c *Cubie) Coord(a Axis) int {
	switch a {
	case X:
		return c.X
	case Y:
		return c.Y
	default:
		return c.Z
	}
}

// Color returns the sticker color on side f.
func (c *Cubie) Color(f Face) Color {
	return c.Colors[f]
}

// Position returns the cubie's coordinates.
func (c *Cubie) Position() Position {
	return Position{X: c.X, Y: c.Y, Z: c.Z}
}

// IsCore reports whether this is the hidden center cubie.
func (c *Cubie) IsCore() bool {
	return c.X == 0 && c.Y == 0 && c.Z == 0
}

// check validates the sticker/position invariant for one cubie.
func (c *Cubie) check() error {
	if !inUnitRange(c.X) || !inUnitRange(c.Y) || !inUnitRange(c.Z) {
		return consistencyf("cubie %d at (%d,%d,%d)", c.ID, c.X, c.Y, c.Z)
	}
	for _, f := range Faces {
		color := c.Colors[f]
		if !color.Valid() {
			return consistencyf("cubie %d has undefined color %d on %s", c.ID, color, f)
		}
		exposed := c.Coord(f.Axis()) == f.Layer()
		if exposed && color == None {
			return consistencyf("cubie %d has no sticker on exposed side %s", c.ID, f)
		}
		if !exposed && color != None {
			return consistencyf("cubie %d has %s sticker on interior side %s", c.ID, color.Name(), f)
		}
	}
	return nil
}

func (c Cubie) String() string {
	return fmt.Sprintf("#%d(%d,%d,%d)", c.ID, c.X, c.Y, c.Z)
}
