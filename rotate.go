package cubegate

import "strconv"

// Position is a cubie's integer coordinate triple, each in {-1,0,1}.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// CubieDelta is the before/after state of one cubie moved by a turn.
// Renderers interpolate between From and To; the engine never does.
type CubieDelta struct {
	ID     int      `json:"id"`
	From   Position `json:"from"`
	To     Position `json:"to"`
	Before [6]Color `json:"before"`
	After  [6]Color `json:"after"`
}

// turn rotates the point (x,y,z) a quarter turn about axis a. CW (d=+1) is
// clockwise seen from the positive end of the axis, i.e. -90 degrees by the
// right-hand rule.
func turn(a Axis, d Direction, x, y, z int) (int, int, int) {
	k := int(d)
	switch a {
	case X:
		// (y,z) -> (d*z, -d*y)
		return x, k * z, -k * y
	case Y:
		// (x,z) -> (-d*z, d*x)
		return -k * z, y, k * x
	default:
		// (x,y) -> (d*y, -d*x)
		return k * y, -k * x, z
	}
}

// rotateColors moves every sticker to the face its outward normal points at
// after the turn. Faces aligned with the axis map onto themselves; the four
// side faces cycle.
func rotateColors(a Axis, d Direction, colors [6]Color) [6]Color {
	var out [6]Color
	for _, f := range Faces {
		fx, fy, fz := f.vector()
		nf, _ := faceFromVector(turn(a, d, fx, fy, fz))
		out[nf] = colors[f]
	}
	return out
}

func inUnitRange(v int) bool {
	return v >= -1 && v <= 1
}

// Rotate computes the result of turning the given cubies a quarter turn about
// axis a. It does not modify its input; the returned deltas are applied with
// CubeState.Commit. Any coordinate leaving {-1,0,1} is a ConsistencyError.
func Rotate(cubies []*Cubie, a Axis, d Direction) ([]CubieDelta, error) {
	if !a.Valid() {
		return nil, &InvalidMoveError{Field: "axis", Value: a.String()}
	}
	if d != CW && d != CCW {
		return nil, &InvalidMoveError{Field: "direction", Value: strconv.Itoa(int(d))}
	}

	deltas := make([]CubieDelta, 0, len(cubies))
	for _, c := range cubies {
		x, y, z := turn(a, d, c.X, c.Y, c.Z)
		if !inUnitRange(x) || !inUnitRange(y) || !inUnitRange(z) {
			return nil, consistencyf("cubie %d rotated to (%d,%d,%d)", c.ID, x, y, z)
		}
		deltas = append(deltas, CubieDelta{
			ID:     c.ID,
			From:   Position{X: c.X, Y: c.Y, Z: c.Z},
			To:     Position{X: x, Y: y, Z: z},
			Before: c.Colors,
			After:  rotateColors(a, d, c.Colors),
		})
	}
	return deltas, nil
}
