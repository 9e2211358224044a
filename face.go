package cubegate

import (
	"fmt"
	"strings"
)

// Face identifies one of the six outer layers. The same identifiers index a
// cubie's stickers: a cubie's Right sticker is the one pointing along +X.
type Face int

const (
	Right Face = 0 // X = +1
	Left  Face = 1 // X = -1
	Up    Face = 2 // Y = +1
	Down  Face = 3 // Y = -1
	Front Face = 4 // Z = +1
	Back  Face = 5 // Z = -1
)

// Faces lists every face in canonical order.
var Faces = []Face{Right, Left, Up, Down, Front, Back}

func (f Face) String() string {
	switch f {
	case Right:
		return "right"
	case Left:
		return "left"
	case Up:
		return "up"
	case Down:
		return "down"
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return fmt.Sprintf("face(%d)", int(f))
	}
}

// Letter returns the single-letter notation for the face (R, L, U, D, F, B).
func (f Face) Letter() string {
	switch f {
	case Right:
		return "R"
	case Left:
		return "L"
	case Up:
		return "U"
	case Down:
		return "D"
	case Front:
		return "F"
	case Back:
		return "B"
	default:
		return "?"
	}
}

// Axis returns the axis the face is perpendicular to.
func (f Face) Axis() Axis {
	switch f {
	case Right, Left:
		return X
	case Up, Down:
		return Y
	default:
		return Z
	}
}

// Layer returns the outer layer the face sits on (+1 or -1).
func (f Face) Layer() int {
	switch f {
	case Right, Up, Front:
		return 1
	default:
		return -1
	}
}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	return f >= Right && f <= Back
}

// SolvedColor returns the center color of the face on a freshly initialized cube.
func (f Face) SolvedColor() Color {
	switch f {
	case Right:
		return Red
	case Left:
		return Orange
	case Up:
		return White
	case Down:
		return Yellow
	case Front:
		return Green
	case Back:
		return Blue
	default:
		return None
	}
}

// vector returns the outward unit normal of the face.
func (f Face) vector() (x, y, z int) {
	switch f.Axis() {
	case X:
		return f.Layer(), 0, 0
	case Y:
		return 0, f.Layer(), 0
	default:
		return 0, 0, f.Layer()
	}
}

// faceAt returns the face whose outward normal lies on axis a with the given sign.
func faceAt(a Axis, sign int) Face {
	switch a {
	case X:
		if sign > 0 {
			return Right
		}
		return Left
	case Y:
		if sign > 0 {
			return Up
		}
		return Down
	default:
		if sign > 0 {
			return Front
		}
		return Back
	}
}

// faceFromVector maps a unit axis vector back to its face.
func faceFromVector(x, y, z int) (Face, bool) {
	switch {
	case x != 0 && y == 0 && z == 0:
		return faceAt(X, x), true
	case y != 0 && x == 0 && z == 0:
		return faceAt(Y, y), true
	case z != 0 && x == 0 && y == 0:
		return faceAt(Z, z), true
	}
	return 0, false
}

// ParseFace parses a face name ("up") or letter ("U").
func ParseFace(s string) (Face, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "r":
		return Right, true
	case "left", "l":
		return Left, true
	case "up", "u":
		return Up, true
	case "down", "d":
		return Down, true
	case "front", "f":
		return Front, true
	case "back", "b":
		return Back, true
	}
	return 0, false
}

// MarshalText encodes the face by name.
func (f Face) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a face name or letter.
func (f *Face) UnmarshalText(b []byte) error {
	face, ok := ParseFace(string(b))
	if !ok {
		return fmt.Errorf("cubegate: unknown face %q", string(b))
	}
	*f = face
	return nil
}
