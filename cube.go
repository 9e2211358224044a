package cubegate

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// CubeState holds the 27 cubies of a 3x3x3 cube in insertion order.
// Cubie identity is stable for the lifetime of the state; moves only change
// coordinates and colors.
//
// Facelets for rendering are laid out row-major as seen from outside:
//
//	0 1 2
//	3 4 5
//	6 7 8
//
// Up is viewed with Back at the top, Down with Front at the top, and the
// four side faces with Up at the top.
type CubeState struct {
	mu     sync.RWMutex
	cubies []*Cubie
}

// NewCubeState creates a solved cube with standard orientation:
// White on top, Green in front, Red on the right.
func NewCubeState() *CubeState {
	s := &CubeState{cubies: make([]*Cubie, 27)}
	for i := range s.cubies {
		s.cubies[i] = &Cubie{ID: i}
	}
	s.InitializeSolved()
	return s
}

// InitializeSolved puts every cubie back on its home position with its
// home colors. Cubie identities are kept.
func (s *CubeState) InitializeSolved() {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := 0
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				c := s.cubies[i]
				c.X, c.Y, c.Z = x, y, z
				c.Colors = [6]Color{}
				for _, f := range Faces {
					if c.Coord(f.Axis()) == f.Layer() {
						c.Colors[f] = f.SolvedColor()
					}
				}
				i++
			}
		}
	}
}

// Reset re-initializes the cube to solved.
func (s *CubeState) Reset() {
	s.InitializeSolved()
}

// CubiesOnLayer returns copies of the 9 cubies whose coordinate on axis a
// equals layer. Order is not significant.
func (s *CubeState) CubiesOnLayer(a Axis, layer int) []Cubie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Cubie, 0, 9)
	for _, c := range s.onLayer(a, layer) {
		out = append(out, *c)
	}
	return out
}

// onLayer must be called with s.mu held.
func (s *CubeState) onLayer(a Axis, layer int) []*Cubie {
	out := make([]*Cubie, 0, 9)
	for _, c := range s.cubies {
		if c.Coord(a) == layer {
			out = append(out, c)
		}
	}
	return out
}

// PlanMove computes the deltas a move would apply without changing the cube.
func (s *CubeState) PlanMove(m Move) ([]CubieDelta, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	layer := s.onLayer(m.Axis, m.Layer)
	if len(layer) != 9 {
		return nil, consistencyf("%s layer %d holds %d cubies", m.Axis, m.Layer, len(layer))
	}
	return Rotate(layer, m.Axis, m.Direction)
}

// Commit writes planned deltas into the cube. Every delta must still match
// the cubie's current position; a stale plan is rejected as a whole.
func (s *CubeState) Commit(deltas []CubieDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deltas {
		if d.ID < 0 || d.ID >= len(s.cubies) {
			return consistencyf("delta for unknown cubie %d", d.ID)
		}
		c := s.cubies[d.ID]
		if c.Position() != d.From || c.Colors != d.Before {
			return consistencyf("stale delta for cubie %d", d.ID)
		}
	}
	for _, d := range deltas {
		c := s.cubies[d.ID]
		c.X, c.Y, c.Z = d.To.X, d.To.Y, d.To.Z
		c.Colors = d.After
	}
	return nil
}

// ApplyMove turns one layer in place and returns what changed.
func (s *CubeState) ApplyMove(m Move) ([]CubieDelta, error) {
	deltas, err := s.PlanMove(m)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// ApplyMoves applies a sequence of moves, stopping at the first error.
func (s *CubeState) ApplyMoves(moves []Move) error {
	for _, m := range moves {
		if _, err := s.ApplyMove(m); err != nil {
			return err
		}
	}
	return nil
}

// Check verifies every structural invariant: 27 cubies at distinct
// positions, 9 per layer on every axis, stickers only on exposed sides and
// 9 stickers of each color.
func (s *CubeState) Check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.cubies) != 27 {
		return consistencyf("cube holds %d cubies", len(s.cubies))
	}

	seen := make(map[Position]int, 27)
	counts := make(map[Color]int, 6)
	for _, c := range s.cubies {
		if err := c.check(); err != nil {
			return err
		}
		if other, dup := seen[c.Position()]; dup {
			return consistencyf("cubies %d and %d share position %v", other, c.ID, c.Position())
		}
		seen[c.Position()] = c.ID
		for _, color := range c.Colors {
			if color != None {
				counts[color]++
			}
		}
	}

	for _, a := range Axes {
		for _, l := range Layers {
			if n := len(s.onLayer(a, l)); n != 9 {
				return consistencyf("%s layer %d holds %d cubies", a, l, n)
			}
		}
	}

	for _, color := range Colors {
		if counts[color] != 9 {
			return consistencyf("%d %s stickers", counts[color], color.Name())
		}
	}
	return nil
}

// Snapshot returns a copy of every cubie in insertion order.
func (s *CubeState) Snapshot() []Cubie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Cubie, len(s.cubies))
	for i, c := range s.cubies {
		out[i] = *c
	}
	return out
}

// Equal reports whether both cubes have identical cubie positions and colors.
func (s *CubeState) Equal(other *CubeState) bool {
	a, b := s.Snapshot(), other.Snapshot()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Fingerprint returns a 64-bit digest of the full cube state.
func (s *CubeState) Fingerprint() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := xxhash.New()
	buf := make([]byte, 0, 10)
	for _, c := range s.cubies {
		buf = buf[:0]
		buf = append(buf, byte(c.ID), byte(c.X+1), byte(c.Y+1), byte(c.Z+1))
		for _, color := range c.Colors {
			buf = append(buf, byte(color))
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// IsSolved returns true if every face shows a single color.
func (s *CubeState) IsSolved() bool {
	for _, f := range Faces {
		facelets := s.Facelets(f)
		for _, c := range facelets {
			if c != facelets[4] {
				return false
			}
		}
	}
	return true
}

// Facelets returns the 9 sticker colors of face f in row-major order.
func (s *CubeState) Facelets(f Face) [9]Color {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out [9]Color
	for _, c := range s.onLayer(f.Axis(), f.Layer()) {
		row, col := faceletCell(f, c.X, c.Y, c.Z)
		out[row*3+col] = c.Colors[f]
	}
	return out
}

// faceletCell maps a cubie position on face f to its row and column.
func faceletCell(f Face, x, y, z int) (row, col int) {
	switch f {
	case Up:
		return z + 1, x + 1
	case Down:
		return 1 - z, x + 1
	case Front:
		return 1 - y, x + 1
	case Back:
		return 1 - y, 1 - x
	case Right:
		return 1 - y, 1 - z
	default: // Left
		return 1 - y, z + 1
	}
}

// String returns a text representation of the cube as an unfolded net.
func (s *CubeState) String() string {
	var b strings.Builder
	faces := make(map[Face][9]Color, 6)
	for _, f := range Faces {
		faces[f] = s.Facelets(f)
	}

	// U face (indented)
	for row := 0; row < 3; row++ {
		b.WriteString("      ")
		for col := 0; col < 3; col++ {
			b.WriteString(faces[Up][row*3+col].String() + " ")
		}
		b.WriteString("\n")
	}

	// L, F, R, B faces (side by side)
	for row := 0; row < 3; row++ {
		for _, f := range []Face{Left, Front, Right, Back} {
			for col := 0; col < 3; col++ {
				b.WriteString(faces[f][row*3+col].String() + " ")
			}
		}
		b.WriteString("\n")
	}

	// D face (indented)
	for row := 0; row < 3; row++ {
		b.WriteString("      ")
		for col := 0; col < 3; col++ {
			b.WriteString(faces[Down][row*3+col].String() + " ")
		}
		b.WriteString("\n")
	}

	return b.String()
}
