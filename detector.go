package cubegate

import "sync"

// SolveDetector evaluates which faces are solved and reports the faces whose
// status changed since the previous evaluation. A face is solved when all 9
// of its stickers match its center sticker.
type SolveDetector struct {
	mu        sync.Mutex
	solved    [6]bool
	evaluated bool
}

// NewSolveDetector creates a detector with empty history.
func NewSolveDetector() *SolveDetector {
	return &SolveDetector{}
}

// Evaluate computes the solved set of s and returns the faces that went
// unsolved -> solved and solved -> unsolved since the last call. With empty
// history every solved face is reported as newly solved.
func (d *SolveDetector) Evaluate(s *CubeState) (newlySolved, newlyUnsolved []Face, err error) {
	cubies := s.Snapshot()

	var current [6]bool
	for _, f := range Faces {
		ok, err := faceSolved(cubies, f)
		if err != nil {
			return nil, nil, err
		}
		current[f] = ok
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, f := range Faces {
		switch {
		case current[f] && !d.solved[f]:
			newlySolved = append(newlySolved, f)
		case !current[f] && d.solved[f]:
			newlyUnsolved = append(newlyUnsolved, f)
		}
	}
	d.solved = current
	d.evaluated = true
	return newlySolved, newlyUnsolved, nil
}

// faceSolved looks up the center of face f by position on every call; the
// center is the cubie with zero on both other axes.
func faceSolved(cubies []Cubie, f Face) (bool, error) {
	a := f.Axis()
	layer := make([]*Cubie, 0, 9)
	var center *Cubie
	for i := range cubies {
		c := &cubies[i]
		if !inUnitRange(c.X) || !inUnitRange(c.Y) || !inUnitRange(c.Z) {
			return false, consistencyf("cubie %d at (%d,%d,%d)", c.ID, c.X, c.Y, c.Z)
		}
		if c.Coord(a) != f.Layer() {
			continue
		}
		layer = append(layer, c)
		if otherAxesZero(c, a) {
			center = c
		}
	}
	if len(layer) != 9 {
		return false, consistencyf("%s face holds %d cubies", f, len(layer))
	}
	if center == nil {
		return false, consistencyf("%s face has no center cubie", f)
	}

	want := center.Colors[f]
	if want == None {
		return false, nil
	}
	for _, c := range layer {
		if c.Colors[f] != want {
			return false, nil
		}
	}
	return true, nil
}

func otherAxesZero(c *Cubie, a Axis) bool {
	for _, other := range Axes {
		if other != a && c.Coord(other) != 0 {
			return false
		}
	}
	return true
}

// Reset clears the history so the next evaluation reports from scratch.
func (d *SolveDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.solved = [6]bool{}
	d.evaluated = false
}

// Solved returns the faces solved at the last evaluation.
func (d *SolveDetector) Solved() []Face {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Face
	for _, f := range Faces {
		if d.solved[f] {
			out = append(out, f)
		}
	}
	return out
}

// Status reports whether face f was solved at the last evaluation.
func (d *SolveDetector) Status(f Face) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.solved[f]
}

// Evaluated reports whether Evaluate ran since creation or the last Reset.
func (d *SolveDetector) Evaluated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.evaluated
}
