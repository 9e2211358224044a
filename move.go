package cubegate

import (
	"fmt"
	"strings"
)

// Axis is one of the three rotation axes.
type Axis int

const (
	X Axis = 0 // points right
	Y Axis = 1 // points up
	Z Axis = 2 // points toward the front
)

// Axes lists the three axes.
var Axes = []Axis{X, Y, Z}

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Valid reports whether a is X, Y or Z.
func (a Axis) Valid() bool {
	return a >= X && a <= Z
}

// ParseAxis parses "x", "y" or "z" (case-insensitive).
func ParseAxis(s string) (Axis, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return X, true
	case "y":
		return Y, true
	case "z":
		return Z, true
	}
	return 0, false
}

// MarshalText encodes the axis as "x", "y" or "z".
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes "x", "y" or "z".
func (a *Axis) UnmarshalText(b []byte) error {
	axis, ok := ParseAxis(string(b))
	if !ok {
		return &InvalidMoveError{Field: "axis", Value: string(b)}
	}
	*a = axis
	return nil
}

// Direction is the turn direction of a move.
type Direction int

const (
	CW  Direction = 1  // clockwise as viewed from the positive end of the axis
	CCW Direction = -1 // counter-clockwise as viewed from the positive end of the axis
)

// Layers lists the three layer indices along an axis.
var Layers = []int{-1, 0, 1}

// Directions lists both turn directions.
var Directions = []Direction{CW, CCW}

// Move is a move descriptor: one quarter turn of one layer.
type Move struct {
	Axis      Axis      `json:"axis"`
	Layer     int       `json:"layer"`
	Direction Direction `json:"direction"`
}

// NewMove builds a move and validates it.
func NewMove(axis Axis, layer int, dir Direction) (Move, error) {
	m := Move{Axis: axis, Layer: layer, Direction: dir}
	if err := m.Validate(); err != nil {
		return Move{}, err
	}
	return m, nil
}

// Validate checks that axis, layer and direction are all in range.
func (m Move) Validate() error {
	if !m.Axis.Valid() {
		return &InvalidMoveError{Field: "axis", Value: fmt.Sprint(int(m.Axis))}
	}
	if m.Layer < -1 || m.Layer > 1 {
		return &InvalidMoveError{Field: "layer", Value: fmt.Sprint(m.Layer)}
	}
	if m.Direction != CW && m.Direction != CCW {
		return &InvalidMoveError{Field: "direction", Value: fmt.Sprint(int(m.Direction))}
	}
	return nil
}

// Inverse returns the move that undoes m.
func (m Move) Inverse() Move {
	m.Direction = -m.Direction
	return m
}

// FaceTurn returns the move that turns the given outer face clockwise (as
// seen looking at that face) or counter-clockwise.
func FaceTurn(f Face, clockwise bool) Move {
	dir := Direction(f.Layer())
	if !clockwise {
		dir = -dir
	}
	return Move{Axis: f.Axis(), Layer: f.Layer(), Direction: dir}
}

// notation letters per (axis, layer) and the direction their unprimed form turns.
var notationTable = []struct {
	letter byte
	axis   Axis
	layer  int
	dir    Direction
}{
	{'R', X, 1, CW},
	{'L', X, -1, CCW},
	{'M', X, 0, CCW},
	{'U', Y, 1, CW},
	{'D', Y, -1, CCW},
	{'E', Y, 0, CCW},
	{'F', Z, 1, CW},
	{'B', Z, -1, CCW},
	{'S', Z, 0, CW},
}

// Notation returns the standard notation for the move.
// Examples: R, R', M, E', S
func (m Move) Notation() string {
	for _, n := range notationTable {
		if n.axis == m.Axis && n.layer == m.Layer {
			if m.Direction == n.dir {
				return string(n.letter)
			}
			return string(n.letter) + "'"
		}
	}
	return fmt.Sprintf("(%s,%d,%d)", m.Axis, m.Layer, int(m.Direction))
}

// String returns the notation string (alias for Notation).
func (m Move) String() string {
	return m.Notation()
}

// ParseMove parses a single quarter-turn in standard notation.
// Accepts R L U D F B M E S (either case) with an optional ' or ` suffix.
// Half turns are rejected here; use ParseMoves to expand them.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 {
		return Move{}, &InvalidMoveError{Field: "notation", Value: s}
	}

	letter := strings.ToUpper(s[:1])[0]
	var m Move
	found := false
	for _, n := range notationTable {
		if n.letter == letter {
			m = Move{Axis: n.axis, Layer: n.layer, Direction: n.dir}
			found = true
			break
		}
	}
	if !found {
		return Move{}, &InvalidMoveError{Field: "notation", Value: s}
	}

	if len(s) == 2 {
		switch s[1] {
		case '\'', '`':
			m = m.Inverse()
		default:
			return Move{}, &InvalidMoveError{Field: "notation", Value: s}
		}
	}

	return m, nil
}

// ParseMoves parses a space-separated sequence of moves.
// Example: "R U R' U' M2"
// Half turns (R2, R2') expand into two quarter turns. Any invalid token
// fails the whole parse.
func ParseMoves(s string) ([]Move, error) {
	parts := strings.Fields(s)
	moves := make([]Move, 0, len(parts))

	for _, part := range parts {
		token := part
		repeat := 1
		if strings.HasSuffix(token, "2'") || strings.HasSuffix(token, "2`") {
			token = token[:len(token)-2]
			repeat = 2
		} else if strings.HasSuffix(token, "2") {
			token = token[:len(token)-1]
			repeat = 2
		}

		move, err := ParseMove(token)
		if err != nil {
			return nil, fmt.Errorf("cubegate: parse %q: %w", part, err)
		}
		for i := 0; i < repeat; i++ {
			moves = append(moves, move)
		}
	}

	return moves, nil
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}

	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}

	return strings.Join(parts, " ")
}

// AllMoves returns all 18 valid descriptors in axis, layer, direction order.
func AllMoves() []Move {
	moves := make([]Move, 0, 18)
	for _, a := range Axes {
		for _, l := range Layers {
			for _, d := range Directions {
				moves = append(moves, Move{Axis: a, Layer: l, Direction: d})
			}
		}
	}
	return moves
}
