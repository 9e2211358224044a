package cubegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateCorner(t *testing.T) {
	corner := &Cubie{ID: 26, X: 1, Y: 1, Z: 1}
	corner.Colors[Right] = Red
	corner.Colors[Up] = White
	corner.Colors[Front] = Green

	tests := []struct {
		name  string
		axis  Axis
		dir   Direction
		to    Position
		after map[Face]Color
	}{
		// R: front-top goes to back-top, front stickers go up
		{"x cw", X, CW, Position{1, 1, -1}, map[Face]Color{Right: Red, Up: Green, Back: White}},
		{"x ccw", X, CCW, Position{1, -1, 1}, map[Face]Color{Right: Red, Front: White, Down: Green}},
		// U: front-right goes to front-left, front stickers go left
		{"y cw", Y, CW, Position{-1, 1, 1}, map[Face]Color{Up: White, Left: Green, Front: Red}},
		// F: top-right goes to bottom-right, up stickers go right
		{"z cw", Z, CW, Position{1, -1, 1}, map[Face]Color{Front: Green, Right: White, Down: Red}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, err := Rotate([]*Cubie{corner}, tt.axis, tt.dir)
			require.NoError(t, err)
			require.Len(t, deltas, 1)

			d := deltas[0]
			assert.Equal(t, 26, d.ID)
			assert.Equal(t, Position{1, 1, 1}, d.From)
			assert.Equal(t, tt.to, d.To)
			assert.Equal(t, corner.Colors, d.Before)

			var want [6]Color
			for f, c := range tt.after {
				want[f] = c
			}
			assert.Equal(t, want, d.After)
		})
	}

	// input untouched
	assert.Equal(t, Position{1, 1, 1}, corner.Position())
}

func TestRotateRejectsBadInput(t *testing.T) {
	c := &Cubie{X: 1}
	_, err := Rotate([]*Cubie{c}, X, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)

	_, err = Rotate([]*Cubie{c}, Axis(5), CW)
	assert.ErrorIs(t, err, ErrInvalidMove)

	far := &Cubie{X: 2, Y: 1}
	_, err = Rotate([]*Cubie{far}, X, CW)
	assert.ErrorIs(t, err, ErrInternalConsistency)
}

// A +1 turn is clockwise seen from the positive end of its axis.
func TestClockwiseSeenFromPositiveAxis(t *testing.T) {
	tests := []struct {
		axis     Axis
		from, to Position
	}{
		{X, Position{0, 1, 0}, Position{0, 0, -1}},
		{X, Position{0, 0, 1}, Position{0, 1, 0}},
		{Y, Position{0, 0, 1}, Position{-1, 0, 0}},
		{Y, Position{1, 0, 0}, Position{0, 0, 1}},
		{Z, Position{0, 1, 0}, Position{1, 0, 0}},
		{Z, Position{1, 0, 0}, Position{0, -1, 0}},
	}
	for _, tt := range tests {
		c := &Cubie{X: tt.from.X, Y: tt.from.Y, Z: tt.from.Z}
		deltas, err := Rotate([]*Cubie{c}, tt.axis, CW)
		require.NoError(t, err)
		assert.Equal(t, tt.to, deltas[0].To, "%v %v", tt.axis, tt.from)

		moved := &Cubie{X: tt.to.X, Y: tt.to.Y, Z: tt.to.Z}
		back, err := Rotate([]*Cubie{moved}, tt.axis, CCW)
		require.NoError(t, err)
		assert.Equal(t, tt.from, back[0].To, "%v %v", tt.axis, tt.to)
	}
}
