package cubegate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotationRoundTrip(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range AllMoves() {
		n := m.Notation()
		assert.False(t, seen[n], "duplicate notation %s", n)
		seen[n] = true

		parsed, err := ParseMove(n)
		require.NoError(t, err, n)
		assert.Equal(t, m, parsed, n)
	}
	assert.Len(t, seen, 18)
}

func TestPredefinedMoves(t *testing.T) {
	tests := []struct {
		move Move
		want string
	}{
		{R, "R"}, {RPrime, "R'"},
		{L, "L"}, {LPrime, "L'"},
		{U, "U"}, {UPrime, "U'"},
		{D, "D"}, {DPrime, "D'"},
		{F, "F"}, {FPrime, "F'"},
		{B, "B"}, {BPrime, "B'"},
		{M, "M"}, {E, "E"}, {S, "S"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.move.Notation())
		require.NoError(t, tt.move.Validate())
	}
}

func TestFaceTurnMatchesNotation(t *testing.T) {
	for _, f := range Faces {
		cw, err := ParseMove(f.Letter())
		require.NoError(t, err)
		assert.Equal(t, cw, FaceTurn(f, true), f.String())
		assert.Equal(t, cw.Inverse(), FaceTurn(f, false), f.String())
	}
}

func TestParseMoves(t *testing.T) {
	moves, err := ParseMoves("R U2 F' M2' e")
	require.NoError(t, err)
	assert.Equal(t, []Move{R, U, U, FPrime, M, M, E}, moves)
	assert.Equal(t, "R U U F' M M E", FormatMoves(moves))

	moves, err = ParseMoves("   ")
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestParseMovesRejectsBadTokens(t *testing.T) {
	for _, s := range []string{"R X U", "R3", "Rw", "R''", "2"} {
		_, err := ParseMoves(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrInvalidMove), s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		move  Move
		field string
	}{
		{"bad axis", Move{Axis: Axis(7), Layer: 0, Direction: CW}, "axis"},
		{"bad layer", Move{Axis: X, Layer: 2, Direction: CW}, "layer"},
		{"zero direction", Move{Axis: Y, Layer: 1, Direction: 0}, "direction"},
		{"big direction", Move{Axis: Z, Layer: -1, Direction: 2}, "direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.move.Validate()
			var ime *InvalidMoveError
			require.ErrorAs(t, err, &ime)
			assert.Equal(t, tt.field, ime.Field)
			assert.ErrorIs(t, err, ErrInvalidMove)
		})
	}

	_, err := NewMove(X, 0, CCW)
	assert.NoError(t, err)
}

func TestMoveJSON(t *testing.T) {
	data, err := json.Marshal(RPrime)
	require.NoError(t, err)
	assert.JSONEq(t, `{"axis":"x","layer":1,"direction":-1}`, string(data))

	var m Move
	require.NoError(t, json.Unmarshal([]byte(`{"axis":"z","layer":0,"direction":1}`), &m))
	assert.Equal(t, S, m)

	err = json.Unmarshal([]byte(`{"axis":"w","layer":0,"direction":1}`), &m)
	assert.ErrorIs(t, err, ErrInvalidMove)
}
