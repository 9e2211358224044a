package cubegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorFirstEvaluationReportsAllSolved(t *testing.T) {
	d := NewSolveDetector()
	assert.False(t, d.Evaluated())

	solved, unsolved, err := d.Evaluate(NewCubeState())
	require.NoError(t, err)
	assert.ElementsMatch(t, Faces, solved)
	assert.Empty(t, unsolved)
	assert.True(t, d.Evaluated())

	// no change, no edges
	solved, unsolved, err = d.Evaluate(NewCubeState())
	require.NoError(t, err)
	assert.Empty(t, solved)
	assert.Empty(t, unsolved)
}

func TestDetectorSingleUpTurn(t *testing.T) {
	c := NewCubeState()
	d := NewSolveDetector()
	_, _, err := d.Evaluate(c)
	require.NoError(t, err)

	_, err = c.ApplyMove(Move{Axis: Y, Layer: 1, Direction: CW})
	require.NoError(t, err)

	solved, unsolved, err := d.Evaluate(c)
	require.NoError(t, err)
	assert.Empty(t, solved)
	assert.ElementsMatch(t, []Face{Front, Right, Back, Left}, unsolved)

	assert.True(t, d.Status(Up))
	assert.True(t, d.Status(Down))
	assert.ElementsMatch(t, []Face{Up, Down}, d.Solved())
}

func TestDetectorReportsResolve(t *testing.T) {
	c := NewCubeState()
	d := NewSolveDetector()
	_, _, err := d.Evaluate(c)
	require.NoError(t, err)

	_, err = c.ApplyMove(F)
	require.NoError(t, err)
	_, unsolved, err := d.Evaluate(c)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Face{Up, Down, Right, Left}, unsolved)

	_, err = c.ApplyMove(FPrime)
	require.NoError(t, err)
	solved, unsolved, err := d.Evaluate(c)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Face{Up, Down, Right, Left}, solved)
	assert.Empty(t, unsolved)
}

func TestDetectorUsesCenterSticker(t *testing.T) {
	// A whole-cube rotation built from layer turns moves the centers too;
	// every face is still a single color, just not its home color.
	c := NewCubeState()
	require.NoError(t, c.ApplyMoves([]Move{R, MPrime, LPrime}))

	d := NewSolveDetector()
	solved, _, err := d.Evaluate(c)
	require.NoError(t, err)
	assert.ElementsMatch(t, Faces, solved)

	up := c.Facelets(Up)
	assert.Equal(t, Green, up[4])
}

func TestDetectorReset(t *testing.T) {
	c := NewCubeState()
	d := NewSolveDetector()
	_, _, err := d.Evaluate(c)
	require.NoError(t, err)

	d.Reset()
	assert.False(t, d.Evaluated())
	assert.Empty(t, d.Solved())

	solved, _, err := d.Evaluate(c)
	require.NoError(t, err)
	assert.Len(t, solved, 6)
}

func TestDetectorConsistencyError(t *testing.T) {
	c := NewCubeState()
	c.cubies[1].Y = 0 // shares a spot with cubie 4, Down has 8

	_, _, err := NewSolveDetector().Evaluate(c)
	assert.ErrorIs(t, err, ErrInternalConsistency)
}
