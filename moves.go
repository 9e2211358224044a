package cubegate

// Predefined moves for convenience.
// Use these instead of constructing Move structs manually.
//
// Example:
//
//	engine.Submit(cubegate.R)
var (
	// Right face moves
	R      = Move{Axis: X, Layer: 1, Direction: CW}  // Right clockwise
	RPrime = Move{Axis: X, Layer: 1, Direction: CCW} // Right counter-clockwise

	// Left face moves
	L      = Move{Axis: X, Layer: -1, Direction: CCW} // Left clockwise
	LPrime = Move{Axis: X, Layer: -1, Direction: CW}  // Left counter-clockwise

	// Up face moves
	U      = Move{Axis: Y, Layer: 1, Direction: CW}  // Up clockwise
	UPrime = Move{Axis: Y, Layer: 1, Direction: CCW} // Up counter-clockwise

	// Down face moves
	D      = Move{Axis: Y, Layer: -1, Direction: CCW} // Down clockwise
	DPrime = Move{Axis: Y, Layer: -1, Direction: CW}  // Down counter-clockwise

	// Front face moves
	F      = Move{Axis: Z, Layer: 1, Direction: CW}  // Front clockwise
	FPrime = Move{Axis: Z, Layer: 1, Direction: CCW} // Front counter-clockwise

	// Back face moves
	B      = Move{Axis: Z, Layer: -1, Direction: CCW} // Back clockwise
	BPrime = Move{Axis: Z, Layer: -1, Direction: CW}  // Back counter-clockwise

	// Slice moves
	M      = Move{Axis: X, Layer: 0, Direction: CCW} // Middle, follows L
	MPrime = Move{Axis: X, Layer: 0, Direction: CW}
	E      = Move{Axis: Y, Layer: 0, Direction: CCW} // Equator, follows D
	EPrime = Move{Axis: Y, Layer: 0, Direction: CW}
	S      = Move{Axis: Z, Layer: 0, Direction: CW} // Standing, follows F
	SPrime = Move{Axis: Z, Layer: 0, Direction: CCW}
)

// Sexy move: R U R' U'. Six repetitions return to the starting state.
var SexyMove = []Move{R, U, RPrime, UPrime}
