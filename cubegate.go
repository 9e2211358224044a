// Package cubegate is a logical 3x3x3 cube engine whose solved faces unlock
// navigation targets.
//
// # Model
//
// The cube is 27 cubies with integer coordinates in {-1,0,1} and a
// six-entry sticker array indexed by Face. A move is a quarter turn of one
// layer, described by an axis, a layer index and a direction:
//
//	m := cubegate.Move{Axis: cubegate.X, Layer: 1, Direction: cubegate.CW} // R
//
// Standard notation maps onto descriptors (R L U D F B and the M E S slices,
// with ' for inverse):
//
//	moves, err := cubegate.ParseMoves("R U R' U'")
//
// # Engine
//
// The Engine serializes moves so exactly one is in flight at a time. Each
// submission returns a Future that resolves when the move is DONE:
//
//	e := cubegate.New(cubegate.WithAnimator(cubegate.Delay(200*time.Millisecond)))
//	defer e.Close()
//
//	e.OnFaceChange(func(ev cubegate.FaceEvent) {
//	    fmt.Println(ev.Face, ev.Transition)
//	})
//
//	f, err := e.Submit(cubegate.R)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = f.Wait(ctx)
//
// When a move reaches the head of the queue its permutation is planned and
// published as MoveApplied. The Animator then plays it; once it returns (or
// the move timeout passes) the permutation is committed, faces are
// re-evaluated and FaceEvents are emitted.
//
// # Solve detection
//
// A face is solved when all nine stickers match its center sticker. The
// detector reports both directions of change so that unlocked links can be
// retracted when a face is scrambled again.
//
// # Scrambling
//
// Scrambles draw axis, layer and direction uniformly from a seedable PCG
// source:
//
//	moves, f, err := e.ScrambleSeeded(20, 42)
package cubegate
