package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubegate"
)

var scrambleCmd = &cobra.Command{
	Use:   "scramble",
	Short: "Scramble a cube and print the result",
	Long: `Scramble a fresh cube without animation and print the moves, the
cube net and which faces are solved.

With --seed the scramble is reproducible.`,
	RunE: runScramble,
}

var (
	scrambleMoves int
	scrambleSeed  uint64
)

func init() {
	rootCmd.AddCommand(scrambleCmd)
	scrambleCmd.Flags().IntVarP(&scrambleMoves, "moves", "n", 0, "Number of moves (default from config)")
	scrambleCmd.Flags().Uint64Var(&scrambleSeed, "seed", 0, "Seed for a reproducible scramble")
}

func runScramble(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	n := scrambleMoves
	if n == 0 {
		n = a.cfg.Scramble.Moves
	}

	var seed *uint64
	if cmd.Flags().Changed("seed") {
		seed = &scrambleSeed
	}

	e := a.newEngine(cubegate.Immediate())
	if err := a.startJournal(e, "scramble", seed); err != nil {
		a.finish(e)
		return err
	}

	var (
		moves []cubegate.Move
		f     *cubegate.Future
	)
	if seed != nil {
		moves, f, err = e.ScrambleSeeded(n, *seed)
	} else {
		moves, f, err = e.Scramble(n)
	}
	if err == nil {
		err = f.Wait(context.Background())
	}
	if err != nil {
		a.finish(e)
		return err
	}

	fmt.Printf("Scramble (%d): %s\n\n", len(moves), cubegate.FormatMoves(moves))
	fmt.Println(e.String())
	fmt.Println()
	fmt.Printf("Solved faces: %s\n", faceList(e.SolvedFaces()))
	fmt.Printf("Fingerprint:  %016x\n", e.Fingerprint())
	if id := a.journalID(); id != "" {
		fmt.Printf("Journal:      %s\n", id)
	}

	return a.finish(e)
}

func faceList(faces []cubegate.Face) string {
	if len(faces) == 0 {
		return "none"
	}
	names := make([]string, len(faces))
	for i, f := range faces {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
