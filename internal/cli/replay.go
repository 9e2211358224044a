package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/recorder"
	"github.com/SeamusWaldron/cubegate/internal/storage"
)

var replayCmd = &cobra.Command{
	Use:   "replay <session|last>",
	Short: "Re-apply a journaled session and verify it",
	Long: `Replay a journal session on a fresh solved cube without animation.

The replay passes when the resulting cube fingerprint equals the fingerprint
recorded when the session ended. Use "last" for the most recent session.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := resolveSession(db, args[0])
	if err != nil {
		return err
	}

	res, err := recorder.Replay(cmd.Context(), db, id, cubegate.WithMetrics(false))
	if err != nil {
		return err
	}

	fmt.Printf("Session:     %s (%s)\n", res.Session.SessionID, res.Session.Source)
	fmt.Printf("Moves:       %d\n", len(res.Moves))
	if len(res.Moves) > 0 {
		fmt.Printf("             %s\n", cubegate.FormatMoves(res.Moves))
	}
	fmt.Printf("Solved:      %s\n", faceList(res.Solved))
	fmt.Printf("Fingerprint: %016x\n", res.Fingerprint)

	if res.Session.FinalFingerprint == nil {
		return fmt.Errorf("session %s never ended; nothing to verify against", id)
	}
	if !res.Match {
		return fmt.Errorf("replay diverged: recorded %016x, got %016x", *res.Session.FinalFingerprint, res.Fingerprint)
	}
	fmt.Println("Replay matches the recorded cube.")
	return nil
}

// resolveSession maps "last" to the newest session id.
func resolveSession(db *storage.DB, arg string) (string, error) {
	if arg != "last" {
		return arg, nil
	}
	s, err := storage.NewSessionRepository(db).GetLast()
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("the journal is empty")
	}
	return s.SessionID, nil
}
