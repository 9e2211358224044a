package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/storage"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List journal sessions",
	RunE:  runSessions,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session|last>",
	Short: "Show the moves and face events of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session|last>",
	Short: "Delete a session and its journal entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest sessions",
	RunE:  runSessionsPrune,
}

var (
	sessionsLimit int
	sessionsKeep  int
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsShowCmd, sessionsDeleteCmd, sessionsPruneCmd)
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum number of sessions to list")
	sessionsPruneCmd.Flags().IntVar(&sessionsKeep, "keep", 50, "Number of newest sessions to keep")
}

func runSessions(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := storage.NewSessionRepository(db).List(sessionsLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded. Start one with: cubegate play")
		return nil
	}

	fmt.Printf("%-36s  %-8s  %-20s  %6s  %s\n", "SESSION", "SOURCE", "STARTED", "MOVES", "STATUS")
	for _, s := range sessions {
		status := "open"
		if s.EndedAt != nil {
			status = "ended " + s.EndedAt.Sub(s.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Printf("%-36s  %-8s  %-20s  %6d  %s\n",
			s.SessionID, s.Source, s.StartedAt.Local().Format("2006-01-02 15:04:05"), s.MoveCount, status)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := resolveSession(db, args[0])
	if err != nil {
		return err
	}
	s, err := storage.NewSessionRepository(db).Get(id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("session not found: %s", id)
	}

	fmt.Printf("Session: %s\n", s.SessionID)
	fmt.Printf("Source:  %s\n", s.Source)
	fmt.Printf("Started: %s\n", s.StartedAt.Local().Format(time.RFC3339))
	if s.EndedAt != nil {
		fmt.Printf("Ended:   %s\n", s.EndedAt.Local().Format(time.RFC3339))
	}
	if s.Seed != nil {
		fmt.Printf("Seed:    %d\n", uint64(*s.Seed))
	}
	if s.FinalFingerprint != nil {
		fmt.Printf("Final:   %016x\n", *s.FinalFingerprint)
	}
	if s.Notes != nil && *s.Notes != "" {
		fmt.Printf("Notes:   %s\n", *s.Notes)
	}

	moves, err := storage.NewMoveRepository(db).GetBySession(id)
	if err != nil {
		return err
	}
	fmt.Printf("\nMoves (%d):\n", len(moves))
	for _, m := range moves {
		line := fmt.Sprintf("  %4d  %-3s  %5dms  %016x", m.Seq, m.Notation, m.DurationMs, m.Fingerprint)
		if m.Error != nil {
			line += "  " + *m.Error
		}
		fmt.Println(line)
	}

	events, err := storage.NewFaceEventRepository(db).GetBySession(id)
	if err != nil {
		return err
	}
	fmt.Printf("\nFace events (%d):\n", len(events))
	for _, ev := range events {
		fmt.Printf("  %4d  %-6s %s\n", ev.Seq, ev.Face, ev.Transition)
	}

	counts, err := storage.NewFaceEventRepository(db).CountSolved(id)
	if err != nil {
		return err
	}
	if len(counts) > 0 {
		fmt.Println("\nTimes solved:")
		for _, f := range cubegate.Faces {
			if n := counts[f.String()]; n > 0 {
				fmt.Printf("  %-6s %d\n", f, n)
			}
		}
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := resolveSession(db, args[0])
	if err != nil {
		return err
	}
	sessions := storage.NewSessionRepository(db)
	s, err := sessions.Get(id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	if err := sessions.Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", id)
	return nil
}

func runSessionsPrune(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := storage.NewSessionRepository(db).Prune(sessionsKeep)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d sessions\n", removed)
	return nil
}
