package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Turn the cube from the keyboard",
	Long: `Play the cube in the terminal.

Keys r l u d f b m e s turn the named layer; hold SHIFT for the inverse.
z undoes the last move, 1 scrambles, 0 resets and q quits.

Logs are written to ~/.cubegate/play.log so they do not disturb the screen.`,
	RunE: runPlay,
}

var playScramble bool

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolVar(&playScramble, "scramble", false, "Scramble the cube before starting")
}

func runPlay(cmd *cobra.Command, args []string) error {
	logPath, err := playLogPath()
	if err != nil {
		return err
	}
	a, err := newApp(logPath)
	if err != nil {
		return err
	}

	e := a.newEngine(cubegate.Delay(a.cfg.Animation.Duration))
	links := a.links(e)
	if err := a.startJournal(e, "play", nil); err != nil {
		a.finish(e)
		return err
	}

	model := tui.New(e, tui.Options{
		ScrambleMoves: a.cfg.Scramble.Moves,
		Links:         links,
	})
	if playScramble {
		if _, _, err := e.Scramble(a.cfg.Scramble.Moves); err != nil {
			a.finish(e)
			return err
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	if err := a.finish(e); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("player error: %w", runErr)
	}

	fmt.Printf("%d moves played\n", len(model.History()))
	if id := a.journalID(); id != "" {
		fmt.Printf("Journal session: %s\n", id)
	}
	return nil
}

func playLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".cubegate")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return filepath.Join(dir, "play.log"), nil
}
