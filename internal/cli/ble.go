package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/ble"
	"github.com/SeamusWaldron/cubegate/internal/protocol"
	"github.com/SeamusWaldron/cubegate/internal/unlock"
)

var bleCmd = &cobra.Command{
	Use:   "ble",
	Short: "Mirror a GoCube smart cube",
	Long: `Connect to the first GoCube found and mirror its turns onto a fresh
engine. Each physical turn is printed along with face solve transitions.

The cube must be physically solved when the command starts, or pass
--reset-cube to declare its current state solved.`,
	RunE: runBLE,
}

var (
	bleScanTimeout time.Duration
	bleResetCube   bool
	bleNamePrefix  string
)

// batteryPollInterval also serves as the link check: a failed write means
// the cube is gone.
const batteryPollInterval = 30 * time.Second

var errLinkLost = errors.New("cube disconnected")

func init() {
	rootCmd.AddCommand(bleCmd)
	bleCmd.Flags().DurationVar(&bleScanTimeout, "scan-timeout", 5*time.Second, "How long to scan for a cube")
	bleCmd.Flags().BoolVar(&bleResetCube, "reset-cube", false, "Tell the cube its current state is solved")
	bleCmd.Flags().StringVar(&bleNamePrefix, "name", ble.DefaultNamePrefix, "Advertised device name prefix")
}

func runBLE(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	e := a.newEngine(cubegate.Immediate())
	a.links(e).OnChange(func(c unlock.Change) {
		if c.Active {
			fmt.Printf("      unlocked %s %s\n", c.Link.Title, c.Link.URL)
		}
	})
	if err := a.startJournal(e, "ble", nil); err != nil {
		a.finish(e)
		return err
	}

	e.OnMoveDone(func(d cubegate.MoveDone) {
		if d.Err != nil {
			fmt.Printf("%4d  %-3s  error: %v\n", d.Seq, d.Move.Notation(), d.Err)
			return
		}
		fmt.Printf("%4d  %-3s\n", d.Seq, d.Move.Notation())
	})
	e.OnFaceChange(func(ev cubegate.FaceEvent) {
		fmt.Printf("      %s %s\n", ev.Face, ev.Transition)
	})

	client, err := ble.NewClient(a.logger, ble.WithNamePrefix(bleNamePrefix))
	if err != nil {
		a.finish(e)
		return fmt.Errorf("BLE not available: %w", err)
	}
	bridge := ble.NewBridge(e, a.logger)
	bridge.Attach(client)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Scanning for GoCube devices...")
	if err := client.ConnectFirst(ctx, bleScanTimeout); err != nil {
		a.finish(e)
		return err
	}
	fmt.Printf("Connected: %s\n", client.DeviceName())

	if bleResetCube {
		if err := client.ResetSolved(); err != nil {
			a.logger.Warn("failed to reset cube", zap.Error(err))
		}
	}
	fmt.Println("Turn the cube. Ctrl+C to stop.")

	battery := client.Battery()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(batteryPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				battery = client.Battery()
				if err := client.SendCommand(protocol.CmdRequestBattery); err != nil {
					return fmt.Errorf("%w: %v", errLinkLost, err)
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		return client.Disconnect()
	})
	linkErr := g.Wait()

	stats := bridge.Stats()
	link := client.Stats()
	a.logger.Info("bridge stopped",
		zap.Int("frames", link.Frames),
		zap.Int("malformed_frames", link.Malformed),
		zap.Int("messages", stats.Messages),
		zap.Int("rotations", stats.Rotations),
		zap.Int("submitted", stats.Submitted),
		zap.Int("rejected", stats.Rejected),
		zap.Int("malformed", stats.Malformed),
	)
	fmt.Printf("\n%d turns mirrored, battery %s\n", stats.Submitted, batteryLevel(battery))

	if err := a.finish(e); err != nil {
		return err
	}
	if errors.Is(linkErr, context.Canceled) {
		return nil
	}
	return linkErr
}

func batteryLevel(b int) string {
	if b < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d%%", b)
}
