package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/cubegate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cube to renderers over HTTP and websocket",
	Long: `Run the HTTP bridge.

Renderers connect to /ws, receive move_applied frames and acknowledge them
with animation_done; a move completes when a renderer acknowledges it or the
animation timeout passes. The JSON API lives under /api and Prometheus
metrics under /metrics.`,
	RunE: runServe,
}

var serveAddr string

const shutdownTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		a.cfg.Server.Addr = serveAddr
	}

	hub := server.NewHub(a.logger, a.cfg.Server.AllowedOrigin)
	e := a.newEngine(hub)
	links := a.links(e)
	if err := a.startJournal(e, "serve", nil); err != nil {
		a.finish(e)
		return err
	}

	srv := server.New(e, hub, server.Options{
		Addr:          a.cfg.Server.Addr,
		ScrambleMoves: a.cfg.Scramble.Moves,
		Links:         links,
		Logger:        a.logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving on http://%s (ws /ws, api /api, metrics /metrics)\n", a.cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	serveErr := g.Wait()
	if serveErr != nil {
		a.logger.Error("server stopped", zap.Error(serveErr))
	}
	if err := a.finish(e); err != nil {
		return err
	}
	return serveErr
}
