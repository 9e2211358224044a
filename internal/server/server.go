// Package server exposes an engine over HTTP and a renderer websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/unlock"
)

// Options configures a Server.
type Options struct {
	Addr          string
	ScrambleMoves int
	Links         *unlock.Registry
	Logger        *zap.Logger
}

// Server serves the HTTP API for one engine.
type Server struct {
	engine        *cubegate.Engine
	hub           *Hub
	links         *unlock.Registry
	logger        *zap.Logger
	scrambleMoves int

	router *gin.Engine
	http   *http.Server
}

// New builds the router. The engine must have been created with hub as its
// animator for renderer acks to gate move completion.
func New(engine *cubegate.Engine, hub *Hub, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ScrambleMoves <= 0 {
		opts.ScrambleMoves = 20
	}
	if opts.Links == nil {
		opts.Links = unlock.NewRegistry(nil)
	}

	s := &Server{
		engine:        engine,
		hub:           hub,
		links:         opts.Links,
		logger:        opts.Logger,
		scrambleMoves: opts.ScrambleMoves,
	}

	hub.Attach(engine)
	hub.onMove = s.submitAsync
	s.links.OnChange(func(ch unlock.Change) {
		hub.Broadcast(TypeLink, linkFrame{Link: ch.Link, Active: ch.Active})
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", func(c *gin.Context) { hub.ServeWS(c.Writer, c.Request) })

	api := r.Group("/api")
	api.GET("/state", s.handleState)
	api.POST("/moves", s.handleMoves)
	api.POST("/scramble", s.handleScramble)
	api.POST("/reset", s.handleReset)
	api.GET("/links", s.handleLinks)

	s.router = r
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and disconnects renderers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func errMsg(msg string) gin.H {
	return gin.H{"error": msg}
}

// moveRequest is either a notation string or one descriptor.
type moveRequest struct {
	Notation  string              `json:"notation"`
	Axis      *cubegate.Axis      `json:"axis"`
	Layer     *int                `json:"layer"`
	Direction *cubegate.Direction `json:"direction"`
}

func (r moveRequest) moves() ([]cubegate.Move, error) {
	if r.Notation != "" {
		moves, err := cubegate.ParseMoves(r.Notation)
		if err != nil {
			return nil, err
		}
		if len(moves) == 0 {
			return nil, &cubegate.InvalidMoveError{Field: "notation", Value: r.Notation}
		}
		return moves, nil
	}

	switch {
	case r.Axis == nil:
		return nil, &cubegate.InvalidMoveError{Field: "axis", Value: ""}
	case r.Layer == nil:
		return nil, &cubegate.InvalidMoveError{Field: "layer", Value: ""}
	case r.Direction == nil:
		return nil, &cubegate.InvalidMoveError{Field: "direction", Value: ""}
	}
	m, err := cubegate.NewMove(*r.Axis, *r.Layer, *r.Direction)
	if err != nil {
		return nil, err
	}
	return []cubegate.Move{m}, nil
}

type scrambleRequest struct {
	Moves int     `json:"moves" binding:"omitempty,gte=1,lte=1000"`
	Seed  *uint64 `json:"seed"`
}

type faceState struct {
	Facelets [9]cubegate.Color `json:"facelets"`
	Solved   bool              `json:"solved"`
}

type stateResponse struct {
	Cubies      []cubegate.Cubie            `json:"cubies"`
	Faces       map[cubegate.Face]faceState `json:"faces"`
	Fingerprint string                      `json:"fingerprint"`
	Busy        bool                        `json:"busy"`
	Links       []unlock.Link               `json:"links"`
	Fault       string                      `json:"fault,omitempty"`
}

type resultResponse struct {
	Moves       []string        `json:"moves"`
	ID          string          `json:"id,omitempty"`
	Seq         uint64          `json:"seq,omitempty"`
	Fingerprint string          `json:"fingerprint"`
	Solved      []cubegate.Face `json:"solved"`
	Error       string          `json:"error,omitempty"`
}

type linkFrame struct {
	unlock.Link
	Active bool `json:"active"`
}

func fingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func (s *Server) state() stateResponse {
	solved := make(map[cubegate.Face]bool)
	for _, f := range s.engine.SolvedFaces() {
		solved[f] = true
	}
	faces := make(map[cubegate.Face]faceState, len(cubegate.Faces))
	for _, f := range cubegate.Faces {
		faces[f] = faceState{Facelets: s.engine.Facelets(f), Solved: solved[f]}
	}

	resp := stateResponse{
		Cubies:      s.engine.Snapshot(),
		Faces:       faces,
		Fingerprint: fingerprint(s.engine.Fingerprint()),
		Busy:        s.engine.Busy(),
		Links:       s.links.Links(),
	}
	if err := s.engine.Fault(); err != nil {
		resp.Fault = err.Error()
	}
	return resp
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) handleLinks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"links": s.links.Links()})
}

func (s *Server) handleMoves(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errMsg(err.Error()))
		return
	}
	moves, err := req.moves()
	if err != nil {
		c.JSON(statusFor(err), errMsg(err.Error()))
		return
	}

	f, err := s.submit(moves)
	if err != nil {
		c.JSON(statusFor(err), errMsg(err.Error()))
		return
	}
	s.respond(c, moves, f)
}

func (s *Server) handleScramble(c *gin.Context) {
	var req scrambleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errMsg(err.Error()))
			return
		}
	}
	n := req.Moves
	if n == 0 {
		n = s.scrambleMoves
	}

	var (
		moves []cubegate.Move
		f     *cubegate.Future
		err   error
	)
	if req.Seed != nil {
		moves, f, err = s.engine.ScrambleSeeded(n, *req.Seed)
	} else {
		moves, f, err = s.engine.Scramble(n)
	}
	if err != nil {
		c.JSON(statusFor(err), errMsg(err.Error()))
		return
	}
	s.respond(c, moves, f)
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.engine.Reset(); err != nil {
		c.JSON(statusFor(err), errMsg(err.Error()))
		return
	}
	st := s.state()
	s.hub.Broadcast(TypeReset, gin.H{"fingerprint": st.Fingerprint})
	c.JSON(http.StatusOK, st)
}

// respond waits for the future and reports the outcome. A move that timed
// out was still committed, so the body carries the state alongside the 504.
func (s *Server) respond(c *gin.Context, moves []cubegate.Move, f *cubegate.Future) {
	err := f.Wait(c.Request.Context())

	resp := resultResponse{
		Moves:       notations(moves),
		ID:          f.ID(),
		Seq:         f.Seq(),
		Fingerprint: fingerprint(s.engine.Fingerprint()),
		Solved:      s.engine.SolvedFaces(),
	}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

func (s *Server) submit(moves []cubegate.Move) (*cubegate.Future, error) {
	if len(moves) == 1 {
		return s.engine.Submit(moves[0])
	}
	return s.engine.SubmitMoves(moves...)
}

// submitAsync queues a renderer's move without waiting for it.
func (s *Server) submitAsync(req moveRequest) error {
	moves, err := req.moves()
	if err != nil {
		return err
	}
	_, err = s.submit(moves)
	return err
}

func notations(moves []cubegate.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.Notation()
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cubegate.ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, cubegate.ErrConcurrentReset):
		return http.StatusConflict
	case errors.Is(err, cubegate.ErrAnimationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, cubegate.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
