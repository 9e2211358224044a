package cubegate

import (
	"time"

	"go.uber.org/zap"
)

// Option configures engine behavior.
type Option func(*config)

type config struct {
	animator    Animator
	moveTimeout time.Duration
	logger      *zap.Logger
	seed        uint64
	metrics     bool
}

// DefaultMoveTimeout bounds how long the sequencer waits for a renderer.
const DefaultMoveTimeout = 5 * time.Second

func defaultConfig() *config {
	return &config{
		animator:    Immediate(),
		moveTimeout: DefaultMoveTimeout,
		logger:      zap.NewNop(),
		seed:        uint64(time.Now().UnixNano()),
		metrics:     true,
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAnimator sets the renderer that reports when each move's animation is
// finished. The default completes immediately.
func WithAnimator(a Animator) Option {
	return func(c *config) {
		if a != nil {
			c.animator = a
		}
	}
}

// WithMoveTimeout bounds the wait for a move's animation. When it elapses the
// move is committed anyway and its future resolves with ErrAnimationTimeout.
// Zero waits indefinitely.
func WithMoveTimeout(d time.Duration) Option {
	return func(c *config) {
		c.moveTimeout = d
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSeed fixes the scramble random source for reproducible scrambles.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithMetrics enables or disables Prometheus metric updates (default enabled).
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		c.metrics = enabled
	}
}
