package ble

import (
	"sync"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubegate"
	"github.com/SeamusWaldron/cubegate/internal/protocol"
)

// Submitter accepts moves. *cubegate.Engine satisfies it.
type Submitter interface {
	Submit(m cubegate.Move) (*cubegate.Future, error)
}

// BridgeStats counts what the bridge has seen.
type BridgeStats struct {
	Messages  int
	Rotations int
	Submitted int
	Rejected  int
	Malformed int
}

// Bridge mirrors physical turns onto an engine. Each rotation in a
// notification becomes one submitted move, in order.
type Bridge struct {
	target Submitter
	logger *zap.Logger

	mu    sync.Mutex
	stats BridgeStats
}

// NewBridge creates a bridge submitting to target.
func NewBridge(target Submitter, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{target: target, logger: logger}
}

// Attach routes the client's messages through the bridge.
func (b *Bridge) Attach(c *Client) {
	c.SetMessageCallback(b.Handle)
}

// Handle processes one decoded message. Non-rotation messages are counted
// and otherwise ignored.
func (b *Bridge) Handle(msg *protocol.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.Messages++
	if msg.Type != protocol.MsgTypeRotation {
		return
	}

	moves, err := protocol.DecodeMoves(msg.Payload)
	if err != nil {
		b.stats.Malformed++
		b.logger.Warn("bad rotation payload", zap.Binary("payload", msg.Payload), zap.Error(err))
		return
	}

	for _, m := range moves {
		b.stats.Rotations++
		if _, err := b.target.Submit(m); err != nil {
			b.stats.Rejected++
			b.logger.Warn("cube move rejected", zap.Stringer("move", m), zap.Error(err))
			continue
		}
		b.stats.Submitted++
		b.logger.Debug("cube move", zap.Stringer("move", m))
	}
}

// Stats returns a copy of the counters.
func (b *Bridge) Stats() BridgeStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
