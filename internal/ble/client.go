// Package ble connects to a GoCube smart cube and turns its rotation
// notifications into engine moves.
package ble

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/SeamusWaldron/cubegate/internal/protocol"
)

// Errors
var (
	ErrNotConnected     = errors.New("ble: not connected to device")
	ErrAlreadyConnected = errors.New("ble: already connected to a device")
	ErrDeviceNotFound   = errors.New("ble: device not found")
)

// BLE UUIDs
var (
	serviceUUID = mustParseUUID(protocol.ServiceUUID)
	txCharUUID  = mustParseUUID(protocol.TxCharUUID)
	rxCharUUID  = mustParseUUID(protocol.RxCharUUID)
)

func mustParseUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(fmt.Sprintf("ble: bad uuid %q: %v", s, err))
	}
	return u
}

// DefaultNamePrefix matches the advertised names of GoCube devices.
const DefaultNamePrefix = "gocube"

// ScanResult is a discovered GoCube device.
type ScanResult struct {
	Name    string
	Address bluetooth.Address
	RSSI    int16
}

// LinkStats counts notifications received from the cube.
type LinkStats struct {
	Frames    int
	Malformed int
}

// Client is a link to one GoCube. It owns the adapter scan, the GATT
// characteristics and the notification stream; decoded frames go to the
// message callback.
type Client struct {
	adapter    *bluetooth.Adapter
	logger     *zap.Logger
	namePrefix string

	mu      sync.RWMutex
	device  bluetooth.Device
	rxChar  bluetooth.DeviceCharacteristic
	link    *ScanResult
	battery int
	stats   LinkStats

	onMessage func(*protocol.Message)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithNamePrefix matches devices whose advertised name starts with prefix,
// case-insensitively.
func WithNamePrefix(prefix string) ClientOption {
	return func(c *Client) { c.namePrefix = strings.ToLower(prefix) }
}

// NewClient enables the default adapter.
func NewClient(logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w", err)
	}
	c := newClient(logger, opts...)
	c.adapter = adapter
	return c, nil
}

func newClient(logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		logger:     logger,
		namePrefix: DefaultNamePrefix,
		battery:    -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMessageCallback sets the callback for decoded frames. It runs on the
// adapter's notification goroutine.
func (c *Client) SetMessageCallback(cb func(*protocol.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = cb
}

func (c *Client) matches(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), c.namePrefix)
}

// Scan listens for advertisements until timeout or ctx ends and returns
// the matching devices, strongest signal first.
func (c *Client) Scan(ctx context.Context, timeout time.Duration) ([]ScanResult, error) {
	if c.IsConnected() {
		return nil, ErrAlreadyConnected
	}

	var (
		mu    sync.Mutex
		found = make(map[string]ScanResult)
	)
	done := make(chan error, 1)
	go func() {
		done <- c.adapter.Scan(func(_ *bluetooth.Adapter, adv bluetooth.ScanResult) {
			name := adv.LocalName()
			if !c.matches(name) {
				return
			}
			mu.Lock()
			found[adv.Address.String()] = ScanResult{Name: name, Address: adv.Address, RSSI: adv.RSSI}
			mu.Unlock()
		})
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := c.adapter.StopScan(); err != nil {
		c.logger.Debug("stop scan", zap.Error(err))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return rankResults(found), nil
}

// rankResults orders scan results by RSSI, then name.
func rankResults(found map[string]ScanResult) []ScanResult {
	results := make([]ScanResult, 0, len(found))
	for _, r := range found {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].RSSI != results[j].RSSI {
			return results[i].RSSI > results[j].RSSI
		}
		return results[i].Name < results[j].Name
	})
	return results
}

// Connect opens a link to the scanned device and subscribes to its
// notifications. The cube is asked for its battery level once connected.
func (c *Client) Connect(ctx context.Context, target ScanResult) error {
	if c.IsConnected() {
		return ErrAlreadyConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	device, err := c.adapter.Connect(target.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target.Name, err)
	}

	tx, rx, err := discover(device)
	if err == nil {
		err = tx.EnableNotifications(c.handleNotification)
		if err != nil {
			err = fmt.Errorf("failed to enable notifications: %w", err)
		}
	}
	if err != nil {
		device.Disconnect()
		return err
	}

	c.mu.Lock()
	c.device = device
	c.rxChar = rx
	c.link = &target
	c.mu.Unlock()

	c.logger.Info("connected to cube",
		zap.String("device", target.Name),
		zap.String("address", target.Address.String()),
		zap.Int16("rssi", target.RSSI),
	)
	if err := c.SendCommand(protocol.CmdRequestBattery); err != nil {
		c.logger.Warn("battery request failed", zap.Error(err))
	}
	return nil
}

// discover finds the GoCube service's notify (tx) and write (rx)
// characteristics.
func discover(device bluetooth.Device) (tx, rx bluetooth.DeviceCharacteristic, err error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		return tx, rx, fmt.Errorf("failed to discover services: %w", err)
	}
	if len(services) == 0 {
		return tx, rx, errors.New("ble: GoCube service not found")
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{txCharUUID, rxCharUUID})
	if err != nil {
		return tx, rx, fmt.Errorf("failed to discover characteristics: %w", err)
	}

	var haveTx, haveRx bool
	for _, ch := range chars {
		switch ch.UUID() {
		case txCharUUID:
			tx, haveTx = ch, true
		case rxCharUUID:
			rx, haveRx = ch, true
		}
	}
	if !haveTx || !haveRx {
		return tx, rx, errors.New("ble: GoCube characteristics missing")
	}
	return tx, rx, nil
}

// ConnectFirst scans and connects to the strongest GoCube in range.
func (c *Client) ConnectFirst(ctx context.Context, timeout time.Duration) error {
	results, err := c.Scan(ctx, timeout)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return ErrDeviceNotFound
	}
	return c.Connect(ctx, results[0])
}

// Disconnect drops the link. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.link == nil {
		return nil
	}
	err := c.device.Disconnect()
	c.link = nil
	c.battery = -1
	return err
}

// IsConnected reports whether a link is open.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.link != nil
}

// DeviceName returns the linked device's name, or "".
func (c *Client) DeviceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.link == nil {
		return ""
	}
	return c.link.Name
}

// Battery returns the last reported battery percentage, -1 if unknown.
func (c *Client) Battery() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.battery
}

// Stats returns notification counters.
func (c *Client) Stats() LinkStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// SendCommand writes a command frame, falling back to a write with
// response when the characteristic rejects write-without-response.
func (c *Client) SendCommand(cmd byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.link == nil {
		return ErrNotConnected
	}
	frame := protocol.BuildCommand(cmd)
	if _, err := c.rxChar.WriteWithoutResponse(frame); err == nil {
		return nil
	}
	if _, err := c.rxChar.Write(frame); err != nil {
		return fmt.Errorf("failed to send command 0x%02x: %w", cmd, err)
	}
	return nil
}

// ResetSolved tells the cube its current physical state is solved, matching
// a freshly reset engine.
func (c *Client) ResetSolved() error {
	return c.SendCommand(protocol.CmdResetSolved)
}

func (c *Client) handleNotification(data []byte) {
	msg, err := protocol.Parse(data)

	c.mu.Lock()
	c.stats.Frames++
	if err != nil {
		c.stats.Malformed++
		c.mu.Unlock()
		c.logger.Debug("dropping malformed notification", zap.Binary("raw", data), zap.Error(err))
		return
	}
	if msg.Type == protocol.MsgTypeBattery {
		if b, err := protocol.DecodeBattery(msg.Payload); err == nil {
			c.battery = b.Level
		}
	}
	cb := c.onMessage
	c.mu.Unlock()

	if cb != nil {
		cb(msg)
	}
}
