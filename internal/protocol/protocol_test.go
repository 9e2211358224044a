package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubegate"
)

func TestBuildParseRoundTrip(t *testing.T) {
	frame := Build(MsgTypeRotation, []byte{0x08, 0x00, 0x05, 0x03})
	assert.Equal(t, byte(0x2A), frame[0])
	assert.Equal(t, byte(8), frame[1])
	assert.Equal(t, []byte{0x0D, 0x0A}, frame[len(frame)-2:])

	msg, err := Parse(frame)
	require.NoError(t, err)
	assert.Equal(t, MsgTypeRotation, msg.Type)
	assert.Equal(t, []byte{0x08, 0x00, 0x05, 0x03}, msg.Payload)
	assert.Equal(t, "rotation", MessageTypeName(msg.Type))
}

func TestParseErrors(t *testing.T) {
	good := Build(MsgTypeBattery, []byte{80})

	_, err := Parse(good[:4])
	assert.ErrorIs(t, err, ErrMessageTooShort)

	bad := append([]byte(nil), good...)
	bad[0] = 0x00
	_, err = Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidPrefix)

	bad = append([]byte(nil), good...)
	bad[3]++ // payload changes, checksum does not
	_, err = Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidChecksum)

	bad = append([]byte(nil), good...)
	bad[len(bad)-1] = 0x00
	_, err = Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidSuffix)

	bad = append([]byte(nil), good...)
	bad[1] = 40
	_, err = Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestDecodeRotation(t *testing.T) {
	// red clockwise, orange counter-clockwise, white clockwise
	events, err := DecodeRotation([]byte{0x08, 0x00, 0x0B, 0x03, 0x04, 0x06})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, cubegate.Red, events[0].Color)
	assert.True(t, events[0].Clockwise)
	assert.Equal(t, cubegate.Right, events[0].Face())
	assert.Equal(t, byte(0x03), events[1].CenterOrientation)
	assert.False(t, events[1].Clockwise)

	moves, err := DecodeMoves([]byte{0x08, 0x00, 0x0B, 0x03, 0x04, 0x06})
	require.NoError(t, err)
	assert.Equal(t, []cubegate.Move{cubegate.R, cubegate.LPrime, cubegate.U}, moves)
}

func TestDecodeRotationEveryCode(t *testing.T) {
	want := map[byte]cubegate.Move{
		0x00: cubegate.B, 0x01: cubegate.BPrime,
		0x02: cubegate.F, 0x03: cubegate.FPrime,
		0x04: cubegate.U, 0x05: cubegate.UPrime,
		0x06: cubegate.D, 0x07: cubegate.DPrime,
		0x08: cubegate.R, 0x09: cubegate.RPrime,
		0x0A: cubegate.L, 0x0B: cubegate.LPrime,
	}
	for code, m := range want {
		moves, err := DecodeMoves([]byte{code, 0})
		require.NoError(t, err)
		assert.Equal(t, []cubegate.Move{m}, moves, "code 0x%02X", code)
	}
}

func TestDecodeRotationErrors(t *testing.T) {
	_, err := DecodeRotation([]byte{0x01})
	assert.Error(t, err)
	_, err = DecodeRotation([]byte{0x0C, 0x00})
	assert.Error(t, err)
}

func TestDecodeBatteryAndType(t *testing.T) {
	b, err := DecodeBattery([]byte{73})
	require.NoError(t, err)
	assert.Equal(t, 73, b.Level)
	_, err = DecodeBattery(nil)
	assert.Error(t, err)

	ct, err := DecodeCubeType([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, "edge", ct.TypeName)
}

func TestBuildCommand(t *testing.T) {
	cmd := BuildCommand(CmdRequestBattery)
	assert.Equal(t, []byte{0x2A, 0x01, 0x32, 0x5D, 0x0D, 0x0A}, cmd)
}
