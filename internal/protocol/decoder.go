package protocol

import (
	"fmt"

	"github.com/SeamusWaldron/cubegate"
)

// RotationEvent is a single face rotation reported by the cube.
type RotationEvent struct {
	FaceCode          byte // raw face+direction code (0x00-0x0B)
	CenterOrientation byte
	Clockwise         bool
	Color             cubegate.Color // center color of the turned face
}

// Face returns the face whose center shows the event's color on a cube in
// the standard scheme.
func (e RotationEvent) Face() cubegate.Face {
	for _, f := range cubegate.Faces {
		if f.SolvedColor() == e.Color {
			return f
		}
	}
	return cubegate.Up
}

// Move converts the rotation into an engine move descriptor. GoCube
// directions are as seen looking at the turned face.
func (e RotationEvent) Move() cubegate.Move {
	return cubegate.FaceTurn(e.Face(), e.Clockwise)
}

// BatteryEvent is a battery level notification.
type BatteryEvent struct {
	Level int // 0-100 percentage
}

// CubeTypeEvent is a cube type notification.
type CubeTypeEvent struct {
	TypeCode byte
	TypeName string
}

// colorIndex maps the GoCube color index (face code / 2) to sticker colors.
var colorIndex = [...]cubegate.Color{
	0: cubegate.Blue,
	1: cubegate.Green,
	2: cubegate.White,
	3: cubegate.Yellow,
	4: cubegate.Red,
	5: cubegate.Orange,
}

// DecodeRotation decodes a rotation message payload into rotation events.
// Rotation payloads contain pairs of bytes: [face_dir] [center_orientation]
func DecodeRotation(payload []byte) ([]RotationEvent, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("rotation payload must have even length, got %d", len(payload))
	}

	events := make([]RotationEvent, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		faceCode := payload[i]

		// Even codes are clockwise, odd codes counter-clockwise.
		idx := int(faceCode / 2)
		if idx >= len(colorIndex) {
			return nil, fmt.Errorf("unknown color index %d from face code 0x%02X", idx, faceCode)
		}

		events = append(events, RotationEvent{
			FaceCode:          faceCode,
			CenterOrientation: payload[i+1],
			Clockwise:         faceCode%2 == 0,
			Color:             colorIndex[idx],
		})
	}

	return events, nil
}

// DecodeMoves decodes a rotation payload straight into move descriptors.
func DecodeMoves(payload []byte) ([]cubegate.Move, error) {
	events, err := DecodeRotation(payload)
	if err != nil {
		return nil, err
	}
	moves := make([]cubegate.Move, len(events))
	for i, ev := range events {
		moves[i] = ev.Move()
	}
	return moves, nil
}

// DecodeBattery decodes a battery message payload.
func DecodeBattery(payload []byte) (*BatteryEvent, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("battery payload too short")
	}
	return &BatteryEvent{
		Level: int(payload[0]),
	}, nil
}

// DecodeCubeType decodes a cube type message payload.
func DecodeCubeType(payload []byte) (*CubeTypeEvent, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("cube type payload too short")
	}

	typeName := "standard"
	if payload[0] == 0x01 {
		typeName = "edge"
	}

	return &CubeTypeEvent{
		TypeCode: payload[0],
		TypeName: typeName,
	}, nil
}
