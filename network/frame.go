package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

const headerSize = 4

// ErrPayloadTooLarge is returned when a payload does not fit the 16-bit length field.
var ErrPayloadTooLarge = errors.New("payload exceeds frame size")

type Packet struct {
	MsgID  uint16
	Data   []byte
	Length uint16
}

// EncodeFrame packs a message: 2-byte message id + 2-byte data length + data, big endian.
func EncodeFrame(msgID uint16, data []byte) ([]byte, error) {
	if len(data) > math.MaxUint16 {
		return nil, ErrPayloadTooLarge
	}
	packet := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[headerSize:], data)
	return packet, nil
}

// DecodeFrame unpacks a frame produced by EncodeFrame.
func DecodeFrame(data []byte) (*Packet, error) {
	if len(data) < headerSize {
		return nil, io.ErrShortBuffer
	}

	msgID := binary.BigEndian.Uint16(data[0:2])
	length := binary.BigEndian.Uint16(data[2:4])

	if len(data) < headerSize+int(length) {
		return nil, io.ErrShortBuffer
	}

	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   data[headerSize : headerSize+int(length)],
	}, nil
}

// DecodePayload unmarshals the JSON body of a packet into T.
func DecodePayload[T any](p *Packet) (T, error) {
	var out T
	if len(p.Data) == 0 {
		return out, fmt.Errorf("empty payload for %s", MsgName(p.MsgID))
	}
	if err := json.Unmarshal(p.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", MsgName(p.MsgID), err)
	}
	return out, nil
}
