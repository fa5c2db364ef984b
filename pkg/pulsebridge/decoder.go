// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

import (
	"errors"
	"fmt"
	"time"
)

// ErrCRCMismatch is returned when a complete frame fails its checksum
var ErrCRCMismatch = errors.New("CRC mismatch")

// Decoder implements the bridge packet decoder state machine
type Decoder struct {
	state       int
	buffer      []byte
	bufferIndex int
	escapeNext  bool
	length      uint8
	crc         uint16
	rawBuffer   []byte // Accumulate raw bytes including framing
}

// NewDecoder creates a new packet decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:     stateIdle,
		buffer:    make([]byte, MaxPacketSize),
		rawBuffer: make([]byte, 0, MaxPacketSize*2),
	}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.bufferIndex = 0
	d.escapeNext = false
	d.length = 0
	d.crc = 0
	d.rawBuffer = d.rawBuffer[:0]
}

// GetRawBytes returns the accumulated raw bytes since the last packet
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed packet, or nil if the packet is incomplete.
// Returns an error if decoding fails; the decoder is then back in idle.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	d.rawBuffer = append(d.rawBuffer, b)

	// Framing bytes are never escaped on the wire
	switch {
	case b == StartByte:
		d.Reset()
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateLength
		return nil, nil

	case b == EndByte:
		if d.state == stateEnd && !d.escapeNext {
			return d.finish()
		}
		state := d.state
		d.Reset()
		if state == stateIdle {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected END byte in state %d", state)

	case b == EscByte && !d.escapeNext:
		d.escapeNext = true
		return nil, nil
	}

	if d.escapeNext {
		b ^= EscXor
		d.escapeNext = false
	}

	switch d.state {
	case stateIdle:
		// Waiting for START byte
		return nil, nil

	case stateLength:
		if b > MaxPayloadSize {
			d.Reset()
			return nil, fmt.Errorf("invalid length: %d (max %d)", b, MaxPayloadSize)
		}
		d.length = b
		d.buffer[0] = b
		d.bufferIndex = 1
		if b == 0 {
			d.state = stateCRC1
		} else {
			d.state = statePayload
		}
		return nil, nil

	case statePayload:
		if d.bufferIndex >= MaxPacketSize-crcSize {
			d.Reset()
			return nil, fmt.Errorf("buffer overflow: packet exceeds max size")
		}
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		if d.bufferIndex > int(d.length) {
			d.state = stateCRC1
		}
		return nil, nil

	case stateCRC1:
		d.crc = uint16(b) << 8
		d.state = stateCRC2
		return nil, nil

	case stateCRC2:
		d.crc |= uint16(b)
		d.state = stateEnd
		return nil, nil

	case stateEnd:
		d.Reset()
		return nil, fmt.Errorf("missing END byte")

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}

// finish validates the buffered frame and builds the packet
func (d *Decoder) finish() (*Packet, error) {
	n := d.bufferIndex
	calculatedCRC := CalculateCRC(d.buffer[:n])
	if d.crc != calculatedCRC {
		err := fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrCRCMismatch, calculatedCRC, d.crc)
		d.Reset()
		return nil, err
	}

	payload := make([]byte, n-1)
	copy(payload, d.buffer[1:n])
	packet := NewPacket(d.length, payload, d.crc)
	packet.timestamp = time.Now()

	d.Reset()
	return packet, nil
}
