// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

import "time"

// Packet represents a decoded bridge packet
type Packet struct {
	length      uint8
	cborPayload []byte // Raw CBOR bytes: [msg_type, payload_map]
	crc         uint16
	timestamp   time.Time

	// Cached parsed values (lazy parsing)
	msgType    uint8
	payloadMap map[int]interface{}
	parsed     bool
	parseErr   error
}

// NewPacket creates a new packet from its wire fields
func NewPacket(length uint8, cborPayload []byte, crc uint16) *Packet {
	return &Packet{
		length:      length,
		cborPayload: cborPayload,
		crc:         crc,
		timestamp:   time.Now(),
	}
}

// NewPacketWithPayload creates a new packet from message type and payload map.
// The CBOR encoding and CRC are computed when the packet is encoded.
func NewPacketWithPayload(msgType uint8, payload map[int]interface{}) *Packet {
	return &Packet{
		msgType:    msgType,
		payloadMap: payload,
		parsed:     true,
		timestamp:  time.Now(),
	}
}

// ensureParsed parses the CBOR payload if not already done
func (p *Packet) ensureParsed() {
	if p.parsed {
		return
	}
	p.parsed = true
	if len(p.cborPayload) == 0 {
		return
	}
	p.msgType, p.payloadMap, p.parseErr = ParseCBORMessage(p.cborPayload)
}

// Length returns the packet's CBOR payload length
func (p *Packet) Length() uint8 {
	return p.length
}

// Type returns the packet's message type (parsed from CBOR)
func (p *Packet) Type() uint8 {
	p.ensureParsed()
	return p.msgType
}

// Payload returns the raw CBOR payload bytes
func (p *Packet) Payload() []byte {
	return p.cborPayload
}

// PayloadMap returns the decoded CBOR payload map (nil for empty payloads)
func (p *Packet) PayloadMap() map[int]interface{} {
	p.ensureParsed()
	return p.payloadMap
}

// ParseError returns any error from parsing the CBOR payload
func (p *Packet) ParseError() error {
	p.ensureParsed()
	return p.parseErr
}

// CRC returns the packet's CRC value
func (p *Packet) CRC() uint16 {
	return p.crc
}

// Timestamp returns the packet's decode timestamp
func (p *Packet) Timestamp() time.Time {
	return p.timestamp
}

// Pulses returns the pulse train of a CAPTURE or TRANSMIT packet
func (p *Packet) Pulses() ([]uint32, bool) {
	switch p.Type() {
	case MsgCapture, MsgTransmit:
		return GetMapPulses(p.PayloadMap(), keyPulses)
	}
	return nil, false
}

// CaptureTime returns the bridge clock of a CAPTURE packet in microseconds
func (p *Packet) CaptureTime() (uint64, bool) {
	if p.Type() != MsgCapture {
		return 0, false
	}
	return GetMapUint(p.PayloadMap(), keyTimestamp)
}

// Repeats returns the repeat count of a TRANSMIT or TRANSMIT_DONE packet
func (p *Packet) Repeats() (uint64, bool) {
	switch p.Type() {
	case MsgTransmit:
		return GetMapUint(p.PayloadMap(), keyRepeats)
	case MsgTransmitDone:
		return GetMapUint(p.PayloadMap(), keySent)
	}
	return 0, false
}

// Uptime returns the bridge uptime of a PING_RESPONSE packet in milliseconds
func (p *Packet) Uptime() (uint64, bool) {
	if p.Type() != MsgPingResponse {
		return 0, false
	}
	return GetMapUint(p.PayloadMap(), keyUptime)
}

// BridgeError returns the code and message of an ERROR packet
func (p *Packet) BridgeError() (ErrorCode, string, bool) {
	if p.Type() != MsgError {
		return 0, "", false
	}
	code, ok := GetMapUint(p.PayloadMap(), keyCode)
	if !ok {
		return 0, "", false
	}
	msg, _ := GetMapString(p.PayloadMap(), keyMessage)
	return ErrorCode(code), msg, true
}
