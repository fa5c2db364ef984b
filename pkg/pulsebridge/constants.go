// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package pulsebridge implements the framed serial link to a 433 MHz
// receiver/transmitter bridge.
//
// The bridge reports every pulse train it captures and transmits pulse
// trains on request. Frames are byte stuffed, carry a CBOR message of the
// form [msg_type, payload_map] and end in a CRC-16-CCITT checksum.
package pulsebridge

// Protocol framing bytes
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Packet size limits
const (
	MaxPacketSize  = 243 // length + payload + CRC
	MaxPayloadSize = 240
	crcSize        = 2
)

// CRC-16-CCITT configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// Message types - Commands (Host → Bridge) 0x20-0x2F
const (
	MsgTransmit    = 0x20
	MsgPingRequest = 0x2F
)

// Message types - Reports (Bridge → Host) 0x30-0x3F
const (
	MsgCapture      = 0x30
	MsgTransmitDone = 0x31
	MsgPingResponse = 0x3F
)

// Message types - Errors (Bidirectional) 0xE0-0xEF
const (
	MsgError = 0xE0
)

// Payload keys
const (
	keyPulses    = 0
	keyRepeats   = 1
	keyTimestamp = 1
	keyUptime    = 0
	keyCode      = 0
	keyMessage   = 1
	keySent      = 0
)

// Transmit limits enforced by the bridge firmware
const (
	MaxRepeats = 32
	MaxPulseUs = 65535
)

// ErrorCode represents bridge error codes carried by ERROR packets
type ErrorCode int

// Error code values
const (
	ErrorNone         ErrorCode = 0x00
	ErrorInvalidCmd   ErrorCode = 0x01
	ErrorBusy         ErrorCode = 0x02
	ErrorOverflow     ErrorCode = 0x03
	ErrorTransmitFail ErrorCode = 0x04
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLength
	statePayload
	stateCRC1
	stateCRC2
	stateEnd
)
