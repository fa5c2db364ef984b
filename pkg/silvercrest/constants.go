// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package silvercrest implements the Silvercrest "new protocol" 433.92 MHz
// remote-control codec.
//
// A frame is 50 pulse durations: 24 mark/space pairs carrying one bit each,
// a trailing mark and a footer gap. The first 20 bits hold the system code,
// obfuscated with a feedback XOR chain over 4-bit nibbles; the last 4 bits
// hold the unit number in the clear. The final system code nibble doubles as
// the on/off state code.
//
// Every function in this package is pure and safe for concurrent use.
package silvercrest

// Pulse timings in microseconds
const (
	PulseShort  = 550
	PulseLong   = 1100
	PulseFooter = 7200

	// A pair whose trailing pulse exceeds this is a zero bit
	PulseThreshold = 550
)

// Frame layout
const (
	RawLength = 50
	BitCount  = 24

	// Footer gap tolerance, ±10% of PulseFooter
	MinFooter = PulseFooter * 9 / 10
	MaxFooter = PulseFooter * 11 / 10
)

// Bit positions of the frame fields
const (
	posType     = 0
	posSeed     = 4
	posPayload1 = 8
	posPayload2 = 12
	posPayload3 = 16
	posUnit     = 20

	identifierBits = 20
	nibbleMask     = 0x0F
)

// Protocol registration values carried over from the pilight protocol table
const (
	ProtocolID          = "silvercrest_new"
	ProtocolDescription = "Silvercrest remote and switches (new protocol)"

	// DefaultRepeats is how many times a frame is sent per command
	DefaultRepeats = 4

	// MaxUnit is the highest unit number the wire format can carry
	MaxUnit = 15
)
