// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import (
	"fmt"
	"strings"
)

// Bits is the 24-bit payload of a frame. Bit position p (0..23, earliest
// transmitted first) is stored at bit p of the underlying value.
type Bits uint32

// bitsMask covers the 24 frame positions
const bitsMask = 1<<BitCount - 1

// Bit reports whether the bit at position pos is set
func (b Bits) Bit(pos int) bool {
	if pos < 0 || pos >= BitCount {
		return false
	}
	return b&(1<<uint(pos)) != 0
}

// WithBit returns a copy of b with position pos set
func (b Bits) WithBit(pos int) Bits {
	if pos < 0 || pos >= BitCount {
		return b
	}
	return b | 1<<uint(pos)
}

// nibble reads the 4 positions starting at pos, most significant first
func (b Bits) nibble(pos int) uint8 {
	var v uint8
	for i := 0; i < 4; i++ {
		v <<= 1
		if b.Bit(pos + i) {
			v |= 1
		}
	}
	return v
}

// Type returns the system code type nibble (positions 0-3)
func (b Bits) Type() uint8 {
	return b.nibble(posType)
}

// Seed returns the encoded chain seed (positions 4-7)
func (b Bits) Seed() uint8 {
	return b.nibble(posSeed)
}

// Payload returns encoded payload nibble n (1..3). Out of range n yields 0.
func (b Bits) Payload(n int) uint8 {
	switch n {
	case 1:
		return b.nibble(posPayload1)
	case 2:
		return b.nibble(posPayload2)
	case 3:
		return b.nibble(posPayload3)
	}
	return 0
}

// StateCode returns the state code, which is also the last encoded payload
// nibble (positions 16-19)
func (b Bits) StateCode() uint8 {
	return b.nibble(posPayload3)
}

// Unit returns the unit number (positions 20-23, least significant first)
func (b Bits) Unit() uint8 {
	var v uint8
	for i := 0; i < 4; i++ {
		if b.Bit(posUnit + i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Encoded returns the 20-bit encoded identifier as transmitted in positions
// 0-19. Position p carries value bit 19-p.
func (b Bits) Encoded() uint32 {
	var v uint32
	for p := 0; p < identifierBits; p++ {
		v <<= 1
		if b.Bit(p) {
			v |= 1
		}
	}
	return v
}

// WithEncoded returns a copy of b with the 1-bits of a 20-bit encoded
// identifier written into positions 0-19. Bits above 20 are ignored.
func (b Bits) WithEncoded(encoded uint32) Bits {
	for p := 0; p < identifierBits; p++ {
		if encoded&(1<<uint(identifierBits-1-p)) != 0 {
			b = b.WithBit(p)
		}
	}
	return b
}

// WithUnit returns a copy of b with the 1-bits of unit written into
// positions 20-23
func (b Bits) WithUnit(unit uint8) Bits {
	for i := 0; i < 4; i++ {
		if unit&(1<<uint(i)) != 0 {
			b = b.WithBit(posUnit + i)
		}
	}
	return b
}

// String renders the 24 positions as '0'/'1' characters, position 0 first
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(BitCount)
	for p := 0; p < BitCount; p++ {
		if b.Bit(p) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ParseBits parses a 24-character '0'/'1' string as produced by String
func ParseBits(s string) (Bits, error) {
	if len(s) != BitCount {
		return 0, fmt.Errorf("expected %d bits, got %d", BitCount, len(s))
	}
	var b Bits
	for p := 0; p < BitCount; p++ {
		switch s[p] {
		case '1':
			b = b.WithBit(p)
		case '0':
		default:
			return 0, fmt.Errorf("invalid bit %q at position %d", s[p], p)
		}
	}
	return b, nil
}
