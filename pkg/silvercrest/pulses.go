// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import "fmt"

// Validate checks that raw has the Silvercrest frame length and a footer gap
// within tolerance. Rejections wrap ErrFrameRejected.
func Validate(raw []uint32) error {
	if len(raw) != RawLength {
		return fmt.Errorf("%w: length %d (want %d)", ErrFrameRejected, len(raw), RawLength)
	}
	footer := raw[RawLength-1]
	if footer < MinFooter || footer > MaxFooter {
		return fmt.Errorf("%w: footer %dus outside %d-%dus", ErrFrameRejected, footer, MinFooter, MaxFooter)
	}
	return nil
}

// PulsesToBits demodulates the mark/space pairs of raw. A pair whose second
// pulse is longer than PulseThreshold is a 0, anything else is a 1. Missing
// pairs read as 0.
func PulsesToBits(raw []uint32) Bits {
	var b Bits
	for k := 0; k < BitCount; k++ {
		i := 2*k + 1
		if i >= len(raw) {
			break
		}
		if raw[i] <= PulseThreshold {
			b = b.WithBit(k)
		}
	}
	return b
}

// BitsToPulses modulates b into a complete 50-element frame with footer
func BitsToPulses(b Bits) []uint32 {
	raw := make([]uint32, RawLength)
	clearBody(raw)
	for k := 0; k < BitCount; k++ {
		if b.Bit(k) {
			writeOne(raw, k)
		}
	}
	writeFooter(raw)
	return raw
}

// clearBody writes the all-zero pattern over every data pair
func clearBody(raw []uint32) {
	for k := 0; k < BitCount; k++ {
		raw[2*k] = PulseShort
		raw[2*k+1] = PulseLong
	}
}

func writeOne(raw []uint32, pos int) {
	raw[2*pos] = PulseLong
	raw[2*pos+1] = PulseShort
}

// writeFooter terminates the frame with a closing mark and the footer gap
func writeFooter(raw []uint32) {
	raw[RawLength-2] = PulseShort
	raw[RawLength-1] = PulseFooter
}
