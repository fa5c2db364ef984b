// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import (
	"strings"
	"testing"

	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/sebdah/goldie/v2"
)

var formatterFrames = []struct {
	id    uint32
	unit  uint8
	state State
}{
	{0x103A5, 2, On},
	{0x40123, 5, Off},
	{0xF0FFF, 15, On},
}

func encodeFrames(t *testing.T) [][]uint32 {
	t.Helper()
	frames := make([][]uint32, 0, len(formatterFrames))
	for _, f := range formatterFrames {
		raw, _, err := Encode(f.id, f.unit, f.state)
		if err != nil {
			t.Fatalf("Encode(0x%05X, %d, %s) failed: %v", f.id, f.unit, f.state, err)
		}
		frames = append(frames, raw)
	}
	return frames
}

func TestFormatCommandGolden(t *testing.T) {
	var sb strings.Builder
	for _, raw := range encodeFrames(t) {
		cmd, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		sb.WriteString(FormatCommand(cmd) + "\n")
	}
	sb.WriteString(FormatCommand(NewCommand(0x103A5, 2, On)) + "\n")

	g := goldie.New(t)
	g.Assert(t, "format_command", []byte(sb.String()))
}

func TestFormatBitsGolden(t *testing.T) {
	var sb strings.Builder
	for _, raw := range encodeFrames(t) {
		sb.WriteString(FormatBits(PulsesToBits(raw)) + "\n")
	}

	g := goldie.New(t)
	g.Assert(t, "format_bits", []byte(sb.String()))
}

func TestFormatPulsesGolden(t *testing.T) {
	var sb strings.Builder
	for _, raw := range encodeFrames(t) {
		sb.WriteString(protocol.FormatPulses(raw) + "\n")
	}

	g := goldie.New(t)
	g.Assert(t, "format_pulses", []byte(sb.String()))
}
