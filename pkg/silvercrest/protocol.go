// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import "github.com/Thermoquad/rfstat/pkg/protocol"

// DeviceType and HardwareType classify a protocol for hosts that dispatch
// across several
const (
	DeviceTypeSwitch = "SWITCH"
	HardwareRF433    = "RF433"
)

var options = []protocol.Option{
	{Short: "t", Long: "on", Help: "send an on signal to device"},
	{Short: "f", Long: "off", Help: "send an off signal to device"},
	{Short: "u", Long: "unit", HasValue: true, Help: "control the device unit with this code"},
	{Short: "i", Long: "id", HasValue: true, Help: "control one or multiple devices with this id"},
}

// Protocol exposes the codec as a stateless protocol descriptor
type Protocol struct{}

func (Protocol) ID() string { return ProtocolID }

func (Protocol) Description() string { return ProtocolDescription }

func (Protocol) DeviceType() string { return DeviceTypeSwitch }

func (Protocol) HardwareType() string { return HardwareRF433 }

// Repeats is how many times a synthesized frame should be transmitted
func (Protocol) Repeats() int { return DefaultRepeats }

func (Protocol) Detection() protocol.Detection {
	return protocol.Detection{
		MinRawLen: RawLength,
		MaxRawLen: RawLength,
		MinGap:    MinFooter,
		MaxGap:    MaxFooter,
	}
}

// Options returns a copy of the encode option descriptors
func (Protocol) Options() []protocol.Option {
	out := make([]protocol.Option, len(options))
	copy(out, options)
	return out
}

func (Protocol) Validate(raw []uint32) error { return Validate(raw) }

func (Protocol) Decode(raw []uint32) (Command, error) { return Decode(raw) }

func (Protocol) Encode(req EncodeRequest) ([]uint32, Command, error) {
	return EncodeFromRequest(req)
}

func (Protocol) Fields(cmd Command) map[string]any { return cmd.Fields() }
