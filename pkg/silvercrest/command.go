// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

// Command is a decoded or requested remote-control command
type Command struct {
	ID    uint32 `json:"id"`
	Unit  uint8  `json:"unit"`
	State State  `json:"state"`

	// Bits is the 24-bit diagnostic string, set on decode only
	Bits string `json:"binary,omitempty"`
}

// NewCommand builds a command without diagnostic bits
func NewCommand(id uint32, unit uint8, state State) Command {
	return Command{ID: id, Unit: unit, State: state}
}

// NewDecodedCommand builds a command carrying the bits it was decoded from
func NewDecodedCommand(id uint32, unit uint8, state State, bits Bits) Command {
	cmd := NewCommand(id, unit, state)
	cmd.Bits = bits.String()
	return cmd
}

// Fields returns the command as a message field map
func (c Command) Fields() map[string]any {
	fields := map[string]any{
		"id":    c.ID,
		"unit":  c.Unit,
		"state": c.State.String(),
	}
	if c.Bits != "" {
		fields["binary"] = c.Bits
	}
	return fields
}
