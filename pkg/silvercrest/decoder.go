// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

// Decode validates raw and decodes it into a command. Captures that are not
// Silvercrest frames return an error wrapping ErrFrameRejected.
func Decode(raw []uint32) (Command, error) {
	if err := Validate(raw); err != nil {
		return Command{}, err
	}

	bits := PulsesToBits(raw)
	id := DecodeIdentifier(bits)
	unit := bits.Unit()
	state := DecodeState(SelectBranch(bits.Type()), unit, bits.StateCode())

	return NewDecodedCommand(id, unit, state, bits), nil
}
