// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import "fmt"

// EncodeRequest is an encode request as supplied by an option parser. Nil
// fields were not given.
type EncodeRequest struct {
	ID   *uint32
	Unit *int
	On   bool
	Off  bool
}

// Validate checks that id, unit and exactly one of on/off are present
func (r EncodeRequest) Validate() error {
	if r.ID == nil {
		return fmt.Errorf("%w: id required", ErrArgumentMissing)
	}
	if r.Unit == nil {
		return fmt.Errorf("%w: unit required", ErrArgumentMissing)
	}
	if r.On == r.Off {
		return fmt.Errorf("%w: exactly one of on or off required", ErrArgumentMissing)
	}
	return nil
}

// State returns the requested state. Only meaningful after Validate.
func (r EncodeRequest) State() State {
	if r.On {
		return On
	}
	return Off
}

// EncodeFromRequest validates req and synthesizes its frame
func EncodeFromRequest(req EncodeRequest) ([]uint32, Command, error) {
	if err := req.Validate(); err != nil {
		return nil, Command{}, err
	}
	if *req.Unit < 0 || *req.Unit > MaxUnit {
		return nil, Command{}, fmt.Errorf("%w: unit %d, try 0-%d", ErrUnitUnsupported, *req.Unit, MaxUnit)
	}
	return Encode(*req.ID, uint8(*req.Unit), req.State())
}

// Encode synthesizes the frame for id, unit and state and verifies it by
// decoding it back. On success it returns the 50 pulse durations and the
// command echo without diagnostic bits.
func Encode(id uint32, unit uint8, state State) ([]uint32, Command, error) {
	typ, dec1, dec2, dec3 := splitIdentifier(id)
	branch := SelectBranch(typ)

	code, err := EncodeState(branch, unit, state)
	if err != nil {
		return nil, Command{}, err
	}

	variants := EncodeAllVariants(typ, dec1, dec2, dec3)
	bits := Bits(0).WithEncoded(variants[code]).WithUnit(unit)
	raw := BitsToPulses(bits)

	if verified := DecodeIdentifier(PulsesToBits(raw)); verified != id {
		return nil, Command{}, &ConsistencyError{Requested: id, Suggested: verified}
	}

	return raw, NewCommand(id, unit, state), nil
}
