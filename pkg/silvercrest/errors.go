// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameRejected means the capture is not a Silvercrest frame. Callers
	// should try other protocols rather than report it.
	ErrFrameRejected = errors.New("frame rejected")

	// ErrUnitUnsupported means the unit has no state code on the active
	// cipher branch
	ErrUnitUnsupported = errors.New("unit not supported")

	// ErrConsistency means a synthesized frame did not decode back to the
	// requested identifier
	ErrConsistency = errors.New("identifier verification failed")

	// ErrArgumentMissing means an encode request lacks id, unit or exactly
	// one of on/off
	ErrArgumentMissing = errors.New("insufficient number of arguments")
)

// ConsistencyError reports a failed encode verification. Suggested is the
// identifier the synthesized frame actually carries.
type ConsistencyError struct {
	Requested uint32
	Suggested uint32
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("invalid id %d, try %d", e.Requested, e.Suggested)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistency
}

func unitUnsupported(unit uint8, branch Branch) error {
	return fmt.Errorf("%w: unit %d on branch %s, try 0-%d", ErrUnitUnsupported, unit, branch, MaxUnit)
}
