// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import "fmt"

// State is the switch state carried by a frame
type State uint8

const (
	Off State = iota
	On
)

func (s State) String() string {
	if s == On {
		return "on"
	}
	return "off"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "on":
		*s = On
	case "off":
		*s = Off
	default:
		return fmt.Errorf("invalid state %q", text)
	}
	return nil
}

// canonicalCode is the entry used when synthesizing a frame
const canonicalCode = 1

// unitCodes holds the four equivalent state codes for each state of a unit,
// indexed by State
type unitCodes [2][4]uint8

var (
	codesA0 = &unitCodes{{8, 2, 11, 7}, {10, 6, 1, 5}}
	codesA1 = &unitCodes{{10, 6, 1, 5}, {8, 2, 11, 7}}
	codesA2 = &unitCodes{{4, 9, 12, 13}, {0, 3, 14, 15}}
	codesA3 = &unitCodes{{0, 3, 14, 15}, {4, 9, 12, 13}}

	codesB0 = &unitCodes{{1, 2, 9, 10}, {3, 4, 7, 11}}
	codesB1 = &unitCodes{{3, 4, 7, 11}, {1, 2, 9, 10}}
)

// Unit tables per branch. A nil entry means the unit is unsupported.
var (
	unitTableA = [MaxUnit + 1]*unitCodes{
		codesA0, codesA0, codesA0, codesA0,
		codesA1, codesA1, codesA1, codesA1,
		codesA2, codesA2, codesA2, codesA2,
		codesA3, codesA3, codesA3, codesA3,
	}
	unitTableB = [MaxUnit + 1]*unitCodes{
		codesB0, codesB0, codesB0, codesB0,
		codesB1, codesB1, codesB1, codesB1,
	}
)

func lookupUnit(branch Branch, unit uint8) *unitCodes {
	if unit > MaxUnit {
		return nil
	}
	if branch == BranchA {
		return unitTableA[unit]
	}
	return unitTableB[unit]
}

// StateCodes returns the four state codes accepted for unit and state
func StateCodes(branch Branch, unit uint8, state State) ([4]uint8, error) {
	codes := lookupUnit(branch, unit)
	if codes == nil || state > On {
		return [4]uint8{}, unitUnsupported(unit, branch)
	}
	return codes[state], nil
}

// DecodeState maps a received state code to a switch state. Codes outside
// the unit's "on" list decode as Off, including on unsupported units.
func DecodeState(branch Branch, unit uint8, code uint8) State {
	codes := lookupUnit(branch, unit)
	if codes == nil {
		return Off
	}
	for _, c := range codes[On] {
		if c == code {
			return On
		}
	}
	return Off
}

// EncodeState returns the canonical state code to transmit for unit and state
func EncodeState(branch Branch, unit uint8, state State) (uint8, error) {
	codes, err := StateCodes(branch, unit, state)
	if err != nil {
		return 0, err
	}
	return codes[canonicalCode], nil
}
