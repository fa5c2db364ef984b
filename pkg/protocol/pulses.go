// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPulses renders durations as comma-separated microseconds. This is
// the text form the CLI prints and the journal stores.
func FormatPulses(pulses []uint32) string {
	parts := make([]string, len(pulses))
	for i, d := range pulses {
		parts[i] = strconv.FormatUint(uint64(d), 10)
	}
	return strings.Join(parts, ",")
}

// ParsePulses accepts durations separated by commas and/or whitespace
func ParsePulses(s string) ([]uint32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	pulses := make([]uint32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid pulse duration %q: %w", f, err)
		}
		pulses = append(pulses, uint32(v))
	}
	return pulses, nil
}
