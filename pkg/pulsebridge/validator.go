// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	AnomalyMissingField AnomalyType = iota
	AnomalyEmptyCapture
	AnomalyInvalidDuration
	AnomalyRepeatRange
	AnomalyUnknownType
	AnomalyDecodeError
)

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidatePacket validates packet structure and detects anomalies.
// Returns a slice of validation errors (empty if packet is valid).
func ValidatePacket(p *Packet) []ValidationError {
	if err := p.ParseError(); err != nil {
		return []ValidationError{{
			Type:    AnomalyDecodeError,
			Message: fmt.Sprintf("CBOR decode failed: %v", err),
			Details: map[string]interface{}{"error": err.Error()},
		}}
	}

	switch p.Type() {
	case MsgCapture:
		return validatePulses(p, "CAPTURE")
	case MsgTransmit:
		errors := validatePulses(p, "TRANSMIT")
		return append(errors, validateRepeats(p)...)
	case MsgTransmitDone, MsgPingResponse, MsgError:
		return validateRequiredUint(p, 0)
	case MsgPingRequest:
		return nil
	}

	return []ValidationError{{
		Type:    AnomalyUnknownType,
		Message: fmt.Sprintf("Unknown message type 0x%02X", p.Type()),
		Details: map[string]interface{}{"type": p.Type()},
	}}
}

// validatePulses checks the pulse train of CAPTURE and TRANSMIT packets
func validatePulses(p *Packet, name string) []ValidationError {
	pulses, ok := GetMapPulses(p.PayloadMap(), keyPulses)
	if !ok {
		return []ValidationError{{
			Type:    AnomalyMissingField,
			Message: fmt.Sprintf("%s without pulse train", name),
			Details: map[string]interface{}{"key": keyPulses},
		}}
	}

	if len(pulses) == 0 {
		return []ValidationError{{
			Type:    AnomalyEmptyCapture,
			Message: fmt.Sprintf("%s with empty pulse train", name),
			Details: map[string]interface{}{"count": 0},
		}}
	}

	errors := []ValidationError{}

	for i, d := range pulses {
		if d == 0 || d > MaxPulseUs {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidDuration,
				Message: fmt.Sprintf("%s pulse %d duration %dus outside 1-%dus", name, i, d, MaxPulseUs),
				Details: map[string]interface{}{"index": i, "duration": d, "max": MaxPulseUs},
			})
		}
	}

	return errors
}

// validateRepeats checks the repeat count of a TRANSMIT packet
func validateRepeats(p *Packet) []ValidationError {
	repeats, ok := p.Repeats()
	if !ok {
		return []ValidationError{{
			Type:    AnomalyMissingField,
			Message: "TRANSMIT without repeat count",
			Details: map[string]interface{}{"key": keyRepeats},
		}}
	}
	if repeats == 0 || repeats > MaxRepeats {
		return []ValidationError{{
			Type:    AnomalyRepeatRange,
			Message: fmt.Sprintf("Repeat count %d outside 1-%d", repeats, MaxRepeats),
			Details: map[string]interface{}{"repeats": repeats, "max": MaxRepeats},
		}}
	}
	return nil
}

func validateRequiredUint(p *Packet, key int) []ValidationError {
	if _, ok := GetMapUint(p.PayloadMap(), key); !ok {
		return []ValidationError{{
			Type:    AnomalyMissingField,
			Message: fmt.Sprintf("%s missing field %d", FormatMessageType(p.Type()), key),
			Details: map[string]interface{}{"key": key},
		}}
	}
	return nil
}
