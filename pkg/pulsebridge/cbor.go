// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ParseCBORMessage parses a bridge CBOR message: [msg_type, payload_map].
// Returns the message type and decoded payload map (nil for empty payloads).
func ParseCBORMessage(data []byte) (msgType uint8, payload map[int]interface{}, err error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty CBOR payload")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	v, ok := msg[0].(uint64)
	if !ok {
		return 0, nil, fmt.Errorf("expected uint for message type, got %T", msg[0])
	}
	if v > 255 {
		return 0, nil, fmt.Errorf("message type out of range: %d", v)
	}
	msgType = uint8(v)

	if msg[1] == nil {
		return msgType, nil, nil
	}

	raw, ok := msg[1].(map[interface{}]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("expected map or nil for payload, got %T", msg[1])
	}
	payload = make(map[int]interface{}, len(raw))
	for key, val := range raw {
		switch k := key.(type) {
		case uint64:
			payload[int(k)] = val
		case int64:
			payload[int(k)] = val
		default:
			return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
		}
	}

	return msgType, payload, nil
}

// Map value extraction helpers

// GetMapUint extracts a uint64 from a CBOR map by key
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return toUint(v)
}

// GetMapString extracts a text string from a CBOR map by key
func GetMapString(m map[int]interface{}, key int) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetMapPulses extracts a pulse train from a CBOR map by key. Every element
// must be an unsigned integer that fits in 32 bits.
func GetMapPulses(m map[int]interface{}, key int) ([]uint32, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}

	var list []interface{}
	switch val := v.(type) {
	case []interface{}:
		list = val
	case []uint64:
		list = make([]interface{}, len(val))
		for i, d := range val {
			list[i] = d
		}
	case []uint32:
		return val, true
	default:
		return nil, false
	}

	pulses := make([]uint32, len(list))
	for i, item := range list {
		d, ok := toUint(item)
		if !ok || d > 0xFFFFFFFF {
			return nil, false
		}
		pulses[i] = uint32(d)
	}
	return pulses, true
}

func toUint(v interface{}) (uint64, bool) {
	switch val := v.(type) {
	case uint64:
		return val, true
	case uint32:
		return uint64(val), true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
	case int:
		if val >= 0 {
			return uint64(val), true
		}
	}
	return 0, false
}
