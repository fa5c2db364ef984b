// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

import (
	"fmt"
	"strings"
)

// maxFormattedPulses bounds how many durations FormatPayloadMap prints
const maxFormattedPulses = 16

// FormatPacket formats a packet into a human-readable string
func FormatPacket(p *Packet) string {
	timestamp := p.timestamp.Format("15:04:05.000")
	msgType := FormatMessageType(p.Type())

	result := fmt.Sprintf("[%s] %s (0x%02X) len=%d\n", timestamp, msgType, p.Type(), p.length)
	result += FormatPayloadMap(p.Type(), p.PayloadMap())
	return result
}

// FormatMessageType returns the human-readable name for a message type
func FormatMessageType(msgType uint8) string {
	switch msgType {
	case MsgTransmit:
		return "TRANSMIT"
	case MsgPingRequest:
		return "PING_REQUEST"
	case MsgCapture:
		return "CAPTURE"
	case MsgTransmitDone:
		return "TRANSMIT_DONE"
	case MsgPingResponse:
		return "PING_RESPONSE"
	case MsgError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FormatPayloadMap formats the CBOR payload map based on message type
func FormatPayloadMap(msgType uint8, m map[int]interface{}) string {
	switch msgType {
	case MsgPingRequest:
		return "  (no payload)\n"

	case MsgPingResponse:
		// 0 => uptime-ms
		uptime, _ := GetMapUint(m, keyUptime)
		return fmt.Sprintf("  Uptime: %s\n", formatDuration(uptime))

	case MsgCapture:
		// 0 => pulses, 1 => timestamp-us (optional)
		pulses, _ := GetMapPulses(m, keyPulses)
		result := fmt.Sprintf("  Pulses: %d [%s]\n", len(pulses), formatPulses(pulses))
		if ts, ok := GetMapUint(m, keyTimestamp); ok {
			result += fmt.Sprintf("  Captured: %d us\n", ts)
		}
		return result

	case MsgTransmit:
		// 0 => pulses, 1 => repeats
		pulses, _ := GetMapPulses(m, keyPulses)
		repeats, _ := GetMapUint(m, keyRepeats)
		return fmt.Sprintf("  Pulses: %d [%s], Repeats: %d\n", len(pulses), formatPulses(pulses), repeats)

	case MsgTransmitDone:
		// 0 => repeats sent
		sent, _ := GetMapUint(m, keySent)
		return fmt.Sprintf("  Sent: %d\n", sent)

	case MsgError:
		// 0 => code, 1 => message (optional)
		code, _ := GetMapUint(m, keyCode)
		result := fmt.Sprintf("  Code: %s (%d)", formatErrorCode(ErrorCode(code)), code)
		if msg, ok := GetMapString(m, keyMessage); ok {
			result += fmt.Sprintf(", Message: %s", msg)
		}
		return result + "\n"

	default:
		return fmt.Sprintf("  Payload: %v\n", m)
	}
}

// formatPulses prints the first durations of a pulse train
func formatPulses(pulses []uint32) string {
	n := len(pulses)
	if n > maxFormattedPulses {
		n = maxFormattedPulses
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%d", pulses[i])
	}
	result := strings.Join(parts, " ")
	if len(pulses) > maxFormattedPulses {
		result += " ..."
	}
	return result
}

// String returns the error code name
func (c ErrorCode) String() string {
	return formatErrorCode(c)
}

func formatErrorCode(code ErrorCode) string {
	switch code {
	case ErrorNone:
		return "NONE"
	case ErrorInvalidCmd:
		return "INVALID_CMD"
	case ErrorBusy:
		return "BUSY"
	case ErrorOverflow:
		return "OVERFLOW"
	case ErrorTransmitFail:
		return "TRANSMIT_FAIL"
	default:
		return "UNKNOWN"
	}
}

// formatDuration converts milliseconds to human-readable duration
func formatDuration(ms uint64) string {
	seconds := ms / 1000
	if seconds == 0 {
		return fmt.Sprintf("%d ms", ms)
	}

	units := []struct {
		name string
		size uint64
	}{
		{"day", 24 * 60 * 60},
		{"hour", 60 * 60},
		{"minute", 60},
		{"second", 1},
	}

	parts := []string{}
	for _, u := range units {
		n := seconds / u.size
		seconds %= u.size
		switch {
		case n == 1:
			parts = append(parts, "1 "+u.name)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}
	last := parts[len(parts)-1]
	rest := parts[:len(parts)-1]
	if len(rest) == 1 {
		return rest[0] + " and " + last
	}
	return strings.Join(rest, ", ") + ", and " + last
}
