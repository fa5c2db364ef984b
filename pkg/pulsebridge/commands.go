// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

// Builders create Packet structs ready for encoding with the payload keys
// each message type expects.

// NewTransmit creates a TRANSMIT packet (0x20).
// The bridge sends the pulse train repeats times and answers with
// TRANSMIT_DONE.
func NewTransmit(pulses []uint32, repeats uint8) *Packet {
	return NewPacketWithPayload(MsgTransmit, map[int]interface{}{
		keyPulses:  pulsesToCBOR(pulses),
		keyRepeats: uint64(repeats),
	})
}

// NewPingRequest creates a PING_REQUEST packet (0x2F).
// The bridge responds with PING_RESPONSE containing uptime.
func NewPingRequest() *Packet {
	return NewPacketWithPayload(MsgPingRequest, nil)
}

// NewCapture creates a CAPTURE packet (0x30) as sent by the bridge.
// A zero timestamp is omitted.
func NewCapture(pulses []uint32, timestampUs uint64) *Packet {
	payload := map[int]interface{}{
		keyPulses: pulsesToCBOR(pulses),
	}
	if timestampUs != 0 {
		payload[keyTimestamp] = timestampUs
	}
	return NewPacketWithPayload(MsgCapture, payload)
}

// NewTransmitDone creates a TRANSMIT_DONE packet (0x31)
func NewTransmitDone(repeats uint8) *Packet {
	return NewPacketWithPayload(MsgTransmitDone, map[int]interface{}{
		keySent: uint64(repeats),
	})
}

// NewPingResponse creates a PING_RESPONSE packet (0x3F)
func NewPingResponse(uptimeMs uint64) *Packet {
	return NewPacketWithPayload(MsgPingResponse, map[int]interface{}{
		keyUptime: uptimeMs,
	})
}

// NewError creates an ERROR packet (0xE0). An empty message is omitted.
func NewError(code ErrorCode, message string) *Packet {
	payload := map[int]interface{}{
		keyCode: uint64(code),
	}
	if message != "" {
		payload[keyMessage] = message
	}
	return NewPacketWithPayload(MsgError, payload)
}

func pulsesToCBOR(pulses []uint32) []uint64 {
	out := make([]uint64, len(pulses))
	for i, d := range pulses {
		out[i] = uint64(d)
	}
	return out
}
