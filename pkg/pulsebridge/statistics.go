// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pulsebridge

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks link and capture statistics
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Link counters
	TotalPackets     uint64
	ValidPackets     uint64
	CRCErrors        uint64
	DecodeErrors     uint64
	MalformedPackets uint64
	EmptyCaptures    uint64
	InvalidDurations uint64

	// Capture counters
	Captures         uint64
	DecodedCaptures  uint64
	RejectedCaptures uint64

	// Rates (calculated)
	PacketRate float64 // packets/sec
	ErrorRate  float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a packet and its errors
func (s *Statistics) Update(packet *Packet, decodeErr error, validationErrors []ValidationError) {
	s.TotalPackets++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		if errors.Is(decodeErr, ErrCRCMismatch) {
			s.CRCErrors++
		} else {
			s.DecodeErrors++
		}
		return
	}

	if len(validationErrors) == 0 {
		s.ValidPackets++
		return
	}

	s.MalformedPackets++
	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyEmptyCapture:
			s.EmptyCaptures++
		case AnomalyInvalidDuration:
			s.InvalidDurations++
		}
	}
}

// RecordCapture counts a capture and whether any protocol decoded it
func (s *Statistics) RecordCapture(decoded bool) {
	s.Captures++
	if decoded {
		s.DecodedCaptures++
	} else {
		s.RejectedCaptures++
	}
}

// CalculateRates calculates packet and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PacketRate = float64(s.TotalPackets) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

// ErrorCount returns the number of packets that failed decoding or validation
func (s *Statistics) ErrorCount() uint64 {
	return s.CRCErrors + s.DecodeErrors + s.MalformedPackets
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Packets:   %8d\n", s.TotalPackets)
	result += fmt.Sprintf("Valid Packets:   %8d (%.1f%%)\n", s.ValidPackets, percent(s.ValidPackets, s.TotalPackets))

	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, percent(s.CRCErrors, s.TotalPackets))
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, percent(s.DecodeErrors, s.TotalPackets))
	}
	if s.MalformedPackets > 0 {
		result += fmt.Sprintf("Malformed Pkts:  %8d (%.1f%%)\n", s.MalformedPackets, percent(s.MalformedPackets, s.TotalPackets))
		if s.EmptyCaptures > 0 {
			result += fmt.Sprintf("  Empty Captures:   %5d\n", s.EmptyCaptures)
		}
		if s.InvalidDurations > 0 {
			result += fmt.Sprintf("  Bad Durations:    %5d\n", s.InvalidDurations)
		}
	}

	if s.Captures > 0 {
		result += fmt.Sprintf("Captures:        %8d\n", s.Captures)
		result += fmt.Sprintf("  Decoded:          %5d (%.1f%%)\n", s.DecodedCaptures, percent(s.DecodedCaptures, s.Captures))
		result += fmt.Sprintf("  Unmatched:        %5d\n", s.RejectedCaptures)
	}

	result += fmt.Sprintf("Packet Rate:     %8.1f pkts/sec\n", s.PacketRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
