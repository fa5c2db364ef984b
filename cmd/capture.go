// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"time"

	"github.com/Thermoquad/rfstat/internal/journal"
	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/Thermoquad/rfstat/pkg/pulsebridge"
	"github.com/sirupsen/logrus"
)

// capture is a CAPTURE packet run through the protocol registry
type capture struct {
	receivedAt time.Time
	pulses     []uint32
	result     protocol.Result
	err        error
}

func (c capture) decoded() bool {
	return c.err == nil
}

// decodeCapture extracts the pulse train of a CAPTURE packet and decodes it.
// ok is false for any other packet type.
func decodeCapture(p *pulsebridge.Packet) (capture, bool) {
	pulses, ok := p.Pulses()
	if !ok || p.Type() != pulsebridge.MsgCapture {
		return capture{}, false
	}
	c := capture{receivedAt: p.Timestamp(), pulses: pulses}
	c.result, c.err = protocol.Decode(pulses)
	return c, true
}

// recorder journals captures when a journal is open
type recorder struct {
	journal *journal.Journal
}

func openRecorder(path string) (*recorder, error) {
	if path == "" {
		return &recorder{}, nil
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	logrus.WithField("path", path).Info("recording captures")
	return &recorder{journal: j}, nil
}

func (r *recorder) record(ctx context.Context, c capture) {
	if r.journal == nil {
		return
	}
	entry := journal.Entry{ReceivedAt: c.receivedAt, Pulses: c.pulses}
	if c.decoded() {
		entry.Protocol = c.result.Protocol
		entry.Fields = c.result.Fields
	}
	id, err := r.journal.Append(ctx, entry)
	if err != nil {
		logrus.WithError(err).Warn("failed to record capture")
		return
	}
	logrus.WithField("id", id).Debug("capture recorded")
}

func (r *recorder) Close() error {
	if r.journal == nil {
		return nil
	}
	return r.journal.Close()
}
