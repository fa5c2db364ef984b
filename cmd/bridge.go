// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Thermoquad/rfstat/pkg/pulsebridge"
	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned when no matching packet arrives in time
var ErrTimeout = errors.New("timed out waiting for packet")

// maxReadFailures consecutive read errors mark the bridge as gone
const (
	maxReadFailures = 50
	readRetryDelay  = 10 * time.Millisecond
)

// packetEvent is one decoder outcome: a packet or a framing error
type packetEvent struct {
	packet *pulsebridge.Packet
	err    error
}

// bridgeReader decodes a connection on a background goroutine. Framing errors
// seen before the first valid packet count as sync noise and are not
// reported.
type bridgeReader struct {
	events       chan packetEvent
	readErr      chan error
	invalidBytes atomic.Int64

	// failed is the read error once wait has seen it
	failed error
}

func newBridgeReader(conn Connection) *bridgeReader {
	r := &bridgeReader{
		events:  make(chan packetEvent, 64),
		readErr: make(chan error, 1),
	}
	go r.run(conn)
	return r
}

func (r *bridgeReader) run(conn Connection) {
	decoder := pulsebridge.NewDecoder()
	synchronized := false
	buf := make([]byte, 128)
	failures := 0

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) {
				r.readErr <- err
				return
			}
			failures++
			if failures >= maxReadFailures {
				r.readErr <- fmt.Errorf("%w: %d consecutive read errors, last: %v", ErrConnectionClosed, failures, err)
				return
			}
			logrus.WithError(err).WithField("failures", failures).Debug("read error")
			time.Sleep(readRetryDelay)
			continue
		}
		failures = 0

		for i := 0; i < n; i++ {
			packet, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil {
				if synchronized {
					r.events <- packetEvent{err: decodeErr}
				} else {
					r.invalidBytes.Add(1)
				}
				continue
			}
			if packet != nil {
				synchronized = true
				r.events <- packetEvent{packet: packet}
			}
		}
	}
}

// skipped returns how many framing errors preceded synchronization
func (r *bridgeReader) skipped() int64 {
	return r.invalidBytes.Load()
}

// wait returns the first packet accepted by match. Framing errors are
// skipped. Packets decoded before a read failure are still delivered.
func (r *bridgeReader) wait(timeout time.Duration, match func(*pulsebridge.Packet) bool) (*pulsebridge.Packet, error) {
	deadline := time.After(timeout)
	for {
		if r.failed != nil {
			select {
			case ev := <-r.events:
				if p := accept(ev, match); p != nil {
					return p, nil
				}
				continue
			default:
				return nil, r.failed
			}
		}

		select {
		case ev := <-r.events:
			if p := accept(ev, match); p != nil {
				return p, nil
			}
		case err := <-r.readErr:
			r.failed = err
		case <-deadline:
			return nil, ErrTimeout
		}
	}
}

func accept(ev packetEvent, match func(*pulsebridge.Packet) bool) *pulsebridge.Packet {
	if ev.packet == nil {
		logrus.WithError(ev.err).Debug("framing error")
		return nil
	}
	if match == nil || match(ev.packet) {
		return ev.packet
	}
	return nil
}

// send frames a packet and writes it to conn
func send(conn Connection, p *pulsebridge.Packet) error {
	wire, err := pulsebridge.Encode(p)
	if err != nil {
		return err
	}
	_, err = conn.Write(wire)
	return err
}

// isType returns a matcher for the given message types
func isType(types ...uint8) func(*pulsebridge.Packet) bool {
	return func(p *pulsebridge.Packet) bool {
		for _, t := range types {
			if p.Type() == t {
				return true
			}
		}
		return false
	}
}
