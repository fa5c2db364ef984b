// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package protocol dispatches raw pulse captures across the registered RF
// protocols. Protocol packages register themselves from init, so importing
// pkg/protocol/all makes every bundled protocol available.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoMatch is returned when no registered protocol accepts a capture
var ErrNoMatch = errors.New("no protocol matched")

// Detection bounds a capture must fall within before a protocol's own
// validation is tried
type Detection struct {
	MinRawLen int
	MaxRawLen int
	MinGap    uint32
	MaxGap    uint32
}

// Matches reports whether raw has an acceptable length and footer gap
func (d Detection) Matches(raw []uint32) bool {
	if len(raw) == 0 || len(raw) < d.MinRawLen || len(raw) > d.MaxRawLen {
		return false
	}
	gap := raw[len(raw)-1]
	return gap >= d.MinGap && gap <= d.MaxGap
}

// Option describes an encode option a protocol accepts
type Option struct {
	Short    string `json:"short"`
	Long     string `json:"long"`
	HasValue bool   `json:"has_value"`
	Help     string `json:"help"`
}

// Args holds encode options by long name. Options without a value map to "".
type Args map[string]string

// Protocol is an RF protocol codec
type Protocol interface {
	ID() string
	Description() string
	Detection() Detection
	Repeats() int
	Options() []Option
	Validate(raw []uint32) error
	Decode(raw []uint32) (map[string]any, error)
	Encode(args Args) ([]uint32, map[string]any, error)
}

// Result is a decoded capture
type Result struct {
	Protocol string         `json:"protocol"`
	Fields   map[string]any `json:"message"`
}

// String renders the result as JSON
func (r Result) String() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("%s %v (marshal error: %v)", r.Protocol, r.Fields, err)
	}
	return string(data)
}

// Registry holds protocols in registration order
type Registry struct {
	mu        sync.RWMutex
	protocols []Protocol
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds p, replacing any protocol with the same ID
func (r *Registry) Register(p Protocol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.protocols {
		if existing.ID() == p.ID() {
			r.protocols[i] = p
			return
		}
	}
	r.protocols = append(r.protocols, p)
}

// Lookup returns the protocol registered under id
func (r *Registry) Lookup(id string) (Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.protocols {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("protocol %q not registered", id)
}

// Protocols returns every registered protocol sorted by ID
func (r *Registry) Protocols() []Protocol {
	r.mu.RLock()
	out := make([]Protocol, len(r.protocols))
	copy(out, r.protocols)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Match returns every protocol whose detection window and validation accept raw
func (r *Registry) Match(raw []uint32) []Protocol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []Protocol
	for _, p := range r.protocols {
		if !p.Detection().Matches(raw) {
			continue
		}
		if p.Validate(raw) != nil {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// Decode returns the first successful decode of raw in registration order
func (r *Registry) Decode(raw []uint32) (Result, error) {
	var errs []error
	for _, p := range r.Match(raw) {
		fields, err := p.Decode(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.ID(), err))
			continue
		}
		return Result{Protocol: p.ID(), Fields: fields}, nil
	}
	if len(errs) > 0 {
		return Result{}, fmt.Errorf("%w: %w", ErrNoMatch, errors.Join(errs...))
	}
	return Result{}, ErrNoMatch
}

var defaultRegistry = NewRegistry()

// Register adds p to the default registry
func Register(p Protocol) { defaultRegistry.Register(p) }

// Lookup finds a protocol in the default registry
func Lookup(id string) (Protocol, error) { return defaultRegistry.Lookup(id) }

// Protocols lists the default registry
func Protocols() []Protocol { return defaultRegistry.Protocols() }

// Match runs raw against the default registry
func Match(raw []uint32) []Protocol { return defaultRegistry.Match(raw) }

// Decode decodes raw with the default registry
func Decode(raw []uint32) (Result, error) { return defaultRegistry.Decode(raw) }
