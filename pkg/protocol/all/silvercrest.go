// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package all

import (
	"fmt"
	"strconv"

	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/Thermoquad/rfstat/pkg/silvercrest"
)

func init() {
	protocol.Register(Silvercrest{})
}

// Silvercrest adapts the silvercrest codec to the protocol registry
type Silvercrest struct {
	codec silvercrest.Protocol
}

var _ protocol.Protocol = Silvercrest{}

func (s Silvercrest) ID() string { return s.codec.ID() }

func (s Silvercrest) Description() string { return s.codec.Description() }

func (s Silvercrest) Repeats() int { return s.codec.Repeats() }

func (s Silvercrest) Detection() protocol.Detection { return s.codec.Detection() }

func (s Silvercrest) Options() []protocol.Option { return s.codec.Options() }

func (s Silvercrest) Validate(raw []uint32) error { return s.codec.Validate(raw) }

func (s Silvercrest) Decode(raw []uint32) (map[string]any, error) {
	cmd, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	return s.codec.Fields(cmd), nil
}

// Encode reads the id, unit, on and off options
func (s Silvercrest) Encode(args protocol.Args) ([]uint32, map[string]any, error) {
	var req silvercrest.EncodeRequest

	if v, ok := args["id"]; ok {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid id %q: %w", v, err)
		}
		id32 := uint32(id)
		req.ID = &id32
	}
	if v, ok := args["unit"]; ok {
		unit, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid unit %q: %w", v, err)
		}
		req.Unit = &unit
	}
	_, req.On = args["on"]
	_, req.Off = args["off"]

	raw, cmd, err := s.codec.Encode(req)
	if err != nil {
		return nil, nil, err
	}
	return raw, s.codec.Fields(cmd), nil
}
