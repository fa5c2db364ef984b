// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import (
	"errors"
	"testing"
)

// ============================================================
// Test Helpers
// ============================================================

// frameWithFooter builds a 50-element all-zero frame ending in footer
func frameWithFooter(footer uint32) []uint32 {
	raw := BitsToPulses(0)
	raw[RawLength-1] = footer
	return raw
}

func mustParseBits(t *testing.T, s string) Bits {
	t.Helper()
	b, err := ParseBits(s)
	if err != nil {
		t.Fatalf("ParseBits(%q) failed: %v", s, err)
	}
	return b
}

func uint32Ptr(v uint32) *uint32 { return &v }

func intPtr(v int) *int { return &v }

// ============================================================
// Frame Validator Tests
// ============================================================

func TestValidateLength(t *testing.T) {
	tests := []struct {
		name   string
		length int
		accept bool
	}{
		{"empty", 0, false},
		{"49 elements", 49, false},
		{"50 elements", 50, true},
		{"51 elements", 51, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]uint32, tt.length)
			if tt.length > 0 {
				raw[tt.length-1] = PulseFooter
			}
			err := Validate(raw)
			if tt.accept && err != nil {
				t.Errorf("expected accept, got %v", err)
			}
			if !tt.accept && !errors.Is(err, ErrFrameRejected) {
				t.Errorf("expected ErrFrameRejected, got %v", err)
			}
		})
	}
}

func TestValidateFooter(t *testing.T) {
	tests := []struct {
		footer uint32
		accept bool
	}{
		{0, false},
		{6479, false},
		{6480, true},
		{7200, true},
		{7920, true},
		{7921, false},
		{12000, false},
	}

	for _, tt := range tests {
		err := Validate(frameWithFooter(tt.footer))
		if tt.accept && err != nil {
			t.Errorf("footer %d: expected accept, got %v", tt.footer, err)
		}
		if !tt.accept && !errors.Is(err, ErrFrameRejected) {
			t.Errorf("footer %d: expected ErrFrameRejected, got %v", tt.footer, err)
		}
	}
}

func TestFooterBounds(t *testing.T) {
	if MinFooter != 6480 {
		t.Errorf("MinFooter = %d, want 6480", MinFooter)
	}
	if MaxFooter != 7920 {
		t.Errorf("MaxFooter = %d, want 7920", MaxFooter)
	}
}

func TestDecodeRejectsForeignFrame(t *testing.T) {
	cmd, err := Decode(make([]uint32, 66))
	if !errors.Is(err, ErrFrameRejected) {
		t.Fatalf("expected ErrFrameRejected, got %v", err)
	}
	if cmd != (Command{}) {
		t.Errorf("expected zero command on rejection, got %+v", cmd)
	}
}

// ============================================================
// Pulse Timing Codec Tests
// ============================================================

func TestPulsesToBitsThreshold(t *testing.T) {
	tests := []struct {
		name     string
		trailing uint32
		want     bool
	}{
		{"short trailing pulse", PulseShort, true},
		{"at threshold", PulseThreshold, true},
		{"just above threshold", PulseThreshold + 1, false},
		{"long trailing pulse", PulseLong, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := frameWithFooter(PulseFooter)
			raw[1] = tt.trailing
			if got := PulsesToBits(raw).Bit(0); got != tt.want {
				t.Errorf("bit 0 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPulsesToBitsShortInput(t *testing.T) {
	// Missing pairs read as zero
	if b := PulsesToBits([]uint32{1100, 550, 1100}); b != 1 {
		t.Errorf("expected only bit 0 set, got %s", b)
	}
	if b := PulsesToBits(nil); b != 0 {
		t.Errorf("expected no bits from nil input, got %s", b)
	}
}

func TestBitsToPulsesLayout(t *testing.T) {
	b := Bits(0).WithBit(0).WithBit(23)
	raw := BitsToPulses(b)

	if len(raw) != RawLength {
		t.Fatalf("expected %d pulses, got %d", RawLength, len(raw))
	}
	if raw[0] != PulseLong || raw[1] != PulseShort {
		t.Errorf("bit 0: expected (%d, %d), got (%d, %d)", PulseLong, PulseShort, raw[0], raw[1])
	}
	if raw[2] != PulseShort || raw[3] != PulseLong {
		t.Errorf("bit 1: expected (%d, %d), got (%d, %d)", PulseShort, PulseLong, raw[2], raw[3])
	}
	if raw[46] != PulseLong || raw[47] != PulseShort {
		t.Errorf("bit 23: expected (%d, %d), got (%d, %d)", PulseLong, PulseShort, raw[46], raw[47])
	}
	if raw[48] != PulseShort {
		t.Errorf("closing mark = %d, want %d", raw[48], PulseShort)
	}
	if raw[49] != PulseFooter {
		t.Errorf("footer = %d, want %d", raw[49], PulseFooter)
	}
	if got := PulsesToBits(raw); got != b {
		t.Errorf("demodulated %s, want %s", got, b)
	}
}

// ============================================================
// Bit Vector Tests
// ============================================================

func TestBitsAccessors(t *testing.T) {
	b := mustParseBits(t, "000101001001100001100100")

	if b.Type() != 0x1 {
		t.Errorf("Type() = %d, want 1", b.Type())
	}
	if b.Seed() != 0x4 {
		t.Errorf("Seed() = %d, want 4", b.Seed())
	}
	if b.Payload(1) != 0x9 || b.Payload(2) != 0x8 || b.Payload(3) != 0x6 {
		t.Errorf("Payload() = %d %d %d, want 9 8 6", b.Payload(1), b.Payload(2), b.Payload(3))
	}
	if b.StateCode() != 0x6 {
		t.Errorf("StateCode() = %d, want 6", b.StateCode())
	}
	if b.Unit() != 2 {
		t.Errorf("Unit() = %d, want 2", b.Unit())
	}
	if b.Encoded() != 0x14986 {
		t.Errorf("Encoded() = 0x%05X, want 0x14986", b.Encoded())
	}
	if b.Payload(0) != 0 || b.Payload(4) != 0 {
		t.Error("out of range payload index should read 0")
	}
}

func TestBitsUnitIsLSBFirst(t *testing.T) {
	for unit := uint8(0); unit <= MaxUnit; unit++ {
		b := Bits(0).WithUnit(unit)
		if b.Unit() != unit {
			t.Errorf("unit %d read back as %d", unit, b.Unit())
		}
	}
	if !Bits(0).WithUnit(1).Bit(posUnit) {
		t.Error("unit bit 0 should be at position 20")
	}
}

func TestBitsEncodedIsMSBFirst(t *testing.T) {
	b := Bits(0).WithEncoded(1 << 19)
	if !b.Bit(0) {
		t.Error("identifier bit 19 should be at position 0")
	}
	b = Bits(0).WithEncoded(1)
	if !b.Bit(19) {
		t.Error("identifier bit 0 should be at position 19")
	}
	if Bits(0).WithEncoded(0xFFFFFFFF) != 0xFFFFF {
		t.Error("WithEncoded should ignore bits above 20")
	}
}

func TestBitsStringRoundTrip(t *testing.T) {
	s := "111111011001110110011111"
	b := mustParseBits(t, s)
	if b.String() != s {
		t.Errorf("String() = %s, want %s", b.String(), s)
	}
	if b&^bitsMask != 0 {
		t.Error("parsed bits exceed 24 positions")
	}
}

func TestParseBitsErrors(t *testing.T) {
	for _, s := range []string{"", "0101", "00010100100110000110010x", "0001010010011000011001000"} {
		if _, err := ParseBits(s); err == nil {
			t.Errorf("ParseBits(%q) should fail", s)
		}
	}
}

func TestBitOutOfRange(t *testing.T) {
	b := Bits(0).WithBit(-1).WithBit(24)
	if b != 0 {
		t.Errorf("out of range WithBit changed value: %s", b)
	}
	if Bits(bitsMask).Bit(24) || Bits(bitsMask).Bit(-1) {
		t.Error("out of range Bit should be false")
	}
}

// ============================================================
// Systemcode Cipher Tests
// ============================================================

func TestSelectBranchPartition(t *testing.T) {
	for typ := uint8(0); typ < 16; typ++ {
		want := BranchB
		if typ&0b10011 != 0 {
			want = BranchA
		}
		first := SelectBranch(typ)
		if first != want {
			t.Errorf("SelectBranch(%d) = %s, want %s", typ, first, want)
		}
		if again := SelectBranch(typ); again != first {
			t.Errorf("SelectBranch(%d) not deterministic", typ)
		}
	}

	var branchB []uint8
	for typ := uint8(0); typ < 16; typ++ {
		if SelectBranch(typ) == BranchB {
			branchB = append(branchB, typ)
		}
	}
	want := []uint8{0, 4, 8, 12}
	if len(branchB) != len(want) {
		t.Fatalf("branch B types = %v, want %v", branchB, want)
	}
	for i := range want {
		if branchB[i] != want[i] {
			t.Fatalf("branch B types = %v, want %v", branchB, want)
		}
	}
}

func TestSubstitutionTablesArePermutations(t *testing.T) {
	for _, table := range []*[16]uint8{&substitutionA, &substitutionB} {
		var seen [16]bool
		for _, v := range table {
			if v > 15 || seen[v] {
				t.Fatalf("table %v is not a permutation", *table)
			}
			seen[v] = true
		}
	}
}

func TestEncodeAllVariantsBijective(t *testing.T) {
	for typ := uint8(0); typ < 16; typ++ {
		for _, payload := range [][3]uint8{{0, 0, 0}, {3, 10, 5}, {15, 15, 15}, {1, 2, 3}} {
			variants := EncodeAllVariants(typ, payload[0], payload[1], payload[2])
			seen := make(map[uint32]bool)
			for code, v := range variants {
				if uint8(v&nibbleMask) != uint8(code) {
					t.Errorf("type %d: variant at %d ends in %d", typ, code, v&nibbleMask)
				}
				if seen[v] {
					t.Errorf("type %d: duplicate variant 0x%05X", typ, v)
				}
				seen[v] = true
				if uint8(v>>16) != typ {
					t.Errorf("type %d: variant 0x%05X carries wrong type", typ, v)
				}
			}
		}
	}
}

func TestDecodeChainInvertsEncode(t *testing.T) {
	for typ := uint8(0); typ < 16; typ++ {
		variants := EncodeAllVariants(typ, 0x3, 0xA, 0x5)
		for _, v := range variants {
			b := Bits(0).WithEncoded(v)
			d1, d2, d3 := DecodeChain(SelectBranch(typ), b.Seed(), b.Payload(1), b.Payload(2), b.Payload(3))
			if d1 != 0x3 || d2 != 0xA || d3 != 0x5 {
				t.Errorf("type %d variant 0x%05X decoded to %X %X %X", typ, v, d1, d2, d3)
			}
		}
	}
}

func TestDecodeIdentifierSeedIsZero(t *testing.T) {
	b := mustParseBits(t, "000101001001100001100100")
	id := DecodeIdentifier(b)
	if id != 0x103A5 {
		t.Errorf("DecodeIdentifier = 0x%05X, want 0x103A5", id)
	}
	if (id>>12)&nibbleMask != 0 {
		t.Error("decoded seed must be 0")
	}
}

// ============================================================
// Unit State Resolver Tests
// ============================================================

func TestStateCodesBranchAUnit2(t *testing.T) {
	on, err := StateCodes(BranchA, 2, On)
	if err != nil {
		t.Fatalf("StateCodes failed: %v", err)
	}
	if on != [4]uint8{10, 6, 1, 5} {
		t.Errorf("on codes = %v, want [10 6 1 5]", on)
	}

	code, err := EncodeState(BranchA, 2, On)
	if err != nil {
		t.Fatalf("EncodeState failed: %v", err)
	}
	if code != 6 {
		t.Errorf("canonical code = %d, want 6", code)
	}
}

func TestDecodeStateAcceptsAllCodes(t *testing.T) {
	for _, branch := range []Branch{BranchA, BranchB} {
		for unit := uint8(0); unit <= MaxUnit; unit++ {
			for _, state := range []State{Off, On} {
				codes, err := StateCodes(branch, unit, state)
				if err != nil {
					continue
				}
				for _, code := range codes {
					if got := DecodeState(branch, unit, code); got != state {
						t.Errorf("branch %s unit %d code %d: got %s, want %s", branch, unit, code, got, state)
					}
				}
			}
		}
	}
}

func TestDecodeStateDefaultsOff(t *testing.T) {
	// Code 0 is in neither list for branch B unit 0
	if got := DecodeState(BranchB, 0, 0); got != Off {
		t.Errorf("unlisted code decoded as %s", got)
	}
	if got := DecodeState(BranchB, 9, 3); got != Off {
		t.Errorf("unsupported unit decoded as %s", got)
	}
	if got := DecodeState(BranchA, 16, 10); got != Off {
		t.Errorf("out of range unit decoded as %s", got)
	}
}

func TestUnsupportedUnits(t *testing.T) {
	for unit := uint8(8); unit <= MaxUnit; unit++ {
		for _, state := range []State{Off, On} {
			if _, err := EncodeState(BranchB, unit, state); !errors.Is(err, ErrUnitUnsupported) {
				t.Errorf("branch B unit %d: expected ErrUnitUnsupported, got %v", unit, err)
			}
		}
	}
	if _, err := EncodeState(BranchA, 16, On); !errors.Is(err, ErrUnitUnsupported) {
		t.Errorf("unit 16: expected ErrUnitUnsupported, got %v", err)
	}
	if _, err := StateCodes(BranchA, 0, State(2)); !errors.Is(err, ErrUnitUnsupported) {
		t.Errorf("invalid state: expected ErrUnitUnsupported, got %v", err)
	}
}

func TestEncodeUnsupportedUnitNoPulses(t *testing.T) {
	for _, typ := range []uint32{0, 4, 8, 12} {
		id := typ<<16 | 0x0123
		for unit := uint8(8); unit <= MaxUnit; unit++ {
			for _, state := range []State{Off, On} {
				raw, cmd, err := Encode(id, unit, state)
				if !errors.Is(err, ErrUnitUnsupported) {
					t.Errorf("id 0x%05X unit %d %s: expected ErrUnitUnsupported, got %v", id, unit, state, err)
				}
				if raw != nil {
					t.Errorf("id 0x%05X unit %d %s: expected no pulses, got %d", id, unit, state, len(raw))
				}
				if cmd != (Command{}) {
					t.Errorf("id 0x%05X unit %d %s: expected zero command, got %+v", id, unit, state, cmd)
				}
			}
		}
	}

	raw, _, err := EncodeFromRequest(EncodeRequest{ID: uint32Ptr(0x40123), Unit: intPtr(12), On: true})
	if !errors.Is(err, ErrUnitUnsupported) || raw != nil {
		t.Errorf("EncodeFromRequest: got %d pulses, err %v", len(raw), err)
	}
}

func TestStateText(t *testing.T) {
	for _, s := range []State{Off, On} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed: %v", err)
		}
		var back State
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
		}
		if back != s {
			t.Errorf("state %s round-tripped to %s", s, back)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("maybe")); err == nil {
		t.Error("expected error for invalid state text")
	}
}

// ============================================================
// Code Synthesizer Tests
// ============================================================

func TestEncodeBranchAUnit2On(t *testing.T) {
	raw, cmd, err := Encode(0x103A5, 2, On)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if cmd.Bits != "" {
		t.Errorf("encode echo should not carry bits, got %q", cmd.Bits)
	}

	bits := PulsesToBits(raw)
	if bits.StateCode() != 6 {
		t.Errorf("state code = %d, want 6", bits.StateCode())
	}
	if bits.String() != "000101001001100001100100" {
		t.Errorf("bits = %s", bits)
	}

	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.ID != 0x103A5 || decoded.Unit != 2 || decoded.State != On {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestDecodeConcreteScenario(t *testing.T) {
	// Branch A type, state code 1010, unit 0010
	b := mustParseBits(t, "0001"+"0000"+"0000"+"0000"+"1010"+"0100")
	cmd, err := Decode(BitsToPulses(b))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cmd.Unit != 2 || cmd.State != On {
		t.Errorf("expected unit 2 on, got unit %d %s", cmd.Unit, cmd.State)
	}
	if cmd.Bits != b.String() {
		t.Errorf("diagnostic bits = %s, want %s", cmd.Bits, b)
	}
}

func TestEncodeBranchB(t *testing.T) {
	raw, _, err := Encode(0x40123, 5, Off)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "010001000010011101001010"
	if got := PulsesToBits(raw).String(); got != want {
		t.Errorf("bits = %s, want %s", got, want)
	}
}

func TestRoundTripAllUnits(t *testing.T) {
	ids := []uint32{0x00000, 0x103A5, 0x20FFF, 0x30123, 0x40123, 0x80ABC, 0xC0001, 0xF0FFF}

	for _, id := range ids {
		branch := SelectBranch(uint8(id >> 16))
		for unit := uint8(0); unit <= MaxUnit; unit++ {
			for _, state := range []State{Off, On} {
				raw, _, err := Encode(id, unit, state)
				if branch == BranchB && unit >= 8 {
					if !errors.Is(err, ErrUnitUnsupported) {
						t.Errorf("id 0x%05X unit %d: expected ErrUnitUnsupported, got %v", id, unit, err)
					}
					if raw != nil {
						t.Errorf("id 0x%05X unit %d: expected no pulses", id, unit)
					}
					continue
				}
				if err != nil {
					t.Errorf("id 0x%05X unit %d %s: %v", id, unit, state, err)
					continue
				}
				if raw[RawLength-1] != PulseFooter {
					t.Errorf("footer = %d, want %d", raw[RawLength-1], PulseFooter)
				}
				cmd, err := Decode(raw)
				if err != nil {
					t.Errorf("Decode failed: %v", err)
					continue
				}
				if cmd.ID != id || cmd.Unit != unit || cmd.State != state {
					t.Errorf("round trip: want (0x%05X, %d, %s), got (0x%05X, %d, %s)",
						id, unit, state, cmd.ID, cmd.Unit, cmd.State)
				}
			}
		}
	}
}

func TestEncodeConsistencyError(t *testing.T) {
	tests := []struct {
		name      string
		id        uint32
		suggested uint32
	}{
		{"non-zero seed", 0x1E3A5, 0x103A5},
		{"wider than 20 bits", 0x1103A5, 0x103A5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _, err := Encode(tt.id, 2, On)
			if raw != nil {
				t.Error("expected no pulses on consistency failure")
			}
			if !errors.Is(err, ErrConsistency) {
				t.Fatalf("expected ErrConsistency, got %v", err)
			}
			var cerr *ConsistencyError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConsistencyError, got %T", err)
			}
			if cerr.Requested != tt.id || cerr.Suggested != tt.suggested {
				t.Errorf("got %+v, want suggested 0x%05X", cerr, tt.suggested)
			}
		})
	}
}

func TestEncodeFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     EncodeRequest
		wantErr error
	}{
		{"missing id", EncodeRequest{Unit: intPtr(1), On: true}, ErrArgumentMissing},
		{"missing unit", EncodeRequest{ID: uint32Ptr(0x103A5), On: true}, ErrArgumentMissing},
		{"neither state", EncodeRequest{ID: uint32Ptr(0x103A5), Unit: intPtr(1)}, ErrArgumentMissing},
		{"both states", EncodeRequest{ID: uint32Ptr(0x103A5), Unit: intPtr(1), On: true, Off: true}, ErrArgumentMissing},
		{"negative unit", EncodeRequest{ID: uint32Ptr(0x103A5), Unit: intPtr(-1), Off: true}, ErrUnitUnsupported},
		{"unit 16", EncodeRequest{ID: uint32Ptr(0x103A5), Unit: intPtr(16), Off: true}, ErrUnitUnsupported},
		{"valid off", EncodeRequest{ID: uint32Ptr(0x103A5), Unit: intPtr(4), Off: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, cmd, err := EncodeFromRequest(tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if raw != nil {
					t.Error("expected no pulses on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Unit != 4 || cmd.State != Off || cmd.ID != 0x103A5 {
				t.Errorf("echo = %+v", cmd)
			}
		})
	}
}

// ============================================================
// Command and Protocol Tests
// ============================================================

func TestCommandFields(t *testing.T) {
	cmd := NewCommand(0x103A5, 2, On)
	fields := cmd.Fields()
	if fields["id"] != uint32(0x103A5) || fields["unit"] != uint8(2) || fields["state"] != "on" {
		t.Errorf("fields = %v", fields)
	}
	if _, ok := fields["binary"]; ok {
		t.Error("encode command should not carry binary")
	}

	decoded := NewDecodedCommand(0x103A5, 2, On, 0x26194)
	if decoded.Fields()["binary"] != Bits(0x26194).String() {
		t.Errorf("binary = %v", decoded.Fields()["binary"])
	}
}

func TestProtocolDescriptor(t *testing.T) {
	var p Protocol

	if p.ID() != "silvercrest_new" {
		t.Errorf("ID() = %s", p.ID())
	}
	if p.Repeats() != 4 {
		t.Errorf("Repeats() = %d, want 4", p.Repeats())
	}
	if p.DeviceType() != DeviceTypeSwitch || p.HardwareType() != HardwareRF433 {
		t.Errorf("unexpected classification %s/%s", p.DeviceType(), p.HardwareType())
	}

	det := p.Detection()
	if det.MinRawLen != 50 || det.MaxRawLen != 50 || det.MinGap != 6480 || det.MaxGap != 7920 {
		t.Errorf("Detection() = %+v", det)
	}

	opts := p.Options()
	if len(opts) != 4 {
		t.Fatalf("expected 4 options, got %d", len(opts))
	}
	opts[0].Long = "mutated"
	if p.Options()[0].Long != "on" {
		t.Error("Options() should return a copy")
	}

	raw, _, err := p.Encode(EncodeRequest{ID: uint32Ptr(0x20FFF), Unit: intPtr(9), On: true})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := p.Validate(raw); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	cmd, err := p.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Fields(cmd)["state"] != "on" {
		t.Errorf("fields = %v", p.Fields(cmd))
	}
}
