// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import (
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomIdentifier returns a 20-bit identifier whose seed nibble is 0
func randomIdentifier(rng *rand.Rand) uint32 {
	return uint32(rng.Intn(16))<<16 | uint32(rng.Intn(4096))
}

func TestFuzzRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		id := randomIdentifier(rng)
		unit := uint8(rng.Intn(MaxUnit + 1))
		state := State(rng.Intn(2))

		raw, echo, err := Encode(id, unit, state)
		if SelectBranch(uint8(id>>16)) == BranchB && unit >= 8 {
			if !errors.Is(err, ErrUnitUnsupported) {
				t.Fatalf("round %d: id 0x%05X unit %d: expected ErrUnitUnsupported, got %v", i, id, unit, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("round %d: Encode(0x%05X, %d, %s) failed: %v", i, id, unit, state, err)
		}
		if echo.ID != id || echo.Unit != unit || echo.State != state {
			t.Fatalf("round %d: echo mismatch %+v", i, echo)
		}

		cmd, err := Decode(raw)
		if err != nil {
			t.Fatalf("round %d: Decode failed: %v", i, err)
		}
		if cmd.ID != id || cmd.Unit != unit || cmd.State != state {
			t.Fatalf("round %d: want (0x%05X, %d, %s), got (0x%05X, %d, %s)",
				i, id, unit, state, cmd.ID, cmd.Unit, cmd.State)
		}
	}
}

func TestFuzzJitteredDecode(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		id := randomIdentifier(rng)
		unit := uint8(rng.Intn(8))
		state := State(rng.Intn(2))

		raw, _, err := Encode(id, unit, state)
		if err != nil {
			t.Fatalf("round %d: Encode failed: %v", i, err)
		}

		// Receivers measure short pulses 400-550us and long pulses 900-1300us
		for j := 0; j < RawLength-1; j++ {
			if raw[j] == PulseShort {
				raw[j] = uint32(400 + rng.Intn(151))
			} else {
				raw[j] = uint32(900 + rng.Intn(401))
			}
		}
		raw[RawLength-1] = uint32(MinFooter + rng.Intn(MaxFooter-MinFooter+1))

		cmd, err := Decode(raw)
		if err != nil {
			t.Fatalf("round %d: Decode failed: %v", i, err)
		}
		if cmd.ID != id || cmd.Unit != unit || cmd.State != state {
			t.Fatalf("round %d: jittered frame decoded to %+v", i, cmd)
		}
	}
}

func TestFuzzRandomPulsesNoPanic(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		length := rng.Intn(80)
		if rng.Intn(2) == 0 {
			length = RawLength
		}
		raw := make([]uint32, length)
		for j := range raw {
			raw[j] = rng.Uint32() % 10000
		}

		cmd, err := Decode(raw)
		if err != nil {
			if !errors.Is(err, ErrFrameRejected) {
				t.Fatalf("round %d: unexpected error kind %v", i, err)
			}
			continue
		}
		if cmd.Unit > MaxUnit || cmd.ID > 0xF0FFF || len(cmd.Bits) != BitCount {
			t.Fatalf("round %d: decoded out of range command %+v", i, cmd)
		}
	}
}

func TestFuzzVariantsBijective(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		typ := uint8(rng.Intn(16))
		d1, d2, d3 := uint8(rng.Intn(16)), uint8(rng.Intn(16)), uint8(rng.Intn(16))

		variants := EncodeAllVariants(typ, d1, d2, d3)
		var seeds [16]bool
		for code, v := range variants {
			if uint8(v&nibbleMask) != uint8(code) {
				t.Fatalf("round %d: variant at %d ends in %d", i, code, v&nibbleMask)
			}
			seed := (v >> 12) & nibbleMask
			if seeds[seed] {
				t.Fatalf("round %d: seed %d used twice", i, seed)
			}
			seeds[seed] = true
		}
	}
}
