// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

// Branch selects the substitution table used by the system code chain
type Branch uint8

const (
	BranchA Branch = iota
	BranchB
)

// typeMaskA selects branch A when any of its bits are set in the type nibble
const typeMaskA = 0x13

// Substitution tables. Both are permutations of 0-15.
var (
	substitutionA = [16]uint8{0x0, 0x9, 0xF, 0x4, 0xA, 0xD, 0x5, 0xB, 0x3, 0x2, 0x1, 0x7, 0xE, 0x6, 0xC, 0x8}
	substitutionB = [16]uint8{0x0, 0x9, 0x5, 0xF, 0x3, 0x6, 0xC, 0x7, 0xE, 0xD, 0x1, 0xB, 0x2, 0xA, 0x4, 0x8}
)

// SelectBranch returns the cipher branch for a type nibble
func SelectBranch(typ uint8) Branch {
	if typ&typeMaskA != 0 {
		return BranchA
	}
	return BranchB
}

func (b Branch) String() string {
	switch b {
	case BranchA:
		return "A"
	case BranchB:
		return "B"
	}
	return "?"
}

func (b Branch) substitute(n uint8) uint8 {
	if b == BranchA {
		return substitutionA[n&nibbleMask]
	}
	return substitutionB[n&nibbleMask]
}

// DecodeChain recovers the three payload nibbles. Each decoded nibble is its
// encoded value XOR the substitution of the previous encoded nibble, starting
// from the encoded seed.
func DecodeChain(branch Branch, seed, enc1, enc2, enc3 uint8) (dec1, dec2, dec3 uint8) {
	dec1 = (enc1 ^ branch.substitute(seed)) & nibbleMask
	dec2 = (enc2 ^ branch.substitute(enc1)) & nibbleMask
	dec3 = (enc3 ^ branch.substitute(enc2)) & nibbleMask
	return dec1, dec2, dec3
}

// EncodeAllVariants runs the chain forward for every encoded seed 0-15 and
// returns the 20-bit encoded identifiers indexed by their final nibble
// (the state code each variant produces).
func EncodeAllVariants(typ, dec1, dec2, dec3 uint8) [16]uint32 {
	branch := SelectBranch(typ)
	var variants [16]uint32
	for seed := uint8(0); seed < 16; seed++ {
		enc1 := branch.substitute(seed) ^ (dec1 & nibbleMask)
		enc2 := branch.substitute(enc1) ^ (dec2 & nibbleMask)
		enc3 := branch.substitute(enc2) ^ (dec3 & nibbleMask)
		variants[enc3] = packIdentifier(typ, seed, enc1, enc2, enc3)
	}
	return variants
}

// DecodeIdentifier recovers the 20-bit system identifier carried by b. The
// seed field of the result is always 0.
func DecodeIdentifier(b Bits) uint32 {
	typ := b.Type()
	dec1, dec2, dec3 := DecodeChain(SelectBranch(typ), b.Seed(), b.Payload(1), b.Payload(2), b.Payload(3))
	return packIdentifier(typ, 0, dec1, dec2, dec3)
}

func packIdentifier(typ, seed, n1, n2, n3 uint8) uint32 {
	return uint32(typ&nibbleMask)<<16 |
		uint32(seed&nibbleMask)<<12 |
		uint32(n1&nibbleMask)<<8 |
		uint32(n2&nibbleMask)<<4 |
		uint32(n3&nibbleMask)
}

// splitIdentifier returns the type and decoded payload nibbles of id
func splitIdentifier(id uint32) (typ, dec1, dec2, dec3 uint8) {
	return uint8(id>>16) & nibbleMask, uint8(id>>8) & nibbleMask, uint8(id>>4) & nibbleMask, uint8(id) & nibbleMask
}
