package arm64

import "math/bits"

// LogicalImmediate is the N:immr:imms triple that logical instructions use to describe a
// bitmask: a run of ones, rotated right by Immr within an element of 2 to 64 bits, repeated
// across the register.
//
// See "DecodeBitMasks" in https://developer.arm.com/documentation/ddi0596/2020-12/Shared-Pseudocode/AArch64-Instrs?lang=en
type LogicalImmediate struct {
	N, Immr, Imms uint8
}

// EncodeLogicalImmediate finds the encoding of v as a logical immediate of the given width.
// It returns false when v has no such encoding: zero, all ones, values which are not a
// repetition of a rotated run of ones, 32-bit values with any of the upper 32 bits set, and
// sizes other than Size32 and Size64.
func EncodeLogicalImmediate(v uint64, size Size) (imm LogicalImmediate, ok bool) {
	if size != Size32 && size != Size64 {
		return
	}
	if size == Size32 {
		if v>>32 != 0 {
			return
		}
		v |= v << 32
	}
	if v == 0 || v == ^uint64(0) {
		return
	}

	// Narrow the element while both halves agree.
	e := uint(64)
	for e > 2 {
		half := e / 2
		mask := uint64(1)<<half - 1
		if v&mask != (v>>half)&mask {
			break
		}
		e = half
	}

	mask := ^uint64(0) >> (64 - e)
	elem := v & mask
	ones := uint(bits.OnesCount64(elem))

	// Find the rotation which moves the run of ones down to bit 0.
	run := uint64(1)<<ones - 1
	for r := uint(0); r < e; r++ {
		if (elem>>r|elem<<(e-r))&mask != run {
			continue
		}
		if e == 64 {
			imm.N = 1
		}
		imm.Immr = uint8((e - r) % e)
		imm.Imms = uint8(^(e<<1-1)&0x3f | (ones - 1))
		return imm, true
	}
	return
}

// Value decodes the bitmask, truncated to the given width.
func (imm LogicalImmediate) Value(size Size) uint64 {
	combined := uint32(imm.N)<<6 | uint32(^imm.Imms&0x3f)
	if combined == 0 {
		return 0
	}
	e := uint(1) << (bits.Len32(combined) - 1)
	levels := e - 1
	s, r := uint(imm.Imms)&levels, uint(imm.Immr)&levels

	mask := ^uint64(0) >> (64 - e)
	run := uint64(1)<<(s+1) - 1
	v := (run>>r | run<<(e-r)) & mask
	for w := e; w < 64; w *= 2 {
		v |= v << w
	}
	if size == Size32 {
		v &= 0xffffffff
	}
	return v
}
