package arm64

import (
	"fmt"

	"github.com/tetratelabs/a64emit/internal/asm"
)

// isADRRange reports whether d is reachable by ADR.
func isADRRange(d int64) bool {
	return d > -(1<<20) && d < 1<<20
}

// isADRPRange reports whether a page delta fits the 21-bit ADRP immediate, which is
// -4294967296 to 4294963200 in bytes.
func isADRPRange(pages int64) bool {
	return pages >= -(1<<20) && pages < 1<<20
}

// pageDelta is the ADRP immediate from pc to target. It is exact because buffers start on a
// page.
func pageDelta(pc, target int64) int64 {
	return target>>12 - pc>>12
}

var adrForm = relocationForm{
	name:  "adr",
	slots: 1,
	fits: func(pc, target int64) bool {
		return isADRRange(target - pc)
	},
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeAdr(false, r.reg, target-pc)
	},
}

var adrpForm = relocationForm{
	name:  "adrp",
	slots: 1,
	fits: func(pc, target int64) bool {
		return target&0xfff == 0 && isADRPRange(pageDelta(pc, target))
	},
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeAdr(true, r.reg, pageDelta(pc, target))
	},
}

var adrpAddForm = relocationForm{
	name:  "adrp+add",
	slots: 2,
	fits: func(pc, target int64) bool {
		return isADRPRange(pageDelta(pc, target))
	},
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeAdr(true, r.reg, pageDelta(pc, target))
		out[1] = encodeAddSubImmediate(aluOpAdd, Size64, r.reg, r.reg, uint32(target&0xfff), 0)
	},
}

// ResolveAddress returns the sequence that materializes target into rd when placed at site,
// for AddressGenShort, AddressGenLong or AddressGenPage. Offsets are relative to a page-aligned
// base.
//
// The result is identical to what an Emitter writes for the same reference, whether the label
// is already bound or bound later.
func ResolveAddress(kind RelocationKind, rd Register, site, target int64) (seq Sequence, err error) {
	if kind != AddressGenShort && kind != AddressGenLong && kind != AddressGenPage {
		return Sequence{}, fmt.Errorf("%s is not an address generation kind", kind)
	}
	if site%asm.WordSize != 0 {
		return Sequence{}, fmt.Errorf("site %#x is not word aligned", site)
	}
	err = asm.Guard(func() {
		r := addressRelocation(kind, rd)
		seq = resolveRelocation(&r, site, target)
	})
	return
}

func addressRelocation(kind RelocationKind, rd Register) relocation {
	op := "adr"
	switch kind {
	case AddressGenLong:
		op = "adr_long"
	case AddressGenPage:
		op = "adrp"
	}
	reg := registerBits(op, rd)
	if rd == REGZERO {
		// ADR reads 31 as XZR while the ADD of ADRP+ADD reads it as SP.
		asm.Panicf(asm.ErrRange, op, "destination cannot be register 31")
	}
	return relocation{kind: kind, op: op, reg: reg, size: Size64}
}
