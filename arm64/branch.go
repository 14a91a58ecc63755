package arm64

// Byte ranges of the word-granular branch immediates.
const (
	maxSignedInt14Offset = 1<<15 - 4
	minSignedInt14Offset = -1 << 15
	maxSignedInt19Offset = 1<<20 - 4
	minSignedInt19Offset = -1 << 20
	maxSignedInt26Offset = 1<<27 - 4
	minSignedInt26Offset = -1 << 27
)

// wordOffsetFits returns the range predicate of a branch with a word offset in [min, max].
func wordOffsetFits(min, max int64) func(pc, target int64) bool {
	return func(pc, target int64) bool {
		d := target - pc
		return d%4 == 0 && d >= min && d <= max
	}
}

var conditionalBranchForm = relocationForm{
	name:  "b.cond",
	slots: 1,
	fits:  wordOffsetFits(minSignedInt19Offset, maxSignedInt19Offset),
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeConditionalBranch(r.cond, (target-pc)/4, r.consistent)
	},
}

var unconditionalBranchForm = relocationForm{
	name:  "b",
	slots: 1,
	fits:  wordOffsetFits(minSignedInt26Offset, maxSignedInt26Offset),
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeUnconditionalBranch(r.link, (target-pc)/4)
	},
}

var compareAndBranchForm = relocationForm{
	name:  "cbz",
	slots: 1,
	fits:  wordOffsetFits(minSignedInt19Offset, maxSignedInt19Offset),
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeCompareAndBranch(r.size, r.nonZero, r.reg, (target-pc)/4)
	},
}

var testAndBranchForm = relocationForm{
	name:  "tbz",
	slots: 1,
	fits:  wordOffsetFits(minSignedInt14Offset, maxSignedInt14Offset),
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeTestAndBranch(r.nonZero, r.reg, r.bit, (target-pc)/4)
	},
}

var loadLiteralForm = relocationForm{
	name:  "ldr",
	slots: 1,
	fits:  wordOffsetFits(minSignedInt19Offset, maxSignedInt19Offset),
	encode: func(r *relocation, pc, target int64, out []uint32) {
		out[0] = encodeLoadLiteral(r.literal, r.reg, (target-pc)/4)
	},
}
