package arm64

import (
	"fmt"

	"github.com/tetratelabs/a64emit/internal/asm"
)

// RelocationKind identifies how a label reference is encoded, which decides the number of
// slots it reserves while the label is unbound and the candidate forms it resolves to.
type RelocationKind uint8

const (
	// ConditionalBranch19 is B.cond and BC.cond.
	ConditionalBranch19 RelocationKind = iota
	// UnconditionalBranch26 is B and BL.
	UnconditionalBranch26
	// CompareAndBranch19 is CBZ and CBNZ.
	CompareAndBranch19
	// TestAndBranch14 is TBZ and TBNZ.
	TestAndBranch14
	// AddressGenShort is a single ADR.
	AddressGenShort
	// AddressGenLong is ADR, ADRP or ADRP+ADD, always occupying two slots.
	AddressGenLong
	// LoadLiteral19 is LDR, LDRSW and PRFM (literal).
	LoadLiteral19
	// AddressGenPage is a single ADRP to a page-aligned target.
	AddressGenPage
)

// relocationForm is one candidate encoding of a relocation kind.
type relocationForm struct {
	name  string
	slots int
	// fits reports whether the form can reach target from pc, the address of its first
	// instruction.
	fits   func(pc, target int64) bool
	encode func(r *relocation, pc, target int64, out []uint32)
}

type relocationKindInfo struct {
	name string
	// slots is the budget every resolution of the kind occupies.
	slots int
	// forms are tried in order, the first that fits wins.
	forms []relocationForm
}

var relocationKinds = [...]relocationKindInfo{
	ConditionalBranch19:   {name: "ConditionalBranch19", slots: 1, forms: []relocationForm{conditionalBranchForm}},
	UnconditionalBranch26: {name: "UnconditionalBranch26", slots: 1, forms: []relocationForm{unconditionalBranchForm}},
	CompareAndBranch19:    {name: "CompareAndBranch19", slots: 1, forms: []relocationForm{compareAndBranchForm}},
	TestAndBranch14:       {name: "TestAndBranch14", slots: 1, forms: []relocationForm{testAndBranchForm}},
	AddressGenShort:       {name: "AddressGenShort", slots: 1, forms: []relocationForm{adrForm}},
	AddressGenLong:        {name: "AddressGenLong", slots: 2, forms: []relocationForm{adrForm, adrpForm, adrpAddForm}},
	LoadLiteral19:         {name: "LoadLiteral19", slots: 1, forms: []relocationForm{loadLiteralForm}},
	AddressGenPage:        {name: "AddressGenPage", slots: 1, forms: []relocationForm{adrpForm}},
}

// String implements fmt.Stringer.
func (k RelocationKind) String() string {
	if int(k) < len(relocationKinds) {
		return relocationKinds[k].name
	}
	return fmt.Sprintf("RelocationKind(%d)", uint8(k))
}

// Slots returns the number of instruction slots references of this kind occupy.
func (k RelocationKind) Slots() int {
	return relocationKinds[k].slots
}

// relocation is the operand state needed to encode a label reference once its distance is
// known.
type relocation struct {
	kind RelocationKind
	// op is the mnemonic, used in errors and traces.
	op   string
	reg  uint32
	size Size
	cond Condition
	bit  uint32
	// literal selects the LoadLiteral19 variant.
	literal loadLiteralOpc
	// link selects BL, consistent selects BC.cond, nonZero selects CBNZ and TBNZ.
	link, consistent, nonZero bool
}

// Sequence is the resolved encoding of a label reference.
type Sequence struct {
	// Form names the chosen candidate, such as "adr" or "adrp+add".
	Form  string
	Words []uint32
}

// resolveRelocation selects the first form of r's kind that reaches target from site and
// encodes it. The result always has exactly the kind's slot budget: a form narrower than the
// budget is placed in the last slots and preceded by NOPs.
//
// This is the only place references are encoded, whether the label was already bound or is
// being bound now.
func resolveRelocation(r *relocation, site, target int64) Sequence {
	k := &relocationKinds[r.kind]
	for i := range k.forms {
		f := &k.forms[i]
		pad := k.slots - f.slots
		pc := site + int64(pad*asm.WordSize)
		if !f.fits(pc, target) {
			continue
		}
		words := make([]uint32, k.slots)
		for j := 0; j < pad; j++ {
			words[j] = nopWord
		}
		f.encode(r, pc, target, words[pad:])
		return Sequence{Form: f.name, Words: words}
	}
	asm.Panicf(asm.ErrRange, r.op, "%s cannot reach %#x from %#x (distance %d)", k.name, target, site, target-site)
	return Sequence{}
}
