package arm64

import "github.com/tetratelabs/a64emit/internal/asm"

// LabelDirection restricts the order in which a label may be referenced and bound.
type LabelDirection uint8

const (
	// BackwardOnly labels must be bound before they are referenced.
	BackwardOnly LabelDirection = iota
	// ForwardOnly labels must be referenced at least once before they are bound, and never
	// after.
	ForwardOnly
	// BiDirectional labels may be referenced both before and after they are bound.
	BiDirectional
)

// String implements fmt.Stringer.
func (d LabelDirection) String() string {
	switch d {
	case BackwardOnly:
		return "backward"
	case ForwardOnly:
		return "forward"
	default:
		return "bidirectional"
	}
}

// Label is a code address which can be referenced before it is known.
//
// Labels are created by the caller but only change state through the Emitter they are first
// used with. A label must not outlive unresolved references: Emitter.Finalize fails while any
// label still has some.
type Label struct {
	direction LabelDirection
	owner     *Emitter
	bound     bool
	pos       asm.Position
	// fixups are kept in arrival order.
	fixups []pendingFixup
}

// pendingFixup is a reference emitted while its label was unbound.
type pendingFixup struct {
	// site is the first of the reserved slots.
	site  asm.Position
	slots int
	rel   relocation
}

// NewBackwardLabel returns an unbound BackwardOnly label.
func NewBackwardLabel() *Label {
	return &Label{direction: BackwardOnly}
}

// NewForwardLabel returns an unbound ForwardOnly label.
func NewForwardLabel() *Label {
	return &Label{direction: ForwardOnly}
}

// NewBiDirectionalLabel returns an unbound BiDirectional label.
func NewBiDirectionalLabel() *Label {
	return &Label{direction: BiDirectional}
}

// Direction returns the direction the label was created with.
func (l *Label) Direction() LabelDirection {
	return l.direction
}

// Bound reports whether Bind was called for the label.
func (l *Label) Bound() bool {
	return l.bound
}

// Position returns the bound position. It is only meaningful once Bound returns true.
func (l *Label) Position() asm.Position {
	return l.pos
}

// Pending returns the number of references waiting for the label to be bound.
func (l *Label) Pending() int {
	return len(l.fixups)
}

// adopt ties l to e on first use.
func (e *Emitter) adopt(op string, l *Label) {
	if l == nil {
		asm.Panicf(asm.ErrProtocol, op, "nil label")
	}
	if l.owner == nil {
		l.owner = e
	} else if l.owner != e {
		asm.Panicf(asm.ErrProtocol, op, "label belongs to another emitter")
	}
}

// reference emits r against l at the cursor. A bound label is resolved immediately, otherwise
// the kind's slots are reserved with NOPs and resolved by Bind.
func (e *Emitter) reference(l *Label, r relocation) {
	e.adopt(r.op, l)
	if l.bound && l.direction == ForwardOnly {
		asm.Panicf(asm.ErrProtocol, r.op, "forward label referenced after being bound at %s", l.pos)
	}
	if !l.bound && l.direction == BackwardOnly {
		asm.Panicf(asm.ErrProtocol, r.op, "backward label referenced before being bound")
	}
	slots := r.kind.Slots()
	e.ensure(r.op, slots)
	site := e.buf.CurrentOffset()

	if l.bound {
		seq := resolveRelocation(&r, int64(site.Offset()), int64(l.pos.Offset()))
		for _, w := range seq.Words {
			e.emit(r.op, w)
		}
		return
	}

	for i := 0; i < slots; i++ {
		e.emit(r.op+" (pending)", nopWord)
	}
	e.buf.Reserve(site, slots)
	l.fixups = append(l.fixups, pendingFixup{site: site, slots: slots, rel: r})
	e.pending[l] = struct{}{}
}

// Bind fixes l at the current position and resolves every pending reference to it, in the
// order they were emitted. Each reference rewrites exactly the slots it reserved.
func (e *Emitter) Bind(l *Label) {
	e.adopt("bind", l)
	if l.bound {
		asm.Panicf(asm.ErrProtocol, "bind", "label already bound at %s", l.pos)
	}
	if l.direction == ForwardOnly && len(l.fixups) == 0 {
		asm.Panicf(asm.ErrProtocol, "bind", "forward label bound without any reference")
	}

	target := e.buf.CurrentOffset()
	// Nothing is written unless every reference resolves.
	resolved := make([]Sequence, len(l.fixups))
	for i := range l.fixups {
		f := &l.fixups[i]
		resolved[i] = resolveRelocation(&f.rel, int64(f.site.Offset()), int64(target.Offset()))
		if len(resolved[i].Words) != f.slots {
			panic("BUG: resolved sequence does not match its reservation")
		}
	}

	l.bound, l.pos = true, target
	for i, f := range l.fixups {
		for j, w := range resolved[i].Words {
			e.patch(f.rel.op, f.site.Advance(j), w)
		}
	}
	l.fixups = nil
	delete(e.pending, l)
	e.tracef("%08x: bind\n", target.Offset())
}
