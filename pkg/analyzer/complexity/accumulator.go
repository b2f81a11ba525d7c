package complexity

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/codepulse/pkg/ast"
)

// Accumulator collects the raw metrics of one traversal. A fresh
// Accumulator is built for every analysis and never shared.
type Accumulator struct {
	Complexity    int
	MaxDepth      int
	FunctionLines int

	ids      map[string]uint32
	names    []string
	declared *roaring.Bitmap
	used     *roaring.Bitmap
}

// NewAccumulator returns an accumulator at its baseline: one execution path,
// no nesting, no function lines.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Complexity: 1,
		ids:        make(map[string]uint32),
		declared:   roaring.New(),
		used:       roaring.New(),
	}
}

// intern maps a name to a stable ID. IDs grow in first-sight order.
func (a *Accumulator) intern(name string) uint32 {
	if id, ok := a.ids[name]; ok {
		return id
	}
	id := uint32(len(a.names))
	a.ids[name] = id
	a.names = append(a.names, name)
	return id
}

// Branch records one decision point.
func (a *Accumulator) Branch() {
	a.Complexity++
}

// Reach raises MaxDepth to depth if it is deeper than anything seen so far.
func (a *Accumulator) Reach(depth int) {
	if depth > a.MaxDepth {
		a.MaxDepth = depth
	}
}

// AddFunction adds the line span of a function definition.
func (a *Accumulator) AddFunction(span ast.Span) {
	a.FunctionLines += span.Lines()
}

// Declare records name as the target of a declaration.
func (a *Accumulator) Declare(name string) {
	if name == "" {
		return
	}
	a.declared.Add(a.intern(name))
}

// Use records a read of name.
func (a *Accumulator) Use(name string) {
	if name == "" {
		return
	}
	a.used.Add(a.intern(name))
}

// Declared reports whether name was declared.
func (a *Accumulator) Declared(name string) bool {
	id, ok := a.ids[name]
	return ok && a.declared.Contains(id)
}

// Used reports whether name was read.
func (a *Accumulator) Used(name string) bool {
	id, ok := a.ids[name]
	return ok && a.used.Contains(id)
}

// Unused returns the declared names that were never read, in order of
// first declaration. An unread name is first seen where it is declared.
func (a *Accumulator) Unused() []string {
	diff := roaring.AndNot(a.declared, a.used)
	out := make([]string, 0, diff.GetCardinality())
	it := diff.Iterator()
	for it.HasNext() {
		out = append(out, a.names[it.Next()])
	}
	return out
}
