package node

import (
	"github.com/vexelcorp/vexel/internal/clock"
	"github.com/vexelcorp/vexel/internal/position"
	"github.com/vexelcorp/vexel/internal/register"
)

// Record is the replicated state of one document object: the payload, the
// parent pointer (nil means the document root) and the fractional sibling
// position, each in its own register.
type Record struct {
	Object ObjectReg                    `json:"object"`
	Parent register.Reg[*string]        `json:"parent_id"`
	Index  register.Reg[position.Index] `json:"index"`
}

// NewRecord wraps a payload with parent and position registers, all stamped
// with one timestamp.
func NewRecord(payload Payload, parent *string, index position.Index) *Record {
	now := clock.Now()
	return &Record{
		Object: ObjectReg{Val: payload, Time: now},
		Parent: register.NewAt(clonePtr(parent), now),
		Index:  register.NewAt(index, now),
	}
}

// Merge resolves two records register by register. Neither operand is
// mutated.
func (r *Record) Merge(other *Record) *Record {
	merged := &Record{
		Object: r.Object.Merge(other.Object),
		Parent: register.Merge(r.Parent, other.Parent),
		Index:  register.Merge(r.Index, other.Index),
	}
	merged.Parent.Val = clonePtr(merged.Parent.Val)
	return merged
}

// Clone returns an independent deep copy.
func (r *Record) Clone() *Record {
	out := &Record{
		Object: r.Object.Clone(),
		Parent: r.Parent,
		Index:  r.Index,
	}
	out.Parent.Val = clonePtr(r.Parent.Val)
	return out
}

// ParentID returns the raw parent pointer value.
func (r *Record) ParentID() *string {
	return clonePtr(r.Parent.Val)
}

// IndexValue returns the current position label.
func (r *Record) IndexValue() position.Index {
	return r.Index.Val
}

// SetParentAt writes the parent register with an explicit stamp. Structural
// replay uses explicit stamps so every replica lands on identical register
// state for the same move history.
func (r *Record) SetParentAt(parent *string, t clock.EpochNanos) {
	r.Parent.SetAt(clonePtr(parent), t)
}

// SetIndexAt writes the position register with an explicit stamp.
func (r *Record) SetIndexAt(index position.Index, t clock.EpochNanos) {
	r.Index.SetAt(index, t)
}

// TouchObject restamps the whole-object register after a payload edit, so
// the variant-level conflict rule sees the edit time.
func (r *Record) TouchObject() {
	r.Object.Time = clock.Now()
}
