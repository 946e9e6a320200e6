package register

import "github.com/vexelcorp/vexel/internal/clock"

// Reg is a last-writer-wins register. Merge keeps the entry with the larger
// timestamp; ties keep the receiver.
type Reg[T any] struct {
	Val  T                `json:"val"`
	Time clock.EpochNanos `json:"time"`
}

// New returns a register stamped with the current wall clock.
func New[T any](val T) Reg[T] {
	return Reg[T]{Val: val, Time: clock.Now()}
}

// NewAt returns a register with an explicit timestamp.
func NewAt[T any](val T, t clock.EpochNanos) Reg[T] {
	return Reg[T]{Val: val, Time: t}
}

// Value returns the current value.
func (r Reg[T]) Value() T { return r.Val }

// Set overwrites the value and restamps.
func (r *Reg[T]) Set(val T) {
	r.Val = val
	r.Time = clock.Now()
}

// SetAt overwrites the value with an explicit timestamp.
func (r *Reg[T]) SetAt(val T, t clock.EpochNanos) {
	r.Val = val
	r.Time = t
}

// Merge resolves two registers by timestamp. Equal stamps keep a.
func Merge[T any](a, b Reg[T]) Reg[T] {
	if a.Time < b.Time {
		return b
	}
	return a
}
