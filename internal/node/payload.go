// Package node holds the replicated form of a graphical object: a record of
// independently-timestamped registers over the payload, the parent pointer
// and the sibling position. Two replicas editing disjoint attributes of the
// same object converge to the union of their edits; structural state is
// arbitrated by the move log, not here.
package node

import (
	"encoding/json"
	"fmt"

	"github.com/vexelcorp/vexel/internal/clock"
	"github.com/vexelcorp/vexel/internal/shape"
)

// Payload is the replicated graphical payload of one record, a tagged
// variant over circle, rectangle, path and group.
type Payload interface {
	Kind() shape.Kind
	Clone() Payload
	Value() shape.Object
	mergeSame(other Payload) Payload
}

// ObjectReg wraps a payload in a whole-object last-writer-wins register.
// When both sides hold the same variant the merge descends into the
// per-field registers; when the variants differ the larger timestamp takes
// the whole payload (ties keep the receiver's side).
type ObjectReg struct {
	Val  Payload
	Time clock.EpochNanos
}

// Merge resolves two object registers.
func (o ObjectReg) Merge(other ObjectReg) ObjectReg {
	if o.Val != nil && other.Val != nil && o.Val.Kind() == other.Val.Kind() {
		t := o.Time
		if other.Time > t {
			t = other.Time
		}
		return ObjectReg{Val: o.Val.mergeSame(other.Val), Time: t}
	}
	if o.Time < other.Time {
		return other.Clone()
	}
	return o.Clone()
}

// Clone returns an independent copy.
func (o ObjectReg) Clone() ObjectReg {
	out := o
	if o.Val != nil {
		out.Val = o.Val.Clone()
	}
	return out
}

type objectRegJSON struct {
	Val  json.RawMessage  `json:"val"`
	Time clock.EpochNanos `json:"time"`
}

func (o ObjectReg) MarshalJSON() ([]byte, error) {
	val, err := json.Marshal(o.Val)
	if err != nil {
		return nil, err
	}
	return json.Marshal(objectRegJSON{Val: val, Time: o.Time})
}

func (o *ObjectReg) UnmarshalJSON(data []byte) error {
	var raw objectRegJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := unmarshalPayload(raw.Val)
	if err != nil {
		return err
	}
	o.Val = payload
	o.Time = raw.Time
	return nil
}

func unmarshalPayload(data []byte) (Payload, error) {
	var probe struct {
		Type shape.Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case shape.KindCircle:
		var c Circle
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case shape.KindRectangle:
		var r Rectangle
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return &r, nil
	case shape.KindPath:
		var p Path
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case shape.KindGroup:
		var g Group
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		return &g, nil
	default:
		return nil, fmt.Errorf("node: unknown payload kind %q", probe.Type)
	}
}
