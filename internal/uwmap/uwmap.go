// Package uwmap implements a state-based update-wins map. Membership is
// tracked with one version vector per key on each side of the add/remove
// race; an update that is not strictly dominated by a remove keeps the key
// alive. Value-level conflicts are delegated to the stored type's merge.
package uwmap

import (
	"github.com/vexelcorp/vexel/internal/clock"
)

// Value is the contract stored values must satisfy. Merge must not mutate
// either operand; Clone must return an independent copy.
type Value[V any] interface {
	Merge(other V) V
	Clone() V
}

// Map is an update-wins keyed store. The exported fields mirror the wire
// schema; mutate only through the methods.
type Map[K ~string, V Value[V]] struct {
	Removed map[K]clock.VTime `json:"removed"`
	Updated map[K]clock.VTime `json:"updated"`
	KV      map[K]V           `json:"kv"`
}

// New returns an empty map.
func New[K ~string, V Value[V]]() *Map[K, V] {
	return &Map[K, V]{
		Removed: make(map[K]clock.VTime),
		Updated: make(map[K]clock.VTime),
		KV:      make(map[K]V),
	}
}

// init backfills nil inner maps, e.g. after JSON decoding.
func (m *Map[K, V]) init() {
	if m.Removed == nil {
		m.Removed = make(map[K]clock.VTime)
	}
	if m.Updated == nil {
		m.Updated = make(map[K]clock.VTime)
	}
	if m.KV == nil {
		m.KV = make(map[K]V)
	}
}

// live reports key membership: an update exists and is not strictly
// dominated by a remove.
func (m *Map[K, V]) live(key K) bool {
	updated, ok := m.Updated[key]
	if !ok {
		return false
	}
	if removed, ok := m.Removed[key]; ok {
		if clock.StrictlyBefore(updated, removed) {
			return false
		}
	}
	return true
}

// Get returns the stored value if the key is live.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if !m.live(key) {
		return zero, false
	}
	v, ok := m.KV[key]
	if !ok {
		return zero, false
	}
	return v, true
}

// Value returns a deep snapshot of the live entries. Callers may retain and
// mutate the result freely.
func (m *Map[K, V]) Value() map[K]V {
	out := make(map[K]V)
	for key := range m.Updated {
		if !m.live(key) {
			continue
		}
		if v, ok := m.KV[key]; ok {
			out[key] = v.Clone()
		}
	}
	return out
}

// Keys returns the live keys in no particular order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.Updated))
	for key := range m.Updated {
		if m.live(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// keyVTime picks up whichever version vector the key carries, live or
// tombstoned, so causal history survives remove/insert cycles.
func (m *Map[K, V]) keyVTime(key K) clock.VTime {
	if vt, ok := m.Updated[key]; ok {
		return vt.Clone()
	}
	if vt, ok := m.Removed[key]; ok {
		return vt.Clone()
	}
	return clock.Zero()
}

// Insert stores a value, bumping the key's version vector for the writing
// replica. Any tombstone for the key is dropped.
func (m *Map[K, V]) Insert(replicaID string, key K, val V) {
	m.init()
	vt := m.keyVTime(key)
	vt.Inc(replicaID)
	delete(m.Removed, key)
	m.Updated[key] = vt
	m.KV[key] = val
}

// Remove tombstones a key, bumping its version vector and dropping the
// stored value.
func (m *Map[K, V]) Remove(replicaID string, key K) {
	m.init()
	vt := m.keyVTime(key)
	vt.Inc(replicaID)
	delete(m.Updated, key)
	delete(m.KV, key)
	m.Removed[key] = vt
}

// InsertNoBump rewrites the value of a live key without touching its
// version vector. Replaying structural moves must not perturb the causal
// metadata, or replays would masquerade as fresh updates.
func (m *Map[K, V]) InsertNoBump(key K, val V) {
	m.init()
	if !m.live(key) {
		return
	}
	m.KV[key] = val
}

// Merge combines two maps into a new one. The result is independent of both
// operands; the operation is commutative, associative and idempotent.
func Merge[K ~string, V Value[V]](a, b *Map[K, V]) *Map[K, V] {
	out := New[K, V]()

	for k, v := range a.KV {
		out.KV[k] = v.Clone()
	}
	for k, v := range b.KV {
		if existing, ok := out.KV[k]; ok {
			out.KV[k] = existing.Merge(v)
		} else {
			out.KV[k] = v.Clone()
		}
	}

	for k, vt := range a.Updated {
		out.Updated[k] = vt.Clone()
	}
	for k, vt := range b.Updated {
		if existing, ok := out.Updated[k]; ok {
			out.Updated[k] = clock.Merge(existing, vt)
		} else {
			out.Updated[k] = vt.Clone()
		}
	}

	for k, vt := range a.Removed {
		out.Removed[k] = vt.Clone()
	}
	for k, vt := range b.Removed {
		if existing, ok := out.Removed[k]; ok {
			out.Removed[k] = clock.Merge(existing, vt)
		} else {
			out.Removed[k] = vt.Clone()
		}
	}

	// A remove that strictly dominates the update wins the key; otherwise
	// the update survives and the tombstone is dropped.
	for k, removedVT := range out.Removed {
		if updatedVT, ok := out.Updated[k]; ok {
			if clock.StrictlyBefore(updatedVT, removedVT) {
				delete(out.Updated, k)
				delete(out.KV, k)
			}
		}
	}
	for k, updatedVT := range out.Updated {
		if removedVT, ok := out.Removed[k]; ok {
			if clock.StrictlyBefore(removedVT, updatedVT) {
				delete(out.Removed, k)
			}
		}
	}

	return out
}
