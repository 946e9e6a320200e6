package document

import (
	"sort"

	"github.com/vexelcorp/vexel/internal/clock"
	"github.com/vexelcorp/vexel/internal/position"
	"github.com/vexelcorp/vexel/internal/shape"
)

// Tree materializes the flat replicated state into the ordered forest
// visible to callers. It is a pure read: given the same node map and move
// history every replica produces a byte-identical tree.
func (d *Doc) Tree() shape.Tree {
	snap := d.nodes.Value()

	type meta struct {
		parent *string
		index  position.Index
		ptime  clock.EpochNanos
	}
	metaByID := make(map[string]meta, len(snap))
	for id, rec := range snap {
		metaByID[id] = meta{
			parent: effectiveParent(rec.Parent.Val),
			index:  rec.IndexValue(),
			ptime:  rec.Parent.Time,
		}
	}

	// Deterministic seed order for the topological walk: parent-register
	// stamp, then id.
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := metaByID[ids[i]], metaByID[ids[j]]
		if a.ptime != b.ptime {
			return a.ptime < b.ptime
		}
		return ids[i] < ids[j]
	})

	// Parents before children; the visited set also breaks parent cycles
	// that raw register state could carry before log integration.
	order := make([]string, 0, len(snap))
	visited := make(map[string]bool, len(snap))
	var walk func(id string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		if m := metaByID[id]; m.parent != nil {
			if _, ok := metaByID[*m.parent]; ok {
				walk(*m.parent)
			}
		}
		order = append(order, id)
	}
	for _, id := range ids {
		walk(id)
	}

	// An object is rendered only when its ancestor chain terminates at the
	// root through live nodes.
	reach := make(map[string]bool, len(snap))
	visiting := make(map[string]bool)
	var reaches func(id string) bool
	reaches = func(id string) bool {
		if r, ok := reach[id]; ok {
			return r
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)
		m := metaByID[id]
		r := false
		if m.parent == nil {
			r = true
		} else if _, ok := metaByID[*m.parent]; ok {
			r = reaches(*m.parent)
		}
		reach[id] = r
		return r
	}

	working := make(map[string]shape.Object, len(snap))
	for _, id := range order {
		if !reaches(id) {
			continue
		}
		rec := snap[id]
		if rec.Object.Val == nil {
			continue
		}
		working[id] = rec.Object.Val.Value()
	}

	// Nest children into their parent groups, deepest first, placing each
	// child by its position label.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		m := metaByID[id]
		if m.parent == nil {
			continue
		}
		child, ok := working[id]
		if !ok {
			continue
		}
		delete(working, id)
		group, ok := working[*m.parent].(*shape.Group)
		if !ok {
			continue
		}
		at := len(group.Children)
		for at > 0 {
			prev := metaByID[group.Children[at-1].GetID()]
			if position.Compare(prev.index, m.index) <= 0 {
				break
			}
			at--
		}
		group.Children = append(group.Children, nil)
		copy(group.Children[at+1:], group.Children[at:])
		group.Children[at] = child
	}

	roots := make([]shape.Object, 0, len(working))
	for id := range working {
		roots = append(roots, working[id])
	}
	sort.Slice(roots, func(i, j int) bool {
		a, b := metaByID[roots[i].GetID()], metaByID[roots[j].GetID()]
		cmp := position.Compare(a.index, b.index)
		if cmp != 0 {
			return cmp < 0
		}
		return roots[i].GetID() < roots[j].GetID()
	})

	if d.metrics != nil {
		d.metrics.TreeBuilds.Inc()
		d.metrics.LiveNodes.Set(float64(len(snap)))
	}
	return shape.Tree{Children: roots}
}
