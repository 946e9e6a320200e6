// Package document is the front door of the replication engine. A Doc owns
// the update-wins node map and the move history for one replica, applies
// user commands synchronously, and exchanges state with peers through the
// wire envelope.
//
// A Doc is single-owner and cooperative: one logical caller mutates it at a
// time, there are no internal goroutines, and every returned snapshot is an
// independent copy. The public surface is total — commands that cannot
// apply (unknown id, variant mismatch, cycle-forming move, non-group
// parent, malformed payload) are dropped silently.
package document

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vexelcorp/vexel/internal/clock"
	"github.com/vexelcorp/vexel/internal/monitoring"
	"github.com/vexelcorp/vexel/internal/movelog"
	"github.com/vexelcorp/vexel/internal/node"
	"github.com/vexelcorp/vexel/internal/position"
	"github.com/vexelcorp/vexel/internal/shape"
	"github.com/vexelcorp/vexel/internal/uwmap"
)

// newNodesParent is the parent assigned between a record's insertion and
// the follow-up move into its requested parent. Materialization treats it
// as the root, so a snapshot taken in between stays renderable.
const newNodesParent = "NEW_NODES_ROOT"

// Doc is one replica of a collaborative vector document.
type Doc struct {
	replicaID string
	nodes     *uwmap.Map[string, *node.Record]
	history   movelog.Log
	sendBuf   []movelog.Entry
	log       *zap.Logger
	metrics   *monitoring.Metrics
}

// Option configures a Doc.
type Option func(*Doc)

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Doc) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics attaches a metrics bundle.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(d *Doc) { d.metrics = m }
}

// New creates an empty document for the given replica.
func New(replicaID string, opts ...Option) *Doc {
	d := &Doc{
		replicaID: replicaID,
		nodes:     uwmap.New[string, *node.Record](),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReplicaID returns the replica this document writes as.
func (d *Doc) ReplicaID() string { return d.replicaID }

// NewNodeID returns a fresh 16-character opaque object id.
func NewNodeID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// Clear drops all state: node map, history and send buffer.
func (d *Doc) Clear() {
	d.nodes = uwmap.New[string, *node.Record]()
	d.history.Reset()
	d.sendBuf = nil
}

// AddGroup inserts a new group under parentID (nil for root) and returns
// its id, or "" when the parent does not resolve to a live group.
func (d *Doc) AddGroup(parentID *string, partial shape.PartialGroup) string {
	if !d.isValidParent(parentID) {
		d.dropCommand("add_group", parentID)
		return ""
	}
	id := NewNodeID()
	d.insertNew(id, node.NewGroup(id, partial), parentID)
	return id
}

// AddCircle inserts a new circle under parentID and returns its id.
func (d *Doc) AddCircle(parentID *string, partial shape.PartialCircle) string {
	if !d.isValidParent(parentID) {
		d.dropCommand("add_circle", parentID)
		return ""
	}
	id := NewNodeID()
	d.insertNew(id, node.NewCircle(id, partial), parentID)
	return id
}

// AddRectangle inserts a new rectangle under parentID and returns its id.
func (d *Doc) AddRectangle(parentID *string, partial shape.PartialRectangle) string {
	if !d.isValidParent(parentID) {
		d.dropCommand("add_rectangle", parentID)
		return ""
	}
	id := NewNodeID()
	d.insertNew(id, node.NewRectangle(id, partial), parentID)
	return id
}

// AddPath inserts a new path under parentID and returns its id.
func (d *Doc) AddPath(parentID *string, partial shape.PartialPath) string {
	if !d.isValidParent(parentID) {
		d.dropCommand("add_path", parentID)
		return ""
	}
	id := NewNodeID()
	d.insertNew(id, node.NewPath(id, partial, NewNodeID), parentID)
	return id
}

func (d *Doc) insertNew(id string, payload node.Payload, parentID *string) {
	sentinel := newNodesParent
	rec := node.NewRecord(payload, &sentinel, position.Default())
	d.nodes.Insert(d.replicaID, id, rec)
	d.moveObject(parentID, id, nil)
	d.countCommand()
	d.log.Debug("object added",
		zap.String("node_id", id),
		zap.String("kind", string(payload.Kind())))
}

// EditCircle applies a partial edit to a circle. No-op when the id is
// missing or names a different variant.
func (d *Doc) EditCircle(id string, partial shape.PartialCircle) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return
	}
	payload, ok := rec.Object.Val.(*node.Circle)
	if !ok {
		return
	}
	payload.Apply(partial)
	rec.TouchObject()
	d.nodes.Insert(d.replicaID, id, rec)
	d.countCommand()
}

// EditRectangle applies a partial edit to a rectangle.
func (d *Doc) EditRectangle(id string, partial shape.PartialRectangle) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return
	}
	payload, ok := rec.Object.Val.(*node.Rectangle)
	if !ok {
		return
	}
	payload.Apply(partial)
	rec.TouchObject()
	d.nodes.Insert(d.replicaID, id, rec)
	d.countCommand()
}

// EditPath applies a partial edit to a path.
func (d *Doc) EditPath(id string, partial shape.PartialPath) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return
	}
	payload, ok := rec.Object.Val.(*node.Path)
	if !ok {
		return
	}
	payload.Apply(partial, NewNodeID)
	rec.TouchObject()
	d.nodes.Insert(d.replicaID, id, rec)
	d.countCommand()
}

// EditGroup applies a partial edit to a group's styling fields.
func (d *Doc) EditGroup(id string, partial shape.PartialGroup) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return
	}
	payload, ok := rec.Object.Val.(*node.Group)
	if !ok {
		return
	}
	payload.Apply(partial)
	rec.TouchObject()
	d.nodes.Insert(d.replicaID, id, rec)
	d.countCommand()
}

// AddPointToPath appends a command of the given type to a path.
func (d *Doc) AddPointToPath(pathID string, commandType shape.CommandType, pos shape.Vec2) {
	d.editPoints(pathID, func(points []shape.PathCommand) []shape.PathCommand {
		return append(points, shape.NewPathCommand(NewNodeID(), commandType, pos))
	})
}

// EditPathPointType replaces a command with a fresh one of the given type,
// anchored where the old command was, under a fresh point id.
func (d *Doc) EditPathPointType(pathID, pointID string, commandType shape.CommandType) {
	d.editPoints(pathID, func(points []shape.PathCommand) []shape.PathCommand {
		i := findPoint(points, pointID)
		if i < 0 {
			return points
		}
		pos := shape.Vec2{}
		if points[i].Pos != nil {
			pos = *points[i].Pos
		}
		points[i] = shape.NewPathCommand(NewNodeID(), commandType, pos)
		return points
	})
}

// EditPathPointPos moves a command's anchor. Inapplicable edits (a Close
// command) are ignored.
func (d *Doc) EditPathPointPos(pathID, pointID string, pos shape.Vec2) {
	d.editPoints(pathID, func(points []shape.PathCommand) []shape.PathCommand {
		i := findPoint(points, pointID)
		if i < 0 {
			return points
		}
		switch points[i].Type {
		case shape.CommandStart, shape.CommandLine, shape.CommandBezier, shape.CommandBezierQuad:
			p := pos
			points[i].Pos = &p
		}
		return points
	})
}

// EditPathPointHandle1 moves the first control handle of a curve command.
func (d *Doc) EditPathPointHandle1(pathID, pointID string, handle shape.Vec2) {
	d.editPoints(pathID, func(points []shape.PathCommand) []shape.PathCommand {
		i := findPoint(points, pointID)
		if i < 0 {
			return points
		}
		h := handle
		switch points[i].Type {
		case shape.CommandBezier:
			points[i].Handle1 = &h
		case shape.CommandBezierQuad:
			points[i].Handle = &h
		}
		return points
	})
}

// EditPathPointHandle2 moves the second control handle of a cubic command.
func (d *Doc) EditPathPointHandle2(pathID, pointID string, handle shape.Vec2) {
	d.editPoints(pathID, func(points []shape.PathCommand) []shape.PathCommand {
		i := findPoint(points, pointID)
		if i < 0 {
			return points
		}
		if points[i].Type == shape.CommandBezier {
			h := handle
			points[i].Handle2 = &h
		}
		return points
	})
}

// RemovePathPoint deletes a command from a path.
func (d *Doc) RemovePathPoint(pathID, pointID string) {
	d.editPoints(pathID, func(points []shape.PathCommand) []shape.PathCommand {
		i := findPoint(points, pointID)
		if i < 0 {
			return points
		}
		return append(points[:i], points[i+1:]...)
	})
}

func (d *Doc) editPoints(pathID string, edit func([]shape.PathCommand) []shape.PathCommand) {
	rec, ok := d.nodes.Get(pathID)
	if !ok {
		return
	}
	payload, ok := rec.Object.Val.(*node.Path)
	if !ok {
		return
	}
	payload.SetPoints(edit(payload.PointsValue()))
	rec.TouchObject()
	d.nodes.Insert(d.replicaID, pathID, rec)
	d.countCommand()
}

func findPoint(points []shape.PathCommand, pointID string) int {
	for i, cmd := range points {
		if cmd.ID == pointID {
			return i
		}
	}
	return -1
}

// RemoveObject tombstones an object. Children of a removed group are not
// cascaded; materialization prunes them as orphans.
func (d *Doc) RemoveObject(id string) {
	if _, ok := d.nodes.Get(id); !ok {
		return
	}
	d.nodes.Remove(d.replicaID, id)
	d.countCommand()
	d.log.Debug("object removed", zap.String("node_id", id))
}

// GetCircle returns an independent copy of a circle.
func (d *Doc) GetCircle(id string) (shape.Circle, bool) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return shape.Circle{}, false
	}
	payload, ok := rec.Object.Val.(*node.Circle)
	if !ok {
		return shape.Circle{}, false
	}
	return *payload.Value().(*shape.Circle), true
}

// GetRectangle returns an independent copy of a rectangle.
func (d *Doc) GetRectangle(id string) (shape.Rectangle, bool) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return shape.Rectangle{}, false
	}
	payload, ok := rec.Object.Val.(*node.Rectangle)
	if !ok {
		return shape.Rectangle{}, false
	}
	return *payload.Value().(*shape.Rectangle), true
}

// GetPath returns an independent copy of a path.
func (d *Doc) GetPath(id string) (shape.Path, bool) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return shape.Path{}, false
	}
	payload, ok := rec.Object.Val.(*node.Path)
	if !ok {
		return shape.Path{}, false
	}
	return *payload.Value().(*shape.Path), true
}

// GetGroup returns an independent copy of a group's styling. Children are
// only available through Tree.
func (d *Doc) GetGroup(id string) (shape.Group, bool) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return shape.Group{}, false
	}
	payload, ok := rec.Object.Val.(*node.Group)
	if !ok {
		return shape.Group{}, false
	}
	return *payload.Value().(*shape.Group), true
}

// MoveObject moves an object under parentID (nil for root) at the given
// integer slot; a nil slot appends. Cycle-forming moves and moves to
// non-group parents are dropped.
func (d *Doc) MoveObject(parentID *string, id string, slot *int) {
	d.moveObject(parentID, id, slot)
	d.countCommand()
}

func (d *Doc) moveObject(parentID *string, id string, slot *int) {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return
	}
	if parentID != nil {
		if *parentID == id || d.isAncestor(id, *parentID) {
			d.rejectMove(id, parentID, "cycle")
			return
		}
		if !d.isLiveGroup(*parentID) {
			d.rejectMove(id, parentID, "parent is not a group")
			return
		}
	}

	oldParent := rec.ParentID()
	index := d.resolveSlot(parentID, id, slot)
	e := movelog.Entry{
		OldParent: oldParent,
		NewParent: copyID(parentID),
		ObjectID:  id,
		Index:     index,
		Timestamp: clock.Now(),
	}
	inserted, unwound := d.history.Integrate(e, d)
	d.observeRewind(unwound)
	if !inserted {
		return
	}
	// The move counts as an update in the add/remove race.
	if moved, ok := d.nodes.Get(id); ok {
		d.nodes.Insert(d.replicaID, id, moved)
	}
	d.sendBuf = append(d.sendBuf, e)
	if d.metrics != nil {
		d.metrics.SendBufferSize.Set(float64(len(d.sendBuf)))
	}
	d.log.Debug("object moved",
		zap.String("node_id", id),
		zap.Stringp("parent_id", parentID))
}

// UndoMove rewinds one history entry: the object goes back to the parent
// the entry recorded, position reset. Zero stamps keep the transient state
// below anything the forward replay will write.
func (d *Doc) UndoMove(e movelog.Entry) {
	rec, ok := d.nodes.Get(e.ObjectID)
	if !ok {
		return
	}
	rec.SetParentAt(e.OldParent, 0)
	rec.SetIndexAt(position.Default(), 0)
	d.nodes.InsertNoBump(e.ObjectID, rec)
}

// RedoMove replays one history entry against live state, skipping it when
// it would form a cycle now.
func (d *Doc) RedoMove(e movelog.Entry) {
	rec, ok := d.nodes.Get(e.ObjectID)
	if !ok {
		return
	}
	if e.NewParent != nil {
		if *e.NewParent == e.ObjectID || d.isAncestor(e.ObjectID, *e.NewParent) {
			return
		}
	}
	rec.SetParentAt(e.NewParent, e.Timestamp)
	rec.SetIndexAt(e.Index, e.Timestamp)
	d.nodes.InsertNoBump(e.ObjectID, rec)
}

// replayAll rebuilds parent and position registers from the whole history.
// The register merge alone can assemble a parent cycle out of two replicas'
// concurrent moves; once that happens, splicing in the incoming entries is
// not enough, because the cycle check skips a move that the other replica
// applied. Re-running the globally-sorted history settles every replica
// that holds it on the same answer.
func (d *Doc) replayAll() {
	entries := d.history.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		d.UndoMove(entries[i])
	}
	for _, e := range entries {
		d.RedoMove(e)
	}
}

// isAncestor reports whether ancestorID is a transitive ancestor of
// descendantID under the live parent map.
func (d *Doc) isAncestor(ancestorID, descendantID string) bool {
	visited := make(map[string]bool)
	current := descendantID
	for !visited[current] {
		visited[current] = true
		rec, ok := d.nodes.Get(current)
		if !ok {
			return false
		}
		p := rec.Parent.Val
		if p == nil || *p == newNodesParent {
			return false
		}
		if *p == ancestorID {
			return true
		}
		current = *p
	}
	return false
}

func (d *Doc) isValidParent(parentID *string) bool {
	if parentID == nil {
		return true
	}
	return d.isLiveGroup(*parentID)
}

func (d *Doc) isLiveGroup(id string) bool {
	rec, ok := d.nodes.Get(id)
	if !ok {
		return false
	}
	return rec.Object.Val != nil && rec.Object.Val.Kind() == shape.KindGroup
}

type sibling struct {
	id    string
	index position.Index
}

// siblings lists the live children of a parent ordered by position,
// excluding the object being placed.
func (d *Doc) siblings(parentID *string, exclude string) []sibling {
	var out []sibling
	for _, id := range d.nodes.Keys() {
		if id == exclude {
			continue
		}
		rec, ok := d.nodes.Get(id)
		if !ok {
			continue
		}
		if !sameParent(effectiveParent(rec.Parent.Val), parentID) {
			continue
		}
		out = append(out, sibling{id: id, index: rec.IndexValue()})
	}
	sortSiblings(out)
	return out
}

func sortSiblings(sibs []sibling) {
	sort.Slice(sibs, func(i, j int) bool {
		cmp := position.Compare(sibs[i].index, sibs[j].index)
		if cmp != 0 {
			return cmp < 0
		}
		return sibs[i].id < sibs[j].id
	})
}

// resolveSlot turns an integer slot into a position label against the
// current sibling list.
func (d *Doc) resolveSlot(parentID *string, id string, slot *int) position.Index {
	sibs := d.siblings(parentID, id)
	if len(sibs) == 0 {
		return position.Default()
	}
	if slot == nil || *slot >= len(sibs) {
		return position.After(sibs[len(sibs)-1].index)
	}
	if *slot <= 0 {
		return position.Before(sibs[0].index)
	}
	index, err := position.Between(sibs[*slot-1].index, sibs[*slot].index)
	if err != nil {
		// Equal neighbour labels: land after the left one.
		return position.After(sibs[*slot-1].index)
	}
	return index
}

func effectiveParent(p *string) *string {
	if p == nil || *p == newNodesParent {
		return nil
	}
	return p
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(p *string) *string {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func (d *Doc) countCommand() {
	if d.metrics != nil {
		d.metrics.CommandsApplied.Inc()
	}
}

func (d *Doc) observeRewind(unwound int) {
	if d.metrics != nil {
		d.metrics.RewindDepth.Observe(float64(unwound))
	}
}

func (d *Doc) rejectMove(id string, parentID *string, reason string) {
	if d.metrics != nil {
		d.metrics.MovesRejected.Inc()
	}
	d.log.Warn("move dropped",
		zap.String("node_id", id),
		zap.Stringp("parent_id", parentID),
		zap.String("reason", reason))
}

func (d *Doc) dropCommand(command string, parentID *string) {
	d.log.Warn("command dropped",
		zap.String("command", command),
		zap.Stringp("parent_id", parentID))
}
