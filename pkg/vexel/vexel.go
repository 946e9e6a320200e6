// Package vexel exposes the replication engine for collaborative editing
// of hierarchical vector documents. Each Doc is one replica; replicas
// converge by exchanging Broadcast payloads in any order.
package vexel

import (
	"fmt"

	"github.com/vexelcorp/vexel/internal/document"
	"github.com/vexelcorp/vexel/internal/logging"
	"github.com/vexelcorp/vexel/internal/monitoring"
	"github.com/vexelcorp/vexel/internal/shape"
)

// Options contains configuration for a document replica.
type Options struct {
	// ReplicaID names this replica for the lifetime of the document. It
	// must be stable and unique among peers.
	ReplicaID string
	// Logger is optional; a nop logger is used when absent.
	Logger *logging.Logger
	// Metrics is optional.
	Metrics *monitoring.Metrics
}

// Doc is the public wrapper around the internal document engine.
type Doc struct {
	inner *document.Doc
}

// New constructs a document replica with the provided options.
func New(opts Options) (*Doc, error) {
	if opts.ReplicaID == "" {
		return nil, fmt.Errorf("ReplicaID cannot be empty")
	}
	var docOpts []document.Option
	if opts.Logger != nil {
		docOpts = append(docOpts, document.WithLogger(opts.Logger.ForReplica(opts.ReplicaID).Logger))
	}
	if opts.Metrics != nil {
		docOpts = append(docOpts, document.WithMetrics(opts.Metrics))
	}
	return &Doc{inner: document.New(opts.ReplicaID, docOpts...)}, nil
}

// ReplicaID returns the replica this document writes as.
func (d *Doc) ReplicaID() string { return d.inner.ReplicaID() }

// AddGroup inserts a group under parentID (nil for root), returning the new
// id, or "" when the parent does not resolve to a group.
func (d *Doc) AddGroup(parentID *string, partial shape.PartialGroup) string {
	return d.inner.AddGroup(parentID, partial)
}

// AddCircle inserts a circle under parentID, returning the new id.
func (d *Doc) AddCircle(parentID *string, partial shape.PartialCircle) string {
	return d.inner.AddCircle(parentID, partial)
}

// AddRectangle inserts a rectangle under parentID, returning the new id.
func (d *Doc) AddRectangle(parentID *string, partial shape.PartialRectangle) string {
	return d.inner.AddRectangle(parentID, partial)
}

// AddPath inserts a path under parentID, returning the new id.
func (d *Doc) AddPath(parentID *string, partial shape.PartialPath) string {
	return d.inner.AddPath(parentID, partial)
}

// EditCircle applies a partial edit; unknown ids and variant mismatches are
// no-ops.
func (d *Doc) EditCircle(id string, partial shape.PartialCircle) {
	d.inner.EditCircle(id, partial)
}

// EditRectangle applies a partial edit.
func (d *Doc) EditRectangle(id string, partial shape.PartialRectangle) {
	d.inner.EditRectangle(id, partial)
}

// EditPath applies a partial edit.
func (d *Doc) EditPath(id string, partial shape.PartialPath) {
	d.inner.EditPath(id, partial)
}

// EditGroup applies a partial edit to a group's styling fields.
func (d *Doc) EditGroup(id string, partial shape.PartialGroup) {
	d.inner.EditGroup(id, partial)
}

// AddPointToPath appends a path command.
func (d *Doc) AddPointToPath(pathID string, commandType shape.CommandType, pos shape.Vec2) {
	d.inner.AddPointToPath(pathID, commandType, pos)
}

// EditPathPointType replaces a command with one of a different type.
func (d *Doc) EditPathPointType(pathID, pointID string, commandType shape.CommandType) {
	d.inner.EditPathPointType(pathID, pointID, commandType)
}

// EditPathPointPos moves a command's anchor point.
func (d *Doc) EditPathPointPos(pathID, pointID string, pos shape.Vec2) {
	d.inner.EditPathPointPos(pathID, pointID, pos)
}

// EditPathPointHandle1 moves a command's first control handle.
func (d *Doc) EditPathPointHandle1(pathID, pointID string, handle shape.Vec2) {
	d.inner.EditPathPointHandle1(pathID, pointID, handle)
}

// EditPathPointHandle2 moves a command's second control handle.
func (d *Doc) EditPathPointHandle2(pathID, pointID string, handle shape.Vec2) {
	d.inner.EditPathPointHandle2(pathID, pointID, handle)
}

// RemovePathPoint deletes a command from a path.
func (d *Doc) RemovePathPoint(pathID, pointID string) {
	d.inner.RemovePathPoint(pathID, pointID)
}

// MoveObject moves an object under parentID at the given slot; nil slot
// appends. Cycle-forming moves are dropped.
func (d *Doc) MoveObject(parentID *string, id string, slot *int) {
	d.inner.MoveObject(parentID, id, slot)
}

// RemoveObject tombstones an object.
func (d *Doc) RemoveObject(id string) {
	d.inner.RemoveObject(id)
}

// GetCircle returns an independent copy of a circle.
func (d *Doc) GetCircle(id string) (shape.Circle, bool) { return d.inner.GetCircle(id) }

// GetRectangle returns an independent copy of a rectangle.
func (d *Doc) GetRectangle(id string) (shape.Rectangle, bool) { return d.inner.GetRectangle(id) }

// GetPath returns an independent copy of a path.
func (d *Doc) GetPath(id string) (shape.Path, bool) { return d.inner.GetPath(id) }

// GetGroup returns an independent copy of a group's styling.
func (d *Doc) GetGroup(id string) (shape.Group, bool) { return d.inner.GetGroup(id) }

// Tree materializes the ordered document forest.
func (d *Doc) Tree() shape.Tree { return d.inner.Tree() }

// Broadcast returns the wire payload for peers and drains the send buffer.
func (d *Doc) Broadcast() []byte { return d.inner.Broadcast() }

// Merge folds a remote Broadcast payload into this replica. Malformed
// payloads are dropped silently.
func (d *Doc) Merge(payload []byte) { d.inner.Merge(payload) }

// Save encodes the full replica state including move history.
func (d *Doc) Save() []byte { return d.inner.Save() }

// Load clears the replica and restores a Save payload.
func (d *Doc) Load(payload []byte) { d.inner.Load(payload) }

// Raw returns the underlying internal document for advanced usage.
func (d *Doc) Raw() *document.Doc { return d.inner }
