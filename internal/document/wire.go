package document

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vexelcorp/vexel/internal/movelog"
	"github.com/vexelcorp/vexel/internal/node"
	"github.com/vexelcorp/vexel/internal/position"
	"github.com/vexelcorp/vexel/internal/uwmap"
)

// The wire envelope is the 2-tuple [nodeMap, moveLogs] in a self-describing
// JSON encoding. Broadcast/Merge carry the drained send buffer; Save/Load
// carry the full move history.

// Broadcast returns the current node-map snapshot plus the buffered local
// moves, clearing the send buffer. The snapshot alone cannot reproduce
// structural history, so both halves ship together.
func (d *Doc) Broadcast() []byte {
	logs := d.sendBuf
	if logs == nil {
		logs = []movelog.Entry{}
	}
	payload, err := json.Marshal([2]any{d.nodes, logs})
	if err != nil {
		d.log.Error("broadcast encoding failed", zap.Error(err))
		return nil
	}
	d.sendBuf = nil
	if d.metrics != nil {
		d.metrics.SendBufferSize.Set(0)
	}
	return payload
}

// Merge folds a remote broadcast into this replica: state-based map merge,
// then move-log integration entry by entry. Malformed payloads are dropped
// without touching state.
func (d *Doc) Merge(data []byte) {
	remote, logs, err := decodeEnvelope(data)
	if err != nil {
		d.log.Warn("merge payload dropped", zap.Error(err))
		return
	}
	d.nodes = uwmap.Merge(d.nodes, remote)
	for _, e := range logs {
		d.history.Integrate(e, d)
	}
	d.replayAll()
	if d.metrics != nil {
		d.metrics.MergesTotal.Inc()
	}
	d.log.Debug("merged remote state", zap.Int("move_logs", len(logs)))
}

// Save encodes the node map together with the full move history.
func (d *Doc) Save() []byte {
	payload, err := json.Marshal([2]any{d.nodes, d.history.Entries()})
	if err != nil {
		d.log.Error("save encoding failed", zap.Error(err))
		return nil
	}
	return payload
}

// Load clears all state, then merges the payload as a remote.
func (d *Doc) Load(data []byte) {
	d.Clear()
	d.Merge(data)
}

func decodeEnvelope(data []byte) (*uwmap.Map[string, *node.Record], []movelog.Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(raw) != 2 {
		return nil, nil, fmt.Errorf("decode envelope: want 2 elements, got %d", len(raw))
	}

	remote := uwmap.New[string, *node.Record]()
	if err := json.Unmarshal(raw[0], remote); err != nil {
		return nil, nil, fmt.Errorf("decode node map: %w", err)
	}
	for id, rec := range remote.KV {
		if rec == nil || rec.Object.Val == nil {
			return nil, nil, fmt.Errorf("decode node map: empty record %q", id)
		}
		if err := position.Validate(rec.IndexValue()); err != nil {
			return nil, nil, fmt.Errorf("decode node map: record %q: %w", id, err)
		}
	}

	var logs []movelog.Entry
	if err := json.Unmarshal(raw[1], &logs); err != nil {
		return nil, nil, fmt.Errorf("decode move logs: %w", err)
	}
	for i, e := range logs {
		if e.ObjectID == "" {
			return nil, nil, fmt.Errorf("decode move logs: entry %d has no object id", i)
		}
		if err := position.Validate(e.Index); err != nil {
			return nil, nil, fmt.Errorf("decode move logs: entry %d: %w", i, err)
		}
	}
	return remote, logs, nil
}
