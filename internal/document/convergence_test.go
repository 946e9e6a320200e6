package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexelcorp/vexel/internal/shape"
)

func exchange(d1, d2 *Doc) {
	b1 := d1.Broadcast()
	b2 := d2.Broadcast()
	d1.Merge(b2)
	d2.Merge(b1)
}

func TestMergeCreateOneCircleEach(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	c := d1.AddCircle(nil, shape.PartialCircle{})
	d := d2.AddCircle(nil, shape.PartialCircle{})

	exchange(d1, d2)

	t1 := treeJSON(t, d1)
	t2 := treeJSON(t, d2)
	assert.Equal(t, t1, t2, "replicas must materialize identical trees")
	ids := childIDs(d1.Tree())
	assert.ElementsMatch(t, []string{c, d}, ids)
}

func TestMergeMoveOrderMultiple(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	c1 := d1.AddCircle(nil, shape.PartialCircle{})
	c2 := d1.AddCircle(nil, shape.PartialCircle{})
	c3 := d1.AddCircle(nil, shape.PartialCircle{})

	d2.Merge(d1.Broadcast())

	d2.MoveObject(nil, c1, slot(2))
	d1.MoveObject(nil, c2, slot(0))

	exchange(d1, d2)

	want := []string{c2, c3, c1}
	assert.Equal(t, want, childIDs(d1.Tree()))
	assert.Equal(t, want, childIDs(d2.Tree()))
	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2))
}

func TestMergeEditBeatsDelete(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	c := d1.AddCircle(nil, shape.PartialCircle{})
	d2.Merge(d1.Broadcast())

	d2.EditCircle(c, shape.PartialCircle{Opacity: shape.Float32Ptr(0.5)})
	d1.RemoveObject(c)

	exchange(d1, d2)

	for _, d := range []*Doc{d1, d2} {
		circle, ok := d.GetCircle(c)
		require.True(t, ok, "concurrent update must win over the remove")
		assert.Equal(t, float32(0.5), circle.Opacity)
	}
	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2))
}

func TestMergeConcurrentMoveToDifferentGroups(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	g1 := d1.AddGroup(nil, shape.PartialGroup{})
	g2 := d1.AddGroup(nil, shape.PartialGroup{})
	r := d1.AddRectangle(nil, shape.PartialRectangle{})
	d2.Merge(d1.Broadcast())

	d1.MoveObject(&g1, r, nil)
	// The later move wins on both sides.
	d2.MoveObject(&g2, r, nil)

	exchange(d1, d2)

	for _, d := range []*Doc{d1, d2} {
		tree := d.Tree()
		require.Len(t, tree.Children, 2)
		byID := map[string]*shape.Group{}
		for _, child := range tree.Children {
			byID[child.GetID()] = child.(*shape.Group)
		}
		assert.Empty(t, byID[g1].Children, "the earlier destination ends empty")
		require.Len(t, byID[g2].Children, 1)
		assert.Equal(t, r, byID[g2].Children[0].GetID())
	}
	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2))
}

func TestMergeConcurrentMoveAndEdit(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	c1 := d1.AddCircle(nil, shape.PartialCircle{})
	c2 := d1.AddCircle(nil, shape.PartialCircle{})
	c3 := d1.AddCircle(nil, shape.PartialCircle{})
	d2.Merge(d1.Broadcast())

	d2.MoveObject(nil, c1, slot(2))
	d2.EditCircle(c1, shape.PartialCircle{Opacity: shape.Float32Ptr(0.5)})
	d1.MoveObject(nil, c1, slot(1))

	exchange(d1, d2)

	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2))
	circle, ok := d1.GetCircle(c1)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), circle.Opacity)
	_, _ = c2, c3
}

func TestMergeIsIdempotentAndOrderIndependent(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	g := d1.AddGroup(nil, shape.PartialGroup{})
	c := d1.AddCircle(nil, shape.PartialCircle{})
	d2.Merge(d1.Broadcast())
	d1.MoveObject(&g, c, nil)
	d2.EditCircle(c, shape.PartialCircle{Radius: shape.IntPtr(30)})

	b1 := d1.Broadcast()
	b2 := d2.Broadcast()

	// Duplicated and reordered delivery converges all the same.
	d1.Merge(b2)
	d1.Merge(b2)
	d2.Merge(b1)
	d2.Merge(b1)

	fresh1 := New("x1")
	fresh1.Merge(b2)
	fresh1.Merge(b1)
	fresh2 := New("x2")
	fresh2.Merge(b1)
	fresh2.Merge(b2)

	want := treeJSON(t, d1)
	assert.Equal(t, want, treeJSON(t, d2))
	assert.Equal(t, want, treeJSON(t, fresh1))
	assert.Equal(t, want, treeJSON(t, fresh2))
}

func TestObservedRemoveStaysRemoved(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	c := d1.AddCircle(nil, shape.PartialCircle{})
	d2.Merge(d1.Broadcast())

	d1.RemoveObject(c)
	d2.Merge(d1.Broadcast())

	// d2 observed the remove, so its edit finds nothing to change and the
	// object stays dead on both sides.
	d2.EditCircle(c, shape.PartialCircle{Radius: shape.IntPtr(42)})
	exchange(d1, d2)
	assert.Empty(t, d1.Tree().Children)
	assert.Empty(t, d2.Tree().Children)
	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2))
}

func TestBroadcastDrainsSendBuffer(t *testing.T) {
	d := New("r1")
	d.AddCircle(nil, shape.PartialCircle{})

	first := d.Broadcast()
	_, logs, err := decodeEnvelope(first)
	require.NoError(t, err)
	assert.NotEmpty(t, logs)

	second := d.Broadcast()
	_, logs, err = decodeEnvelope(second)
	require.NoError(t, err)
	assert.Empty(t, logs, "broadcast must clear the send buffer")
}

func TestMergeMalformedPayloadIsNoop(t *testing.T) {
	d := New("r1")
	d.AddCircle(nil, shape.PartialCircle{})
	before := treeJSON(t, d)

	d.Merge([]byte("not json"))
	d.Merge([]byte(`{"wrong": "shape"}`))
	d.Merge([]byte(`[1, 2, 3]`))
	d.Merge(nil)

	assert.Equal(t, before, treeJSON(t, d))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	d1 := New("r1")
	g := d1.AddGroup(nil, shape.PartialGroup{})
	c := d1.AddCircle(nil, shape.PartialCircle{Radius: shape.IntPtr(7)})
	d1.AddRectangle(&g, shape.PartialRectangle{})
	d1.MoveObject(&g, c, slot(0))

	payload := d1.Save()

	d2 := New("r2")
	d2.AddCircle(nil, shape.PartialCircle{})
	d2.Load(payload)

	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2), "Load clears and restores")

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	require.Len(t, raw, 2)
}

func TestConcurrentMovesCannotFormCycle(t *testing.T) {
	d1 := New("r1")
	d2 := New("r2")
	ga := d1.AddGroup(nil, shape.PartialGroup{})
	gb := d1.AddGroup(nil, shape.PartialGroup{})
	d2.Merge(d1.Broadcast())

	// Each replica nests one group under the other; naively replaying both
	// would orphan the pair in a cycle.
	d1.MoveObject(&ga, gb, nil)
	d2.MoveObject(&gb, ga, nil)

	exchange(d1, d2)

	t1 := d1.Tree()
	t2 := d2.Tree()
	assert.Equal(t, treeJSON(t, d1), treeJSON(t, d2))

	count := 0
	var countNodes func(objs []shape.Object)
	countNodes = func(objs []shape.Object) {
		for _, o := range objs {
			count++
			if g, ok := o.(*shape.Group); ok {
				countNodes(g.Children)
			}
		}
	}
	countNodes(t1.Children)
	assert.Equal(t, 2, count, "both groups must still be rendered exactly once")
	_ = t2
}
