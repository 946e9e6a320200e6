package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexelcorp/vexel/internal/position"
	"github.com/vexelcorp/vexel/internal/shape"
)

func TestSameVariantMergesPerField(t *testing.T) {
	a := NewCircle("c1", shape.PartialCircle{})
	b := a.Clone().(*Circle)

	a.Radius.Set(50)
	b.Opacity.Set(0.25)

	recA := NewRecord(a, nil, position.Default())
	recB := NewRecord(b, nil, position.Default())

	merged := recA.Merge(recB)
	circle := merged.Object.Val.(*Circle)
	assert.Equal(t, 50, circle.Radius.Value(), "disjoint edits should both survive")
	assert.Equal(t, float32(0.25), circle.Opacity.Value())
}

func TestVariantMismatchResolvesWholeObject(t *testing.T) {
	recA := NewRecord(NewCircle("x", shape.PartialCircle{}), nil, position.Default())
	recB := NewRecord(NewRectangle("x", shape.PartialRectangle{}), nil, position.Default())
	recA.Object.Time = 100
	recB.Object.Time = 200

	merged := recA.Merge(recB)
	assert.Equal(t, shape.KindRectangle, merged.Object.Val.Kind(), "larger stamp should take the payload")

	recB.Object.Time = 100
	tied := recA.Merge(recB)
	assert.Equal(t, shape.KindCircle, tied.Object.Val.Kind(), "ties keep the receiver")
}

func TestRecordCloneIsIndependent(t *testing.T) {
	parent := "g1"
	rec := NewRecord(NewCircle("c1", shape.PartialCircle{}), &parent, position.Default())
	cloned := rec.Clone()

	other := "g2"
	cloned.SetParentAt(&other, 999)
	cloned.Object.Val.(*Circle).Radius.SetAt(77, 999)

	require.NotNil(t, rec.Parent.Val)
	assert.Equal(t, "g1", *rec.Parent.Val)
	assert.Equal(t, 10, rec.Object.Val.(*Circle).Radius.Value())
}

func TestApplyRestamps(t *testing.T) {
	c := NewCircle("c1", shape.PartialCircle{})
	before := c.Radius.Time
	c.Apply(shape.PartialCircle{Radius: shape.IntPtr(42)})
	assert.Greater(t, c.Radius.Time, before)
	assert.Equal(t, 42, c.Radius.Value())
	// Untouched fields keep their stamps.
	fillBefore := c.Fill.Time
	c.Apply(shape.PartialCircle{Opacity: shape.Float32Ptr(0.1)})
	assert.Equal(t, fillBefore, c.Fill.Time)
}

func TestGroupApplyClearVsAbsent(t *testing.T) {
	g := NewGroup("g1", shape.PartialGroup{Fill: shape.Some(shape.Color{R: 1, G: 2, B: 3, A: 1})})
	require.NotNil(t, g.Fill.Value())

	// Absent leaves the field alone.
	g.Apply(shape.PartialGroup{Opacity: shape.Some(float32(0.5))})
	require.NotNil(t, g.Fill.Value())

	// None clears it.
	g.Apply(shape.PartialGroup{Fill: shape.None[shape.Color]()})
	assert.Nil(t, g.Fill.Value())
}

func TestRecordJSONRoundTrip(t *testing.T) {
	parent := "g1"
	rec := NewRecord(NewPath("p1", shape.PartialPath{
		Points: []shape.PartialPathCommand{
			{Type: shape.CommandStart, Pos: shape.Vec2Ptr(shape.Vec2{X: 1, Y: 2})},
			{Type: shape.CommandBezier},
		},
	}, func() string { return "pt" }), &parent, position.Default())

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))

	path, ok := decoded.Object.Val.(*Path)
	require.True(t, ok, "payload should decode to the tagged variant")
	assert.Equal(t, "p1", path.ID)
	assert.Len(t, path.Points.Value(), 2)
	require.NotNil(t, decoded.Parent.Val)
	assert.Equal(t, "g1", *decoded.Parent.Val)
	assert.Equal(t, rec.Index.Val, decoded.Index.Val)
}
