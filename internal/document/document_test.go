package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexelcorp/vexel/internal/shape"
)

func treeJSON(t *testing.T, d *Doc) string {
	t.Helper()
	data, err := json.Marshal(d.Tree())
	require.NoError(t, err)
	return string(data)
}

func childIDs(tree shape.Tree) []string {
	ids := make([]string, 0, len(tree.Children))
	for _, child := range tree.Children {
		ids = append(ids, child.GetID())
	}
	return ids
}

func slot(i int) *int { return &i }

func TestCreateCircle(t *testing.T) {
	d := New("r1")
	id := d.AddCircle(nil, shape.PartialCircle{})
	require.NotEmpty(t, id)

	tree := d.Tree()
	require.Len(t, tree.Children, 1)
	assert.Equal(t, shape.KindCircle, tree.Children[0].ObjectKind())
	assert.Equal(t, id, tree.Children[0].GetID())
}

func TestCreateCircleWithinGroup(t *testing.T) {
	d := New("r1")
	groupID := d.AddGroup(nil, shape.PartialGroup{})
	first := d.AddCircle(&groupID, shape.PartialCircle{})
	second := d.AddCircle(&groupID, shape.PartialCircle{})

	tree := d.Tree()
	require.Len(t, tree.Children, 1)
	group, ok := tree.Children[0].(*shape.Group)
	require.True(t, ok)
	require.Len(t, group.Children, 2)
	assert.Equal(t, first, group.Children[0].GetID())
	assert.Equal(t, second, group.Children[1].GetID())
}

func TestAddUnderNonGroupParentRejected(t *testing.T) {
	d := New("r1")
	circleID := d.AddCircle(nil, shape.PartialCircle{})
	got := d.AddRectangle(&circleID, shape.PartialRectangle{})
	assert.Empty(t, got, "only groups may contain children")
	assert.Len(t, d.Tree().Children, 1)
}

func TestEditVariantChecked(t *testing.T) {
	d := New("r1")
	rectID := d.AddRectangle(nil, shape.PartialRectangle{})
	d.EditCircle(rectID, shape.PartialCircle{Radius: shape.IntPtr(99)})

	rect, ok := d.GetRectangle(rectID)
	require.True(t, ok)
	assert.Equal(t, 10, rect.Width, "mismatched edit must not change the object")
	_, ok = d.GetCircle(rectID)
	assert.False(t, ok)
}

func TestEditMissingIDIsNoop(t *testing.T) {
	d := New("r1")
	d.EditCircle("nope", shape.PartialCircle{Radius: shape.IntPtr(1)})
	assert.Empty(t, d.Tree().Children)
}

func TestMoveOrder(t *testing.T) {
	d := New("r1")
	first := d.AddCircle(nil, shape.PartialCircle{})
	second := d.AddCircle(nil, shape.PartialCircle{})

	d.MoveObject(nil, first, slot(1))
	assert.Equal(t, []string{second, first}, childIDs(d.Tree()))
}

func TestMoveOrderMultiple(t *testing.T) {
	d := New("r1")
	ids := make([]string, 5)
	for i := range ids {
		ids[i] = d.AddCircle(nil, shape.PartialCircle{})
	}

	d.MoveObject(nil, ids[0], slot(1))
	d.MoveObject(nil, ids[2], slot(0))
	d.MoveObject(nil, ids[4], slot(1))
	d.MoveObject(nil, ids[3], slot(1))

	want := []string{ids[2], ids[3], ids[4], ids[1], ids[0]}
	assert.Equal(t, want, childIDs(d.Tree()))
}

func TestMoveIntoGroup(t *testing.T) {
	d := New("r1")
	circleID := d.AddCircle(nil, shape.PartialCircle{})
	groupID := d.AddGroup(nil, shape.PartialGroup{})

	d.MoveObject(&groupID, circleID, nil)

	tree := d.Tree()
	require.Len(t, tree.Children, 1)
	group := tree.Children[0].(*shape.Group)
	require.Len(t, group.Children, 1)
	assert.Equal(t, circleID, group.Children[0].GetID())
}

func TestMoveToSamePositionIdempotent(t *testing.T) {
	d := New("r1")
	first := d.AddCircle(nil, shape.PartialCircle{})
	second := d.AddCircle(nil, shape.PartialCircle{})

	before := childIDs(d.Tree())
	d.MoveObject(nil, first, slot(0))
	assert.Equal(t, before, childIDs(d.Tree()))
	_ = second
}

func TestCyclePrevention(t *testing.T) {
	d := New("r1")
	outerID := d.AddGroup(nil, shape.PartialGroup{})
	innerID := d.AddGroup(&outerID, shape.PartialGroup{})

	before := treeJSON(t, d)
	// Moving a group into its own child would form a cycle.
	d.MoveObject(&innerID, outerID, slot(0))
	assert.Equal(t, before, treeJSON(t, d))

	// Self-parenting is equally rejected.
	d.MoveObject(&outerID, outerID, nil)
	assert.Equal(t, before, treeJSON(t, d))
}

func TestRemoveObject(t *testing.T) {
	d := New("r1")
	id := d.AddCircle(nil, shape.PartialCircle{})
	d.RemoveObject(id)
	assert.Empty(t, d.Tree().Children)
	_, ok := d.GetCircle(id)
	assert.False(t, ok)
}

func TestDeleteGroupPrunesChildren(t *testing.T) {
	d := New("r1")
	groupID := d.AddGroup(nil, shape.PartialGroup{})
	d.AddCircle(&groupID, shape.PartialCircle{})

	d.RemoveObject(groupID)
	assert.Empty(t, d.Tree().Children, "orphans must not surface at the root")
}

func TestEditRemovedObjectIsNoop(t *testing.T) {
	d := New("r1")
	id := d.AddCircle(nil, shape.PartialCircle{})
	d.RemoveObject(id)
	d.EditCircle(id, shape.PartialCircle{Opacity: shape.Float32Ptr(0.5)})
	assert.Empty(t, d.Tree().Children, "editing a removed object must not revive it")
}

func TestPathPointCommands(t *testing.T) {
	d := New("r1")
	pathID := d.AddPath(nil, shape.PartialPath{})

	d.AddPointToPath(pathID, shape.CommandStart, shape.Vec2{X: 0, Y: 0})
	d.AddPointToPath(pathID, shape.CommandBezier, shape.Vec2{X: 10, Y: 10})
	d.AddPointToPath(pathID, shape.CommandLine, shape.Vec2{X: 20, Y: 0})

	path, ok := d.GetPath(pathID)
	require.True(t, ok)
	require.Len(t, path.Points, 3)
	bezier := path.Points[1]
	require.NotNil(t, bezier.Handle1)
	assert.Equal(t, shape.Vec2{X: 30, Y: 30}, *bezier.Handle1)
	assert.Equal(t, shape.Vec2{X: 30, Y: -10}, *bezier.Handle2)

	// Anchor and handle edits dispatch on the command type.
	d.EditPathPointPos(pathID, bezier.ID, shape.Vec2{X: 50, Y: 50})
	d.EditPathPointHandle1(pathID, bezier.ID, shape.Vec2{X: 1, Y: 1})
	d.EditPathPointHandle2(pathID, bezier.ID, shape.Vec2{X: 2, Y: 2})
	lineID := path.Points[2].ID
	d.EditPathPointHandle2(pathID, lineID, shape.Vec2{X: 9, Y: 9})

	path, _ = d.GetPath(pathID)
	assert.Equal(t, shape.Vec2{X: 50, Y: 50}, *path.Points[1].Pos)
	assert.Equal(t, shape.Vec2{X: 1, Y: 1}, *path.Points[1].Handle1)
	assert.Equal(t, shape.Vec2{X: 2, Y: 2}, *path.Points[1].Handle2)
	assert.Nil(t, path.Points[2].Handle2, "handle edits on a line are ignored")

	// Retyping a command keeps its anchor but assigns a fresh id.
	oldID := path.Points[0].ID
	d.EditPathPointType(pathID, oldID, shape.CommandLine)
	path, _ = d.GetPath(pathID)
	assert.Equal(t, shape.CommandLine, path.Points[0].Type)
	assert.NotEqual(t, oldID, path.Points[0].ID)

	d.RemovePathPoint(pathID, path.Points[0].ID)
	path, _ = d.GetPath(pathID)
	assert.Len(t, path.Points, 2)
}

func TestGroupStylingClearVsAbsent(t *testing.T) {
	d := New("r1")
	groupID := d.AddGroup(nil, shape.PartialGroup{
		Fill:    shape.Some(shape.Color{R: 10, G: 20, B: 30, A: 1}),
		Opacity: shape.Some(float32(0.9)),
	})

	d.EditGroup(groupID, shape.PartialGroup{Fill: shape.None[shape.Color]()})

	group, ok := d.GetGroup(groupID)
	require.True(t, ok)
	assert.Nil(t, group.Fill, "None clears the field")
	require.NotNil(t, group.Opacity)
	assert.Equal(t, float32(0.9), *group.Opacity, "absent leaves the field unchanged")
}
