package shape

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the object variants on the wire.
type Kind string

const (
	KindCircle    Kind = "CIRCLE"
	KindRectangle Kind = "RECTANGLE"
	KindPath      Kind = "PATH"
	KindGroup     Kind = "GROUP"
)

// Object is one node of the materialized document: a circle, rectangle,
// path or group.
type Object interface {
	GetID() string
	ObjectKind() Kind
	CloneObject() Object
}

// Circle is a filled circle.
type Circle struct {
	Type        Kind    `json:"type"`
	ID          string  `json:"id"`
	Pos         Vec2    `json:"pos"`
	Radius      int     `json:"radius"`
	Fill        Color   `json:"fill"`
	StrokeWidth int     `json:"stroke_width"`
	Stroke      Color   `json:"stroke"`
	Opacity     float32 `json:"opacity"`
}

// DefaultCircle returns a circle with the standard attribute defaults. The
// caller assigns the id.
func DefaultCircle() Circle {
	return Circle{
		Type:        KindCircle,
		Pos:         Vec2{},
		Radius:      10,
		Fill:        White(),
		StrokeWidth: 2,
		Stroke:      Black(),
		Opacity:     1.0,
	}
}

func (c *Circle) GetID() string    { return c.ID }
func (c *Circle) ObjectKind() Kind { return KindCircle }
func (c *Circle) CloneObject() Object {
	out := *c
	return &out
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	Type        Kind    `json:"type"`
	ID          string  `json:"id"`
	Pos         Vec2    `json:"pos"`
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	Fill        Color   `json:"fill"`
	StrokeWidth int     `json:"stroke_width"`
	Stroke      Color   `json:"stroke"`
	Opacity     float32 `json:"opacity"`
}

// DefaultRectangle returns a rectangle with the standard attribute defaults.
func DefaultRectangle() Rectangle {
	return Rectangle{
		Type:        KindRectangle,
		Pos:         Vec2{},
		Height:      5,
		Width:       10,
		Fill:        White(),
		StrokeWidth: 2,
		Stroke:      Black(),
		Opacity:     1.0,
	}
}

func (r *Rectangle) GetID() string    { return r.ID }
func (r *Rectangle) ObjectKind() Kind { return KindRectangle }
func (r *Rectangle) CloneObject() Object {
	out := *r
	return &out
}

// Group contains other objects. The styling fields are all clearable; the
// children are derived from the tree structure, never edited directly.
type Group struct {
	Type        Kind     `json:"type"`
	ID          string   `json:"id"`
	Fill        *Color   `json:"fill"`
	Stroke      *Color   `json:"stroke"`
	StrokeWidth *int     `json:"stroke_width"`
	Opacity     *float32 `json:"opacity"`
	Children    []Object `json:"children"`
}

// DefaultGroup returns an empty, unstyled group.
func DefaultGroup() Group {
	return Group{Type: KindGroup, Children: []Object{}}
}

func (g *Group) GetID() string    { return g.ID }
func (g *Group) ObjectKind() Kind { return KindGroup }
func (g *Group) CloneObject() Object {
	out := *g
	if g.Fill != nil {
		fill := *g.Fill
		out.Fill = &fill
	}
	if g.Stroke != nil {
		stroke := *g.Stroke
		out.Stroke = &stroke
	}
	if g.StrokeWidth != nil {
		sw := *g.StrokeWidth
		out.StrokeWidth = &sw
	}
	if g.Opacity != nil {
		op := *g.Opacity
		out.Opacity = &op
	}
	out.Children = make([]Object, len(g.Children))
	for i, child := range g.Children {
		out.Children[i] = child.CloneObject()
	}
	return &out
}

func (g *Group) UnmarshalJSON(data []byte) error {
	type alias Group
	var raw struct {
		alias
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = Group(raw.alias)
	g.Children = make([]Object, 0, len(raw.Children))
	for _, childRaw := range raw.Children {
		child, err := UnmarshalObject(childRaw)
		if err != nil {
			return err
		}
		g.Children = append(g.Children, child)
	}
	return nil
}

// UnmarshalObject decodes one tagged object.
func UnmarshalObject(data []byte) (Object, error) {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case KindCircle:
		var c Circle
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case KindRectangle:
		var r Rectangle
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return &r, nil
	case KindPath:
		var p Path
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindGroup:
		var g Group
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		return &g, nil
	default:
		return nil, fmt.Errorf("shape: unknown object kind %q", probe.Type)
	}
}

// Tree is the ordered forest visible to callers.
type Tree struct {
	Children []Object `json:"children"`
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw struct {
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Children = make([]Object, 0, len(raw.Children))
	for _, childRaw := range raw.Children {
		child, err := UnmarshalObject(childRaw)
		if err != nil {
			return err
		}
		t.Children = append(t.Children, child)
	}
	return nil
}
