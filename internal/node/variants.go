package node

import (
	"github.com/vexelcorp/vexel/internal/register"
	"github.com/vexelcorp/vexel/internal/shape"
)

// Circle is the replicated circle payload, one register per attribute.
type Circle struct {
	Type        shape.Kind                `json:"type"`
	ID          string                    `json:"id"`
	Pos         register.Reg[shape.Vec2]  `json:"pos"`
	Radius      register.Reg[int]         `json:"radius"`
	Fill        register.Reg[shape.Color] `json:"fill"`
	StrokeWidth register.Reg[int]         `json:"stroke_width"`
	Stroke      register.Reg[shape.Color] `json:"stroke"`
	Opacity     register.Reg[float32]     `json:"opacity"`
}

// NewCircle builds a circle payload from defaults plus a partial edit.
func NewCircle(id string, partial shape.PartialCircle) *Circle {
	base := shape.DefaultCircle()
	c := &Circle{
		Type:        shape.KindCircle,
		ID:          id,
		Pos:         register.New(base.Pos),
		Radius:      register.New(base.Radius),
		Fill:        register.New(base.Fill),
		StrokeWidth: register.New(base.StrokeWidth),
		Stroke:      register.New(base.Stroke),
		Opacity:     register.New(base.Opacity),
	}
	c.Apply(partial)
	return c
}

// Apply sets the present fields, restamping each touched register.
func (c *Circle) Apply(partial shape.PartialCircle) {
	if partial.Pos != nil {
		c.Pos.Set(*partial.Pos)
	}
	if partial.Radius != nil {
		c.Radius.Set(*partial.Radius)
	}
	if partial.Fill != nil {
		c.Fill.Set(*partial.Fill)
	}
	if partial.StrokeWidth != nil {
		c.StrokeWidth.Set(*partial.StrokeWidth)
	}
	if partial.Stroke != nil {
		c.Stroke.Set(*partial.Stroke)
	}
	if partial.Opacity != nil {
		c.Opacity.Set(*partial.Opacity)
	}
}

func (c *Circle) Kind() shape.Kind { return shape.KindCircle }

func (c *Circle) Clone() Payload {
	out := *c
	return &out
}

func (c *Circle) Value() shape.Object {
	return &shape.Circle{
		Type:        shape.KindCircle,
		ID:          c.ID,
		Pos:         c.Pos.Value(),
		Radius:      c.Radius.Value(),
		Fill:        c.Fill.Value(),
		StrokeWidth: c.StrokeWidth.Value(),
		Stroke:      c.Stroke.Value(),
		Opacity:     c.Opacity.Value(),
	}
}

func (c *Circle) mergeSame(other Payload) Payload {
	o := other.(*Circle)
	return &Circle{
		Type:        shape.KindCircle,
		ID:          c.ID,
		Pos:         register.Merge(c.Pos, o.Pos),
		Radius:      register.Merge(c.Radius, o.Radius),
		Fill:        register.Merge(c.Fill, o.Fill),
		StrokeWidth: register.Merge(c.StrokeWidth, o.StrokeWidth),
		Stroke:      register.Merge(c.Stroke, o.Stroke),
		Opacity:     register.Merge(c.Opacity, o.Opacity),
	}
}

// Rectangle is the replicated rectangle payload.
type Rectangle struct {
	Type        shape.Kind                `json:"type"`
	ID          string                    `json:"id"`
	Pos         register.Reg[shape.Vec2]  `json:"pos"`
	Height      register.Reg[int]         `json:"height"`
	Width       register.Reg[int]         `json:"width"`
	Fill        register.Reg[shape.Color] `json:"fill"`
	StrokeWidth register.Reg[int]         `json:"stroke_width"`
	Stroke      register.Reg[shape.Color] `json:"stroke"`
	Opacity     register.Reg[float32]     `json:"opacity"`
}

// NewRectangle builds a rectangle payload from defaults plus a partial edit.
func NewRectangle(id string, partial shape.PartialRectangle) *Rectangle {
	base := shape.DefaultRectangle()
	r := &Rectangle{
		Type:        shape.KindRectangle,
		ID:          id,
		Pos:         register.New(base.Pos),
		Height:      register.New(base.Height),
		Width:       register.New(base.Width),
		Fill:        register.New(base.Fill),
		StrokeWidth: register.New(base.StrokeWidth),
		Stroke:      register.New(base.Stroke),
		Opacity:     register.New(base.Opacity),
	}
	r.Apply(partial)
	return r
}

// Apply sets the present fields, restamping each touched register.
func (r *Rectangle) Apply(partial shape.PartialRectangle) {
	if partial.Pos != nil {
		r.Pos.Set(*partial.Pos)
	}
	if partial.Height != nil {
		r.Height.Set(*partial.Height)
	}
	if partial.Width != nil {
		r.Width.Set(*partial.Width)
	}
	if partial.Fill != nil {
		r.Fill.Set(*partial.Fill)
	}
	if partial.StrokeWidth != nil {
		r.StrokeWidth.Set(*partial.StrokeWidth)
	}
	if partial.Stroke != nil {
		r.Stroke.Set(*partial.Stroke)
	}
	if partial.Opacity != nil {
		r.Opacity.Set(*partial.Opacity)
	}
}

func (r *Rectangle) Kind() shape.Kind { return shape.KindRectangle }

func (r *Rectangle) Clone() Payload {
	out := *r
	return &out
}

func (r *Rectangle) Value() shape.Object {
	return &shape.Rectangle{
		Type:        shape.KindRectangle,
		ID:          r.ID,
		Pos:         r.Pos.Value(),
		Height:      r.Height.Value(),
		Width:       r.Width.Value(),
		Fill:        r.Fill.Value(),
		StrokeWidth: r.StrokeWidth.Value(),
		Stroke:      r.Stroke.Value(),
		Opacity:     r.Opacity.Value(),
	}
}

func (r *Rectangle) mergeSame(other Payload) Payload {
	o := other.(*Rectangle)
	return &Rectangle{
		Type:        shape.KindRectangle,
		ID:          r.ID,
		Pos:         register.Merge(r.Pos, o.Pos),
		Height:      register.Merge(r.Height, o.Height),
		Width:       register.Merge(r.Width, o.Width),
		Fill:        register.Merge(r.Fill, o.Fill),
		StrokeWidth: register.Merge(r.StrokeWidth, o.StrokeWidth),
		Stroke:      register.Merge(r.Stroke, o.Stroke),
		Opacity:     register.Merge(r.Opacity, o.Opacity),
	}
}

// Path is the replicated path payload. The command vector is a single
// register: point-level edits rewrite the whole vector.
type Path struct {
	Type        shape.Kind                        `json:"type"`
	ID          string                            `json:"id"`
	Fill        register.Reg[shape.Color]         `json:"fill"`
	StrokeWidth register.Reg[int]                 `json:"stroke_width"`
	Stroke      register.Reg[shape.Color]         `json:"stroke"`
	Opacity     register.Reg[float32]             `json:"opacity"`
	Points      register.Reg[[]shape.PathCommand] `json:"points"`
}

// NewPath builds a path payload from defaults plus a partial edit.
func NewPath(id string, partial shape.PartialPath, genID func() string) *Path {
	base := shape.DefaultPath()
	p := &Path{
		Type:        shape.KindPath,
		ID:          id,
		Fill:        register.New(base.Fill),
		StrokeWidth: register.New(base.StrokeWidth),
		Stroke:      register.New(base.Stroke),
		Opacity:     register.New(base.Opacity),
		Points:      register.New(base.Points),
	}
	p.Apply(partial, genID)
	return p
}

// Apply sets the present fields. A present Points vector replaces the
// commands wholesale, each with a fresh id.
func (p *Path) Apply(partial shape.PartialPath, genID func() string) {
	if partial.Fill != nil {
		p.Fill.Set(*partial.Fill)
	}
	if partial.StrokeWidth != nil {
		p.StrokeWidth.Set(*partial.StrokeWidth)
	}
	if partial.Stroke != nil {
		p.Stroke.Set(*partial.Stroke)
	}
	if partial.Opacity != nil {
		p.Opacity.Set(*partial.Opacity)
	}
	if partial.Points != nil {
		points := make([]shape.PathCommand, 0, len(partial.Points))
		for _, pc := range partial.Points {
			points = append(points, shape.CommandFromPartial(genID(), pc))
		}
		p.Points.Set(points)
	}
}

// PointsValue returns an independent copy of the command vector.
func (p *Path) PointsValue() []shape.PathCommand {
	return shape.ClonePoints(p.Points.Value())
}

// SetPoints replaces the command vector, restamping the register.
func (p *Path) SetPoints(points []shape.PathCommand) {
	p.Points.Set(points)
}

func (p *Path) Kind() shape.Kind { return shape.KindPath }

func (p *Path) Clone() Payload {
	out := *p
	out.Points.Val = shape.ClonePoints(p.Points.Val)
	return &out
}

func (p *Path) Value() shape.Object {
	return &shape.Path{
		Type:        shape.KindPath,
		ID:          p.ID,
		Fill:        p.Fill.Value(),
		StrokeWidth: p.StrokeWidth.Value(),
		Stroke:      p.Stroke.Value(),
		Points:      shape.ClonePoints(p.Points.Value()),
		Opacity:     p.Opacity.Value(),
	}
}

func (p *Path) mergeSame(other Payload) Payload {
	o := other.(*Path)
	merged := &Path{
		Type:        shape.KindPath,
		ID:          p.ID,
		Fill:        register.Merge(p.Fill, o.Fill),
		StrokeWidth: register.Merge(p.StrokeWidth, o.StrokeWidth),
		Stroke:      register.Merge(p.Stroke, o.Stroke),
		Opacity:     register.Merge(p.Opacity, o.Opacity),
		Points:      register.Merge(p.Points, o.Points),
	}
	merged.Points.Val = shape.ClonePoints(merged.Points.Val)
	return merged
}

// Group is the replicated group payload. Children are derived from the tree
// structure at materialization time and never stored here.
type Group struct {
	Type        shape.Kind                 `json:"type"`
	ID          string                     `json:"id"`
	Fill        register.Reg[*shape.Color] `json:"fill"`
	Stroke      register.Reg[*shape.Color] `json:"stroke"`
	StrokeWidth register.Reg[*int]         `json:"stroke_width"`
	Opacity     register.Reg[*float32]     `json:"opacity"`
}

// NewGroup builds a group payload from defaults plus a partial edit.
func NewGroup(id string, partial shape.PartialGroup) *Group {
	g := &Group{
		Type:        shape.KindGroup,
		ID:          id,
		Fill:        register.New[*shape.Color](nil),
		Stroke:      register.New[*shape.Color](nil),
		StrokeWidth: register.New[*int](nil),
		Opacity:     register.New[*float32](nil),
	}
	g.Apply(partial)
	return g
}

// Apply sets or clears the present fields, restamping each touched
// register.
func (g *Group) Apply(partial shape.PartialGroup) {
	if partial.Fill != nil {
		g.Fill.Set(nullableToPtr(partial.Fill))
	}
	if partial.Stroke != nil {
		g.Stroke.Set(nullableToPtr(partial.Stroke))
	}
	if partial.StrokeWidth != nil {
		g.StrokeWidth.Set(nullableToPtr(partial.StrokeWidth))
	}
	if partial.Opacity != nil {
		g.Opacity.Set(nullableToPtr(partial.Opacity))
	}
}

func nullableToPtr[T any](n *shape.Nullable[T]) *T {
	if n == nil || !n.Valid {
		return nil
	}
	item := n.Item
	return &item
}

func (g *Group) Kind() shape.Kind { return shape.KindGroup }

func (g *Group) Clone() Payload {
	out := *g
	out.Fill.Val = clonePtr(g.Fill.Val)
	out.Stroke.Val = clonePtr(g.Stroke.Val)
	out.StrokeWidth.Val = clonePtr(g.StrokeWidth.Val)
	out.Opacity.Val = clonePtr(g.Opacity.Val)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func (g *Group) Value() shape.Object {
	return &shape.Group{
		Type:        shape.KindGroup,
		ID:          g.ID,
		Fill:        clonePtr(g.Fill.Value()),
		Stroke:      clonePtr(g.Stroke.Value()),
		StrokeWidth: clonePtr(g.StrokeWidth.Value()),
		Opacity:     clonePtr(g.Opacity.Value()),
		Children:    []shape.Object{},
	}
}

func (g *Group) mergeSame(other Payload) Payload {
	o := other.(*Group)
	merged := &Group{
		Type:        shape.KindGroup,
		ID:          g.ID,
		Fill:        register.Merge(g.Fill, o.Fill),
		Stroke:      register.Merge(g.Stroke, o.Stroke),
		StrokeWidth: register.Merge(g.StrokeWidth, o.StrokeWidth),
		Opacity:     register.Merge(g.Opacity, o.Opacity),
	}
	merged.Fill.Val = clonePtr(merged.Fill.Val)
	merged.Stroke.Val = clonePtr(merged.Stroke.Val)
	merged.StrokeWidth.Val = clonePtr(merged.StrokeWidth.Val)
	merged.Opacity.Val = clonePtr(merged.Opacity.Val)
	return merged
}
