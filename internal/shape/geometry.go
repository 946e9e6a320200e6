package shape

import (
	"encoding/json"
	"fmt"
)

// Vec2 is an integer 2D coordinate.
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Color is an RGB triple plus alpha, serialized as the 4-tuple
// [r, g, b, a].
type Color struct {
	R int
	G int
	B int
	A float32
}

// White returns opaque white.
func White() Color { return Color{R: 255, G: 255, B: 255, A: 1.0} }

// Black returns opaque black.
func Black() Color { return Color{R: 0, G: 0, B: 0, A: 1.0} }

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]json.Number{
		json.Number(fmt.Sprintf("%d", c.R)),
		json.Number(fmt.Sprintf("%d", c.G)),
		json.Number(fmt.Sprintf("%d", c.B)),
		jsonFloat(c.A),
	})
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var tuple [4]float64
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	c.R = int(tuple[0])
	c.G = int(tuple[1])
	c.B = int(tuple[2])
	c.A = float32(tuple[3])
	return nil
}

func jsonFloat(f float32) json.Number {
	b, _ := json.Marshal(f)
	return json.Number(b)
}

// Nullable carries the three-valued edit semantics for clearable fields: a
// nil *Nullable leaves the field unchanged, Valid=true sets it, Valid=false
// clears it.
type Nullable[T any] struct {
	Valid bool
	Item  T
}

// Some wraps a value to set.
func Some[T any](item T) *Nullable[T] {
	return &Nullable[T]{Valid: true, Item: item}
}

// None marks a field for clearing.
func None[T any]() *Nullable[T] {
	return &Nullable[T]{}
}

type nullableJSON[T any] struct {
	Type string `json:"type"`
	Item *T     `json:"item,omitempty"`
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return json.Marshal(nullableJSON[T]{Type: "None"})
	}
	item := n.Item
	return json.Marshal(nullableJSON[T]{Type: "Some", Item: &item})
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	var raw nullableJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case "Some":
		if raw.Item == nil {
			return fmt.Errorf("shape: Some without item")
		}
		n.Valid = true
		n.Item = *raw.Item
		return nil
	case "None":
		*n = Nullable[T]{}
		return nil
	default:
		return fmt.Errorf("shape: unknown nullable tag %q", raw.Type)
	}
}
