package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderingLaws(t *testing.T) {
	labels := []Index{Default(), "1", "9z", "A", "Az", "V", "z", "zz"}
	for _, x := range labels {
		require.NoError(t, Validate(x))
		assert.Negative(t, Compare(Before(x), x), "Before(%q) must sort below it", x)
		assert.Positive(t, Compare(After(x), x), "After(%q) must sort above it", x)
		require.NoError(t, Validate(Before(x)))
		require.NoError(t, Validate(After(x)))
	}
}

func TestBetween(t *testing.T) {
	pairs := [][2]Index{
		{"A", "B"},
		{"A", "A1"},
		{"V", "W"},
		{"1", "z"},
		{"Az", "B"},
		{"V", After("V")},
		{Before("V"), "V"},
	}
	for _, p := range pairs {
		lo, hi := p[0], p[1]
		mid, err := Between(lo, hi)
		require.NoError(t, err, "Between(%q, %q)", lo, hi)
		require.NoError(t, Validate(mid))
		assert.Negative(t, Compare(lo, mid), "Between(%q, %q) = %q not above lo", lo, hi, mid)
		assert.Negative(t, Compare(mid, hi), "Between(%q, %q) = %q not below hi", lo, hi, mid)
	}
}

func TestBetweenRejectsUnorderedBounds(t *testing.T) {
	if _, err := Between("B", "A"); err == nil {
		t.Error("Expected error for reversed bounds")
	}
	if _, err := Between("A", "A"); err == nil {
		t.Error("Expected error for equal bounds")
	}
}

// Repeatedly splitting the same gap must stay ordered and grow the label
// slowly.
func TestBetweenDensityUnderPressure(t *testing.T) {
	lo := Index("A")
	hi := Index("B")
	for i := 0; i < 64; i++ {
		mid, err := Between(lo, hi)
		require.NoError(t, err)
		require.Negative(t, Compare(lo, mid))
		require.Negative(t, Compare(mid, hi))
		assert.LessOrEqual(t, len(mid), i+3, "label growing too fast")
		lo = mid
	}
}

func TestAppendChainStaysShort(t *testing.T) {
	x := Default()
	for i := 0; i < 200; i++ {
		next := After(x)
		require.Positive(t, Compare(next, x))
		x = next
	}
	// Appending saturates one digit roughly every five steps.
	assert.LessOrEqual(t, len(x), 48, "append-only labels growing too fast")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input Index
		valid bool
	}{
		{"default", Default(), true},
		{"plain", "Ab3", true},
		{"empty", "", false},
		{"trailing zero", "A0", false},
		{"bad character", "A-b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
