// Package position implements dense, totally-ordered position labels for
// sibling ordering. A label is a base-62 digit string interpreted as a
// fraction in (0,1); because the digit alphabet is sorted by byte value and
// labels never carry a trailing zero digit, lexicographic comparison equals
// numeric comparison, so labels are canonically comparable as plain strings.
package position

import (
	"errors"
	"strings"
)

const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = len(digits)

// Index is a fractional position label.
type Index string

var (
	// ErrNotOrdered is returned by Between when lo is not strictly below hi.
	ErrNotOrdered = errors.New("position: bounds are not strictly ordered")
	// ErrMalformed is returned by Validate for labels that are empty, carry
	// digits outside the alphabet, or end in the zero digit.
	ErrMalformed = errors.New("position: malformed index")
)

// Default is the label assigned before any ordering decision has been made:
// the midpoint of the whole range.
func Default() Index {
	return Index(digits[base/2])
}

// Compare orders two labels. The result follows strings.Compare.
func Compare(a, b Index) int {
	return strings.Compare(string(a), string(b))
}

// Before returns a label strictly below x.
func Before(x Index) Index {
	return Index(midpoint("", string(x), true))
}

// After returns a label strictly above x.
func After(x Index) Index {
	return Index(midpoint(string(x), "", false))
}

// Between returns a label strictly between lo and hi. It fails when the
// bounds are not strictly ordered; every strictly ordered pair has a
// midpoint (density).
func Between(lo, hi Index) (Index, error) {
	if Compare(lo, hi) >= 0 {
		return "", ErrNotOrdered
	}
	return Index(midpoint(string(lo), string(hi), true)), nil
}

// Validate rejects labels that violate the canonical form.
func Validate(x Index) error {
	if len(x) == 0 {
		return ErrMalformed
	}
	for i := 0; i < len(x); i++ {
		if strings.IndexByte(digits, x[i]) < 0 {
			return ErrMalformed
		}
	}
	if x[len(x)-1] == digits[0] {
		return ErrMalformed
	}
	return nil
}

// midpoint computes a digit string strictly between a and b, where an empty
// a reads as zero and, when bounded is false, b reads as one (exclusive).
// The label grows by at most one digit beyond the longer bound.
func midpoint(a, b string, bounded bool) string {
	if bounded {
		n := 0
		for n < len(b) {
			ca := byte(digits[0])
			if n < len(a) {
				ca = a[n]
			}
			if ca != b[n] {
				break
			}
			n++
		}
		if n > 0 {
			var tail string
			if n < len(a) {
				tail = midpoint(a[n:], b[n:], true)
			} else {
				tail = midpoint("", b[n:], true)
			}
			return b[:n] + tail
		}
	}

	digitA := 0
	if a != "" {
		digitA = strings.IndexByte(digits, a[0])
	}
	digitB := base
	if bounded && b != "" {
		digitB = strings.IndexByte(digits, b[0])
	}

	if digitB-digitA > 1 {
		mid := (digitA + digitB + 1) / 2
		return string(digits[mid])
	}

	// Adjacent head digits: descend into the lower bound's tail with an
	// open upper bound.
	if bounded && len(b) > 1 {
		return b[:1]
	}
	var restA string
	if len(a) > 1 {
		restA = a[1:]
	}
	return string(digits[digitA]) + midpoint(restA, "", false)
}
