// Package money implements fixed-point monetary amounts as integer counts
// of minor currency units (e.g. cents). All arithmetic is exact; division
// that would lose units is handled by the caller's remainder-distribution
// rule, never truncated away.
package money

import (
	"errors"
	"fmt"
	"math"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrOverflow      = errors.New("amount overflows int64")
)

// Money is an amount in minor currency units. The currency itself is carried
// separately (on the group), so two Money values are only comparable within
// one group.
type Money int64

// Add returns m+other, failing on int64 overflow.
func (m Money) Add(other Money) (Money, error) {
	sum := m + other
	if (other > 0 && sum < m) || (other < 0 && sum > m) {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns m-other, failing on int64 overflow.
func (m Money) Sub(other Money) (Money, error) {
	return m.Add(-other)
}

// Mul returns m*k, failing on int64 overflow.
func (m Money) Mul(k int64) (Money, error) {
	if m == 0 || k == 0 {
		return 0, nil
	}
	if k == -1 && m == math.MinInt64 {
		return 0, ErrOverflow
	}
	p := int64(m) * k
	if p/k != int64(m) {
		return 0, ErrOverflow
	}
	return Money(p), nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return -m
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool {
	return m == 0
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// Sum adds a slice of amounts, failing on overflow.
func Sum(amounts []Money) (Money, error) {
	var total Money
	var err error
	for _, a := range amounts {
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Divide splits m into n parts as evenly as possible: every part is
// floor(m/n), and the remainder (always 0 <= r < n units) is left for the
// caller to distribute one unit at a time. Requires m >= 0 and n > 0.
func (m Money) Divide(n int) (part Money, remainder Money, err error) {
	if n <= 0 {
		return 0, 0, fmt.Errorf("cannot divide into %d parts", n)
	}
	if m < 0 {
		return 0, 0, ErrInvalidAmount
	}
	part = m / Money(n)
	remainder = m - part*Money(n)
	return part, remainder, nil
}

// Ratio returns floor(m*num/den). Used for proportional shares (percentages,
// weights); the caller reconciles the rounding residue against the total.
// Requires m >= 0, num >= 0, den > 0.
func (m Money) Ratio(num, den int64) (Money, error) {
	if den <= 0 {
		return 0, fmt.Errorf("ratio denominator must be positive, got %d", den)
	}
	if m < 0 || num < 0 {
		return 0, ErrInvalidAmount
	}
	p, err := m.Mul(num)
	if err != nil {
		return 0, err
	}
	return p / Money(den), nil
}
