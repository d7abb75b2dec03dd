package curve

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// The uint128 package panics on overflow, so every step that can overflow on caller supplied
// amounts goes through one of these instead.

func checkedAdd(a, b uint128.Uint128) (uint128.Uint128, bool) {
	sum := a.AddWrap(b)
	if sum.Cmp(a) < 0 {
		return uint128.Zero, false
	}
	return sum, true
}

func checkedSub(a, b uint128.Uint128) (uint128.Uint128, bool) {
	if a.Cmp(b) < 0 {
		return uint128.Zero, false
	}
	return a.Sub(b), true
}

func checkedMul(a, b uint128.Uint128) (uint128.Uint128, bool) {
	if a.IsZero() || b.IsZero() {
		return uint128.Zero, true
	}
	product := a.MulWrap(b)
	if !product.Div(a).Equals(b) {
		return uint128.Zero, false
	}
	return product, true
}

func checkedDiv(a, b uint128.Uint128) (uint128.Uint128, bool) {
	if b.IsZero() {
		return uint128.Zero, false
	}
	return a.Div(b), true
}

// checkedCeilDiv divides and rounds the quotient up. Because the quotient was rounded, the
// divisor is recomputed as the smallest value that still yields that quotient, so callers
// can charge the minimum input for the output they receive.
//
// A dividend smaller than the divisor returns 1 only when it is at least half the divisor,
// otherwise 0, instead of rounding every dust amount up to one unit.
func checkedCeilDiv(dividend, divisor uint128.Uint128) (quotient, adjusted uint128.Uint128, ok bool) {
	if divisor.IsZero() {
		return uint128.Zero, uint128.Zero, false
	}
	quotient, remainder := dividend.QuoRem(divisor)
	if quotient.IsZero() {
		twice, ok := checkedMul(dividend, uint128.From64(2))
		if !ok {
			return uint128.Zero, uint128.Zero, false
		}
		if twice.Cmp(divisor) >= 0 {
			return uint128.From64(1), uint128.Zero, true
		}
		return uint128.Zero, uint128.Zero, true
	}
	adjusted = divisor
	if !remainder.IsZero() {
		quotient = quotient.Add64(1)
		var rem uint128.Uint128
		adjusted, rem = dividend.QuoRem(quotient)
		if !rem.IsZero() {
			adjusted = adjusted.Add64(1)
		}
	}
	return quotient, adjusted, true
}

func maxU128(a, b uint128.Uint128) uint128.Uint128 {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// ToU64 narrows a 128-bit amount back to the u64 range used at the boundary.
func ToU64(v uint128.Uint128) (uint64, error) {
	if v.Hi != 0 {
		return 0, ErrConversionFailure.Wrapf("%s does not fit in u64", v)
	}
	return v.Lo, nil
}

func wide(v uint128.Uint128) *uint256.Int {
	return &uint256.Int{v.Lo, v.Hi, 0, 0}
}

func narrow(x *uint256.Int) (uint128.Uint128, bool) {
	if x[2] != 0 || x[3] != 0 {
		return uint128.Zero, false
	}
	return uint128.New(x[0], x[1]), true
}

func floorSqrt(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(x)
}

func ceilSqrt(x *uint256.Int) *uint256.Int {
	root := floorSqrt(x)
	if new(uint256.Int).Mul(root, root).Lt(x) {
		root.AddUint64(root, 1)
	}
	return root
}

// ceilQuo rounds x/y up. y must be non-zero.
func ceilQuo(x, y *uint256.Int) *uint256.Int {
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(x, y, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}
