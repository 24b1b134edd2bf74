// Package checked provides overflow-safe arithmetic for length-derived
// sizes read from untrusted input, the same guarding discipline
// massifs/logformat.go applies to massif offset bounds, generalized to a
// pair of small helpers usable anywhere a declared count or length needs
// validating before it is trusted.
package checked

import (
	"fmt"
	"math"

	"github.com/samibs/TrustDoc/errs"
)

// Mul64 returns a*b, erroring with errs.ErrIntegerOverflow instead of
// wrapping silently.
func Mul64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	result := a * b
	if result/a != b {
		return 0, fmt.Errorf("%w: %d * %d overflows uint64", errs.ErrIntegerOverflow, a, b)
	}
	return result, nil
}

// Add64 returns a+b, erroring with errs.ErrIntegerOverflow on wraparound.
func Add64(a, b uint64) (uint64, error) {
	result := a + b
	if result < a {
		return 0, fmt.Errorf("%w: %d + %d overflows uint64", errs.ErrIntegerOverflow, a, b)
	}
	return result, nil
}

// RequiredSize computes headerSize + rootSize + count*elementSize using
// checked arithmetic throughout, as required by the hashes.bin length
// validation (§4.2): "Compute required = 10 + 32 + count*32 using checked
// multiplication and checked addition; reject overflow".
func RequiredSize(headerSize, rootSize, elementSize uint64, count uint32) (uint64, error) {
	if uint64(count) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: count exceeds uint32 range", errs.ErrIntegerOverflow)
	}
	product, err := Mul64(uint64(count), elementSize)
	if err != nil {
		return 0, err
	}
	sum, err := Add64(headerSize, rootSize)
	if err != nil {
		return 0, err
	}
	total, err := Add64(sum, product)
	if err != nil {
		return 0, err
	}
	return total, nil
}
