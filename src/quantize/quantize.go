package quantize

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange means a snapped value fell outside the allowed bounds.
var ErrOutOfRange = errors.New("value outside allowed bounds")

// StepPrecision returns the number of decimal places implied by a step's
// fractional digits: 0.001 -> 3, 0.5 -> 1, 1 -> 0.
func StepPrecision(step decimal.Decimal) int32 {
	if exp := step.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

// IsCompliant reports whether value is an exact integer multiple of step.
// Decimal arithmetic makes the check exact; there is no epsilon.
func IsCompliant(value, step decimal.Decimal) bool {
	if step.IsZero() {
		return false
	}
	return value.Mod(step).IsZero()
}

// Snap rounds value to the nearest multiple of step, re-rounded to the
// precision implied by the step itself. Idempotent: Snap(Snap(x)) == Snap(x).
func Snap(value, step decimal.Decimal) decimal.Decimal {
	if step.IsZero() {
		return value
	}
	n := value.DivRound(step, 0)
	return n.Mul(step).Round(StepPrecision(step))
}

// SnapBounded snaps value to the step grid and then checks bounds. The
// returned error wraps ErrOutOfRange when the snapped value escapes
// [min, max].
func SnapBounded(value, step, min, max decimal.Decimal) (decimal.Decimal, error) {
	snapped := Snap(value, step)
	if snapped.LessThan(min) || snapped.GreaterThan(max) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s not in [%s, %s]",
			ErrOutOfRange, snapped.String(), min.String(), max.String())
	}
	return snapped, nil
}

// InRange reports min <= value <= max.
func InRange(value, min, max decimal.Decimal) bool {
	return value.GreaterThanOrEqual(min) && value.LessThanOrEqual(max)
}
