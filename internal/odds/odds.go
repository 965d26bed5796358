// Package odds converts between the three equivalent price representations
// carried on every market: decimal multiplier, American sign-prefixed
// integer, and normalized implied probability.
package odds

import (
	"fmt"
	"math"

	"github.com/oddslane/sportsbook/internal/domain"
)

// tolerance bounds the disagreement allowed between the three views when
// checking consistency; prices arrive as floats and the American form is an
// integer, so exact equality is not attainable.
const tolerance = 0.01

// DecimalToAmerican converts a decimal multiplier to the American form:
// decimal >= 2.0 maps to (decimal-1)*100, 1.0 < decimal < 2.0 maps to
// -100/(decimal-1).
func DecimalToAmerican(decimal float64) (int64, error) {
	if decimal <= 1.0 || math.IsInf(decimal, 0) || math.IsNaN(decimal) {
		return 0, fmt.Errorf("decimal odds must exceed 1.0, got %v", decimal)
	}
	if decimal >= 2.0 {
		return int64(math.Round((decimal - 1) * 100)), nil
	}
	return int64(math.Round(-100 / (decimal - 1))), nil
}

// AmericanToDecimal converts American odds back to a decimal multiplier.
func AmericanToDecimal(american int64) (float64, error) {
	switch {
	case american >= 100:
		return 1 + float64(american)/100, nil
	case american <= -100:
		return 1 + 100/float64(-american), nil
	default:
		return 0, fmt.Errorf("american odds magnitude must be >= 100, got %d", american)
	}
}

// DecimalToImplied returns the implied probability of a decimal multiplier.
func DecimalToImplied(decimal float64) (float64, error) {
	if decimal <= 1.0 || math.IsInf(decimal, 0) || math.IsNaN(decimal) {
		return 0, fmt.Errorf("decimal odds must exceed 1.0, got %v", decimal)
	}
	return 1 / decimal, nil
}

// FromDecimal builds a consistent Odds triple from a decimal multiplier.
func FromDecimal(decimal float64) (domain.Odds, error) {
	american, err := DecimalToAmerican(decimal)
	if err != nil {
		return domain.Odds{}, err
	}
	implied, err := DecimalToImplied(decimal)
	if err != nil {
		return domain.Odds{}, err
	}
	return domain.Odds{Decimal: decimal, American: american, Implied: implied}, nil
}

// FromImplied builds a consistent Odds triple from an implied probability.
func FromImplied(p float64) (domain.Odds, error) {
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return domain.Odds{}, fmt.Errorf("implied probability must be in (0, 1), got %v", p)
	}
	return FromDecimal(1 / p)
}

// Consistent reports whether the three representations of o agree within
// tolerance. The American integer is compared after converting back to its
// decimal equivalent.
func Consistent(o domain.Odds) bool {
	if o.Decimal <= 1.0 || o.Implied <= 0 || o.Implied >= 1 {
		return false
	}
	if math.Abs(1/o.Decimal-o.Implied) > tolerance {
		return false
	}
	dec, err := AmericanToDecimal(o.American)
	if err != nil {
		return false
	}
	return math.Abs(dec-o.Decimal) <= tolerance*o.Decimal
}
