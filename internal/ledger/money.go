package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed number of minor currency units (cents).
//
// All arithmetic and comparisons on money use this type. Floating point
// never touches a monetary value.
type Amount int64

// ErrInvalidAmount indicates user input that does not parse as a money
// amount with at most two decimal places.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a user-entered major-unit string ("12.50", also
// "12,50") into minor units. Sub-cent precision is rejected rather than
// rounded: the user should see exactly the amount that gets recorded.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-cent precision", ErrInvalidAmount, s)
	}

	big := cents.BigInt()
	if !big.IsInt64() || big.Int64() == math.MinInt64 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	return Amount(big.Int64()), nil
}

// Major renders the amount as a major-unit decimal string with exactly
// two fraction digits ("1250" minor units -> "12.50").
func (a Amount) Major() string {
	return decimal.New(int64(a), -2).StringFixed(2)
}
