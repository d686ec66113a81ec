package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseCategories splits a pandas-style list cell such as "[AKTIFCOCUK, COCUK, KADIN]".
// Quotes around items are dropped; an empty list "[]" yields an empty slice.
func ParseCategories(cell string) []string {
	s := strings.TrimSpace(cell)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	out := []string{}
	for _, part := range strings.Split(s, ",") {
		item := strings.Trim(strings.TrimSpace(part), `'"`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseCount parses an order counter. The FLO export writes counts as floats ("4.0"),
// so integral floats are accepted; fractions and negatives are not.
func ParseCount(cell string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return CountFromFloat(f)
}

// CountFromFloat converts a numeric counter, rejecting fractions and negatives.
func CountFromFloat(f float64) (int, error) {
	if f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("invalid order count %v", f)
	}
	return int(f), nil
}

// ParseAmount parses a spend total.
func ParseAmount(cell string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("invalid amount %q", cell)
	}
	return f, nil
}
