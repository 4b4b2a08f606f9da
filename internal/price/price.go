package price

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Keys of the price breakdown inside a summary.
const (
	KeyPrice          = "Price"
	KeyRent           = "Rent"
	KeyAdministrative = "Administrative"
	KeyParking        = "Parking"
)

// Keys injected into every filtered summary.
const (
	KeyPath       = "path"
	KeyTotalPrice = "totalPrice"
)

// DefaultLimit is the default upper bound for the total monthly price.
const DefaultLimit = 3000

// ErrMissingPrice is returned when a summary lacks the Price object or one
// of the components that make up the total.
var ErrMissingPrice = errors.New("missing price field")

// Sanitize coerces a price component to a number. Numbers pass through,
// strings are parsed after trimming surrounding whitespace, and everything
// else (including unparseable strings) counts as zero. NaN and infinities
// also count as zero.
func Sanitize(v any) float64 {
	f := toFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// TotalPrice returns Rent + Administrative + Parking of a decoded summary.
// Each component must be present, although its value may be unreadable.
func TotalPrice(summary map[string]any) (float64, error) {
	breakdown, ok := summary[KeyPrice].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingPrice, KeyPrice)
	}

	var total float64
	for _, key := range []string{KeyRent, KeyAdministrative, KeyParking} {
		v, ok := breakdown[key]
		if !ok {
			return 0, fmt.Errorf("%w: %s.%s", ErrMissingPrice, KeyPrice, key)
		}
		total += Sanitize(v)
	}
	return total, nil
}
