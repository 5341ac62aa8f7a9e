package order

import (
	"fmt"
	"sort"

	"github.com/go-faster/jx"
)

// NormalizeCart merges duplicate cart lines into canonical lines. Two lines
// merge iff product ID, size name (exact string), canonical extras, and
// customization (exact string, empty by default) are all equal. Quantities of
// merged duplicates are summed, with absent quantities counting as 1. Output
// preserves the order in which distinct lines were first seen.
//
// The scan is quadratic in the number of distinct lines, which is fine for
// per-order cart sizes.
func NormalizeCart(lines []CartLine) []CartLine {
	merged := make([]CartLine, 0, len(lines))
	keys := make([]string, 0, len(lines))

	for _, line := range lines {
		qty := line.Qty
		if qty <= 0 {
			qty = 1
		}
		line.Extras = canonicalExtras(line.Extras)
		key := extrasKey(line.Extras)

		found := false
		for i := range merged {
			if merged[i].ProductID == line.ProductID &&
				merged[i].SizeName == line.SizeName &&
				keys[i] == key &&
				merged[i].Customization == line.Customization {
				merged[i].Qty += qty
				found = true
				break
			}
		}
		if !found {
			line.Qty = qty
			merged = append(merged, line)
			keys = append(keys, key)
		}
	}

	return merged
}

// canonicalExtras returns the canonical form of an extras value. Objects are
// kept as-is (key order is handled by the deterministic encoding); arrays are
// sorted by natural order when all elements are mutually comparable, and kept
// in their original order otherwise — a deliberate best-effort policy, not an
// error. Scalars and nil pass through unchanged.
func canonicalExtras(v any) any {
	arr, ok := v.([]any)
	if !ok {
		return v
	}

	sorted := make([]any, len(arr))
	copy(sorted, arr)

	switch {
	case allStrings(arr):
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].(string) < sorted[j].(string)
		})
	case allNumeric(arr):
		// Booleans order as 0 and 1 among numbers; the stable sort keeps
		// equal values in input order.
		sort.SliceStable(sorted, func(i, j int) bool {
			return numericValue(sorted[i]) < numericValue(sorted[j])
		})
	default:
		// Mixed element types: keep input order.
		return arr
	}

	return sorted
}

func allStrings(arr []any) bool {
	for _, e := range arr {
		if _, ok := e.(string); !ok {
			return false
		}
	}
	return true
}

// allNumeric accepts JSON numbers and booleans, which sort together.
func allNumeric(arr []any) bool {
	for _, e := range arr {
		switch e.(type) {
		case float64, bool:
		default:
			return false
		}
	}
	return true
}

func numericValue(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case bool:
		if val {
			return 1
		}
		return 0
	}
	return 0
}

// extrasKey serializes a canonical extras value deterministically: object
// fields are written in sorted key order at every depth, so two extras values
// compare equal exactly when their keys match.
func extrasKey(v any) string {
	var e jx.Encoder
	encodeCanonical(&e, v)
	return string(e.Bytes())
}

func encodeCanonical(e *jx.Encoder, v any) {
	switch val := v.(type) {
	case nil:
		e.Null()
	case bool:
		e.Bool(val)
	case float64:
		e.Float64(val)
	case string:
		e.Str(val)
	case []any:
		e.ArrStart()
		for _, elem := range val {
			encodeCanonical(e, elem)
		}
		e.ArrEnd()
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		e.ObjStart()
		for _, k := range keys {
			e.FieldStart(k)
			encodeCanonical(e, val[k])
		}
		e.ObjEnd()
	default:
		e.Str(fmt.Sprint(val))
	}
}
