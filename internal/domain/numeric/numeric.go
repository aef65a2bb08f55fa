// Package numeric coerces loosely typed form values into strict numbers and
// strings. Coercion never fails: anything that cannot be read as a finite
// number becomes 0.
package numeric

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Float reads v as a floating point number. Strings are parsed by their
// longest numeric prefix ("12.5kg" is 12.5). Non-finite results, empty
// strings, nil and booleans yield 0.
func Float(v any) float64 {
	f, _ := Parse(v)
	return f
}

// Parse is Float that also reports whether v held a finite number.
func Parse(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		f = prefixFloat(string(t))
	case string:
		f = prefixFloat(t)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int reads v as a base-10 integer, truncating any fractional part.
// Missing or unparsable values yield 0.
func Int(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return t
	case int64:
		return int(t)
	case int32:
		return int(t)
	case float64, float32, json.Number:
		return Int(Text(t, "0"))
	case string:
		return prefixInt(t)
	default:
		return 0
	}
}

// Text renders v as a string. Falsy values (nil, "", false, 0, NaN) yield
// fallback.
func Text(v any, fallback string) string {
	if !Truthy(v) {
		return fallback
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return "true"
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fallback
		}
		return string(b)
	}
}

// Truthy reports whether v counts as set: non-empty strings, true, non-zero
// numbers and any composite value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint:
		return t != 0
	case uint64:
		return t != 0
	default:
		return true
	}
}

// Fixed rounds x to places decimals. Ties are resolved away from zero on the
// exact binary value of x, so 0.25 rounds to 0.3 while 1.005 (stored as
// 1.00499...) rounds to 1.0.
func Fixed(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	neg := x < 0
	r := new(big.Rat).SetFloat64(math.Abs(x))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	// n = floor(r + 1/2)
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	out, _ := new(big.Rat).SetFrac(n, scale).Float64()
	if neg {
		return -out
	}
	return out
}

// Round returns the nearest integer to x; halves go toward positive infinity.
func Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return f
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func formatFloat(f float64) string {
	if a := math.Abs(f); a >= 1e21 || a < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// prefixFloat parses the longest leading decimal literal of s after leading
// whitespace. "Infinity" prefixes are recognised so that the caller can
// discard them as non-finite.
func prefixFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return math.Inf(1)
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}
	// Out of range literals come back as ±Inf alongside ErrRange.
	f, _ := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	return f
}

func prefixInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return int(n)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
