package usage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Payload is a decoded JSON request body. Clients send loosely typed
// values, so every accessor coerces and falls back to a default instead
// of failing.
type Payload map[string]any

// Has reports whether key is present, even with a null value.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Int returns the value of key as an integer clamped to [minimum, maximum].
// A missing key yields def. Numbers are truncated toward zero, numeric
// strings are parsed, booleans count as 0 or 1, anything else yields def.
func (p Payload) Int(key string, def, minimum, maximum int) int {
	n := def
	if value, ok := p[key]; ok {
		n = toInt(value, def)
	}
	return clamp(n, minimum, maximum)
}

// Flag returns the value of key coerced to 0 or 1, reported as a bool.
func (p Payload) Flag(key string, def bool) bool {
	d := 0
	if def {
		d = 1
	}
	return p.Int(key, d, 0, 1) == 1
}

// String returns the value of key rendered as text and truncated to maxLen
// characters. A missing key yields def. A non-positive maxLen keeps the
// whole string.
func (p Payload) String(key, def string, maxLen int) string {
	s := def
	if value, ok := p[key]; ok {
		s = toString(value)
	}
	return truncate(s, maxLen)
}

func toInt(value any, def int) int {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(f, def)
		}
		return def
	case float64:
		return floatToInt(v, def)
	case int:
		return v
	case int64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

func floatToInt(f float64, def int) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	t := math.Trunc(f)
	if t > math.MaxInt32 {
		return math.MaxInt32
	}
	if t < math.MinInt32 {
		return math.MinInt32
	}
	return int(t)
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func clamp(n, minimum, maximum int) int {
	return max(minimum, min(maximum, n))
}

// truncate shortens s to at most n characters.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
