package component

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Parser converts an attribute value into a property value. value is nil when
// the attribute is absent; old is the previous attribute value, nil on the
// first parse.
type Parser[T any] func(host *Host, value, old *string) T

// AsBoolean is true when the attribute is present and not "false".
func AsBoolean() Parser[bool] {
	return func(_ *Host, value, _ *string) bool {
		return value != nil && *value != "false"
	}
}

// AsInteger parses a base 10 or 0x-prefixed integer. Decimal values are
// truncated. Missing or invalid values yield fallback.
func AsInteger(fallback int) Parser[int] {
	return func(h *Host, value, _ *string) int {
		if value == nil {
			return fallback
		}
		s := strings.TrimSpace(*value)
		if n, err := strconv.ParseInt(s, 10, 0); err == nil {
			return int(n)
		}
		if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
			if n, err := strconv.ParseInt(hex, 16, 0); err == nil {
				return int(n)
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int(math.Trunc(f))
		}
		h.logger().Debug("invalid integer attribute", "value", s)
		return fallback
	}
}

// AsNumber parses a finite floating point number. Missing or invalid values
// yield fallback.
func AsNumber(fallback float64) Parser[float64] {
	return func(h *Host, value, _ *string) float64 {
		if value == nil {
			return fallback
		}
		s := strings.TrimSpace(*value)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			h.logger().Debug("invalid number attribute", "value", s)
			return fallback
		}
		return f
	}
}

// AsString returns the attribute value, or fallback when it is absent.
func AsString(fallback string) Parser[string] {
	return func(_ *Host, value, _ *string) string {
		if value == nil {
			return fallback
		}
		return *value
	}
}

// AsEnum accepts one of allowed, compared case-insensitively, and otherwise
// yields the first allowed value.
func AsEnum(allowed ...string) Parser[string] {
	return func(_ *Host, value, _ *string) string {
		if len(allowed) == 0 {
			return ""
		}
		if value != nil {
			v := strings.TrimSpace(*value)
			for _, a := range allowed {
				if strings.EqualFold(a, v) {
					return a
				}
			}
		}
		return allowed[0]
	}
}

// AsJSON decodes the attribute as JSON into a T. Missing or malformed values
// yield fallback; malformed ones are logged.
func AsJSON[T any](fallback T) Parser[T] {
	return func(h *Host, value, _ *string) T {
		if value == nil || strings.TrimSpace(*value) == "" {
			return fallback
		}
		var v T
		if err := json.Unmarshal([]byte(*value), &v); err != nil {
			h.logger().Warn("invalid JSON attribute", "tag", h.Tag(), "error", err)
			return fallback
		}
		return v
	}
}
