package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrConversion is returned when a value cannot be converted to the requested type.
var ErrConversion = errors.New("conversion failed")

// ToInt64 converts a decoded JSON value to int64 using explicit type switching.
// It accepts integral numbers, json.Number and decimal strings. Fractions and
// every other type are rejected.
func ToInt64(val any) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrConversion, v)
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrConversion, v)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: unexpected type %T", ErrConversion, val)
	}
}

// ToString returns val when it is a non-empty string.
func ToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("%w: empty string", ErrConversion)
		}
		return v, nil
	case []byte:
		if len(v) == 0 {
			return "", fmt.Errorf("%w: empty string", ErrConversion)
		}
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: unexpected type %T", ErrConversion, val)
	}
}

// ToDecimal converts a decoded JSON value to a decimal.
// It handles strings, json.Number and float64.
func ToDecimal(val any) (decimal.Decimal, error) {
	switch v := val.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrConversion, v)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrConversion, v)
		}
		return d, nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return decimal.Zero, fmt.Errorf("%w: %v is not finite", ErrConversion, v)
		}
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unexpected type %T", ErrConversion, val)
	}
}

// ToBool converts various types to bool.
// It handles bool and the strings "true"/"false" (any case).
func ToBool(val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, fmt.Errorf("%w: %q is not a boolean", ErrConversion, v)
	default:
		return false, fmt.Errorf("%w: unexpected type %T", ErrConversion, val)
	}
}
