package binding

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ConvertFunc coerces a raw string value into a typed argument. Any
// function with this signature is accepted where a converter is declared.
type ConvertFunc func(value string) (interface{}, error)

// String passes the raw value through unconverted.
func String(value string) (interface{}, error) {
	return value, nil
}

// Int coerces the value to int.
func Int(value string) (interface{}, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid integer: %w", err)
	}
	return i, nil
}

// Int64 coerces the value to int64.
func Int64(value string) (interface{}, error) {
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer: %w", err)
	}
	return i, nil
}

// Float64 coerces the value to float64.
func Float64(value string) (interface{}, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float: %w", err)
	}
	return f, nil
}

// Bool coerces the value to bool. It accepts the strconv.ParseBool forms
// (1, t, true, 0, f, false in any case).
func Bool(value string) (interface{}, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean: %w", err)
	}
	return b, nil
}

// Duration coerces the value to time.Duration using Go duration syntax.
func Duration(value string) (interface{}, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %w", err)
	}
	return d, nil
}

// Time coerces the value to time.Time. RFC 3339 is the only accepted
// layout.
func Time(value string) (interface{}, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	return t, nil
}

// UUID coerces the value to uuid.UUID. Both the canonical and the
// brace/URN forms accepted by uuid.Parse are valid.
func UUID(value string) (interface{}, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID: %w", err)
	}
	return id, nil
}
