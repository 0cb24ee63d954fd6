package postgres

import (
	"fmt"
	"time"
)

// assignValue copies one buffered cursor value into a Scan destination.
// *any destinations accept every value; typed destinations convert the
// common pgx value shapes. A null value only fits an *any destination.
func assignValue(dest, val any) error {
	if d, ok := dest.(*any); ok {
		*d = val
		return nil
	}
	if val == nil {
		return fmt.Errorf("null value needs an *any destination, got %T", dest)
	}

	switch d := dest.(type) {
	case *int64:
		switch v := val.(type) {
		case int64:
			*d = v
		case int32:
			*d = int64(v)
		case int16:
			*d = int64(v)
		default:
			return convErr(val, dest)
		}
	case *int:
		switch v := val.(type) {
		case int64:
			*d = int(v)
		case int32:
			*d = int(v)
		case int16:
			*d = int(v)
		default:
			return convErr(val, dest)
		}
	case *int32:
		switch v := val.(type) {
		case int32:
			*d = v
		case int16:
			*d = int32(v)
		default:
			return convErr(val, dest)
		}
	case *string:
		v, ok := val.(string)
		if !ok {
			return convErr(val, dest)
		}
		*d = v
	case *bool:
		v, ok := val.(bool)
		if !ok {
			return convErr(val, dest)
		}
		*d = v
	case *float64:
		switch v := val.(type) {
		case float64:
			*d = v
		case float32:
			*d = float64(v)
		default:
			return convErr(val, dest)
		}
	case *time.Time:
		v, ok := val.(time.Time)
		if !ok {
			return convErr(val, dest)
		}
		*d = v
	case *[]byte:
		v, ok := val.([]byte)
		if !ok {
			return convErr(val, dest)
		}
		*d = v
	default:
		return fmt.Errorf("unsupported destination type %T", dest)
	}
	return nil
}

func convErr(val, dest any) error {
	return fmt.Errorf("cannot assign %T to %T", val, dest)
}
