// File: /models/types.go
package models

import (
	"time"
)

// CoerceTime normalizes a timestamp coming off the document store. Depending
// on the backend and write path the value may be a native time, a value with
// a Time accessor (BSON DateTime), an RFC3339 string, or epoch milliseconds.
// Anything unusable yields the zero time, which sorts as instant zero.
func CoerceTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case interface{ Time() time.Time }:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case int64:
		return time.UnixMilli(t).UTC()
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	}
	return time.Time{}
}

// CoerceString returns the value as a string, or "" when it is anything else.
func CoerceString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// CoerceInt64 normalizes the numeric types the store backends hand back.
func CoerceInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// CoerceStringSlice normalizes an array field, dropping non-string elements.
func CoerceStringSlice(v interface{}) []string {
	switch arr := v.(type) {
	case []string:
		return append([]string(nil), arr...)
	case []interface{}:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
