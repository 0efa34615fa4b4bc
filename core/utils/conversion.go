package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToString converts common store value types to string using explicit type
// switching. nil converts to the empty string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts store boolean representations to bool.
// It handles bool, numeric types (1=true), and strings ("1", "true").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return ToInt(v) == 1
	case float64:
		return v == 1
	case string:
		return v == "1" || strings.ToLower(v) == "true"
	case []byte:
		s := string(v)
		return s == "1" || strings.ToLower(s) == "true"
	default:
		return false
	}
}

// ToInt converts numeric store values to int. Unparseable values become 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int16:
		return int(v)
	case int8:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case uint32:
		return int(v)
	case uint16:
		return int(v)
	case uint8:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	case []byte:
		i, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return i
	default:
		return 0
	}
}

// ToFloat converts numeric store values to float64. Unparseable values become 0.
func ToFloat(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f
	default:
		return 0
	}
}

// ToFloatPtr converts a nullable numeric column to *float64, preserving NULL.
func ToFloatPtr(val any) *float64 {
	if val == nil {
		return nil
	}
	f := ToFloat(val)
	return &f
}

// ToTime converts store timestamp representations to time.Time. Strings are
// parsed as RFC 3339; anything else yields the zero time.
func ToTime(val any) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return time.Time{}
		}
		return *v
	case string:
		t, _ := time.Parse(time.RFC3339, v)
		return t
	case []byte:
		t, _ := time.Parse(time.RFC3339, string(v))
		return t
	default:
		return time.Time{}
	}
}

// ToTimePtr converts a nullable timestamp column to *time.Time, preserving NULL.
func ToTimePtr(val any) *time.Time {
	if val == nil {
		return nil
	}
	t := ToTime(val)
	if t.IsZero() {
		return nil
	}
	return &t
}

// ToBoolMap decodes a JSON object column (platform confirmations) into a
// map. It accepts an already-decoded map, JSON text, or nil.
func ToBoolMap(val any) map[string]bool {
	switch v := val.(type) {
	case map[string]bool:
		return v
	case string:
		return decodeBoolMap([]byte(v))
	case []byte:
		return decodeBoolMap(v)
	case map[string]any:
		out := make(map[string]bool, len(v))
		for k, raw := range v {
			out[k] = ToBool(raw)
		}
		return out
	default:
		return nil
	}
}

func decodeBoolMap(data []byte) map[string]bool {
	var out map[string]bool
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// BoolMapJSON encodes a platform-confirmation map as JSON text for storage.
// A nil map encodes as "null" so a round trip preserves absence.
func BoolMapJSON(m map[string]bool) string {
	data, err := json.Marshal(m)
	if err != nil {
		return "null"
	}
	return string(data)
}
