package bridge

import "math"

// Clean recursively strips non-serializable sentinels from a decoded
// tool result: nil entries and non-finite floats are dropped from
// mappings and sequences, and a bare non-finite float becomes nil.
// Cleaning an already-clean structure returns it unchanged in value.
func Clean(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if dropSentinel(item) {
				continue
			}
			out[k] = Clean(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if dropSentinel(item) {
				continue
			}
			out = append(out, Clean(item))
		}
		return out
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	default:
		return v
	}
}

// CleanRows applies Clean to a list of row mappings, preserving order.
func CleanRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		cleaned, _ := Clean(row).(map[string]any)
		out = append(out, cleaned)
	}
	return out
}

func dropSentinel(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f) || math.IsInf(f, 0)
	}
	return false
}
