package services

// Helpers for pulling values out of the loosely shaped JSON-LD and OpenAgenda
// documents. Sparse feeds are normal input here: every helper returns a
// caller-supplied default instead of failing when a path segment is missing.

// NestedValue descends through nested mappings one key at a time and returns
// the value at the end of the path, or def when the record is nil or any key
// is absent along the way.
func NestedValue(record map[string]interface{}, keys []string, def interface{}) interface{} {
	current := interface{}(record)
	for _, key := range keys {
		node, ok := current.(map[string]interface{})
		if !ok || node == nil {
			return def
		}
		current, ok = node[key]
		if !ok {
			return def
		}
	}
	return current
}

// NestedString is NestedValue for string leaves.
func NestedString(record map[string]interface{}, keys []string, def string) string {
	if value, ok := NestedValue(record, keys, nil).(string); ok {
		return value
	}
	return def
}

// FirstValue collapses the feed's value-or-list ambiguity: when v is a list
// the first element is authoritative, otherwise v itself is returned. Empty
// lists and nil yield nil.
func FirstValue(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// FirstString returns the authoritative string of a value-or-list field, or
// def when the field holds nothing usable.
func FirstString(v interface{}, def string) string {
	if s, ok := FirstValue(v).(string); ok {
		return s
	}
	return def
}

// LiteralString unwraps a JSON-LD value object ({"@value": "..."}) into its
// string. Lists of value objects resolve to the first entry. Plain strings
// pass through unchanged.
func LiteralString(v interface{}, def string) string {
	switch node := FirstValue(v).(type) {
	case string:
		return node
	case map[string]interface{}:
		if s, ok := node["@value"].(string); ok {
			return s
		}
	}
	return def
}

// StringList coerces a value that may be a single string or a list of strings
// into a []string, skipping non-string entries.
func StringList(v interface{}) []string {
	switch node := v.(type) {
	case string:
		return []string{node}
	case []interface{}:
		var out []string
		for _, item := range node {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
