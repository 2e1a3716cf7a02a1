package services

import "time"

// Date encodings accepted from the feeds. Time-of-day is discarded: the
// canonical record carries calendar dates only.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
}

// NormalizeDate parses a date-bearing field — a JSON-LD value object or a
// list of them — into an ISO YYYY-MM-DD string. When the field is a list only
// the first well-formed entry is used; list ordering is trusted as-is. Returns
// ok=false instead of an error when the field is absent or malformed: callers
// treat a missing date as "reject this record".
func NormalizeDate(field interface{}) (string, bool) {
	entries, ok := field.([]interface{})
	if !ok {
		entries = []interface{}{field}
	}

	for _, entry := range entries {
		raw := LiteralString(entry, "")
		if raw == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
	}
	return "", false
}
