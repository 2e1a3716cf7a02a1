package services

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		field  interface{}
		want   string
		wantOK bool
	}{
		{
			name:   "plain date string",
			field:  "2024-07-14",
			want:   "2024-07-14",
			wantOK: true,
		},
		{
			name:   "timestamp loses its time of day",
			field:  "2024-07-14T21:30:00",
			want:   "2024-07-14",
			wantOK: true,
		},
		{
			name:   "value object",
			field:  map[string]interface{}{"@value": "2024-07-14"},
			want:   "2024-07-14",
			wantOK: true,
		},
		{
			name: "list takes first well-formed entry",
			field: []interface{}{
				map[string]interface{}{"@value": "not a date"},
				map[string]interface{}{"@value": "2024-08-01"},
				map[string]interface{}{"@value": "2024-07-01"},
			},
			want:   "2024-08-01",
			wantOK: true,
		},
		{
			name:   "missing field",
			field:  nil,
			wantOK: false,
		},
		{
			name:   "malformed date",
			field:  "14/07/2024",
			wantOK: false,
		},
		{
			name:   "empty list",
			field:  []interface{}{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.field)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeDate(%v) ok = %v, want %v", tt.field, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeDate(%v) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	first, ok := NormalizeDate("2024-07-14T09:00:00")
	if !ok {
		t.Fatal("Expected timestamp to normalize")
	}
	second, ok := NormalizeDate(first)
	if !ok {
		t.Fatal("Expected normalized output to normalize again")
	}
	if first != second {
		t.Errorf("Normalization not idempotent: %q then %q", first, second)
	}
}
