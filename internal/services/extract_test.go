package services

import (
	"reflect"
	"testing"
)

func TestNestedValue(t *testing.T) {
	record := map[string]interface{}{
		"isLocatedAt": map[string]interface{}{
			"schema:geo": map[string]interface{}{
				"schema:latitude": "48.8566",
			},
		},
	}

	got := NestedValue(record, []string{"isLocatedAt", "schema:geo", "schema:latitude"}, nil)
	if got != "48.8566" {
		t.Errorf("Expected 48.8566, got %v", got)
	}

	if got := NestedValue(record, []string{"isLocatedAt", "missing", "schema:latitude"}, "fallback"); got != "fallback" {
		t.Errorf("Expected fallback for missing path, got %v", got)
	}

	if got := NestedValue(nil, []string{"any"}, "fallback"); got != "fallback" {
		t.Errorf("Expected fallback for nil record, got %v", got)
	}

	// A non-map value mid-path must not panic
	record["isLocatedAt"] = "not a map"
	if got := NestedValue(record, []string{"isLocatedAt", "schema:geo"}, nil); got != nil {
		t.Errorf("Expected nil when path hits a scalar, got %v", got)
	}
}

func TestNestedString(t *testing.T) {
	record := map[string]interface{}{
		"a": map[string]interface{}{"b": "value"},
		"n": map[string]interface{}{"b": 42.0},
	}

	if got := NestedString(record, []string{"a", "b"}, ""); got != "value" {
		t.Errorf("Expected value, got %q", got)
	}
	if got := NestedString(record, []string{"n", "b"}, "def"); got != "def" {
		t.Errorf("Expected default for non-string leaf, got %q", got)
	}
}

func TestFirstValue(t *testing.T) {
	if got := FirstValue([]interface{}{"first", "second"}); got != "first" {
		t.Errorf("Expected first element, got %v", got)
	}
	if got := FirstValue("plain"); got != "plain" {
		t.Errorf("Expected plain value passthrough, got %v", got)
	}
	if got := FirstValue([]interface{}{}); got != nil {
		t.Errorf("Expected nil for empty list, got %v", got)
	}
	if got := FirstValue(nil); got != nil {
		t.Errorf("Expected nil for nil, got %v", got)
	}
}

func TestFirstString(t *testing.T) {
	if got := FirstString([]interface{}{"Épinal", "Nancy"}, ""); got != "Épinal" {
		t.Errorf("Expected Épinal, got %q", got)
	}
	if got := FirstString([]interface{}{42.0}, "def"); got != "def" {
		t.Errorf("Expected default for non-string first element, got %q", got)
	}
}

func TestLiteralString(t *testing.T) {
	valueObject := map[string]interface{}{"@value": "Fête du village", "@language": "fr"}

	if got := LiteralString(valueObject, ""); got != "Fête du village" {
		t.Errorf("Expected unwrapped value object, got %q", got)
	}
	if got := LiteralString([]interface{}{valueObject}, ""); got != "Fête du village" {
		t.Errorf("Expected unwrapped list-wrapped value object, got %q", got)
	}
	if got := LiteralString("plain string", ""); got != "plain string" {
		t.Errorf("Expected plain string passthrough, got %q", got)
	}
	if got := LiteralString(map[string]interface{}{"other": "x"}, "def"); got != "def" {
		t.Errorf("Expected default for object without @value, got %q", got)
	}
}

func TestStringList(t *testing.T) {
	got := StringList([]interface{}{"schema:Event", 42.0, "schema:Festival"})
	want := []string{"schema:Event", "schema:Festival"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := StringList("single"); !reflect.DeepEqual(got, []string{"single"}) {
		t.Errorf("Expected single-element list, got %v", got)
	}
	if got := StringList(nil); got != nil {
		t.Errorf("Expected nil for nil input, got %v", got)
	}
}
