package util

import (
	"reflect"
	"testing"
)

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("x1", 7); got != 7 {
		t.Fatalf("invalid: got %d", got)
	}
	if got := ParseIntDefault("12", 7); got != 12 {
		t.Fatalf("valid: got %d", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a:9092, ,b:9092,")
	if want := []string{"a:9092", "b:9092"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Fatalf("got %q", got)
	}
}
