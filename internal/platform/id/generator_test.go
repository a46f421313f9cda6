package id

import (
	"testing"
	"time"
)

func TestObjectIDGenerator_NewID(t *testing.T) {
	gen := NewObjectIDGenerator()
	gen.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if !IsValid(first) {
		t.Fatalf("generated id %q is not valid", first)
	}

	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if first[:8] != second[:8] {
		t.Fatalf("expected shared timestamp prefix, got %q vs %q", first[:8], second[:8])
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"65f1c0ffab12cd34ef56ab78", true},
		{"65f1c0ffab12cd34ef56ab7", false},
		{"65f1c0ffab12cd34ef56ab789", false},
		{"65F1C0FFAB12CD34EF56AB78", false},
		{"65f1c0ffab12cd34ef56ab7g", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsValid(tc.id); got != tc.want {
			t.Fatalf("IsValid(%q) = %t, want %t", tc.id, got, tc.want)
		}
	}
}
