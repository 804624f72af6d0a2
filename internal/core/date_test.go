package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 2 || d.Day() != 28 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("28/02/2025"); err == nil {
		t.Fatalf("expected error for non-ISO format")
	}
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Fatalf("expected error for impossible day")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 12, 31)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-12-31"` {
		t.Fatalf("expected ISO date, got %s", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round-trip mismatch: %v != %v", back, d)
	}
}

func TestDateBetween(t *testing.T) {
	start := NewDate(2025, 6, 1)
	end := NewDate(2025, 6, 30)
	cases := []struct {
		d    Date
		want bool
	}{
		{NewDate(2025, 6, 1), true},  // inclusive start
		{NewDate(2025, 6, 30), true}, // inclusive end
		{NewDate(2025, 6, 15), true},
		{NewDate(2025, 5, 31), false},
		{NewDate(2025, 7, 1), false},
	}
	for i, tc := range cases {
		if got := tc.d.Between(start, end); got != tc.want {
			t.Fatalf("case %d: %v between %v and %v = %v, want %v", i, tc.d, start, end, got, tc.want)
		}
	}
}
