package core

import (
	"encoding/json"
	"testing"
)

func TestMoneyUnmarshalQuoted(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{`"1"`, 100, true},
		{`"1.23"`, 123, true},
		{`"1,23"`, 123, true},
		{`"0.01"`, 1, true},
		{`"1.005"`, 101, true}, // half-up rounding
		{`" 2.50 "`, 250, true},
		{`"-1"`, -100, true},
		{`"0"`, 0, true},
		{`"+1"`, 0, false},
		{`"abc"`, 0, false},
		{`"1.2.3"`, 0, false},
		{`"1,2,3"`, 0, false},
		{`"1,234.5"`, 0, false},
		{`"1e3"`, 0, false},
		{`""`, 0, false},
	}
	for _, tc := range cases {
		var m Money
		err := json.Unmarshal([]byte(tc.in), &m)
		if tc.ok {
			if err != nil || m.Cents != tc.out {
				t.Fatalf("%s expected %d, got %d (err=%v)", tc.in, tc.out, m.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%s expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
	}{Cents(8550)})
	if err != nil || string(b) != `{"a":85.50}` {
		t.Fatalf("unexpected marshal %s err=%v", b, err)
	}

	for in, want := range map[string]int64{`1200`: 120000, `85.5`: 8550, `"120.75"`: 12075, `0.105`: 11} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil || m.Cents != want {
			t.Fatalf("%s: expected %d, got %d (err=%v)", in, want, m.Cents, err)
		}
	}
}

func TestMoneyDisplay(t *testing.T) {
	cases := map[int64]string{
		10000:  "$100.00",
		123450: "$1,234.50",
		-2500:  "-$25.00",
		5:      "$0.05",
	}
	for cents, want := range cases {
		if got := Cents(cents).Display(); got != want {
			t.Fatalf("%d: expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyDisplayLargeAmount(t *testing.T) {
	// Past float64's exact integer range.
	if got, want := Cents(900719925474099301).Display(), "$9,007,199,254,740,993.01"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
