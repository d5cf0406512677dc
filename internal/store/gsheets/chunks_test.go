package gsheets

import (
	"strings"
	"testing"
)

func TestChunkRowsSplitsAndJoins(t *testing.T) {
	value := strings.Repeat("abcdé", 7) // 35 runes
	rows := chunkRows("scope", value, 10)
	if len(rows) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(rows))
	}
	for _, r := range rows {
		if r[0] != "scope" {
			t.Fatalf("unexpected key cell %v", r[0])
		}
	}

	// Sheets returns numbers as strings and rows in arbitrary order.
	values := [][]interface{}{
		{"other", "0", "zzz"},
		{"scope", "2", rows[2][2]},
		{"scope", "0", rows[0][2]},
		{"scope", "3", rows[3][2]},
		{"scope", "1", rows[1][2]},
	}
	got, ok := joinChunks(values, "scope")
	if !ok || got != value {
		t.Fatalf("join mismatch: ok=%v got=%q", ok, got)
	}
}

func TestChunkRowsEmptyValue(t *testing.T) {
	rows := chunkRows("scope", "", 10)
	if len(rows) != 1 || rows[0][2] != "" {
		t.Fatalf("expected a single empty chunk, got %v", rows)
	}
	got, ok := joinChunks([][]interface{}{{"scope", "0"}}, "scope")
	if !ok || got != "" {
		t.Fatalf("expected empty value to round-trip, got %q ok=%v", got, ok)
	}
}

func TestJoinChunksMissingKey(t *testing.T) {
	if _, ok := joinChunks([][]interface{}{{"other", "0", "x"}, {}}, "scope"); ok {
		t.Fatal("expected missing key")
	}
}

func TestWithoutKey(t *testing.T) {
	values := [][]interface{}{{"a", "0", "x"}, {"b", "0", "y"}, {"a", "1", "z"}, {}}
	got := withoutKey(values, "a")
	if len(got) != 2 {
		t.Fatalf("expected 2 rows left, got %v", got)
	}
}
