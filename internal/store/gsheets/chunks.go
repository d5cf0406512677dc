package gsheets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Google Sheets rejects cells longer than 50000 characters.
const maxCellChars = 40000

// chunkRows splits value into rows of [key, index, chunk] with at most size
// characters per chunk.
func chunkRows(key, value string, size int) [][]interface{} {
	var rows [][]interface{}
	for i := 0; value != "" || i == 0; i++ {
		cut := len(value)
		if utf8.RuneCountInString(value) > size {
			cut = 0
			for n := 0; n < size; n++ {
				_, w := utf8.DecodeRuneInString(value[cut:])
				cut += w
			}
		}
		rows = append(rows, []interface{}{key, i, value[:cut]})
		value = value[cut:]
	}
	return rows
}

// joinChunks reassembles the value stored under key, ordering chunks by index.
func joinChunks(values [][]interface{}, key string) (string, bool) {
	type part struct {
		index int
		text  string
	}
	var parts []part
	for _, row := range values {
		cells := toStrings(row)
		if safeGet(cells, 0) != key {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(safeGet(cells, 1)))
		if err != nil {
			continue
		}
		parts = append(parts, part{index: idx, text: safeGet(cells, 2)})
	}
	if len(parts) == 0 {
		return "", false
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].index < parts[j].index })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.text)
	}
	return b.String(), true
}

func withoutKey(values [][]interface{}, key string) [][]interface{} {
	out := make([][]interface{}, 0, len(values))
	for _, row := range values {
		if len(row) > 0 && fmt.Sprint(row[0]) == key {
			continue
		}
		out = append(out, row)
	}
	return out
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
