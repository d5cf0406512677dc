package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"saga/internal/core"
)

var errEmptyPayload = errors.New("empty ledger payload")

// Encode serializes the whole ledger.
func Encode(l *core.Ledger) ([]byte, error) {
	if l == nil {
		return nil, errors.New("encode nil ledger")
	}
	c := l.Clone()
	c.Normalize()
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return b, nil
}

// Decode parses a payload written by Encode.
func Decode(b []byte) (*core.Ledger, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errEmptyPayload
	}
	var l core.Ledger
	if err := json.Unmarshal(trimmed, &l); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	l.Normalize()
	return &l, nil
}
