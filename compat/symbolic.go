package compat

import (
	"slices"
	"unicode/utf16"
)

// SymbolicLevel buckets the symbolic indicator.
type SymbolicLevel string

const (
	SymbolicHigh   SymbolicLevel = "High"
	SymbolicMedium SymbolicLevel = "Medium"
	SymbolicLow    SymbolicLevel = "Low"
)

// SymbolicIndicator is presentation flavor derived only from the two profile
// IDs. It carries no statistical meaning.
type SymbolicIndicator struct {
	Level SymbolicLevel `json:"level"`
	Note  string        `json:"note"`
}

// Symbolic returns the indicator for a pair of IDs. The result does not
// depend on argument order and is identical on every platform: IDs are
// compared and hashed as UTF-16 code units with 32-bit signed wraparound,
// matching the web and mobile clients.
func Symbolic(id1, id2 string) SymbolicIndicator {
	a, b := utf16.Encode([]rune(id1)), utf16.Encode([]rune(id2))
	var combined []uint16
	if slices.Compare(a, b) < 0 {
		combined = append(a, b...)
	} else {
		combined = append(b, a...)
	}

	var hash int32
	for _, unit := range combined {
		hash = hash*31 + int32(unit)
	}
	// Widen before abs so math.MinInt32 stays positive.
	h := int64(hash)
	if h < 0 {
		h = -h
	}

	switch n := h % 100; {
	case n > 66:
		return SymbolicIndicator{Level: SymbolicHigh, Note: "Symbolic indicators suggest a harmonious connection."}
	case n > 33:
		return SymbolicIndicator{Level: SymbolicMedium, Note: "Symbolic indicators suggest a balanced connection."}
	default:
		return SymbolicIndicator{Level: SymbolicLow, Note: "Symbolic indicators suggest effort is needed for harmony."}
	}
}
