package common

import (
	"strings"
)

// NullToken is the field text, compared case-insensitively after trimming,
// that is stored as NULL instead of a string.
const NullToken = "NULL"

// ConversionConfig stores configuration options for the conversion process.
type ConversionConfig struct {
	Delimiter rune // Field separator, comma when zero
}

// Comma returns the configured delimiter or ','.
func (c *ConversionConfig) Comma() rune {
	if c == nil || c.Delimiter == 0 {
		return ','
	}
	return c.Delimiter
}

// SplitLine splits a raw line on delimiter without any quote handling.
// Trailing empty fields are dropped, so "a,b,," yields [a b] and ",,"
// yields nothing. A line without any delimiter is one field, even when
// it is empty.
func SplitLine(line string, delimiter rune) []string {
	if !strings.ContainsRune(line, delimiter) {
		return []string{line}
	}
	fields := strings.Split(line, string(delimiter))
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	return fields[:end]
}

// ParseHeader splits and trims the header line into column names.
// It returns nil when the line holds no names.
func ParseHeader(line string, delimiter rune) []string {
	cols := SplitLine(strings.TrimSpace(line), delimiter)
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	for _, c := range cols {
		if c != "" {
			return cols
		}
	}
	return nil
}

// IsNull reports whether a raw field denotes a NULL value.
func IsNull(field string) bool {
	return strings.EqualFold(strings.TrimSpace(field), NullToken)
}

// AlignRow maps raw fields onto width columns by position.
// Missing trailing fields and NULL tokens become nil; surplus fields are dropped.
// Present values are trimmed and kept as strings.
func AlignRow(fields []string, width int, dst []interface{}) []interface{} {
	if cap(dst) < width {
		dst = make([]interface{}, width)
	}
	dst = dst[:width]
	for i := 0; i < width; i++ {
		if i >= len(fields) || IsNull(fields[i]) {
			dst[i] = nil
			continue
		}
		dst[i] = strings.TrimSpace(fields[i])
	}
	return dst
}
