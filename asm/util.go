// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"math"
	"strconv"
	"strings"
)

var hex = "0123456789ABCDEF"

// Return a big-endian representation of the value using the requested
// number of bytes.
func toBytes(bytes int, value uint32) []byte {
	switch bytes {
	case 1:
		return []byte{byte(value)}
	case 2:
		return []byte{byte(value >> 8), byte(value)}
	default:
		return []byte{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
	}
}

// Return a hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, len(b)*3-1)
	i, j := 0, 0
	for n := len(b) - 1; i < n; i, j = i+1, j+3 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
		s[j+2] = ' '
	}
	s[j+0] = hex[(b[i] >> 4)]
	s[j+1] = hex[(b[i] & 0x0f)]
	return string(s)
}

// parseNumber parses a decimal or 0x-prefixed hexadecimal integer with an
// optional sign. The result must fit in 32 bits, either signed or unsigned.
func parseNumber(s string) (int64, error) {
	orig := s
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, s = 16, s[2:]
	}

	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, syntaxError("invalid number '%s'", orig)
	}

	v := int64(u)
	if neg {
		v = -v
	}
	if u > math.MaxUint32 || v < math.MinInt32 {
		return 0, &RangeError{Value: v, Bits: 32}
	}
	return v, nil
}

func isNumberStart(c byte) bool {
	return decimal(c) || c == '-' || c == '+'
}

// isIdentifier reports whether s is a valid symbol name.
func isIdentifier(s string) bool {
	if s == "" || !identifierStartChar(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !identifierChar(s[i]) {
			return false
		}
	}
	return true
}
