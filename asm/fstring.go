// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// An fstring is a string that keeps track of the source line from which it
// was read.
type fstring struct {
	row  int    // 1-based line number of substring
	str  string // the actual substring of interest
	full string // the full line as originally read from the file
}

func newFstring(row int, str string) fstring {
	return fstring{row, str, str}
}

func (l *fstring) String() string {
	return l.str
}

func (l fstring) consume(n int) fstring {
	return fstring{l.row, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.str[:n], l.full}
}

func (l *fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l *fstring) startsWith(fn func(c byte) bool) bool {
	return len(l.str) > 0 && fn(l.str[0])
}

func (l *fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

func (l fstring) trimSpace() fstring {
	l = l.consumeWhitespace()
	i := len(l.str)
	for ; i > 0 && whitespace(l.str[i-1]); i-- {
	}
	return l.trunc(i)
}

func (l *fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l *fstring) scanUntil(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && !fn(l.str[i]); i++ {
	}
	return i
}

func (l *fstring) consumeWhile(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanWhile(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l *fstring) consumeUntil(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanUntil(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

// Return the index just past the string literal starting at l.str[i], or
// -1 if the literal is not terminated. Backslash escapes are skipped.
func (l *fstring) scanQuoted(i int) int {
	q := l.str[i]
	for i++; i < len(l.str); i++ {
		switch l.str[i] {
		case '\\':
			i++
		case q:
			return i + 1
		}
	}
	return -1
}

// Remove a trailing '#' comment, ignoring comment characters that appear
// inside string literals. An unterminated literal runs to the end of the
// line and is reported later by whoever parses it.
func (l fstring) stripTrailingComment() fstring {
	for i := 0; i < len(l.str); i++ {
		switch {
		case comment(l.str[i]):
			return l.trunc(i).trimSpace()
		case stringQuote(l.str[i]):
			j := l.scanQuoted(i)
			if j < 0 {
				return l.trimSpace()
			}
			i = j - 1
		}
	}
	return l.trimSpace()
}

// Return a copy of the string with everything outside string literals
// converted to lower case.
func (l fstring) lowerUnquoted() fstring {
	var b strings.Builder
	b.Grow(len(l.str))
	for i := 0; i < len(l.str); i++ {
		if stringQuote(l.str[i]) {
			j := l.scanQuoted(i)
			if j < 0 {
				j = len(l.str)
			}
			b.WriteString(l.str[i:j])
			i = j - 1
			continue
		}
		c := l.str[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return fstring{l.row, b.String(), l.full}
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func wordChar(c byte) bool {
	return c != ' ' && c != '\t'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return (c >= '0' && c <= '9')
}

func comment(c byte) bool {
	return c == '#'
}

func identifierStartChar(c byte) bool {
	return alpha(c) || c == '_' || c == '.'
}

func identifierChar(c byte) bool {
	return alpha(c) || decimal(c) || c == '_' || c == '.'
}

func stringQuote(c byte) bool {
	return c == '"' || c == '\''
}
