// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// A DataType identifies the kind of a data directive.
type DataType byte

// Data directive types.
const (
	Word DataType = iota
	Half
	Byte
	ASCII
	ASCIIZ
	Space
)

var dataTypeName = []string{
	".word",
	".half",
	".byte",
	".ascii",
	".asciiz",
	".space",
}

func (t DataType) String() string {
	return dataTypeName[t]
}

// Alignment returns the byte alignment required of the directive's address.
func (t DataType) Alignment() uint32 {
	switch t {
	case Word:
		return 4
	case Half:
		return 2
	default:
		return 1
	}
}

// The largest .space reservation accepted.
const maxSpace = 1<<24 - 1

// A Directive is a parsed data directive and its encoded contents.
type Directive struct {
	Symbol string   // owning label, or empty
	Type   DataType // declared type
	Bytes  []byte   // big-endian encoded contents
}

// Size returns the number of bytes the directive occupies.
func (d *Directive) Size() uint32 {
	return uint32(len(d.Bytes))
}

// ParseData parses and encodes a data directive of the form
// "[label:] .type contents".
func ParseData(text string) (*Directive, error) {
	l := newFstring(0, text).trimSpace()
	var symbol string
	if l.startsWith(identifierStartChar) && !l.startsWithChar('.') {
		name, remain := l.consumeWhile(identifierChar)
		remain = remain.consumeWhitespace()
		if !remain.startsWithChar(':') {
			return nil, syntaxError("expected ':' after label '%s'", name.str)
		}
		symbol, l = strings.ToLower(name.str), remain.consume(1)
	}
	return parseDirective(symbol, l.str)
}

func parseDirective(symbol, body string) (*Directive, error) {
	l := newFstring(0, body).trimSpace()
	keyword, remain := l.consumeWhile(wordChar)
	contents := remain.trimSpace()

	d := &Directive{Symbol: symbol}
	switch strings.ToLower(keyword.str) {
	case ".word":
		d.Type = Word
	case ".half":
		d.Type = Half
	case ".byte":
		d.Type = Byte
	case ".ascii":
		d.Type = ASCII
	case ".asciiz":
		d.Type = ASCIIZ
	case ".space":
		d.Type = Space
	case "":
		return nil, syntaxError("missing data directive")
	default:
		return nil, syntaxError("unknown data type '%s'", keyword.str)
	}

	var err error
	switch d.Type {
	case Word:
		d.Bytes, err = parseValues(contents, 4)
	case Half:
		d.Bytes, err = parseValues(contents, 2)
	case Byte:
		d.Bytes, err = parseValues(contents, 1)
	case ASCII, ASCIIZ:
		d.Bytes, err = parseString(contents)
		if err == nil && d.Type == ASCIIZ {
			d.Bytes = append(d.Bytes, 0)
		}
	case Space:
		d.Bytes, err = parseSpace(contents)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Parse a comma-separated list of numbers, each encoded big-endian in the
// requested number of bytes. A value may be signed within the width or
// unsigned up to the width's maximum.
func parseValues(l fstring, width int) ([]byte, error) {
	fields, err := splitOperands(l.str)
	switch {
	case err != nil:
		return nil, err
	case len(fields) == 0:
		return nil, syntaxError("missing data value")
	}

	bits := width * 8
	lo, hi := -int64(1)<<(bits-1), int64(1)<<bits-1
	b := make([]byte, 0, len(fields)*width)
	for _, f := range fields {
		v, err := parseNumber(f)
		if err != nil {
			return nil, err
		}
		if v < lo || v > hi {
			return nil, &RangeError{Value: v, Bits: bits}
		}
		b = append(b, toBytes(width, uint32(v))...)
	}
	return b, nil
}

// Parse a double-quoted string literal, expanding escape sequences.
func parseString(l fstring) ([]byte, error) {
	if !l.startsWithChar('"') {
		return nil, syntaxError("expected quoted string")
	}

	var b []byte
	s := l.str
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			if rest := newFstring(0, s[i+1:]).trimSpace(); !rest.isEmpty() {
				return nil, syntaxError("unexpected text '%s' after string", rest.str)
			}
			return b, nil
		case '\\':
			i++
			if i == len(s) {
				break
			}
			e, ok := escape(s[i])
			if !ok {
				return nil, syntaxError("invalid escape sequence '\\%c'", s[i])
			}
			b = append(b, e)
		default:
			b = append(b, c)
		}
	}
	return nil, syntaxError("unmatched quote")
}

func escape(c byte) (byte, bool) {
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '"', '\'':
		return c, true
	default:
		return 0, false
	}
}

func parseSpace(l fstring) ([]byte, error) {
	fields, err := splitOperands(l.str)
	switch {
	case err != nil:
		return nil, err
	case len(fields) != 1:
		return nil, syntaxError(".space expects a single size")
	}
	v, err := parseNumber(fields[0])
	switch {
	case err != nil:
		return nil, err
	case v < 0:
		return nil, syntaxError("negative .space size %d", v)
	case v > maxSpace:
		return nil, &RangeError{Value: v, Bits: 24}
	}
	return make([]byte, v), nil
}
