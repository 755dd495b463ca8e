// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseData(t *testing.T) {
	tests := []struct {
		text   string
		symbol string
		typ    DataType
		bytes  string
	}{
		{"x: .word 1, 0xffffffff, -2147483648", "x", Word, "00 00 00 01 FF FF FF FF 80 00 00 00"},
		{".half 0x1234 , -1", "", Half, "12 34 FF FF"},
		{"B: .byte 0, 127, 128, -128, 255", "b", Byte, "00 7F 80 80 FF"},
		{`s: .ascii "a\tb\n"`, "s", ASCII, "61 09 62 0A"},
		{`s: .asciiz "q\"\\\0"`, "s", ASCIIZ, "71 22 5C 00 00"},
		{`.asciiz ""`, "", ASCIIZ, "00"},
		{"pad: .space 3", "pad", Space, "00 00 00"},
		{".space 0", "", Space, ""},
	}

	for _, test := range tests {
		d, err := ParseData(test.text)
		if err != nil {
			t.Errorf("%s: %v", test.text, err)
			continue
		}
		if d.Symbol != test.symbol || d.Type != test.typ {
			t.Errorf("%s: got symbol %q type %v", test.text, d.Symbol, d.Type)
		}
		if s := byteString(d.Bytes); s != test.bytes {
			t.Errorf("%s: got %s, expected %s", test.text, s, test.bytes)
		}
	}
}

func TestParseDataIdempotent(t *testing.T) {
	d1, err1 := ParseData(`msg: .asciiz "hello"`)
	d2, err2 := ParseData(`msg: .asciiz "hello"`)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if !bytes.Equal(d1.Bytes, d2.Bytes) {
		t.Error("encodings differ")
	}
	if !bytes.Equal(d1.Bytes, []byte("hello\x00")) {
		t.Errorf("got %q", d1.Bytes)
	}
	if d1.Size() != 6 {
		t.Errorf("size: got %d", d1.Size())
	}
}

func TestParseDataErrors(t *testing.T) {
	syntax := []string{
		"x: .word",
		"x: .float 1.0",
		"x .word 1",
		`.ascii "open`,
		`.ascii "a" junk`,
		`.ascii bare`,
		`.ascii "\q"`,
		".space -1",
		".space 1, 2",
		".byte 1x",
		".word 1,,2",
		".word 1,",
		".word ,1",
		".word 1 2",
		".space 4,",
	}
	for _, text := range syntax {
		var err *SyntaxError
		if _, e := ParseData(text); !errors.As(e, &err) {
			t.Errorf("%s: expected syntax error, got %v", text, e)
		}
	}

	ranges := []string{
		".byte 256",
		".byte -129",
		".half 65536",
		".half -32769",
		".word 4294967296",
		".word -2147483649",
		".space 0x1000000",
	}
	for _, text := range ranges {
		var err *RangeError
		if _, e := ParseData(text); !errors.As(e, &err) {
			t.Errorf("%s: expected range error, got %v", text, e)
		}
	}
}

func TestDataTypeAlignment(t *testing.T) {
	exp := map[DataType]uint32{Word: 4, Half: 2, Byte: 1, ASCII: 1, ASCIIZ: 1, Space: 1}
	for typ, align := range exp {
		if got := typ.Alignment(); got != align {
			t.Errorf("%v: got %d, expected %d", typ, got, align)
		}
	}
}
