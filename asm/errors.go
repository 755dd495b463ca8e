// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// ErrParse is returned by Assemble when assembly fails. The returned error
// also wraps the detailed error, which can be examined with errors.As.
var ErrParse = errors.New("parse error")

// A RegisterError reports a register index that does not fit in a 5-bit
// register field.
type RegisterError struct {
	Field string // rs, rt or rd
	Value uint32
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("register %s out of range: %d", e.Field, e.Value)
}

// An ImmediateError reports a literal or computed immediate that does not
// fit in the 16-bit immediate field.
type ImmediateError struct {
	Value int64
}

func (e *ImmediateError) Error() string {
	return fmt.Sprintf("immediate %d does not fit in 16 bits", e.Value)
}

// A RangeError reports a data value too large for its declared width.
type RangeError struct {
	Value int64
	Bits  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %d does not fit in %d bits", e.Value, e.Bits)
}

// An UnresolvedSymbolError reports a symbol that was referenced but never
// defined.
type UnresolvedSymbolError struct {
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("unresolved symbol '%s'", e.Name)
}

// A RedefinitionError reports a label defined more than once.
type RedefinitionError struct {
	Name    string
	Address uint32 // address of the first definition
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("symbol '%s' already defined at %08X", e.Name, e.Address)
}

// An AlignmentError reports an item or segment base that violates its
// required byte alignment.
type AlignmentError struct {
	Required uint32
	Address  uint32
	Symbol   string
}

func (e *AlignmentError) Error() string {
	sym := e.Symbol
	if sym == "" {
		sym = "(unnamed)"
	}
	return fmt.Sprintf("address %08X is not %d-byte aligned; symbol: %s", e.Address, e.Required, sym)
}

// An OverlapError reports intersecting code and data address ranges.
type OverlapError struct {
	Code Range
	Data Range
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("text segment %v overlaps data segment %v", e.Code, e.Data)
}

// A SegmentError reports misuse of the .text and .data segments.
type SegmentError struct {
	Msg string
}

func (e *SegmentError) Error() string {
	return e.Msg
}

// A SyntaxError reports malformed source text.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Msg
}

func syntaxError(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

func segmentError(format string, args ...any) error {
	return &SegmentError{Msg: fmt.Sprintf(format, args...)}
}

// A LineError associates an error with the source line that caused it.
type LineError struct {
	Row  int    // 1-based source line number
	Text string // original line text
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Row, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
