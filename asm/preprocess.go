// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/gomips/mips"
)

// A RecordKind classifies a source line.
type RecordKind byte

// Record kinds.
const (
	Ignore          RecordKind = iota // blank, comment-only or ignored directive
	SectionStart                      // .text or .data
	Label                             // "name: [body]", or an unlabeled data directive
	InstructionText                   // normalized instruction
)

var recordKindName = []string{"ignore", "section", "label", "instruction"}

func (k RecordKind) String() string {
	return recordKindName[k]
}

// A SegmentKind identifies one of the two program segments.
type SegmentKind byte

// Segment kinds.
const (
	Code SegmentKind = iota
	Data
)

func (k SegmentKind) String() string {
	if k == Code {
		return ".text"
	}
	return ".data"
}

// A Record is one classified source line.
type Record struct {
	Row  int    // 1-based line number
	Text string // original line text
	Kind RecordKind

	// SectionStart
	Segment SegmentKind
	Base    uint32
	HasBase bool

	// Label and InstructionText. Name is empty for an unlabeled data
	// directive. Body holds a normalized instruction or a data directive.
	Name string
	Body string
}

// Preprocess reads assembly source and classifies each line. Register names
// are rewritten to numbers and "offset(base)" operands are rewritten to
// "base,offset", so that instruction bodies are plain comma-separated
// operand lists.
func Preprocess(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	for row := 1; scanner.Scan(); row++ {
		rec, err := PreprocessLine(row, scanner.Text())
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// PreprocessLine classifies a single line of source. Errors are returned
// as *LineError.
func PreprocessLine(row int, text string) (Record, error) {
	rec := Record{Row: row, Text: text}
	l := newFstring(row, text).stripTrailingComment().lowerUnquoted()
	if err := classify(&rec, l); err != nil {
		return rec, &LineError{Row: row, Text: strings.TrimSpace(text), Err: err}
	}
	return rec, nil
}

func classify(rec *Record, l fstring) error {
	if l.isEmpty() {
		rec.Kind = Ignore
		return nil
	}

	if l.startsWithChar('.') {
		keyword, remain := l.consumeWhile(wordChar)
		switch keyword.str {
		case ".text", ".data":
			return classifySection(rec, keyword.str, remain.trimSpace())
		case ".globl", ".global":
			rec.Kind = Ignore
			return nil
		}
		rec.Kind, rec.Body = Label, l.str
		return nil
	}

	if l.startsWith(identifierStartChar) {
		name, remain := l.consumeWhile(identifierChar)
		remain = remain.consumeWhitespace()
		if remain.startsWithChar(':') {
			rec.Kind, rec.Name = Label, name.str
			body := remain.consume(1).trimSpace()
			if body.startsWithChar('.') {
				rec.Body = body.str
				return nil
			}
			var err error
			rec.Body, err = normalizeInstruction(body)
			return err
		}
	}

	var err error
	rec.Kind = InstructionText
	rec.Body, err = normalizeInstruction(l)
	return err
}

func classifySection(rec *Record, keyword string, operand fstring) error {
	rec.Kind = SectionStart
	rec.Segment = Code
	if keyword == ".data" {
		rec.Segment = Data
	}
	if operand.isEmpty() {
		return nil
	}

	v, err := parseNumber(operand.str)
	switch {
	case err != nil:
		return err
	case v < 0:
		return syntaxError("negative %s address %d", keyword, v)
	}
	rec.Base, rec.HasBase = uint32(v), true
	return nil
}

// Rewrite an instruction into "op a,b,c" form. Register names become
// numbers and an "offset(base)" operand becomes "base,offset".
func normalizeInstruction(l fstring) (string, error) {
	if l.isEmpty() {
		return "", nil
	}

	op, remain := l.consumeUntil(whitespace)
	args, err := splitAddressed(remain.str)
	if err != nil {
		return "", err
	}

	var operands []string
	for _, arg := range args {
		if i := strings.IndexByte(arg, '('); i >= 0 {
			j := strings.IndexByte(arg, ')')
			if j < i || j != len(arg)-1 {
				return "", syntaxError("unmatched '(' in operand '%s'", arg)
			}
			offset, base := strings.TrimSpace(arg[:i]), strings.TrimSpace(arg[i+1:j])
			if offset == "" {
				offset = "0"
			}
			operands = append(operands, base, offset)
			continue
		}
		if strings.ContainsRune(arg, ')') {
			return "", syntaxError("unmatched ')' in operand '%s'", arg)
		}
		operands = append(operands, arg)
	}

	// Registers become bare numbers below, so a register written where the
	// instruction expects a value must be caught here.
	regs := len(operands)
	if def := mips.GetInstructionSet().Lookup(op.str); def != nil {
		regs = def.Layout.Registers()
	}

	for i, arg := range operands {
		if !strings.HasPrefix(arg, "$") {
			continue
		}
		if i >= regs {
			return "", syntaxError("register '%s' used where '%s' expects a value", arg, op.str)
		}
		n, ok := mips.LookupRegister(arg)
		if !ok {
			return "", syntaxError("unknown register '%s'", arg)
		}
		operands[i] = strconv.FormatUint(uint64(n), 10)
	}

	if len(operands) == 0 {
		return op.str, nil
	}
	return op.str + " " + strings.Join(operands, ","), nil
}

// Split an operand list on commas, keeping each parenthesized base
// register attached to its offset. Empty operands are rejected.
func splitAddressed(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var fields []string
	add := func(f string) error {
		f = strings.TrimSpace(f)
		if f == "" {
			return syntaxError("missing operand in '%s'", s)
		}
		fields = append(fields, f)
		return nil
	}

	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				if err := add(s[start:i]); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if err := add(s[start:]); err != nil {
		return nil, err
	}
	return fields, nil
}
