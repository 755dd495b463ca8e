// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"
	"strings"

	"github.com/beevik/gomips/mips"
)

// Operands holds an instruction's register fields and its immediate or
// jump-target operand.
type Operands struct {
	Rs    uint32
	Rt    uint32
	Rd    uint32
	Shamt uint32
	Imm   Tag // Literal{} when the instruction has no immediate
}

// An Instruction is a decoded, not yet encoded, machine instruction.
type Instruction struct {
	Name   string      // mnemonic
	Format mips.Format // instruction format
	Func   uint32      // function code, opcode, or full word for Special
	Layout mips.Layout // operand layout used when parsing
	Args   Operands
}

// ParseInstruction decodes a normalized instruction line of the form
// "op a,b,c", where registers have already been rewritten to numbers.
// Symbol operands are registered with the symbol table and carried as
// Pending or Resolved tags.
func ParseInstruction(text string, syms *SymbolTable) (*Instruction, error) {
	name, rest := strings.TrimSpace(text), ""
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name, rest = name[:i], name[i+1:]
	}
	if name == "" {
		return nil, syntaxError("missing instruction")
	}

	def := mips.GetInstructionSet().Lookup(name)
	if def == nil {
		return nil, syntaxError("unknown instruction '%s'", name)
	}

	args, err := splitOperands(rest)
	if err != nil {
		return nil, err
	}
	min, max := def.Layout.Arity()
	if len(args) < min || len(args) > max {
		return nil, syntaxError("'%s' expects %s, got %d", name, operandCount(min, max), len(args))
	}

	inst := &Instruction{
		Name:   def.Name,
		Format: def.Format,
		Func:   def.Func,
		Layout: def.Layout,
		Args:   Operands{Imm: Literal{}},
	}

	p := operandParser{args: args, syms: syms}
	o := &inst.Args
	switch def.Layout {
	case mips.RdRsRt:
		o.Rd = p.register("rd")
		o.Rs = p.register("rs")
		o.Rt = p.register("rt")
	case mips.RsRt:
		o.Rs = p.register("rs")
		o.Rt = p.register("rt")
	case mips.Rs:
		o.Rs = p.register("rs")
	case mips.RdRtSa:
		o.Rd = p.register("rd")
		o.Rt = p.register("rt")
		o.Shamt = p.shamt()
	case mips.RdRtRs:
		o.Rd = p.register("rd")
		o.Rt = p.register("rt")
		o.Rs = p.register("rs")
	case mips.RdRs:
		o.Rd = mips.RA
		if len(args) == 2 {
			o.Rd = p.register("rd")
		}
		o.Rs = p.register("rs")
	case mips.Rd:
		o.Rd = p.register("rd")
		if len(args) == 2 {
			o.Rs = p.register("rs")
		}
	case mips.RtRsImm:
		o.Rt = p.register("rt")
		o.Rs = p.register("rs")
		o.Imm = p.immediate()
	case mips.RtImm:
		o.Rt = p.register("rt")
		o.Imm = p.immediate()
	case mips.RsRtImm:
		o.Rs = p.register("rs")
		o.Rt = p.register("rt")
		o.Imm = p.immediate()
	case mips.RsImm:
		o.Rs = p.register("rs")
		o.Imm = p.immediate()
	case mips.Target:
		o.Imm = p.immediate()
	case mips.None:
	}

	if p.err != nil {
		return nil, p.err
	}
	return inst, nil
}

// Split a comma-separated operand list. Every operand must be present and
// free of embedded whitespace.
func splitOperands(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	for i, f := range fields {
		f = strings.TrimSpace(f)
		switch {
		case f == "":
			return nil, syntaxError("missing operand in '%s'", s)
		case strings.IndexAny(f, " \t") >= 0:
			return nil, syntaxError("missing ',' in '%s'", s)
		}
		fields[i] = f
	}
	return fields, nil
}

func operandCount(min, max int) string {
	switch {
	case max == 0:
		return "no operands"
	case min == max && min == 1:
		return "1 operand"
	case min == max:
		return strconv.Itoa(min) + " operands"
	default:
		return strconv.Itoa(min) + " or " + strconv.Itoa(max) + " operands"
	}
}

// An operandParser consumes operands in order, remembering the first error
// encountered.
type operandParser struct {
	args []string
	next int
	syms *SymbolTable
	err  error
}

func (p *operandParser) take() string {
	s := p.args[p.next]
	p.next++
	return s
}

func (p *operandParser) register(field string) uint32 {
	s := p.take()
	if p.err != nil {
		return 0
	}
	n, ok := mips.LookupRegister(s)
	switch {
	case !ok:
		p.err = syntaxError("invalid %s register '%s'", field, s)
	case n >= mips.NumRegisters:
		p.err = &RegisterError{Field: field, Value: n}
	}
	return n
}

func (p *operandParser) shamt() uint32 {
	s := p.take()
	if p.err != nil {
		return 0
	}
	v, err := parseNumber(s)
	switch {
	case err != nil:
		p.err = err
	case v < 0 || v > 31:
		p.err = syntaxError("shift amount %d out of range", v)
	}
	return uint32(v)
}

func (p *operandParser) immediate() Tag {
	s := p.take()
	if p.err != nil {
		return Literal{}
	}
	if isNumberStart(s[0]) {
		v, err := parseNumber(s)
		if err != nil {
			p.err = err
			return Literal{}
		}
		return Literal{Value: uint32(v), Negative: v < 0}
	}
	if !isIdentifier(s) {
		p.err = syntaxError("invalid operand '%s'", s)
		return Literal{}
	}
	return p.syms.Reference(s)
}
