// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"math"

	"github.com/beevik/gomips/mips"
)

// Encode converts an instruction located at addr into its 32-bit machine
// word. Symbol operands are resolved against syms, so every label must
// have been defined before Encode is called.
func Encode(inst *Instruction, addr uint32, syms *SymbolTable) (uint32, error) {
	o := &inst.Args
	switch {
	case o.Rs >= mips.NumRegisters:
		return 0, &RegisterError{Field: "rs", Value: o.Rs}
	case o.Rt >= mips.NumRegisters:
		return 0, &RegisterError{Field: "rt", Value: o.Rt}
	case o.Rd >= mips.NumRegisters:
		return 0, &RegisterError{Field: "rd", Value: o.Rd}
	}

	switch inst.Format {
	case mips.Register:
		return encodeR(inst), nil
	case mips.Immediate:
		return encodeI(inst, addr, syms)
	case mips.Jump:
		return encodeJ(inst, syms)
	case mips.Special:
		return inst.Func, nil
	default:
		return 0, syntaxError("unknown instruction format %v", inst.Format)
	}
}

func encodeR(inst *Instruction) uint32 {
	o := &inst.Args
	return o.Rs<<21 | o.Rt<<16 | o.Rd<<11 | (o.Shamt&0x1f)<<6 | inst.Func&0x3f
}

func encodeI(inst *Instruction, addr uint32, syms *SymbolTable) (uint32, error) {
	var imm uint16
	switch t := immediateTag(inst).(type) {
	case Literal:
		v, err := literal16(t)
		if err != nil {
			return 0, err
		}
		imm = v
	case Pending, Resolved:
		name, target, err := syms.value(t)
		if err != nil {
			return 0, err
		}
		imm, err = branchOffset(name, target, addr)
		if err != nil {
			return 0, err
		}
	}

	o := &inst.Args
	return (inst.Func&0x3f)<<26 | o.Rs<<21 | o.Rt<<16 | uint32(imm), nil
}

func encodeJ(inst *Instruction, syms *SymbolTable) (uint32, error) {
	var name string
	var target uint32
	switch t := immediateTag(inst).(type) {
	case Literal:
		if t.Negative {
			return 0, syntaxError("negative jump target %d", int32(t.Value))
		}
		target = t.Value
	case Pending, Resolved:
		var err error
		name, target, err = syms.value(t)
		if err != nil {
			return 0, err
		}
	}

	if target%4 != 0 {
		return 0, &AlignmentError{Required: 4, Address: target, Symbol: name}
	}
	return (inst.Func&0x3f)<<26 | (target>>2)&0x03ffffff, nil
}

// immediateTag returns the instruction's immediate or target tag. An
// instruction built without one carries a zero literal.
func immediateTag(inst *Instruction) Tag {
	if inst.Args.Imm == nil {
		return Literal{}
	}
	return inst.Args.Imm
}

// literal16 encodes a literal immediate. Negative values must fit a signed
// 16-bit field and are stored in two's complement; non-negative values must
// fit an unsigned 16-bit field.
func literal16(l Literal) (uint16, error) {
	if l.Negative {
		v := int32(l.Value)
		if v < math.MinInt16 {
			return 0, &ImmediateError{Value: int64(v)}
		}
		return uint16(v), nil
	}
	if l.Value > math.MaxUint16 {
		return 0, &ImmediateError{Value: int64(l.Value)}
	}
	return uint16(l.Value), nil
}

// branchOffset computes the PC-relative word offset from the instruction
// following addr to target, as a two's complement 16-bit value.
func branchOffset(name string, target, addr uint32) (uint16, error) {
	diff := int64(target) - int64(addr) - 4
	if diff%4 != 0 {
		return 0, &AlignmentError{Required: 4, Address: target, Symbol: name}
	}
	off := diff / 4
	if off < math.MinInt16 || off > math.MaxInt16 {
		return 0, &ImmediateError{Value: off}
	}
	return uint16(int16(off)), nil
}
