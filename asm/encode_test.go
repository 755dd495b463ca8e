// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"testing"

	"github.com/beevik/gomips/mips"
)

func mustParse(t *testing.T, text string, syms *SymbolTable) *Instruction {
	t.Helper()
	inst, err := ParseInstruction(text, syms)
	if err != nil {
		t.Fatalf("%s: %v", text, err)
	}
	return inst
}

func TestEncodeAddressIndependent(t *testing.T) {
	syms := NewSymbolTable()
	inst := mustParse(t, "add 8,9,10", syms)
	for _, addr := range []uint32{0, 4, 0x00400000, 0xfffffffc} {
		w, err := Encode(inst, addr, syms)
		if err != nil {
			t.Fatal(err)
		}
		if w != 0x012a4020 {
			t.Errorf("at %08X: got %08X", addr, w)
		}
	}
}

func TestEncodeBranchOffsets(t *testing.T) {
	tests := []struct {
		addr, target uint32
	}{
		{0x00400000, 0x00400000},
		{0x00400010, 0x00400000},
		{0x00400000, 0x00400010},
		{0x00400004, 0x00400008},
		{0x00420000, 0x00400004},
		{0x00400000, 0x0041fffc},
	}

	for _, test := range tests {
		syms := NewSymbolTable()
		syms.Define("target", test.target)
		inst := mustParse(t, "beq 8,0,target", syms)
		w, err := Encode(inst, test.addr, syms)
		if err != nil {
			t.Errorf("%08X->%08X: %v", test.addr, test.target, err)
			continue
		}
		if w>>16 != 0x1100 {
			t.Errorf("%08X->%08X: bad opcode fields %08X", test.addr, test.target, w)
		}
		offset := int32(int16(w & 0xffff))
		if got := uint32(int32(test.addr+4) + offset*4); got != test.target {
			t.Errorf("%08X->%08X: offset %d reaches %08X", test.addr, test.target, offset, got)
		}
	}
}

func TestEncodeBranchErrors(t *testing.T) {
	syms := NewSymbolTable()
	syms.Define("far", 0x00400000+4+0x8000*4)
	syms.Define("odd", 0x00400002)
	syms.Define("back", 0x00400000-0x8000*4+4)

	var imm *ImmediateError
	w, err := Encode(mustParse(t, "bne 1,2,far", syms), 0x00400000, syms)
	if !errors.As(err, &imm) {
		t.Errorf("far branch: got %08X, %v", w, err)
	}

	var align *AlignmentError
	if _, err := Encode(mustParse(t, "beq 1,2,odd", syms), 0x00400000, syms); !errors.As(err, &align) || align.Symbol != "odd" {
		t.Errorf("odd branch: got %v", err)
	}

	// Exactly -32768 words is the furthest backward branch.
	if w, err := Encode(mustParse(t, "beq 1,2,back", syms), 0x00400000, syms); err != nil || w&0xffff != 0x8000 {
		t.Errorf("back branch: got %08X, %v", w, err)
	}
}

func TestEncodeImmediates(t *testing.T) {
	tests := []struct {
		text string
		word uint32
		ok   bool
	}{
		{"ori 8,0,0", 0x34080000, true},
		{"ori 8,0,65535", 0x3408ffff, true},
		{"ori 8,0,0xffff", 0x3408ffff, true},
		{"ori 8,0,65536", 0, false},
		{"addi 8,0,-1", 0x2008ffff, true},
		{"addi 8,0,-32768", 0x20088000, true},
		{"addi 8,0,-32769", 0, false},
		{"slti 8,9,+7", 0x29280007, true},
	}

	for _, test := range tests {
		syms := NewSymbolTable()
		w, err := Encode(mustParse(t, test.text, syms), 0, syms)
		switch {
		case test.ok && err != nil:
			t.Errorf("%s: %v", test.text, err)
		case test.ok && w != test.word:
			t.Errorf("%s: got %08X, expected %08X", test.text, w, test.word)
		case !test.ok && !errors.As(err, new(*ImmediateError)):
			t.Errorf("%s: expected immediate error, got %v", test.text, err)
		}
	}
}

func TestEncodeJump(t *testing.T) {
	syms := NewSymbolTable()
	syms.Define("func", 0x0040abcc)
	syms.Define("odd", 0x0040abce)

	w, err := Encode(mustParse(t, "jal func", syms), 0x00400000, syms)
	if err != nil || w != 0x0c000000|0x0040abcc>>2 {
		t.Errorf("jal: got %08X, %v", w, err)
	}

	w, err = Encode(mustParse(t, "j 0x1000", syms), 0, syms)
	if err != nil || w != 0x08000400 {
		t.Errorf("j literal: got %08X, %v", w, err)
	}

	var align *AlignmentError
	if _, err := Encode(mustParse(t, "j odd", syms), 0, syms); !errors.As(err, &align) || align.Required != 4 {
		t.Errorf("j odd: got %v", err)
	}

	var unresolved *UnresolvedSymbolError
	if _, err := Encode(mustParse(t, "j nowhere", syms), 0, syms); !errors.As(err, &unresolved) {
		t.Errorf("j nowhere: got %v", err)
	}
}

func TestEncodeZeroOperands(t *testing.T) {
	syms := NewSymbolTable()
	tests := []struct {
		inst Instruction
		word uint32
	}{
		{Instruction{Format: mips.Immediate, Func: mips.OpADDI}, 0x20000000},
		{Instruction{Format: mips.Immediate, Func: mips.OpLUI, Args: Operands{Rt: 8}}, 0x3c080000},
		{Instruction{Format: mips.Jump, Func: mips.OpJ}, 0x08000000},
		{Instruction{Format: mips.Register, Func: 0x20}, 0x00000020},
	}
	for _, test := range tests {
		w, err := Encode(&test.inst, 0x1000, syms)
		if err != nil {
			t.Errorf("%+v: %v", test.inst, err)
			continue
		}
		if w != test.word {
			t.Errorf("%+v: got %08X, expected %08X", test.inst, w, test.word)
		}
	}

	var syntax *SyntaxError
	if _, err := Encode(&Instruction{Format: mips.Format(99)}, 0, syms); !errors.As(err, &syntax) {
		t.Errorf("unknown format: got %v", err)
	}
}

func TestEncodeRegisterRange(t *testing.T) {
	syms := NewSymbolTable()
	inst := mustParse(t, "add 8,9,10", syms)

	fields := []struct {
		name string
		reg  *uint32
	}{
		{"rs", &inst.Args.Rs},
		{"rt", &inst.Args.Rt},
		{"rd", &inst.Args.Rd},
	}
	for _, f := range fields {
		saved := *f.reg
		*f.reg = 32
		var reg *RegisterError
		if _, err := Encode(inst, 0, syms); !errors.As(err, &reg) || reg.Field != f.name || reg.Value != 32 {
			t.Errorf("%s: got %v", f.name, err)
		}
		*f.reg = saved
	}
}

func TestParseInstructionLayouts(t *testing.T) {
	tests := []struct {
		text string
		args Operands
	}{
		{"sllv 8,9,10", Operands{Rd: 8, Rt: 9, Rs: 10, Imm: Literal{}}},
		{"jalr 8", Operands{Rd: 31, Rs: 8, Imm: Literal{}}},
		{"jalr 2,8", Operands{Rd: 2, Rs: 8, Imm: Literal{}}},
		{"mthi 5", Operands{Rs: 5, Imm: Literal{}}},
		{"mfhi 5", Operands{Rd: 5, Imm: Literal{}}},
		{"lui 8,-1", Operands{Rt: 8, Imm: Literal{Value: 0xffffffff, Negative: true}}},
		{"lw 8,29,4", Operands{Rt: 8, Rs: 29, Imm: Literal{Value: 4}}},
		{"blez 4,x", Operands{Rs: 4, Imm: Pending{Name: "x"}}},
		{"sra 8,9,31", Operands{Rd: 8, Rt: 9, Shamt: 31, Imm: Literal{}}},
	}

	for _, test := range tests {
		inst, err := ParseInstruction(test.text, NewSymbolTable())
		if err != nil {
			t.Errorf("%s: %v", test.text, err)
			continue
		}
		if inst.Args != test.args {
			t.Errorf("%s: got %+v, expected %+v", test.text, inst.Args, test.args)
		}
	}

	bad := []string{
		"sll 8,9,32", "jr", "nop 1", "add 8,9,x", "addi 8,9,1x", "j 1,2",
		"add 8,,9,10", "add 8,9,10,", "add ,8,9,10", "addi 8,9 1",
	}
	for _, text := range bad {
		if _, err := ParseInstruction(text, NewSymbolTable()); err == nil {
			t.Errorf("%s: expected error", text)
		}
	}
}
