// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mips describes the MIPS R3000-style instruction set understood by
// the assembler: instruction formats, opcode and function codes, and the
// operand layout each mnemonic expects.
package mips

import (
	"sort"
	"strings"
)

// Format describes how an instruction's 32-bit word is partitioned into
// fields.
type Format byte

// All instruction formats
const (
	Register  Format = iota // op rs rt rd shamt funct
	Immediate               // op rs rt imm16
	Jump                    // op target26
	Special                 // fixed 32-bit encoding
)

var formatName = []string{"R", "I", "J", "S"}

func (f Format) String() string {
	if int(f) < len(formatName) {
		return formatName[f]
	}
	return "?"
}

// Layout describes the order and meaning of an instruction's source-level
// operands.
type Layout byte

// All operand layouts
const (
	RdRsRt  Layout = iota // add rd, rs, rt
	RsRt                  // mult rs, rt
	Rs                    // jr rs
	RdRtSa                // sll rd, rt, shamt
	RdRtRs                // sllv rd, rt, rs
	RdRs                  // jalr [rd,] rs (rd defaults to $ra)
	Rd                    // mfhi rd [, rs]
	RtRsImm               // addi rt, rs, imm
	RtImm                 // lui rt, imm
	RsRtImm               // beq rs, rt, target
	RsImm                 // bgtz rs, target
	Target                // j target
	None                  // nop
)

// Arity returns the minimum and maximum number of operands accepted by the
// layout.
func (l Layout) Arity() (min, max int) {
	switch l {
	case RdRsRt, RdRtSa, RdRtRs, RtRsImm, RsRtImm:
		return 3, 3
	case RsRt, RtImm, RsImm:
		return 2, 2
	case RdRs, Rd:
		return 1, 2
	case Rs, Target:
		return 1, 1
	default:
		return 0, 0
	}
}

// Registers returns the number of leading operands that name registers.
// Any operands after them are values: a shift amount, an immediate or a
// target.
func (l Layout) Registers() int {
	switch l {
	case RdRtSa, RtRsImm, RsRtImm:
		return 2
	case RtImm, RsImm:
		return 1
	case Target, None:
		return 0
	default:
		_, max := l.Arity()
		return max
	}
}

// Function field values for register-format instructions.
const (
	FuncSLL   uint32 = 0x00
	FuncSRL   uint32 = 0x02
	FuncSRA   uint32 = 0x03
	FuncSLLV  uint32 = 0x04
	FuncSRLV  uint32 = 0x06
	FuncSRAV  uint32 = 0x07
	FuncJR    uint32 = 0x08
	FuncJALR  uint32 = 0x09
	FuncMFHI  uint32 = 0x10
	FuncMTHI  uint32 = 0x11
	FuncMFLO  uint32 = 0x12
	FuncMTLO  uint32 = 0x13
	FuncMULT  uint32 = 0x18
	FuncMULTU uint32 = 0x19
	FuncDIV   uint32 = 0x1a
	FuncDIVU  uint32 = 0x1b
	FuncADD   uint32 = 0x20
	FuncADDU  uint32 = 0x21
	FuncSUB   uint32 = 0x22
	FuncSUBU  uint32 = 0x23
	FuncAND   uint32 = 0x24
	FuncOR    uint32 = 0x25
	FuncXOR   uint32 = 0x26
	FuncNOR   uint32 = 0x27
	FuncSLT   uint32 = 0x2a
	FuncSLTU  uint32 = 0x2b
)

// Opcode field values for immediate- and jump-format instructions.
const (
	OpJ     uint32 = 0x02
	OpJAL   uint32 = 0x03
	OpBEQ   uint32 = 0x04
	OpBNE   uint32 = 0x05
	OpBLEZ  uint32 = 0x06
	OpBGTZ  uint32 = 0x07
	OpADDI  uint32 = 0x08
	OpADDIU uint32 = 0x09
	OpSLTI  uint32 = 0x0a
	OpSLTIU uint32 = 0x0b
	OpANDI  uint32 = 0x0c
	OpORI   uint32 = 0x0d
	OpXORI  uint32 = 0x0e
	OpLUI   uint32 = 0x0f
	OpLLO   uint32 = 0x18
	OpLHI   uint32 = 0x19
	OpLB    uint32 = 0x20
	OpLH    uint32 = 0x21
	OpLW    uint32 = 0x23
	OpLBU   uint32 = 0x24
	OpLHU   uint32 = 0x25
	OpSB    uint32 = 0x28
	OpSH    uint32 = 0x29
	OpSW    uint32 = 0x2b
)

// Complete encodings of the special instructions.
const (
	NOP     uint32 = 0x00000000
	RFE     uint32 = 0x42000001
	HLT     uint32 = 0x42000010
	SYSCALL uint32 = 0x68000000
)

// An Instruction describes one mnemonic of the instruction set.
type Instruction struct {
	Name   string // lower-case mnemonic
	Format Format // instruction format
	Func   uint32 // function code (R), opcode (I, J) or full word (Special)
	Layout Layout // source operand layout
}

// All instructions understood by the assembler
var data = []Instruction{
	{"add", Register, FuncADD, RdRsRt},
	{"addu", Register, FuncADDU, RdRsRt},
	{"and", Register, FuncAND, RdRsRt},
	{"nor", Register, FuncNOR, RdRsRt},
	{"or", Register, FuncOR, RdRsRt},
	{"sub", Register, FuncSUB, RdRsRt},
	{"subu", Register, FuncSUBU, RdRsRt},
	{"xor", Register, FuncXOR, RdRsRt},
	{"slt", Register, FuncSLT, RdRsRt},
	{"sltu", Register, FuncSLTU, RdRsRt},
	{"div", Register, FuncDIV, RsRt},
	{"divu", Register, FuncDIVU, RsRt},
	{"mult", Register, FuncMULT, RsRt},
	{"multu", Register, FuncMULTU, RsRt},
	{"sll", Register, FuncSLL, RdRtSa},
	{"srl", Register, FuncSRL, RdRtSa},
	{"sra", Register, FuncSRA, RdRtSa},
	{"sllv", Register, FuncSLLV, RdRtRs},
	{"srlv", Register, FuncSRLV, RdRtRs},
	{"srav", Register, FuncSRAV, RdRtRs},
	{"jr", Register, FuncJR, Rs},
	{"jalr", Register, FuncJALR, RdRs},
	{"mfhi", Register, FuncMFHI, Rd},
	{"mflo", Register, FuncMFLO, Rd},
	{"mthi", Register, FuncMTHI, Rs},
	{"mtlo", Register, FuncMTLO, Rs},

	{"addi", Immediate, OpADDI, RtRsImm},
	{"addiu", Immediate, OpADDIU, RtRsImm},
	{"andi", Immediate, OpANDI, RtRsImm},
	{"ori", Immediate, OpORI, RtRsImm},
	{"xori", Immediate, OpXORI, RtRsImm},
	{"slti", Immediate, OpSLTI, RtRsImm},
	{"sltiu", Immediate, OpSLTIU, RtRsImm},
	{"lui", Immediate, OpLUI, RtImm},
	{"lhi", Immediate, OpLHI, RtImm},
	{"llo", Immediate, OpLLO, RtImm},
	{"beq", Immediate, OpBEQ, RsRtImm},
	{"bne", Immediate, OpBNE, RsRtImm},
	{"bgtz", Immediate, OpBGTZ, RsImm},
	{"blez", Immediate, OpBLEZ, RsImm},
	{"lb", Immediate, OpLB, RtRsImm},
	{"lbu", Immediate, OpLBU, RtRsImm},
	{"lh", Immediate, OpLH, RtRsImm},
	{"lhu", Immediate, OpLHU, RtRsImm},
	{"lw", Immediate, OpLW, RtRsImm},
	{"sb", Immediate, OpSB, RtRsImm},
	{"sh", Immediate, OpSH, RtRsImm},
	{"sw", Immediate, OpSW, RtRsImm},

	{"j", Jump, OpJ, Target},
	{"jal", Jump, OpJAL, Target},

	{"nop", Special, NOP, None},
	{"hlt", Special, HLT, None},
	{"rfe", Special, RFE, None},
	{"syscall", Special, SYSCALL, None},
}

// An InstructionSet maps mnemonics to instruction descriptions.
type InstructionSet struct {
	byName map[string]*Instruction
}

// Lookup retrieves the instruction with the requested mnemonic. It returns
// nil if the mnemonic is unknown.
func (s *InstructionSet) Lookup(name string) *Instruction {
	return s.byName[strings.ToLower(name)]
}

// Names returns all mnemonics in the instruction set, sorted.
func (s *InstructionSet) Names() []string {
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{byName: make(map[string]*Instruction, len(data))}
	for i := range data {
		inst := &data[i]
		if _, dup := set.byName[inst.Name]; dup {
			panic("duplicate instruction " + inst.Name)
		}
		set.byName[inst.Name] = inst
	}
	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the instruction set.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}
