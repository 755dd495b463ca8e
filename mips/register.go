// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

import "strconv"

// NumRegisters is the number of general purpose registers. Register fields
// are 5 bits wide.
const NumRegisters = 32

// RA is the return address register, the implicit destination of jalr.
const RA = 31

// Conventional register names, indexed by register number.
var registerNames = [NumRegisters]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var registerAliases = map[string]uint32{
	"s8": 30,
}

var registerNumbers = func() map[string]uint32 {
	m := make(map[string]uint32, NumRegisters+len(registerAliases))
	for i, n := range registerNames {
		m[n] = uint32(i)
	}
	for n, i := range registerAliases {
		m[n] = i
	}
	return m
}()

// LookupRegister returns the number of the register with the given name.
// The name may be written with or without its leading '$', and may be
// either a conventional name ("t0") or a decimal number ("8"). Numbers
// outside the register file are still returned so the caller can report
// them; ok is false only when the name is not recognized at all.
func LookupRegister(name string) (n uint32, ok bool) {
	if len(name) > 0 && name[0] == '$' {
		name = name[1:]
	}
	if n, ok := registerNumbers[name]; ok {
		return n, true
	}
	v, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// RegisterName returns the conventional name of a register, including the
// leading '$'.
func RegisterName(n uint32) string {
	if n < NumRegisters {
		return "$" + registerNames[n]
	}
	return "$" + strconv.FormatUint(uint64(n), 10)
}
