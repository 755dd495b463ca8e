// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"sort"
	"strings"
)

// A Tag is the value carried by an instruction's immediate or target
// operand before it is encoded. It is one of Literal, Pending or Resolved.
type Tag interface {
	isTag()
}

// A Literal is an immediate value written directly in the source. Negative
// records whether the value was written with a minus sign, which
// distinguishes -1 from 0xFFFFFFFF.
type Literal struct {
	Value    uint32
	Negative bool
}

// Pending is a reference to a symbol whose address is not yet known.
type Pending struct {
	Name string
}

// Resolved is a reference to a symbol whose address is known.
type Resolved struct {
	Name    string
	Address uint32
}

func (Literal) isTag()  {}
func (Pending) isTag()  {}
func (Resolved) isTag() {}

// A Symbol is an entry in the symbol table.
type Symbol struct {
	Name    string
	Address uint32
	Defined bool
}

// A SymbolTable maps symbol names to addresses. Symbols may be referenced
// before they are defined. Each assembly run owns its own table.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Reference returns a tag for the named symbol. An unknown symbol is
// inserted as pending.
func (t *SymbolTable) Reference(name string) Tag {
	name = strings.ToLower(name)
	s, ok := t.symbols[name]
	if !ok {
		s = &Symbol{Name: name}
		t.symbols[name] = s
	}
	if s.Defined {
		return Resolved{Name: name, Address: s.Address}
	}
	return Pending{Name: name}
}

// Define records the address of the named symbol, replacing any pending
// placeholder. The first definition of a symbol is authoritative; defining
// it again returns a RedefinitionError.
func (t *SymbolTable) Define(name string, addr uint32) error {
	name = strings.ToLower(name)
	s, ok := t.symbols[name]
	switch {
	case !ok:
		t.symbols[name] = &Symbol{Name: name, Address: addr, Defined: true}
	case s.Defined:
		return &RedefinitionError{Name: name, Address: s.Address}
	default:
		s.Address, s.Defined = addr, true
	}
	return nil
}

// Resolve returns the address of the named symbol. It fails with an
// UnresolvedSymbolError if the symbol was never defined.
func (t *SymbolTable) Resolve(name string) (uint32, error) {
	name = strings.ToLower(name)
	s, ok := t.symbols[name]
	if !ok || !s.Defined {
		return 0, &UnresolvedSymbolError{Name: name}
	}
	return s.Address, nil
}

// Lookup returns the table entry for the named symbol, if any.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	s, ok := t.symbols[strings.ToLower(name)]
	if !ok {
		return Symbol{}, false
	}
	return *s, true
}

// Symbols returns a copy of all table entries. Defined symbols come first,
// ordered by address and then name, followed by undefined symbols ordered
// by name.
func (t *SymbolTable) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		syms = append(syms, *s)
	}
	sort.Slice(syms, func(i, j int) bool {
		a, b := syms[i], syms[j]
		switch {
		case a.Defined != b.Defined:
			return a.Defined
		case a.Defined && a.Address != b.Address:
			return a.Address < b.Address
		default:
			return a.Name < b.Name
		}
	})
	return syms
}

// value returns the address a symbol tag refers to.
func (t *SymbolTable) value(tag Tag) (name string, addr uint32, err error) {
	switch tt := tag.(type) {
	case Pending:
		addr, err = t.Resolve(tt.Name)
		return tt.Name, addr, err
	case Resolved:
		return tt.Name, tt.Address, nil
	default:
		panic("asm: tag is not a symbol reference")
	}
}
