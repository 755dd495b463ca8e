// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"testing"
)

func TestSymbolTable(t *testing.T) {
	syms := NewSymbolTable()

	if tag := syms.Reference("Loop"); tag != (Pending{Name: "loop"}) {
		t.Errorf("reference before definition: got %#v", tag)
	}
	if tag := syms.Reference("loop"); tag != (Pending{Name: "loop"}) {
		t.Errorf("second reference: got %#v", tag)
	}

	var unresolved *UnresolvedSymbolError
	if _, err := syms.Resolve("loop"); !errors.As(err, &unresolved) || unresolved.Name != "loop" {
		t.Errorf("resolve pending: got %v", err)
	}

	if err := syms.Define("LOOP", 0x400010); err != nil {
		t.Fatal(err)
	}
	if addr, err := syms.Resolve("loop"); err != nil || addr != 0x400010 {
		t.Errorf("resolve: got %08X, %v", addr, err)
	}
	if tag := syms.Reference("loop"); tag != (Resolved{Name: "loop", Address: 0x400010}) {
		t.Errorf("reference after definition: got %#v", tag)
	}

	var redefined *RedefinitionError
	if err := syms.Define("loop", 0x400020); !errors.As(err, &redefined) || redefined.Address != 0x400010 {
		t.Errorf("redefinition: got %v", err)
	}
	if addr, _ := syms.Resolve("loop"); addr != 0x400010 {
		t.Errorf("first definition must win, got %08X", addr)
	}

	if _, err := syms.Resolve("missing"); !errors.As(err, &unresolved) {
		t.Errorf("resolve unknown: got %v", err)
	}
	if _, ok := syms.Lookup("missing"); ok {
		t.Error("resolve must not insert symbols")
	}
}

func TestSymbolOrder(t *testing.T) {
	syms := NewSymbolTable()
	syms.Reference("zeta")
	syms.Define("b", 0x20)
	syms.Define("a", 0x20)
	syms.Define("c", 0x10)
	syms.Reference("alpha")

	var names []string
	for _, s := range syms.Symbols() {
		names = append(names, s.Name)
	}
	exp := []string{"c", "a", "b", "alpha", "zeta"}
	if len(names) != len(exp) {
		t.Fatalf("got %v, expected %v", names, exp)
	}
	for i := range exp {
		if names[i] != exp[i] {
			t.Errorf("got %v, expected %v", names, exp)
			break
		}
	}
}

func TestSymbolTagValue(t *testing.T) {
	syms := NewSymbolTable()
	pending := syms.Reference("later")
	syms.Define("later", 0x1234)

	// A tag captured before definition still resolves once the label is
	// defined.
	name, addr, err := syms.value(pending)
	if err != nil || name != "later" || addr != 0x1234 {
		t.Errorf("got %s %08X %v", name, addr, err)
	}
}
