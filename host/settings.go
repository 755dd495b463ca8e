// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/gomips/asm"
	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	Verbose      bool   `doc:"verbose assembler output"`
	WriteMap     bool   `doc:"write a source map when assembling"`
	TextBase     uint32 `doc:"default .text base address"`
	DataBase     uint32 `doc:"default .data base address"`
	ListingLines int    `doc:"default number of listing lines to display"`
}

func newSettings() *settings {
	return &settings{
		Verbose:      false,
		WriteMap:     false,
		TextBase:     asm.DefaultOrigin.Text,
		DataBase:     asm.DefaultOrigin.Data,
		ListingLines: 16,
	}
}

func (s *settings) origin() asm.Origin {
	return asm.Origin{Text: s.TextBase, Data: s.DataBase}
}

func (s *settings) options() asm.Option {
	var o asm.Option
	if s.Verbose {
		o |= asm.Verbose
	}
	if s.WriteMap {
		o |= asm.WriteMap
	}
	return o
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var s string
		switch f.kind {
		case reflect.Uint32:
			s = fmt.Sprintf("    %-16s 0x%08X", f.name, uint32(v.Uint()))
		default:
			s = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-32s (%s)\n", s, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	vInConverted := vIn.Convert(f.typ)

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vInConverted)

	return nil
}
