// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass MIPS R3000 assembler.
package asm

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/gomips/elfimg"
)

// The end of the 32-bit address space.
const addressLimit = 1 << 32

// Origin holds the base addresses used when a .text or .data directive
// does not supply one.
type Origin struct {
	Text uint32
	Data uint32
}

// DefaultOrigin is the conventional MIPS memory layout.
var DefaultOrigin = Origin{Text: 0x00400000, Data: 0x10010000}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose  Option = 1 << iota // verbose output during assembly
	WriteMap                    // AssembleFile also writes a source map
)

// A Range is a half-open span of addresses [Base, Base+Size).
type Range struct {
	Base uint32
	Size uint64
}

// End returns the first address past the range.
func (r Range) End() uint64 {
	return uint64(r.Base) + r.Size
}

// Overlaps reports whether two ranges share an address. Empty ranges
// overlap nothing.
func (r Range) Overlaps(o Range) bool {
	if r.Size == 0 || o.Size == 0 {
		return false
	}
	return uint64(r.Base) < o.End() && uint64(o.Base) < r.End()
}

func (r Range) String() string {
	return fmt.Sprintf("[%08X, %08X)", r.Base, r.End())
}

// An item is a single instruction or data directive placed in a segment.
type item interface {
	address() uint32
	source() *Record
}

// An instruction item holds a parsed instruction awaiting encoding.
type instruction struct {
	addr uint32
	rec  *Record
	inst *Instruction
}

func (i *instruction) address() uint32 { return i.addr }
func (i *instruction) source() *Record { return i.rec }

// A data item holds an encoded data directive.
type data struct {
	addr uint32
	rec  *Record
	dir  *Directive
}

func (d *data) address() uint32 { return d.addr }
func (d *data) source() *Record { return d.rec }

// A section tracks address assignment for one segment.
type section struct {
	kind   SegmentKind
	base   uint32
	placed bool   // base address has been fixed
	pc     uint64 // next free address
}

func (s *section) extent() Range {
	if !s.placed {
		return Range{}
	}
	return Range{Base: s.base, Size: s.pc - uint64(s.base)}
}

// A ListingLine describes the machine code generated for one source line.
type ListingLine struct {
	Address uint32
	Bytes   []byte
	Row     int
	Text    string
}

func (l ListingLine) String() string {
	b := l.Bytes
	more := ""
	if len(b) > 4 {
		b, more = b[:4], "+"
	}
	return fmt.Sprintf("%08X  %-11s%-1s %5d  %s", l.Address, byteString(b), more, l.Row, l.Text)
}

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	origin      Origin       // default segment bases
	filename    string       // name of the source file
	records     []Record     // classified source lines
	syms        *SymbolTable // symbols owned by this run
	text        section      // code segment
	data        section      // data segment
	cur         *section     // segment currently being filled
	items       []item       // instructions and data in source order
	code        []uint32     // generated machine code
	bytes       []byte       // generated data
	listing     []ListingLine
	sourceLines []SourceLine // address to source line mappings
	out         io.Writer    // output used for verbose output
	verbose     bool         // verbose output
	errors      []error      // errors encountered during assembly
}

// Assembly contains the assembled code and data segments and other data
// associated with them.
type Assembly struct {
	Code     []uint32      // Assembled machine code
	Data     []byte        // Assembled data segment
	TextBase uint32        // Address of the first instruction
	DataBase uint32        // Address of the first data byte
	Symbols  []Symbol      // Symbol table contents
	Listing  []ListingLine // Generated code per source line
	Errors   []string      // Errors encountered during assembly
}

// Image packages the assembled segments as an executable image.
func (a *Assembly) Image() *elfimg.Image {
	return elfimg.Pack(a.Code, a.TextBase, a.Data, a.DataBase)
}

// WriteTo writes the packaged executable image to an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	return a.Image().WriteTo(w)
}

// AssembleFile reads a file containing MIPS assembly code, assembles it,
// and writes an executable image to outPath. If outPath is empty, the
// image is written next to the source with an ".elf" extension. With the
// WriteMap option, a source map is written alongside the image.
func AssembleFile(path, outPath string, origin Origin, options Option, out io.Writer) (*Assembly, error) {
	if out == nil {
		out = os.Stdout
	}

	inFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, origin, out, options)
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintln(out, e)
		}
		return assembly, err
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".elf"
	}
	if err := writeFile(outPath, assembly); err != nil {
		return assembly, err
	}

	if (options & WriteMap) == 0 {
		fmt.Fprintf(out, "Assembled '%s' to produce '%s'.\n",
			filepath.Base(path), filepath.Base(outPath))
		return assembly, nil
	}

	mapPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".map"
	if err := writeFile(mapPath, sourceMap); err != nil {
		return assembly, err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(outPath),
		filepath.Base(mapPath))
	return assembly, nil
}

func writeFile(path string, w io.WriterTo) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Assemble reads MIPS assembly code from the provided stream and assembles
// it into code and data segments.
func Assemble(r io.Reader, filename string, origin Origin, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	records, err := Preprocess(r)
	if err != nil {
		assembly := &Assembly{Errors: []string{err.Error()}}
		var lineErr *LineError
		if errors.As(err, &lineErr) {
			err = fmt.Errorf("%w: %w", ErrParse, err)
		}
		return assembly, &SourceMap{Files: []string{filename}}, err
	}
	return AssembleRecords(records, filename, origin, out, options)
}

// AssembleRecords assembles an already classified record stream. The
// first pass assigns addresses and defines every label; the second pass
// encodes instructions, by which time every symbol in the source is known.
func AssembleRecords(records []Record, filename string, origin Origin, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		origin:   origin,
		filename: filename,
		records:  records,
		syms:     NewSymbolTable(),
		text:     section{kind: Code},
		data:     section{kind: Data},
		out:      out,
		verbose:  (options & Verbose) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).assignAddresses, // Pass 1: place items and define labels
		(*assembler).checkSegments,   // Check the segments do not overlap
		(*assembler).generateCode,    // Pass 2: encode instructions
	}

	// Execute assembler steps, breaking if an error is encountered
	// in any one of them.
	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil {
			break
		}
		if len(a.errors) > 0 {
			err = fmt.Errorf("%w: %w", ErrParse, a.errors[0])
			break
		}
	}

	errs := make([]string, 0, len(a.errors))
	for _, e := range a.errors {
		errs = append(errs, e.Error())
	}

	assembly := &Assembly{
		Errors:   errs,
		TextBase: a.text.base,
		DataBase: a.data.base,
		Symbols:  a.syms.Symbols(),
	}
	if err == nil {
		assembly.Code = a.code
		assembly.Data = a.bytes
		assembly.Listing = a.listing
	}

	sort.SliceStable(a.sourceLines, func(i, j int) bool {
		return a.sourceLines[i].Address < a.sourceLines[j].Address
	})
	sourceMap := &SourceMap{
		TextBase: a.text.base,
		DataBase: a.data.base,
		Files:    []string{filename},
		Lines:    a.sourceLines,
		Symbols:  assembly.Symbols,
	}
	if err == nil {
		sourceMap.CRC = crc32.ChecksumIEEE(assembly.Image().Bytes())
	}

	return assembly, sourceMap, err
}

// Walk the records in order, assigning an address to every instruction and
// data directive and defining each label at the address where it appears.
func (a *assembler) assignAddresses() error {
	a.logSection("Assigning addresses")
	for i := range a.records {
		rec := &a.records[i]
		var err error
		switch rec.Kind {
		case Ignore:
			continue
		case SectionStart:
			err = a.openSection(rec)
		case Label:
			err = a.placeLabel(rec)
		case InstructionText:
			err = a.placeInstruction(rec, rec.Body)
		}
		if err != nil {
			a.addError(rec, err)
			return nil
		}
	}
	return nil
}

func (a *assembler) section(kind SegmentKind) *section {
	if kind == Code {
		return &a.text
	}
	return &a.data
}

func (a *assembler) openSection(rec *Record) error {
	s := a.section(rec.Segment)
	base := rec.Base
	if !rec.HasBase {
		base = a.origin.Text
		if s.kind == Data {
			base = a.origin.Data
		}
	}

	switch {
	case s.placed && rec.HasBase && rec.Base != s.base:
		return segmentError("%s segment already placed at %08X", s.kind, s.base)
	case !s.placed:
		if err := a.place(s, base); err != nil {
			return err
		}
	}

	a.cur = s
	a.logLine(rec, "%s %08X", s.kind, s.pc)
	return nil
}

// Fix a segment's base address and define its segment symbol.
func (a *assembler) place(s *section, base uint32) error {
	if s.kind == Code && base%2 != 0 {
		return &AlignmentError{Required: 2, Address: base, Symbol: s.kind.String()}
	}
	s.base, s.pc, s.placed = base, uint64(base), true
	return a.syms.Define(s.kind.String(), base)
}

// Return the current segment, implicitly opening the code segment at its
// default base if no segment has been opened.
func (a *assembler) current() (*section, error) {
	if a.cur == nil {
		if !a.text.placed {
			if err := a.place(&a.text, a.origin.Text); err != nil {
				return nil, err
			}
		}
		a.cur = &a.text
	}
	return a.cur, nil
}

func (a *assembler) placeLabel(rec *Record) error {
	s, err := a.current()
	if err != nil {
		return err
	}

	if rec.Name != "" {
		if s.pc >= addressLimit {
			return segmentError("label '%s' lies beyond the end of the address space", rec.Name)
		}
		if err := a.syms.Define(rec.Name, uint32(s.pc)); err != nil {
			return err
		}
		a.logLine(rec, "%s = %08X", rec.Name, s.pc)
	}

	switch {
	case rec.Body == "":
		return nil
	case strings.HasPrefix(rec.Body, "."):
		return a.placeData(rec)
	default:
		return a.placeInstruction(rec, rec.Body)
	}
}

func (a *assembler) placeInstruction(rec *Record, text string) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	if s.kind != Code {
		return segmentError("instruction in %s segment", s.kind)
	}

	inst, err := ParseInstruction(text, a.syms)
	if err != nil {
		return err
	}
	if s.pc+4 > addressLimit {
		return segmentError("%s segment exceeds the address space", s.kind)
	}

	a.items = append(a.items, &instruction{addr: uint32(s.pc), rec: rec, inst: inst})
	a.logLine(rec, "%08X %s Fmt:%s Func:%02X", s.pc, inst.Name, inst.Format, inst.Func)
	s.pc += 4
	return nil
}

func (a *assembler) placeData(rec *Record) error {
	s := a.cur
	if s.kind != Data {
		return segmentError("data directive in %s segment", s.kind)
	}

	dir, err := parseDirective(rec.Name, rec.Body)
	if err != nil {
		return err
	}

	addr := s.pc
	if align := uint64(dir.Type.Alignment()); addr%align != 0 {
		return &AlignmentError{Required: uint32(align), Address: uint32(addr), Symbol: rec.Name}
	}
	if addr+uint64(dir.Size()) > addressLimit {
		return segmentError("%s segment exceeds the address space", s.kind)
	}

	a.items = append(a.items, &data{addr: uint32(addr), rec: rec, dir: dir})
	a.logLine(rec, "%08X %s Len:%d", addr, dir.Type, dir.Size())
	s.pc += uint64(dir.Size())
	return nil
}

// Verify that the code and data segments occupy disjoint address ranges.
func (a *assembler) checkSegments() error {
	a.logSection("Checking segments")
	text, data := a.text.extent(), a.data.extent()
	a.log("%-5s %v", Code, text)
	a.log("%-5s %v", Data, data)
	if text.Overlaps(data) {
		a.errors = append(a.errors, &OverlapError{Code: text, Data: data})
	}
	return nil
}

// Generate machine code and data in source order.
func (a *assembler) generateCode() error {
	a.logSection("Generating code")
	for _, it := range a.items {
		var b []byte
		switch ii := it.(type) {
		case *instruction:
			word, err := Encode(ii.inst, ii.addr, a.syms)
			if err != nil {
				a.addError(ii.rec, err)
				return nil
			}
			a.code = append(a.code, word)
			b = toBytes(4, word)
			a.log("%08X-  %-11s  %s", ii.addr, byteString(b), ii.rec.Body)

		case *data:
			b = ii.dir.Bytes
			a.bytes = append(a.bytes, b...)
			a.logBytes(ii.addr, b)
		}

		rec := it.source()
		a.listing = append(a.listing, ListingLine{
			Address: it.address(),
			Bytes:   b,
			Row:     rec.Row,
			Text:    strings.TrimSpace(rec.Text),
		})
		a.sourceLines = append(a.sourceLines, SourceLine{
			Address:   it.address(),
			FileIndex: 0,
			Line:      rec.Row,
		})
	}
	return nil
}

// Append an error to the assembler's error state, tagged with the source
// line that caused it.
func (a *assembler) addError(rec *Record, err error) {
	lineErr := &LineError{Row: rec.Row, Text: strings.TrimSpace(rec.Text), Err: err}
	a.errors = append(a.errors, lineErr)
	if a.verbose {
		fmt.Fprintf(a.out, "Error in '%s' %v\n", a.filename, lineErr)
	}
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *assembler) logLine(rec *Record, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-4d | %-32s | %s\n", rec.Row, detail, strings.TrimSpace(rec.Text))
	}
}

// In verbose mode, log a series of bytes with starting address.
func (a *assembler) logBytes(addr uint32, b []byte) {
	if a.verbose {
		for i, n := 0, len(b); i < n; i += 4 {
			j := min(i+4, n)
			a.log("%08X-* %s", addr+uint32(i), byteString(b[i:j]))
		}
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
