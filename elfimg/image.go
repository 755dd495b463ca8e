// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elfimg packages assembled code and data segments into a minimal
// big-endian ELF32 executable image for MIPS.
//
// An image consists of a 52-byte file header, two 32-byte PT_LOAD program
// headers (code, then data), the code words and the data bytes, tightly
// packed in that order. No section headers, symbol tables or string tables
// are emitted.
package elfimg

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Layout constants.
const (
	HeaderSize = 52
	ProgSize   = 32
	NumProgs   = 2
	PayloadOff = HeaderSize + NumProgs*ProgSize
	CodeFlags  = elf.PF_R | elf.PF_X
	DataFlags  = elf.PF_R | elf.PF_W
)

// ErrFormat is returned when an image cannot be parsed.
var ErrFormat = errors.New("elfimg: invalid image")

// An Image is a packaged executable.
type Image struct {
	Header elf.Header32
	Progs  [NumProgs]elf.Prog32
	Code   []uint32
	Data   []byte
}

// Pack builds an image from a code segment loaded at codeBase and a data
// segment loaded at dataBase. The entry point is the code base.
func Pack(code []uint32, codeBase uint32, data []byte, dataBase uint32) *Image {
	codeSize := uint32(len(code) * 4)
	dataSize := uint32(len(data))

	img := &Image{Code: code, Data: data}

	h := &img.Header
	copy(h.Ident[:], elf.ELFMAG)
	h.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	h.Ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	h.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	h.Ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)
	h.Type = uint16(elf.ET_EXEC)
	h.Machine = uint16(elf.EM_MIPS)
	h.Version = uint32(elf.EV_CURRENT)
	h.Entry = codeBase
	h.Phoff = HeaderSize
	h.Ehsize = HeaderSize
	h.Phentsize = ProgSize
	h.Phnum = NumProgs

	img.Progs[0] = elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    PayloadOff,
		Vaddr:  codeBase,
		Paddr:  codeBase,
		Filesz: codeSize,
		Memsz:  codeSize,
		Flags:  uint32(CodeFlags),
	}
	img.Progs[1] = elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    PayloadOff + codeSize,
		Vaddr:  dataBase,
		Paddr:  dataBase,
		Filesz: dataSize,
		Memsz:  dataSize,
		Flags:  uint32(DataFlags),
	}
	return img
}

// Size returns the number of bytes in the serialized image.
func (img *Image) Size() int {
	return PayloadOff + len(img.Code)*4 + len(img.Data)
}

// Bytes returns the serialized image.
func (img *Image) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(img.Size())
	img.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo writes the serialized image to an output stream.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	cw := &countWriter{w: w}
	if err := binary.Write(cw, binary.BigEndian, &img.Header); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.BigEndian, &img.Progs); err != nil {
		return cw.n, err
	}

	code := make([]byte, 0, len(img.Code)*4)
	for _, word := range img.Code {
		code = binary.BigEndian.AppendUint32(code, word)
	}
	if _, err := cw.Write(code); err != nil {
		return cw.n, err
	}
	_, err = cw.Write(img.Data)
	return cw.n, err
}

// ReadFrom parses a serialized image, replacing the contents of img.
func (img *Image) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	n = int64(len(b))
	if err != nil {
		return n, err
	}
	return n, img.parse(b)
}

func (img *Image) parse(b []byte) error {
	if len(b) < PayloadOff {
		return fmt.Errorf("%w: %d bytes is too short", ErrFormat, len(b))
	}

	var h elf.Header32
	var progs [NumProgs]elf.Prog32
	r := bytes.NewReader(b)
	binary.Read(r, binary.BigEndian, &h)
	binary.Read(r, binary.BigEndian, &progs)

	switch {
	case string(h.Ident[:len(elf.ELFMAG)]) != elf.ELFMAG:
		return fmt.Errorf("%w: bad magic", ErrFormat)
	case elf.Class(h.Ident[elf.EI_CLASS]) != elf.ELFCLASS32:
		return fmt.Errorf("%w: class %v", ErrFormat, elf.Class(h.Ident[elf.EI_CLASS]))
	case elf.Data(h.Ident[elf.EI_DATA]) != elf.ELFDATA2MSB:
		return fmt.Errorf("%w: encoding %v", ErrFormat, elf.Data(h.Ident[elf.EI_DATA]))
	case h.Phoff != HeaderSize || h.Phentsize != ProgSize || h.Phnum != NumProgs:
		return fmt.Errorf("%w: unexpected program header table", ErrFormat)
	}

	code, data := progs[0], progs[1]
	if code.Filesz%4 != 0 {
		return fmt.Errorf("%w: code size %d is not a multiple of 4", ErrFormat, code.Filesz)
	}
	for _, p := range progs {
		if uint64(p.Off)+uint64(p.Filesz) > uint64(len(b)) {
			return fmt.Errorf("%w: segment at offset %d overruns image", ErrFormat, p.Off)
		}
	}

	img.Header, img.Progs = h, progs
	img.Code = make([]uint32, code.Filesz/4)
	for i := range img.Code {
		img.Code[i] = binary.BigEndian.Uint32(b[code.Off+uint32(i)*4:])
	}
	img.Data = append([]byte(nil), b[data.Off:data.Off+data.Filesz]...)
	return nil
}

// Read loads an image from a file.
func Read(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img := new(Image)
	if _, err := img.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
