// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elfimg

import (
	"bytes"
	"debug/elf"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestPackLayout(t *testing.T) {
	img := Pack([]uint32{0x012a4020}, 0x00400000, []byte{1, 2, 3}, 0x10010000)

	exp := decodeHex(t, `
		7F454C46 01020100 00000000 00000000
		0002 0008 00000001 00400000 00000034 00000000 00000000 0034 0020 0002 0000 0000 0000
		00000001 00000074 00400000 00400000 00000004 00000004 00000005 00000000
		00000001 00000078 10010000 10010000 00000003 00000003 00000006 00000000
		012A4020 010203`)

	got := img.Bytes()
	if !bytes.Equal(got, exp) {
		t.Errorf("image mismatch\ngot: %X\nexp: %X", got, exp)
	}
	if img.Size() != len(exp) {
		t.Errorf("size: got %d, expected %d", img.Size(), len(exp))
	}

	var buf bytes.Buffer
	n, err := img.WriteTo(&buf)
	if err != nil || n != int64(len(exp)) {
		t.Errorf("WriteTo: got %d, %v", n, err)
	}
}

func TestPackEmpty(t *testing.T) {
	img := Pack(nil, 0x1000, nil, 0x2000)
	b := img.Bytes()
	if len(b) != PayloadOff {
		t.Fatalf("size: got %d", len(b))
	}
	if img.Progs[1].Off != PayloadOff || img.Progs[0].Filesz != 0 {
		t.Errorf("unexpected program headers: %+v", img.Progs)
	}
}

func TestStandardReader(t *testing.T) {
	img := Pack([]uint32{0, 0x03e00008}, 0x00400000, []byte("hi\x00"), 0x10010000)
	f, err := elf.NewFile(bytes.NewReader(img.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if f.Class != elf.ELFCLASS32 || f.ByteOrder.String() != "BigEndian" || f.Machine != elf.EM_MIPS {
		t.Errorf("unexpected file header: %+v", f.FileHeader)
	}
	if f.Entry != 0x00400000 || len(f.Progs) != 2 {
		t.Fatalf("entry %X, %d progs", f.Entry, len(f.Progs))
	}
	if p := f.Progs[1]; p.Vaddr != 0x10010000 || p.Filesz != 3 || p.Flags != elf.PF_R|elf.PF_W {
		t.Errorf("unexpected data header: %+v", p.ProgHeader)
	}
}

func TestReadFrom(t *testing.T) {
	orig := Pack([]uint32{1, 2, 3}, 0x100, []byte{9, 8}, 0x200)

	var img Image
	n, err := img.ReadFrom(bytes.NewReader(orig.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(orig.Size()) {
		t.Errorf("read %d bytes", n)
	}
	if img.Header != orig.Header || img.Progs != orig.Progs {
		t.Error("headers differ")
	}
	if len(img.Code) != 3 || img.Code[2] != 3 || !bytes.Equal(img.Data, orig.Data) {
		t.Errorf("payload differs: %v %v", img.Code, img.Data)
	}
}

func TestReadErrors(t *testing.T) {
	good := Pack([]uint32{1}, 0, []byte{1}, 0x100).Bytes()

	corrupt := func(off int, v byte) []byte {
		b := append([]byte(nil), good...)
		b[off] = v
		return b
	}

	tests := map[string][]byte{
		"short":    good[:40],
		"magic":    corrupt(1, 'X'),
		"class":    corrupt(elf.EI_CLASS, byte(elf.ELFCLASS64)),
		"encoding": corrupt(elf.EI_DATA, byte(elf.ELFDATA2LSB)),
		"phnum":    corrupt(45, 3),
		"overrun":  good[:len(good)-1],
	}
	for name, b := range tests {
		var img Image
		if _, err := img.ReadFrom(bytes.NewReader(b)); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: expected format error, got %v", name, err)
		}
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.elf")
	if err := os.WriteFile(path, Pack([]uint32{7}, 0, nil, 0x10).Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	img, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(img.Code) != 1 || img.Code[0] != 7 {
		t.Errorf("unexpected code: %v", img.Code)
	}

	if _, err := Read(filepath.Join(t.TempDir(), "missing.elf")); err == nil {
		t.Error("expected error for missing file")
	}
}
