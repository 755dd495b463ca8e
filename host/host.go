// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the MIPS assembler.
//
// Within the host it is possible to assemble source files into ELF images,
// browse the listing and symbol table of the most recent assembly, inspect
// the headers of existing images, and adjust the assembler's settings.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/gomips/asm"
	"github.com/beevik/gomips/elfimg"
	"github.com/k0kubun/pp/v3"
)

var errQuit = errors.New("exiting program")

// A Host holds the state of an interactive assembler session.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Command
	lastArgs    []string
	settings    *settings
	printer     *pp.PrettyPrinter
	assembly    *asm.Assembly // most recent successful assembly
	filename    string        // source of the most recent assembly
	nextListing int           // next listing line to display
}

// New creates a new host.
func New() *Host {
	printer := pp.New()
	printer.SetColoringEnabled(false)

	return &Host{
		settings: newSettings(),
		printer:  printer,
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c *cmd.Command
		var args []string
		if line != "" {
			c, args, err = cmds.LookupCommand(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c, args = h.lastCmd, h.lastArgs
		}

		if c == nil {
			continue
		}
		h.lastCmd, h.lastArgs = c, args

		hc := c.Data.(*command)
		err = hc.handler(h, hc, args)
		if err != nil {
			break
		}
	}
	h.flush()
}

// Inspect displays the headers of an image file.
func (h *Host) Inspect(w io.Writer, path string) error {
	h.output = bufio.NewWriter(w)
	defer h.flush()

	img, err := elfimg.Read(path)
	if err != nil {
		return err
	}
	h.inspect(img)
	return nil
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
		h.flush()
	}
}

func (h *Host) cmdHelp(c *command, args []string) error {
	if err := cmds.GetHelp(h.output, args); err != nil {
		h.printf("%v.\n", err)
	}
	h.flush()
	return nil
}

func (h *Host) cmdAssemble(c *command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := args[0]
	if filepath.Ext(filename) == "" {
		filename += ".s"
	}
	var outPath string
	if len(args) > 1 {
		outPath = args[1]
	}

	assembly, err := asm.AssembleFile(filename, outPath, h.settings.origin(), h.settings.options(), h.output)
	if err != nil {
		switch {
		case assembly == nil:
			h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		case errors.Is(err, asm.ErrParse):
			h.printf("Failed to assemble: %s\n", filepath.Base(filename))
		default:
			h.printf("Failed to write output for '%s': %v\n", filepath.Base(filename), err)
		}
		return nil
	}

	h.assembly, h.filename, h.nextListing = assembly, filename, 0
	h.printf("Code: %d words at 0x%08X. Data: %d bytes at 0x%08X.\n",
		len(assembly.Code), assembly.TextBase, len(assembly.Data), assembly.DataBase)
	return nil
}

func (h *Host) cmdInspect(c *command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	img, err := elfimg.Read(args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.inspect(img)
	return nil
}

func (h *Host) inspect(img *elfimg.Image) {
	h.printer.Fprintln(h.output, img.Header)
	for _, p := range img.Progs {
		h.printer.Fprintln(h.output, p)
	}

	h.printf("Entry: 0x%08X\n", img.Header.Entry)
	for i, w := range img.Code {
		if i == 4 {
			h.printf("    ... %d more words\n", len(img.Code)-i)
			break
		}
		h.printf("    %08X  %08X\n", img.Progs[0].Vaddr+uint32(i)*4, w)
	}
	h.dumpData(img.Progs[1].Vaddr, img.Data, 64)
}

// Display up to limit data bytes as a hex dump.
func (h *Host) dumpData(addr uint32, b []byte, limit int) {
	if len(b) > limit {
		defer h.printf("    ... %d more bytes\n", len(b)-limit)
		b = b[:limit]
	}
	for i := 0; i < len(b); i += 16 {
		row := b[i:min(i+16, len(b))]
		chars := make([]byte, len(row))
		for j, v := range row {
			chars[j] = toPrintableChar(v)
		}
		h.printf("    %08X  % X  %s\n", addr+uint32(i), row, chars)
	}
}

func (h *Host) cmdList(c *command, args []string) error {
	if h.assembly == nil {
		h.println("No assembly available.")
		return nil
	}

	count := h.settings.ListingLines
	if len(args) > 0 {
		var err error
		count, err = stringToCount(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	listing := h.assembly.Listing
	if h.nextListing >= len(listing) {
		h.nextListing = 0
	}
	end := min(h.nextListing+count, len(listing))
	for _, l := range listing[h.nextListing:end] {
		h.print(l.String(), "\n")
	}
	h.flush()
	h.nextListing = end
	return nil
}

func (h *Host) cmdSymbols(c *command, args []string) error {
	if h.assembly == nil {
		h.println("No assembly available.")
		return nil
	}

	h.printf("Symbols in '%s':\n", filepath.Base(h.filename))
	for _, s := range h.assembly.Symbols {
		if s.Defined {
			h.printf("    %-24s 0x%08X\n", s.Name, s.Address)
		}
	}
	return nil
}

func (h *Host) cmdQuit(c *command, args []string) error {
	return errQuit
}

func (h *Host) cmdSet(c *command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		key, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		case reflect.Uint32:
			var v uint32
			v, err = stringToAddr(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int
			v, err = stringToCount(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) displayUsage(c *command) {
	if c.usage != "" {
		h.printf("Usage: %s\n", c.usage)
	} else {
		h.println("<no help text>")
	}
}
