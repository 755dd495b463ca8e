// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/beevik/gomips/asm"
	"github.com/beevik/gomips/host"
	"github.com/beevik/term"
	"golang.org/x/sync/errgroup"
)

var (
	output   string
	writeMap bool
	listing  bool
	verbose  bool
	textBase string
	dataBase string
	jobs     int
	dump     string
	script   string
)

func init() {
	flag.StringVar(&output, "o", "", "output image (single input only)")
	flag.BoolVar(&writeMap, "map", false, "write a source map next to each image")
	flag.BoolVar(&listing, "l", false, "print a listing of each assembly")
	flag.BoolVar(&verbose, "v", false, "verbose assembler output")
	flag.StringVar(&textBase, "text", "", "default .text base address")
	flag.StringVar(&dataBase, "data", "", "default .data base address")
	flag.IntVar(&jobs, "j", runtime.NumCPU(), "number of files to assemble in parallel")
	flag.StringVar(&dump, "dump", "", "display the headers of an image file")
	flag.StringVar(&script, "script", "", "run host commands from a file")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: gomips [options] [file.s] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if dump != "" {
		if err := host.New().Inspect(os.Stdout, dump); err != nil {
			exitOnError(err)
		}
		return
	}

	if script != "" {
		file, err := os.Open(script)
		if err != nil {
			exitOnError(err)
		}
		host.New().RunCommands(file, os.Stdout, false)
		file.Close()
		return
	}

	// Assemble files named on the command line.
	args := flag.Args()
	if len(args) > 0 {
		if output != "" && len(args) > 1 {
			exitOnError(errors.New("-o requires a single input file"))
		}
		origin, err := parseOrigin()
		if err != nil {
			exitOnError(err)
		}
		if !assembleFiles(args, origin, options()) {
			os.Exit(1)
		}
		return
	}

	// Run commands interactively.
	host.New().RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// Assemble each file, writing its output once all files are done so that
// the results appear in command-line order.
func assembleFiles(paths []string, origin asm.Origin, opts asm.Option) bool {
	outs := make([]bytes.Buffer, len(paths))
	failed := make([]bool, len(paths))

	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			out := &outs[i]
			assembly, err := asm.AssembleFile(path, output, origin, opts, out)
			if err != nil {
				failed[i] = true
				fmt.Fprintf(out, "Failed to assemble '%s': %v\n", path, err)
				return nil
			}
			if listing {
				for _, l := range assembly.Listing {
					fmt.Fprintln(out, l)
				}
			}
			return nil
		})
	}
	g.Wait()

	ok := true
	for i := range paths {
		os.Stdout.Write(outs[i].Bytes())
		if failed[i] {
			ok = false
		}
	}
	return ok
}

func parseOrigin() (asm.Origin, error) {
	origin := asm.DefaultOrigin
	for _, f := range []struct {
		s string
		v *uint32
	}{{textBase, &origin.Text}, {dataBase, &origin.Data}} {
		if f.s == "" {
			continue
		}
		v, err := strconv.ParseUint(f.s, 0, 32)
		if err != nil {
			return origin, fmt.Errorf("invalid address '%s'", f.s)
		}
		*f.v = uint32(v)
	}
	return origin, nil
}

func options() asm.Option {
	var o asm.Option
	if verbose {
		o |= asm.Verbose
	}
	if writeMap {
		o |= asm.WriteMap
	}
	return o
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
