// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

// A command describes a host command and the handler that carries it out.
type command struct {
	name        string
	brief       string
	description string
	usage       string
	handler     func(h *Host, c *command, args []string) error
}

var cmds *cmd.Tree

func init() {
	// The tree is built here, since cmdHelp refers back to it.
	commands := []*command{
		{
			name:        "help",
			brief:       "Display help for a command",
			description: "Display help for a command.",
			usage:       "help [<command>]",
			handler:     (*Host).cmdHelp,
		},
		{
			name:  "assemble",
			brief: "Assemble a file and save the image",
			description: "Run the assembler on the specified file, producing" +
				" an ELF image if successful. The image is written next to the" +
				" source file unless an output filename is given. When the" +
				" WriteMap setting is enabled, a source map is written too.",
			usage:   "assemble <filename> [<output>]",
			handler: (*Host).cmdAssemble,
		},
		{
			name:  "inspect",
			brief: "Display the headers of an image file",
			description: "Read an ELF image from disk and display its file" +
				" header, its program headers and the start of each segment.",
			usage:   "inspect <filename>",
			handler: (*Host).cmdInspect,
		},
		{
			name:  "list",
			brief: "List the most recent assembly",
			description: "Display the address, encoded bytes and source line" +
				" of each instruction and data directive in the most recently" +
				" assembled file. Repeating the command continues the listing.",
			usage:   "list [<count>]",
			handler: (*Host).cmdList,
		},
		{
			name:        "quit",
			brief:       "Quit the program",
			description: "Quit the program.",
			usage:       "quit",
			handler:     (*Host).cmdQuit,
		},
		{
			name:  "set",
			brief: "Set a configuration variable",
			description: "Set the value of a configuration variable. Type the set" +
				" command without a variable name or value to display the current" +
				" values of all configuration variables.",
			usage:   "set [<var> <value>]",
			handler: (*Host).cmdSet,
		},
		{
			name:  "symbols",
			brief: "Display the symbol table",
			description: "Display every symbol defined by the most recently" +
				" assembled file, ordered by address.",
			usage:   "symbols",
			handler: (*Host).cmdSymbols,
		},
	}

	cmds = cmd.NewTree(cmd.TreeDescriptor{Name: "gomips"})
	for _, c := range commands {
		cmds.AddCommand(cmd.CommandDescriptor{
			Name:        c.name,
			Brief:       c.brief,
			Description: c.description,
			Usage:       c.usage,
			Data:        c,
		})
	}
}
