// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"runtime/debug"
	"runtime/pprof"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// CmdFn represents a console command handler.
type CmdFn func(term *term.Terminal, arg []string) (res string, err error)

// Cmd represents a console command.
type Cmd struct {
	// Name is the command name
	Name string
	// Args is the number of expected arguments
	Args int
	// Pattern is the command line matching pattern, capturing arguments
	Pattern *regexp.Regexp
	// Syntax is the argument syntax shown in the help
	Syntax string
	// Help is the command description
	Help string
	// Fn is the command handler
	Fn CmdFn
}

var cmds = make(map[string]*Cmd)

// Add registers a terminal interface command.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Usage returns the formatted help of all registered commands.
func Usage() string {
	var names []string
	var buf bytes.Buffer

	for name := range cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	t := tabwriter.NewWriter(&buf, 16, 8, 0, '\t', tabwriter.TabIndent)

	for _, name := range names {
		c := cmds[name]
		_, _ = fmt.Fprintf(t, "%s %s\t # %s\n", c.Name, c.Syntax, c.Help)
	}

	_ = t.Flush()

	return buf.String()
}

// Handle parses a console command line and invokes the handler registered
// for it.
func Handle(t *term.Terminal, line string) (err error) {
	var match *Cmd
	var arg []string

	if line = strings.TrimSpace(line); line == "" {
		return
	}

	for _, c := range cmds {
		if c.Pattern == nil {
			if line == c.Name {
				match = c
				break
			}

			continue
		}

		if m := c.Pattern.FindStringSubmatch(line); len(m) == c.Args+1 {
			match = c
			arg = m[1:]
			break
		}
	}

	if match == nil {
		return fmt.Errorf("unknown command, type `help`")
	}

	res, err := match.Fn(t, arg)

	if res != "" {
		fmt.Fprintln(t, res)
	}

	return
}

func init() {
	Add(Cmd{
		Name: "help",
		Help: "this help",
		Fn:   helpCmd,
	})

	Add(Cmd{
		Name:    "exit, quit",
		Args:    1,
		Pattern: regexp.MustCompile(`^(exit|quit)$`),
		Help:    "close session",
		Fn:      exitCmd,
	})

	Add(Cmd{
		Name: "stack",
		Help: "stack trace of current goroutine",
		Fn:   stackCmd,
	})

	Add(Cmd{
		Name: "stackall",
		Help: "stack trace of all goroutines",
		Fn:   stackallCmd,
	})
}

func helpCmd(_ *term.Terminal, _ []string) (string, error) {
	return Usage(), nil
}

func exitCmd(_ *term.Terminal, _ []string) (string, error) {
	return "logout", io.EOF
}

func stackCmd(_ *term.Terminal, _ []string) (string, error) {
	return string(debug.Stack()), nil
}

func stackallCmd(_ *term.Terminal, _ []string) (string, error) {
	buf := new(bytes.Buffer)
	_ = pprof.Lookup("goroutine").WriteTo(buf, 1)

	return buf.String(), nil
}
