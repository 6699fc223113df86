// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package console implements the operator console of the basic computer:
// front panel operations, program loading, paced and batch runs, simulated
// peripherals and per-step tracing.
package console

import (
	"bufio"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/lassandro/gobcomp/pkg/assembler"
	"github.com/lassandro/gobcomp/pkg/config"
	"github.com/lassandro/gobcomp/pkg/machine"
)

type Console struct {
	// Receives the error of every failing token
	Log *log.Logger

	emu     Emulator
	compile CompileFunc
	session *Session
	out     *Output
	io      *Peripherals
	sched   *Scheduler
	trace   *Tracer

	input      *bufio.Scanner
	labels     map[string]uint16
	microTitle bool
	exited     bool
	closeOnce  sync.Once
}

func New(
	cfg *config.Config,
	emu Emulator,
	devices []Device,
	compile CompileFunc,
	in io.Reader,
	out io.Writer,
) *Console {
	if compile == nil {
		compile = assembler.Compile
	}

	c := &Console{
		Log:     log.New(os.Stderr, "error: ", 0),
		emu:     emu,
		compile: compile,
		session: NewSession(cfg),
		out:     NewOutput(out),
		input:   bufio.NewScanner(in),
		labels:  make(map[string]uint16),
	}

	c.io = NewPeripherals(devices, cfg, c.out)
	c.sched = NewScheduler(emu, c.session, cfg, c.Log)
	c.trace = NewTracer(emu, c.session, c.out)

	emu.AddDestination(machine.SIGNAL_STORE, c.trace.store)
	emu.AddDestination(machine.SIGNAL_LOAD, c.trace.load)
	emu.SetStepStartListener(c.trace.stepStart)
	emu.SetStepEndListener(func() {
		c.sched.stopped()
		c.trace.stepEnd()
	})
	emu.SetTickFinishListener(c.sched.tick)

	return c
}

func (c *Console) Session() *Session {
	return c.session
}

func (c *Console) Peripherals() *Peripherals {
	return c.io
}

func (c *Console) Scheduler() *Scheduler {
	return c.sched
}

// Start launches the reconciliation poller.
func (c *Console) Start() {
	c.io.Start()
}

// Close stops every background loop. It is safe to call more than once.
func (c *Console) Close() {
	c.closeOnce.Do(func() {
		c.sched.Close()
		c.io.Close()
	})
}

func (c *Console) Exited() bool {
	return c.exited
}

func (c *Console) readLine() (string, bool) {
	if !c.input.Scan() {
		return "", false
	}

	return c.input.Text(), true
}

// Run reads and processes command lines until the input ends or the
// operator exits. prompt is printed before each line when not empty.
func (c *Console) Run(prompt string) {
	for !c.exited {
		if prompt != "" {
			c.out.Print(prompt)
		}

		line, ok := c.readLine()

		if !ok {
			break
		}

		c.ProcessLine(line)
	}
}

type tokens struct {
	list []string
	pos  int
}

// Reports whether no arguments remain. A comment ends the line.
func (t *tokens) done() bool {
	return t.pos >= len(t.list) || strings.HasPrefix(t.list[t.pos], "#")
}

func (t *tokens) next() (string, bool) {
	if t.done() {
		return "", false
	}

	t.pos++

	return t.list[t.pos-1], true
}

func (t *tokens) peek() (string, bool) {
	if t.done() {
		return "", false
	}

	return t.list[t.pos], true
}

// ProcessLine runs every token of line in order. A failing token is logged
// and the rest of the line still runs. The errors are returned in order.
func (c *Console) ProcessLine(line string) (errs []error) {
	args := &tokens{list: strings.Fields(line)}

	c.session.resetTitle()
	c.microTitle = true

	for !c.exited {
		tok, ok := args.next()

		if !ok {
			break
		}

		if err := c.dispatch(tok, args); err != nil {
			c.Log.Println(err)
			errs = append(errs, err)
		}
	}

	return errs
}
