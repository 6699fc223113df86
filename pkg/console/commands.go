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

package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lassandro/gobcomp/pkg/assembler"
	"github.com/lassandro/gobcomp/pkg/debugger"
	"github.com/lassandro/gobcomp/pkg/encoding"
	"github.com/lassandro/gobcomp/pkg/machine"
	"github.com/lassandro/gobcomp/pkg/panel"
)

type command struct {
	name  string
	usage string
	help  string
	run   func(c *Console, args *tokens) error
}

// Matched in order: a token selects the first command it is a prefix of.
var commands []command

func init() {
	commands = []command{
		{"exit", "{exit|quit}", "Stop the background loops and leave", (*Console).cmdExit},
		{"quit", "", "", (*Console).cmdExit},
		{"?", "", "", (*Console).cmdHelp},
		{"help", "{?|help}", "Show this help", (*Console).cmdHelp},
		{"address", "a[ddress]", "Console operation: set IP from IR", (*Console).cmdAddress},
		{"write", "w[rite]", "Console operation: write IR to MEM(IP)", (*Console).cmdWrite},
		{"read", "r[ead]", "Console operation: read MEM(IP)", (*Console).cmdRead},
		{"start", "s[tart]", "Console operation: start (paced run when last on the line)", (*Console).cmdStart},
		{"continue", "c[ontinue]", "Console operation: continue (paced run when last on the line)", (*Console).cmdContinue},
		{"clock", "cl[ock]", "Toggle tick mode", (*Console).cmdClock},
		{"run", "ru[n]", "Toggle run/stop mode", (*Console).cmdRun},
		{"maddress", "ma[ddress]", "Set MP from IR", (*Console).cmdMAddress},
		{"mwrite", "mw[rite] value", "Write a microcommand at MP", (*Console).cmdMWrite},
		{"mread", "mr[ead]", "Read the microcommand at MP", (*Console).cmdMRead},
		{"mdecode", "md[ecode]", "Decode the microcommand at MP", (*Console).cmdMDecode},
		{"mdecodeall", "mdecodea[ll]", "Decode the whole microprogram", (*Console).cmdMDecodeAll},
		{"state", "stat[e]", "Print the program state flags", (*Console).cmdState},
		{"io", "io [addr [value]]", "Print devices or write value to a device", (*Console).cmdIO},
		{"smartio", "smartio [addr [value]]", "Queue value until the device is not ready", (*Console).cmdSmartIO},
		{"monitor", "monitor addr", "Toggle consuming a device's output", (*Console).cmdMonitor},
		{"flag", "flag addr", "Set a device ready", (*Console).cmdFlag},
		{"awrite", "awrite [addr]", "Report writes to a memory cell", (*Console).cmdAWrite},
		{"rfrom", "rfrom addr", "Print a memory cell", (*Console).cmdRFrom},
		{"wto", "wto addr value", "Write a memory cell", (*Console).cmdWTo},
		{"accesses", "accesses", "Toggle reporting every memory access", (*Console).cmdAccesses},
		{"exe", "exe", "Run in the background until the program halts", (*Console).cmdExe},
		{"load", "load", "Enter a program in hex", (*Console).cmdLoad},
		{"asm", "{asm|assembler}", "Enter a program in assembly", (*Console).cmdAsm},
		{"assembler", "", "", (*Console).cmdAsm},
		{"sleep", "sleep value", "Delay in ms after each tick of a paced run", (*Console).cmdSleep},
		{"regs", "reg[s]", "Show the register panel", (*Console).cmdRegs},
	}
}

func matches(token string, keyword string) bool {
	return len(token) <= len(keyword) &&
		strings.EqualFold(token, keyword[:len(token)])
}

func lookup(token string) (command, bool) {
	for _, cmd := range commands {
		if matches(token, cmd.name) {
			return cmd, true
		}
	}

	return command{}, false
}

func (c *Console) dispatch(token string, args *tokens) error {
	if cmd, ok := lookup(token); ok {
		return cmd.run(c, args)
	}

	return c.literal(token)
}

// A token that is no command sets IR: a hex value that fits IR, or the
// address of a label of the last assembled program.
func (c *Console) literal(token string) error {
	width := c.emu.RegWidth(machine.REG_IR)

	digits := int(width / 4)
	if strings.HasPrefix(token, "-") {
		digits++
	}

	if encoding.IsHex(token) && len(token) <= digits {
		if value, err := encoding.DecodeHex(token, width); err == nil {
			c.emu.Register(machine.REG_IR).SetValue(value)
			return nil
		}
	}

	if addr, ok := c.labels[token]; ok {
		c.emu.Register(machine.REG_IR).SetValue(uint64(addr))
		return nil
	}

	return &UnknownCommandError{token}
}

func pulse(ok bool) error {
	if !ok {
		return ErrOperationRejected
	}

	return nil
}

func hexArg(name string, args *tokens, bits uint) (uint64, error) {
	token, ok := args.next()

	if !ok {
		return 0, &MissingArgumentError{name}
	}

	value, err := encoding.DecodeHex(token, bits)

	if err != nil {
		return 0, &MalformedArgumentError{name, token, err}
	}

	return value, nil
}

func (c *Console) deviceArg(name string, args *tokens) (int, error) {
	token, _ := args.peek()
	value, err := hexArg(name, args, machine.DEVICE_WIDTH)

	if err != nil {
		return 0, err
	}

	if _, err := c.io.Device(int(value)); err != nil {
		return 0, &MalformedArgumentError{name, token, err}
	}

	return int(value), nil
}

func (c *Console) cmdExit(args *tokens) error {
	c.exited = true
	c.Close()
	return nil
}

func (c *Console) cmdHelp(args *tokens) error {
	var builder strings.Builder

	builder.WriteString("Commands:\n")

	for _, cmd := range commands {
		if cmd.usage != "" {
			fmt.Fprintf(&builder, "  %-24s %s\n", cmd.usage, cmd.help)
		}
	}

	fmt.Fprintf(&builder, "  %-24s %s\n", "(0000-FFFF)", "Set IR to a hex value")
	fmt.Fprintf(&builder, "  %-24s %s\n", "label", "Set IR to a label of the assembled program")
	fmt.Fprintf(&builder, "  %-24s %s\n", "# ...", "Ignore the rest of the line")

	c.out.Print(builder.String())
	return nil
}

func (c *Console) cmdAddress(args *tokens) error {
	return pulse(c.emu.ExecuteSetAddr())
}

func (c *Console) cmdWrite(args *tokens) error {
	return pulse(c.emu.ExecuteWrite())
}

func (c *Console) cmdRead(args *tokens) error {
	return pulse(c.emu.ExecuteRead())
}

func (c *Console) cmdStart(args *tokens) error {
	if args.done() {
		return c.sched.Run(true)
	}

	return pulse(c.emu.ExecuteStart())
}

func (c *Console) cmdContinue(args *tokens) error {
	if args.done() {
		return c.sched.Run(false)
	}

	return pulse(c.emu.ExecuteContinue())
}

func (c *Console) cmdClock(args *tokens) error {
	if c.emu.InvertClockState() {
		c.out.Println("Tick mode: off")
	} else {
		c.out.Println("Tick mode: on")
	}

	return nil
}

func (c *Console) cmdRun(args *tokens) error {
	c.emu.InvertRunState()

	if c.emu.ProgramState(machine.STATE_W) == 1 {
		c.out.Println("Mode: run")
	} else {
		c.out.Println("Mode: stop")
	}

	return nil
}

func (c *Console) printMicro(addr uint64) {
	if c.microTitle {
		c.out.Printf("%-2s %-10s %-15s %s\n", "MP", "MC", "Label", "Decode")
		c.microTitle = false
	}

	c.out.Println(c.emu.MicroDecode(addr))
}

func (c *Console) cmdMAddress(args *tokens) error {
	if err := pulse(c.emu.ExecuteSetMP()); err != nil {
		return err
	}

	c.printMicro(c.emu.RegValue(machine.REG_MP))
	return nil
}

func (c *Console) cmdMWrite(args *tokens) error {
	value, err := hexArg("mwrite", args, machine.MICRO_WIDTH)

	if err != nil {
		return err
	}

	addr := c.emu.RegValue(machine.REG_MP)

	if err := pulse(c.emu.ExecuteMCWrite(value)); err != nil {
		return err
	}

	c.printMicro(addr)
	return nil
}

func (c *Console) cmdMRead(args *tokens) error {
	addr := c.emu.RegValue(machine.REG_MP)

	if err := pulse(c.emu.ExecuteMCRead()); err != nil {
		return err
	}

	c.printMicro(addr)
	return nil
}

func (c *Console) cmdMDecode(args *tokens) error {
	c.printMicro(c.emu.RegValue(machine.REG_MP))
	return nil
}

func (c *Console) cmdMDecodeAll(args *tokens) error {
	microcode := c.emu.MicroCode()

	for addr := uint64(0); addr < microcode.Size(); addr++ {
		if microcode.Value(addr) != 0 {
			c.printMicro(addr)
		}
	}

	return nil
}

func (c *Console) cmdState(args *tokens) error {
	var builder strings.Builder

	for i, state := range machine.States {
		if i > 0 {
			builder.WriteString(" ")
		}

		fmt.Fprintf(&builder, "%s: %d", state, c.emu.ProgramState(state))
	}

	c.out.Println(builder.String())
	return nil
}

func (c *Console) printDevices() {
	for id := 0; id < c.io.Count(); id++ {
		c.out.Println(c.io.Describe(id))
	}
}

// Parses "addr [value]" and hands value, when present, to deliver
func (c *Console) deviceWrite(
	name string, args *tokens, deliver func(id int, value uint64) error,
) error {
	if args.done() {
		c.printDevices()
		return nil
	}

	id, err := c.deviceArg(name, args)

	if err != nil {
		return err
	}

	if token, ok := args.peek(); ok && encoding.IsHex(token) {
		value, err := hexArg(name, args, machine.DEVICE_WIDTH)

		if err != nil {
			return err
		}

		if err := deliver(id, value); err != nil {
			return err
		}
	}

	c.out.Println(c.io.Describe(id))
	return nil
}

func (c *Console) cmdIO(args *tokens) error {
	return c.deviceWrite("io", args, c.io.Write)
}

func (c *Console) cmdSmartIO(args *tokens) error {
	return c.deviceWrite("smartio", args, c.io.Enqueue)
}

func (c *Console) cmdMonitor(args *tokens) error {
	id, err := c.deviceArg("monitor", args)

	if err != nil {
		return err
	}

	on, err := c.io.ToggleMonitor(id)

	if err != nil {
		return err
	}

	if on {
		c.out.Printf("Monitoring device %d\n", id)
	} else {
		c.out.Printf("Stopped monitoring device %d\n", id)
	}

	return nil
}

func (c *Console) cmdFlag(args *tokens) error {
	id, err := c.deviceArg("flag", args)

	if err != nil {
		return err
	}

	if err := c.io.Flag(id); err != nil {
		return err
	}

	c.out.Println(c.io.Describe(id))
	return nil
}

func (c *Console) cmdAWrite(args *tokens) error {
	if args.done() {
		for _, wp := range c.session.Watch.Watchpoints() {
			c.out.Printf(
				"Tracing writes to %s\n",
				encoding.ToHex(uint64(wp.Addr), machine.MEMORY_ADDR_WIDTH),
			)
		}

		return nil
	}

	addr, err := hexArg("awrite", args, machine.MEMORY_ADDR_WIDTH)

	if err != nil {
		return err
	}

	c.session.Watch.Add(uint16(addr), debugger.WriteWatch)
	c.out.Printf(
		"Tracing writes to %s\n", encoding.ToHex(addr, machine.MEMORY_ADDR_WIDTH),
	)

	return nil
}

func (c *Console) cmdRFrom(args *tokens) error {
	addr, err := hexArg("rfrom", args, machine.MEMORY_ADDR_WIDTH)

	if err != nil {
		return err
	}

	c.out.Printf(
		"MEM(%s) = %s\n",
		encoding.ToHex(addr, machine.MEMORY_ADDR_WIDTH),
		encoding.ToHex(c.emu.Memory().Value(addr), machine.MEMORY_WIDTH),
	)

	return nil
}

func (c *Console) cmdWTo(args *tokens) error {
	addr, err := hexArg("wto", args, machine.MEMORY_ADDR_WIDTH)

	if err != nil {
		return err
	}

	value, err := hexArg("wto", args, machine.MEMORY_WIDTH)

	if err != nil {
		return err
	}

	c.emu.Memory().SetValue(addr, value)
	c.out.Printf(
		"MEM(%s) <- %s\n",
		encoding.ToHex(addr, machine.MEMORY_ADDR_WIDTH),
		encoding.ToHex(value, machine.MEMORY_WIDTH),
	)

	return nil
}

func (c *Console) cmdAccesses(args *tokens) error {
	if c.session.ToggleAccesses() {
		c.out.Println("Memory access tracing: on")
	} else {
		c.out.Println("Memory access tracing: off")
	}

	return nil
}

func (c *Console) cmdExe(args *tokens) error {
	return c.sched.RunToHalt()
}

func (c *Console) cmdSleep(args *tokens) error {
	value, err := hexArg("sleep", args, 16)

	if err != nil {
		return err
	}

	c.session.SetRunPacing(time.Duration(value) * time.Millisecond)
	return nil
}

// Sets IP from an address read on the next input line
func (c *Console) readAddress(prompt string) error {
	c.out.Print(prompt)

	line, ok := c.readLine()

	if !ok {
		return io.ErrUnexpectedEOF
	}

	line = strings.TrimSpace(line)
	addr, err := encoding.DecodeHex(line, machine.MEMORY_ADDR_WIDTH)

	if err != nil {
		return &MalformedArgumentError{"load", line, err}
	}

	c.emu.Register(machine.REG_IR).SetValue(addr)
	return pulse(c.emu.ExecuteSetAddr())
}

func (c *Console) cmdLoad(args *tokens) error {
	if err := c.readAddress("Start address: "); err != nil {
		return err
	}

	c.out.Println("Enter the program in hex words, END to finish")

	for {
		line, ok := c.readLine()

		if !ok {
			return io.ErrUnexpectedEOF
		}

		line = strings.TrimSpace(line)

		var err error

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue

		case matches(line, "exit"):
			return nil

		case matches(line, "end"):
			if err = c.readAddress("Execution address: "); err == nil {
				return nil
			}

			if errors.Is(err, io.ErrUnexpectedEOF) {
				return err
			}

		case matches(line, "ip"):
			err = c.readAddress("Start address: ")

			if errors.Is(err, io.ErrUnexpectedEOF) {
				return err
			}

		default:
			var word uint64

			if word, err = encoding.DecodeHex(line, machine.MEMORY_WIDTH); err != nil {
				err = &MalformedArgumentError{"load", line, err}
				break
			}

			c.emu.Register(machine.REG_IR).SetValue(word)
			err = pulse(c.emu.ExecuteWrite())
		}

		if err != nil {
			c.Log.Println(err)
			c.out.Println("Try again")
		}
	}
}

func (c *Console) cmdAsm(args *tokens) error {
	var source strings.Builder

	c.out.Println("Enter the program, END to finish")

	for {
		line, ok := c.readLine()

		if !ok || strings.EqualFold(strings.TrimSpace(line), "END") {
			break
		}

		source.WriteString(line)
		source.WriteString("\n")
	}

	_, err := c.LoadSource(source.String())
	return err
}

// LoadSource assembles text and loads the program with IP at its start.
// Step reports are muted while the program is written.
func (c *Console) LoadSource(text string) (*assembler.Program, error) {
	program, errs := c.compile(text)

	if len(errs) > 0 {
		return nil, &AssemblyError{errs}
	}

	if err := c.LoadProgram(program); err != nil {
		return nil, err
	}

	return program, nil
}

// LoadProgram writes every word of program into memory without reporting
// the writes, then sets IP to its start address.
func (c *Console) LoadProgram(program *assembler.Program) error {
	if c.emu.Running() {
		return ErrOperationRejected
	}

	c.session.SetReporting(false)
	defer c.session.SetReporting(true)

	for _, word := range program.Words {
		c.emu.Memory().SetValue(uint64(word.Addr), uint64(word.Value))
	}

	c.emu.Register(machine.REG_IR).SetValue(uint64(program.Start))

	if err := pulse(c.emu.ExecuteSetAddr()); err != nil {
		return err
	}

	c.labels = program.Labels
	c.out.Printf(
		"Program starts at %s\n",
		encoding.ToHex(uint64(program.Start), machine.MEMORY_ADDR_WIDTH),
	)

	return nil
}

func (c *Console) cmdRegs(args *tokens) error {
	regs := make([]panel.Register, 0, machine.REG_COUNT)

	for reg := machine.Reg(0); reg < machine.REG_COUNT; reg++ {
		regs = append(regs, panel.Register{
			Name:   reg.String(),
			Value:  c.emu.RegValue(reg),
			Width:  c.emu.RegWidth(reg),
			Binary: reg == machine.REG_PS,
		})
	}

	flags := []panel.Flag{
		{Name: "N", Set: c.emu.ProgramState(machine.STATE_N) == 1},
		{Name: "Z", Set: c.emu.ProgramState(machine.STATE_Z) == 1},
		{Name: "V", Set: c.emu.ProgramState(machine.STATE_V) == 1},
		{Name: "C", Set: c.emu.ProgramState(machine.STATE_C) == 1},
		{Name: "W", Set: c.emu.ProgramState(machine.STATE_W) == 1},
		{Name: "P", Set: c.emu.ProgramState(machine.STATE_P) == 1},
	}

	c.out.Println(panel.Render(regs, flags, 4))
	return nil
}
