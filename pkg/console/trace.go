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
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lassandro/gobcomp/pkg/encoding"
	"github.com/lassandro/gobcomp/pkg/machine"
)

var traceRegs = []machine.Reg{
	machine.REG_IP,
	machine.REG_CR,
	machine.REG_AR,
	machine.REG_DR,
	machine.REG_SP,
	machine.REG_BR,
	machine.REG_AC,
}

// Tracer turns emulator notifications into the per-step report: one
// register row per step followed by the memory cells the step wrote.
type Tracer struct {
	emu     Emulator
	session *Session
	out     *Output

	mu sync.Mutex
	// captured when the step starts
	clock   bool
	saved   uint64
	changes []uint64
}

func NewTracer(emu Emulator, session *Session, out *Output) *Tracer {
	return &Tracer{emu: emu, session: session, out: out}
}

func (t *Tracer) memory(addr uint64) string {
	return encoding.ToHex(addr, machine.MEMORY_ADDR_WIDTH) + ";" +
		encoding.ToHex(t.emu.Memory().Value(addr), machine.MEMORY_WIDTH)
}

func (t *Tracer) store(value uint64) {
	addr := t.emu.RegValue(machine.REG_AR)

	if t.session.Accesses() || t.session.Watch.Write(uint16(addr)) {
		t.out.Printf(
			"STORE: %s %s\n",
			encoding.ToHex(addr, machine.MEMORY_ADDR_WIDTH),
			encoding.ToHex(value, machine.MEMORY_WIDTH),
		)
	}

	t.mu.Lock()
	if !slices.Contains(t.changes, addr) {
		t.changes = append(t.changes, addr)
	}
	t.mu.Unlock()
}

func (t *Tracer) load(value uint64) {
	addr := t.emu.RegValue(machine.REG_AR)

	if t.session.Accesses() || t.session.Watch.Read(uint16(addr)) {
		t.out.Printf(
			"LOAD: %s %s\n",
			encoding.ToHex(addr, machine.MEMORY_ADDR_WIDTH),
			encoding.ToHex(value, machine.MEMORY_WIDTH),
		)
	}
}

// Changes returns the addresses written since the step started, in order of
// their first write.
func (t *Tracer) Changes() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.changes)
}

func (t *Tracer) stepStart() {
	clock := t.emu.ClockState()

	pointer := machine.REG_MP
	if clock {
		pointer = machine.REG_IP
	}

	t.mu.Lock()
	t.changes = t.changes[:0]
	t.clock = clock
	t.saved = t.emu.RegValue(pointer)
	t.mu.Unlock()

	if t.session.Reporting() && t.session.takeTitle() {
		t.out.Println(t.title(clock))
	}
}

func (t *Tracer) stepEnd() {
	t.mu.Lock()
	clock, saved := t.clock, t.saved
	changes := t.changes
	t.changes = nil
	t.mu.Unlock()

	if !t.session.Reporting() {
		return
	}

	row := t.row(clock, saved)

	var report strings.Builder

	switch {
	case !clock:
		row += ";" + encoding.ToHex(
			t.emu.RegValue(machine.REG_MP), t.emu.RegWidth(machine.REG_MP),
		)
		report.WriteString(row + "\n")

		for _, addr := range changes {
			fmt.Fprintf(&report, "%*s%s\n", len(row)+1, ";", t.memory(addr))
		}

	case len(changes) == 0:
		report.WriteString(row + ";;\n")

	default:
		report.WriteString(row + ";" + t.memory(changes[0]) + "\n")

		for _, addr := range changes[1:] {
			fmt.Fprintf(&report, "%*s%s\n", len(row)+1, ";", t.memory(addr))
		}
	}

	t.out.Print(report.String())
}

func (t *Tracer) title(clock bool) string {
	var builder strings.Builder

	if clock {
		builder.WriteString("Addr;Value")
	} else {
		builder.WriteString("MP;MC")
	}

	for _, reg := range traceRegs {
		builder.WriteString(";" + reg.String())
	}

	builder.WriteString(";NZVC")

	if clock {
		builder.WriteString(";Addr;Value")
	} else {
		builder.WriteString(";MP")
	}

	return builder.String()
}

func (t *Tracer) row(clock bool, saved uint64) string {
	var builder strings.Builder

	if clock {
		builder.WriteString(t.memory(saved))
	} else {
		builder.WriteString(encoding.ToHex(saved, machine.MICRO_ADDR_WIDTH))
		builder.WriteString(";")
		builder.WriteString(encoding.ToHex(
			t.emu.MicroCode().Value(saved), machine.MICRO_WIDTH,
		))
	}

	for _, reg := range traceRegs {
		builder.WriteString(";")
		builder.WriteString(encoding.ToHex(t.emu.RegValue(reg), t.emu.RegWidth(reg)))
	}

	builder.WriteString(";")
	builder.WriteString(encoding.ToBinary(t.emu.RegValue(machine.REG_PS)&0xF, 4))

	return builder.String()
}
