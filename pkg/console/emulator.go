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
	"github.com/lassandro/gobcomp/pkg/assembler"
	"github.com/lassandro/gobcomp/pkg/machine"
)

// Emulator is the machine driven by the console. Every Execute operation is
// a single console pulse that returns false when the machine is already
// running. StartStart and StartContinue begin a run on the emulator's own
// goroutine and return once it has been accepted.
type Emulator interface {
	ExecuteSetAddr() bool
	ExecuteWrite() bool
	ExecuteRead() bool
	ExecuteStart() bool
	ExecuteContinue() bool
	ExecuteSetMP() bool
	ExecuteMCWrite(value uint64) bool
	ExecuteMCRead() bool

	StartStart() bool
	StartContinue() bool
	Running() bool

	InvertClockState() bool
	InvertRunState()
	ClockState() bool

	Register(reg machine.Reg) *machine.Register
	RegValue(reg machine.Reg) uint64
	RegWidth(reg machine.Reg) uint
	Memory() *machine.Memory
	MicroCode() *machine.Memory
	MicroDecode(addr uint64) string
	ProgramState(state machine.State) uint64

	AddDestination(signal machine.Signal, fn func(uint64))
	SetStepStartListener(fn func())
	SetStepEndListener(fn func())
	SetTickFinishListener(fn func())
}

// Device is one I/O channel's readiness and data cell.
type Device interface {
	IsReady() bool
	SetReady()
	SetData(value uint64)
	Data() uint64
}

// CompileFunc turns program text into a loadable program or an ordered
// error list.
type CompileFunc func(text string) (*assembler.Program, []error)

// Devices adapts the machine's I/O controllers.
func Devices(ctrls []*machine.Device) []Device {
	devices := make([]Device, len(ctrls))

	for i, ctrl := range ctrls {
		devices[i] = ctrl
	}

	return devices
}
