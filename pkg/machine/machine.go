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

package machine

import (
	"sync"
	"sync/atomic"
)

type Machine struct {
	registers [REG_COUNT]Register
	memory    *Memory
	microcode *Memory
	devices   []*Device

	// true while whole instructions are executed, false in tick mode
	clock   atomic.Bool
	running atomic.Bool

	// set by HLT and consumed at the end of the instruction
	halted bool

	mu           sync.RWMutex
	destinations map[Signal][]func(uint64)
	stepStart    func()
	stepEnd      func()
	tickFinish   func()
}

func New(devices int) *Machine {
	mc := &Machine{
		memory:       newMemory(MEMORY_ADDR_WIDTH, MEMORY_WIDTH),
		microcode:    newMemory(MICRO_ADDR_WIDTH, MICRO_WIDTH),
		devices:      make([]*Device, devices),
		destinations: make(map[Signal][]func(uint64)),
	}

	for i := range mc.registers {
		mc.registers[i].width = regWidths[i]
	}

	for i := range mc.devices {
		mc.devices[i] = &Device{}
	}

	mc.clock.Store(true)
	mc.LoadMicroProgram()

	return mc
}

// Restores the default microprogram
func (mc *Machine) LoadMicroProgram() {
	for addr := uint64(0); addr < mc.microcode.Size(); addr++ {
		mc.microcode.SetValue(addr, 0)
	}

	for _, entry := range microProgram {
		mc.microcode.SetValue(entry.addr, entry.word)
	}
}

func (mc *Machine) Register(reg Reg) *Register {
	return &mc.registers[reg]
}

func (mc *Machine) RegValue(reg Reg) uint64 {
	return mc.registers[reg].Value()
}

func (mc *Machine) RegWidth(reg Reg) uint {
	return mc.registers[reg].Width()
}

func (mc *Machine) Memory() *Memory {
	return mc.memory
}

func (mc *Machine) MicroCode() *Memory {
	return mc.microcode
}

func (mc *Machine) IOCtrls() []*Device {
	return mc.devices
}

func (mc *Machine) ProgramState(state State) uint64 {
	return (mc.RegValue(REG_PS) >> uint(state)) & 0x1
}

func (mc *Machine) setState(state State, on bool) {
	ps := mc.RegValue(REG_PS) &^ (1 << uint(state))

	if on {
		ps |= 1 << uint(state)
	}

	mc.registers[REG_PS].SetValue(ps)
}

func (mc *Machine) ClockState() bool {
	return mc.clock.Load()
}

// Toggles between whole instruction and tick execution and returns the new
// clock state
func (mc *Machine) InvertClockState() bool {
	for {
		old := mc.clock.Load()
		if mc.clock.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Toggles the run/stop mode. Clearing it while running stops the machine at
// the end of the current instruction.
func (mc *Machine) InvertRunState() {
	mc.setState(STATE_W, mc.ProgramState(STATE_W) == 0)
}

func (mc *Machine) Running() bool {
	return mc.running.Load()
}

func (mc *Machine) AddDestination(signal Signal, fn func(uint64)) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.destinations[signal] = append(mc.destinations[signal], fn)
}

func (mc *Machine) SetStepStartListener(fn func()) {
	mc.mu.Lock()
	mc.stepStart = fn
	mc.mu.Unlock()
}

func (mc *Machine) SetStepEndListener(fn func()) {
	mc.mu.Lock()
	mc.stepEnd = fn
	mc.mu.Unlock()
}

func (mc *Machine) SetTickFinishListener(fn func()) {
	mc.mu.Lock()
	mc.tickFinish = fn
	mc.mu.Unlock()
}

func (mc *Machine) emit(signal Signal, value uint64) {
	mc.mu.RLock()
	destinations := mc.destinations[signal]
	mc.mu.RUnlock()

	for _, fn := range destinations {
		fn(value)
	}
}

func (mc *Machine) notify(listener *func()) {
	mc.mu.RLock()
	fn := *listener
	mc.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

// Console operations. Each one returns false without side effects when the
// machine is already running.

func (mc *Machine) pulse(operation func()) bool {
	if !mc.running.CompareAndSwap(false, true) {
		return false
	}

	mc.notify(&mc.stepStart)
	operation()
	mc.notify(&mc.stepEnd)
	mc.running.Store(false)

	return true
}

func (mc *Machine) ExecuteSetAddr() bool {
	return mc.pulse(func() {
		mc.registers[REG_IP].SetValue(mc.RegValue(REG_IR))
	})
}

func (mc *Machine) ExecuteWrite() bool {
	return mc.pulse(func() {
		mc.registers[REG_AR].SetValue(mc.RegValue(REG_IP))
		mc.registers[REG_DR].SetValue(mc.RegValue(REG_IR))
		mc.store(mc.RegValue(REG_DR))
		mc.registers[REG_IP].SetValue(mc.RegValue(REG_IP) + 1)
	})
}

func (mc *Machine) ExecuteRead() bool {
	return mc.pulse(func() {
		mc.registers[REG_AR].SetValue(mc.RegValue(REG_IP))
		mc.registers[REG_DR].SetValue(mc.load())
		mc.registers[REG_IP].SetValue(mc.RegValue(REG_IP) + 1)
	})
}

func (mc *Machine) ExecuteSetMP() bool {
	return mc.pulse(func() {
		mc.registers[REG_MP].SetValue(mc.RegValue(REG_IR))
	})
}

func (mc *Machine) ExecuteMCWrite(value uint64) bool {
	return mc.pulse(func() {
		mp := mc.RegValue(REG_MP)
		mc.registers[REG_MR].SetValue(value)
		mc.microcode.SetValue(mp, mc.RegValue(REG_MR))
		mc.registers[REG_MP].SetValue(mp + 1)
	})
}

func (mc *Machine) ExecuteMCRead() bool {
	return mc.pulse(func() {
		mp := mc.RegValue(REG_MP)
		mc.registers[REG_MR].SetValue(mc.microcode.Value(mp))
		mc.registers[REG_MP].SetValue(mp + 1)
	})
}

// Runs synchronously on the calling goroutine
func (mc *Machine) ExecuteStart() bool {
	if !mc.running.CompareAndSwap(false, true) {
		return false
	}

	mc.run(true)
	return true
}

func (mc *Machine) ExecuteContinue() bool {
	if !mc.running.CompareAndSwap(false, true) {
		return false
	}

	mc.run(false)
	return true
}

// Runs on a new goroutine and returns once the run has been accepted
func (mc *Machine) StartStart() bool {
	if !mc.running.CompareAndSwap(false, true) {
		return false
	}

	go mc.run(true)
	return true
}

func (mc *Machine) StartContinue() bool {
	if !mc.running.CompareAndSwap(false, true) {
		return false
	}

	go mc.run(false)
	return true
}

func (mc *Machine) reset() {
	for _, reg := range []Reg{REG_AC, REG_BR, REG_DR, REG_CR, REG_SP, REG_AR, REG_MP} {
		mc.registers[reg].SetValue(0)
	}

	mc.registers[REG_PS].SetValue(mc.RegValue(REG_PS) & (1 << uint(STATE_W)))
	mc.halted = false
}

// Must only be called by the goroutine that set running
func (mc *Machine) run(start bool) {
	if start {
		mc.reset()
	}

	mc.notify(&mc.stepStart)
	mc.setState(STATE_P, true)

	for {
		boundary, stop := mc.tick()
		mc.notify(&mc.tickFinish)

		if stop {
			break
		}

		if mc.ProgramState(STATE_W) == 0 && (boundary || !mc.ClockState()) {
			break
		}
	}

	mc.setState(STATE_P, false)
	mc.notify(&mc.stepEnd)
	mc.running.Store(false)
}

func (mc *Machine) load() uint64 {
	value := mc.memory.Value(mc.RegValue(REG_AR))
	mc.emit(SIGNAL_LOAD, value)
	return value
}

func (mc *Machine) store(value uint64) {
	mc.memory.SetValue(mc.RegValue(REG_AR), value)
	mc.emit(SIGNAL_STORE, value&0xFFFF)
}
