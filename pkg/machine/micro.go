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
	"github.com/lassandro/gobcomp/pkg/encoding"
)

type microEntry struct {
	addr  uint64
	word  uint64
	label string
}

func microWord(kind, next uint64) uint64 {
	return kind | (next << 8)
}

var microProgram = []microEntry{
	{MP_FETCH, microWord(MICRO_FETCH, MP_DECODE), "INFETCH"},
	{MP_DECODE, microWord(MICRO_DECODE, MP_ADDR), "DECODE"},
	{MP_ADDR, microWord(MICRO_ADDR, MP_READ), "OPADDR"},
	{MP_READ, microWord(MICRO_READ, MP_EXEC), "RDVALUE"},
	{MP_EXEC, microWord(MICRO_EXEC, MP_END), "EXEC"},
	{MP_WRITE, microWord(MICRO_WRITE, MP_END), "WRVALUE"},
	{MP_END, microWord(MICRO_END, MP_FETCH), "INSTREND"},
}

// Executes the microcommand at MP. boundary is set when an instruction has
// completed, stop when the machine must halt.
func (mc *Machine) tick() (boundary bool, stop bool) {
	mp := mc.RegValue(REG_MP)
	word := mc.microcode.Value(mp)
	mc.registers[REG_MR].SetValue(word)

	next := (word >> 8) & 0xFF

	switch word & 0xFF {
	case MICRO_STOP:
		return false, true

	case MICRO_FETCH:
		mc.registers[REG_AR].SetValue(mc.RegValue(REG_IP))
		mc.registers[REG_DR].SetValue(mc.load())
		mc.registers[REG_CR].SetValue(mc.RegValue(REG_DR))
		mc.registers[REG_IP].SetValue(mc.RegValue(REG_IP) + 1)

	case MICRO_DECODE:
		next = mc.decode()

	case MICRO_ADDR:
		next = mc.address()

	case MICRO_READ:
		mc.registers[REG_DR].SetValue(mc.load())

	case MICRO_EXEC:
		next = mc.execute()

	case MICRO_WRITE:
		mc.store(mc.RegValue(REG_DR))

	case MICRO_END:
		boundary = true
		stop = mc.halted
		mc.halted = false
	}

	mc.registers[REG_MP].SetValue(next)
	return boundary, stop
}

func isImmediate(cr uint64) bool {
	return cr&0x800 != 0 && (cr>>8)&0x7 == MODE_IMMEDIATE
}

func (mc *Machine) decode() uint64 {
	switch mc.RegValue(REG_CR) >> 12 {
	case 0x0, OP_IO, OP_BR, OP_RES:
		return MP_EXEC
	}

	return MP_ADDR
}

func (mc *Machine) address() uint64 {
	cr := mc.RegValue(REG_CR)
	offset := encoding.SignExtend(cr&0xFF, 8)

	if cr&0x800 == 0 {
		mc.registers[REG_AR].SetValue(cr & 0x7FF)
	} else {
		switch (cr >> 8) & 0x7 {
		case MODE_INDIRECT:
			mc.registers[REG_AR].SetValue(mc.RegValue(REG_IP) + offset)
			mc.registers[REG_DR].SetValue(mc.load())
			mc.registers[REG_AR].SetValue(mc.RegValue(REG_DR))

		case MODE_STACK:
			mc.registers[REG_AR].SetValue(mc.RegValue(REG_SP) + offset)

		case MODE_IMMEDIATE:
			mc.registers[REG_DR].SetValue(offset)
			return MP_EXEC

		default:
			mc.registers[REG_AR].SetValue(mc.RegValue(REG_IP) + offset)
		}
	}

	switch cr >> 12 {
	case OP_ST, OP_JUMP, OP_CALL:
		return MP_EXEC
	}

	return MP_READ
}

func (mc *Machine) flag(state State) uint64 {
	return mc.ProgramState(state)
}

func (mc *Machine) setNZ(value uint64) {
	mc.setState(STATE_N, value&0x8000 != 0)
	mc.setState(STATE_Z, value&0xFFFF == 0)
}

func (mc *Machine) setAC(value uint64) {
	mc.registers[REG_AC].SetValue(value)
	mc.setNZ(value)
}

func (mc *Machine) add(a, b, carry uint64) {
	sum := a + b + carry
	result := sum & 0xFFFF

	mc.setState(STATE_C, sum > 0xFFFF)
	mc.setState(STATE_V, (a^result)&(b^result)&0x8000 != 0)
	mc.setAC(result)
}

func (mc *Machine) push(value uint64) {
	mc.registers[REG_SP].SetValue(mc.RegValue(REG_SP) - 1)
	mc.registers[REG_AR].SetValue(mc.RegValue(REG_SP))
	mc.store(value)
}

func (mc *Machine) pop() uint64 {
	mc.registers[REG_AR].SetValue(mc.RegValue(REG_SP))
	value := mc.load()
	mc.registers[REG_SP].SetValue(mc.RegValue(REG_SP) + 1)
	return value
}

func (mc *Machine) execute() uint64 {
	cr := mc.RegValue(REG_CR)

	switch cr >> 12 {
	case 0x0:
		mc.executeAddressless(cr)
		return MP_END
	case OP_IO:
		mc.executeIO(cr)
		return MP_END
	case OP_BR:
		mc.executeBranch(cr)
		return MP_END
	case OP_RES:
		return MP_END
	}

	ac := mc.RegValue(REG_AC)
	dr := mc.RegValue(REG_DR)

	switch cr >> 12 {
	case OP_AND:
		mc.setState(STATE_V, false)
		mc.setAC(ac & dr)

	case OP_OR:
		mc.setState(STATE_V, false)
		mc.setAC(ac | dr)

	case OP_ADD:
		mc.add(ac, dr, 0)

	case OP_ADC:
		mc.add(ac, dr, mc.flag(STATE_C))

	case OP_SUB:
		mc.add(ac, ^dr&0xFFFF, 1)

	case OP_CMP:
		mc.add(ac, ^dr&0xFFFF, 1)
		mc.registers[REG_AC].SetValue(ac)

	case OP_LOOP:
		if isImmediate(cr) {
			break
		}

		dr = (dr - 1) & 0xFFFF
		mc.registers[REG_DR].SetValue(dr)

		if int16(dr) <= 0 {
			mc.registers[REG_IP].SetValue(mc.RegValue(REG_IP) + 1)
		}

		return MP_WRITE

	case OP_LD:
		mc.setState(STATE_V, false)
		mc.setAC(dr)

	case OP_SWAM:
		if isImmediate(cr) {
			break
		}

		mc.registers[REG_DR].SetValue(ac)
		mc.setAC(dr)

		return MP_WRITE

	case OP_JUMP:
		if !isImmediate(cr) {
			mc.registers[REG_IP].SetValue(mc.RegValue(REG_AR))
		}

	case OP_CALL:
		if !isImmediate(cr) {
			target := mc.RegValue(REG_AR)
			mc.push(mc.RegValue(REG_IP))
			mc.registers[REG_IP].SetValue(target)
		}

	case OP_ST:
		if isImmediate(cr) {
			break
		}

		mc.registers[REG_DR].SetValue(ac)
		return MP_WRITE
	}

	return MP_END
}

func (mc *Machine) executeAddressless(cr uint64) {
	ac := mc.RegValue(REG_AC)

	switch cr {
	case INSTR_HLT:
		mc.halted = true

	case INSTR_CLA:
		mc.setState(STATE_V, false)
		mc.setAC(0)

	case INSTR_NOT:
		mc.setState(STATE_V, false)
		mc.setAC(^ac)

	case INSTR_CLC:
		mc.setState(STATE_C, false)

	case INSTR_CMC:
		mc.setState(STATE_C, mc.flag(STATE_C) == 0)

	case INSTR_ROL:
		carry := mc.flag(STATE_C)
		mc.setState(STATE_C, ac&0x8000 != 0)
		mc.setAC(ac<<1 | carry)
		mc.setState(STATE_V, mc.flag(STATE_N) != mc.flag(STATE_C))

	case INSTR_ROR:
		carry := mc.flag(STATE_C)
		mc.setState(STATE_C, ac&0x1 != 0)
		mc.setAC(ac>>1 | carry<<15)
		mc.setState(STATE_V, mc.flag(STATE_N) != mc.flag(STATE_C))

	case INSTR_ASL:
		mc.setState(STATE_C, ac&0x8000 != 0)
		mc.setAC(ac << 1)
		mc.setState(STATE_V, mc.flag(STATE_N) != mc.flag(STATE_C))

	case INSTR_ASR:
		mc.setState(STATE_C, ac&0x1 != 0)
		mc.setAC(ac>>1 | ac&0x8000)
		mc.setState(STATE_V, mc.flag(STATE_N) != mc.flag(STATE_C))

	case INSTR_SXTB:
		mc.setState(STATE_V, false)
		mc.setAC(encoding.SignExtend(ac&0xFF, 8))

	case INSTR_SWAB:
		mc.setState(STATE_V, false)
		mc.setAC(ac>>8 | (ac<<8)&0xFF00)

	case INSTR_INC:
		mc.add(ac, 1, 0)

	case INSTR_DEC:
		mc.add(ac, 0xFFFF, 0)

	case INSTR_NEG:
		mc.add(^ac&0xFFFF, 0, 1)

	case INSTR_POP:
		mc.setAC(mc.pop())

	case INSTR_POPF:
		mc.restoreFlags(mc.pop())

	case INSTR_RET:
		mc.registers[REG_IP].SetValue(mc.pop())

	case INSTR_IRET:
		mc.restoreFlags(mc.pop())
		mc.registers[REG_IP].SetValue(mc.pop())

	case INSTR_PUSH:
		mc.push(ac)

	case INSTR_PUSHF:
		mc.push(mc.RegValue(REG_PS))

	case INSTR_SWAP:
		top := mc.pop()
		mc.push(ac)
		mc.setAC(top)
	}
}

// Restores the arithmetic and interrupt flags, keeping W and P
func (mc *Machine) restoreFlags(value uint64) {
	const keep = 1<<uint(STATE_W) | 1<<uint(STATE_P)
	ps := mc.RegValue(REG_PS)
	mc.registers[REG_PS].SetValue(ps&keep | value&^keep)
}

func (mc *Machine) executeIO(cr uint64) {
	reg := cr & 0xFF

	switch cr & 0xFF00 {
	case INSTR_DI:
		mc.setState(STATE_EI, false)

	case INSTR_EI:
		mc.setState(STATE_EI, true)

	case INSTR_IN:
		ac := mc.RegValue(REG_AC)
		mc.setAC(ac&0xFF00 | mc.in(reg))

	case INSTR_OUT:
		mc.out(reg, mc.RegValue(REG_AC)&0xFF)
	}
}

// Device d owns data register 2d and status register 2d+1
func (mc *Machine) device(reg uint64) *Device {
	if index := reg / 2; index < uint64(len(mc.devices)) {
		return mc.devices[index]
	}

	return nil
}

func (mc *Machine) in(reg uint64) uint64 {
	dev := mc.device(reg)

	if dev == nil {
		return 0
	}

	if reg%2 == 1 {
		if dev.IsReady() {
			return DEVICE_READY
		}

		return 0
	}

	value := dev.Data()
	dev.ClearReady()

	return value
}

func (mc *Machine) out(reg, value uint64) {
	dev := mc.device(reg)

	if dev == nil {
		return
	}

	if reg%2 == 0 {
		dev.SetData(value)
	}

	dev.ClearReady()
}

func (mc *Machine) executeBranch(cr uint64) {
	var taken bool

	n := mc.flag(STATE_N)
	z := mc.flag(STATE_Z)
	v := mc.flag(STATE_V)
	c := mc.flag(STATE_C)

	switch (cr >> 8) & 0xF {
	case 0x0:
		taken = z == 1
	case 0x1:
		taken = z == 0
	case 0x2:
		taken = n == 1
	case 0x3:
		taken = n == 0
	case 0x4:
		taken = c == 1
	case 0x5:
		taken = c == 0
	case 0x6:
		taken = v == 1
	case 0x7:
		taken = v == 0
	case 0x8:
		taken = n^v == 1
	case 0x9:
		taken = n^v == 0
	}

	if taken {
		offset := encoding.SignExtend(cr&0xFF, 8)
		mc.registers[REG_IP].SetValue(mc.RegValue(REG_IP) + offset)
	}
}
