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

const (
	REG_AC Reg = iota
	REG_BR
	REG_PS
	REG_DR
	REG_CR
	REG_IP
	REG_SP
	REG_AR
	REG_IR
	REG_MP
	REG_MR

	REG_COUNT
)

var regNames = [REG_COUNT]string{
	"AC", "BR", "PS", "DR", "CR", "IP", "SP", "AR", "IR", "MP", "MR",
}

var regWidths = [REG_COUNT]uint{
	16, 16, 9, 16, 16, 11, 11, 11, 16, 8, 40,
}

// Bit positions of the program state flags held in PS
const (
	STATE_C   State = 0
	STATE_V   State = 1
	STATE_Z   State = 2
	STATE_N   State = 3
	STATE_EI  State = 5
	STATE_INT State = 6
	STATE_W   State = 7
	STATE_P   State = 8
)

var States = []State{
	STATE_C, STATE_V, STATE_Z, STATE_N, STATE_EI, STATE_INT, STATE_W, STATE_P,
}

const (
	SIGNAL_STORE Signal = iota
	SIGNAL_LOAD
)

const (
	MEMORY_ADDR_WIDTH = 11
	MEMORY_WIDTH      = 16
	MICRO_ADDR_WIDTH  = 8
	MICRO_WIDTH       = 40
	DEVICE_WIDTH      = 8
)

// Microcommand kinds, stored in the low byte of a microcommand. The next
// byte holds the address of the following microcommand.
const (
	MICRO_STOP   uint64 = 0x00
	MICRO_FETCH  uint64 = 0x01
	MICRO_DECODE uint64 = 0x02
	MICRO_ADDR   uint64 = 0x03
	MICRO_READ   uint64 = 0x04
	MICRO_EXEC   uint64 = 0x05
	MICRO_WRITE  uint64 = 0x06
	MICRO_END    uint64 = 0x07
)

// Entry points of the microprogram
const (
	MP_FETCH  uint64 = 0x00
	MP_DECODE uint64 = 0x01
	MP_ADDR   uint64 = 0x02
	MP_READ   uint64 = 0x03
	MP_EXEC   uint64 = 0x04
	MP_WRITE  uint64 = 0x05
	MP_END    uint64 = 0x06
)

const (
	OP_IO   uint64 = 0x1
	OP_AND  uint64 = 0x2
	OP_OR   uint64 = 0x3
	OP_ADD  uint64 = 0x4
	OP_ADC  uint64 = 0x5
	OP_SUB  uint64 = 0x6
	OP_CMP  uint64 = 0x7
	OP_LOOP uint64 = 0x8
	OP_LD   uint64 = 0xA
	OP_SWAM uint64 = 0xB
	OP_JUMP uint64 = 0xC
	OP_CALL uint64 = 0xD
	OP_ST   uint64 = 0xE
	OP_BR   uint64 = 0xF

	// Reserved
	OP_RES uint64 = 0x9
)

// Addressing modes selected by bits 10-8 when bit 11 is set
const (
	MODE_INDIRECT  uint64 = 0b000
	MODE_STACK     uint64 = 0b100
	MODE_RELATIVE  uint64 = 0b110
	MODE_IMMEDIATE uint64 = 0b111
)

const (
	INSTR_NOP   uint64 = 0x0000
	INSTR_HLT   uint64 = 0x0100
	INSTR_CLA   uint64 = 0x0200
	INSTR_NOT   uint64 = 0x0280
	INSTR_CLC   uint64 = 0x0300
	INSTR_CMC   uint64 = 0x0380
	INSTR_ROL   uint64 = 0x0400
	INSTR_ROR   uint64 = 0x0480
	INSTR_ASL   uint64 = 0x0500
	INSTR_ASR   uint64 = 0x0580
	INSTR_SXTB  uint64 = 0x0600
	INSTR_SWAB  uint64 = 0x0680
	INSTR_INC   uint64 = 0x0700
	INSTR_DEC   uint64 = 0x0740
	INSTR_NEG   uint64 = 0x0780
	INSTR_POP   uint64 = 0x0800
	INSTR_POPF  uint64 = 0x0900
	INSTR_RET   uint64 = 0x0A00
	INSTR_IRET  uint64 = 0x0B00
	INSTR_PUSH  uint64 = 0x0C00
	INSTR_PUSHF uint64 = 0x0D00
	INSTR_SWAP  uint64 = 0x0E00

	INSTR_DI  uint64 = 0x1000
	INSTR_EI  uint64 = 0x1100
	INSTR_IN  uint64 = 0x1200
	INSTR_OUT uint64 = 0x1300
	INSTR_INT uint64 = 0x1800
)

// Device status register bit reported by IN when the device is ready
const DEVICE_READY uint64 = 0x40
