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

package assembler

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_LITERAL
	TOKEN_OPERAND
)

const (
	INSTRUCTION_ADDRESS InstructionType = iota
	INSTRUCTION_ADDRESSLESS
	INSTRUCTION_BRANCH
	INSTRUCTION_IO
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_ORG
	DIRECTIVE_WORD
	DIRECTIVE_END
)

const (
	MEMORY_SIZE = 1 << 11
	ENTRY_LABEL = "START"
)

// Operand encodings of address instructions
const (
	MODE_ABSOLUTE  uint16 = 0x0000
	MODE_INDIRECT  uint16 = 0x0800
	MODE_STACK     uint16 = 0x0C00
	MODE_RELATIVE  uint16 = 0x0E00
	MODE_IMMEDIATE uint16 = 0x0F00
)

var instructions = map[string]Instruction{
	"AND":  {INSTRUCTION_ADDRESS, 0x2000},
	"OR":   {INSTRUCTION_ADDRESS, 0x3000},
	"ADD":  {INSTRUCTION_ADDRESS, 0x4000},
	"ADC":  {INSTRUCTION_ADDRESS, 0x5000},
	"SUB":  {INSTRUCTION_ADDRESS, 0x6000},
	"CMP":  {INSTRUCTION_ADDRESS, 0x7000},
	"LOOP": {INSTRUCTION_ADDRESS, 0x8000},
	"LD":   {INSTRUCTION_ADDRESS, 0xA000},
	"SWAM": {INSTRUCTION_ADDRESS, 0xB000},
	"JUMP": {INSTRUCTION_ADDRESS, 0xC000},
	"CALL": {INSTRUCTION_ADDRESS, 0xD000},
	"ST":   {INSTRUCTION_ADDRESS, 0xE000},

	"NOP":   {INSTRUCTION_ADDRESSLESS, 0x0000},
	"HLT":   {INSTRUCTION_ADDRESSLESS, 0x0100},
	"CLA":   {INSTRUCTION_ADDRESSLESS, 0x0200},
	"NOT":   {INSTRUCTION_ADDRESSLESS, 0x0280},
	"CLC":   {INSTRUCTION_ADDRESSLESS, 0x0300},
	"CMC":   {INSTRUCTION_ADDRESSLESS, 0x0380},
	"ROL":   {INSTRUCTION_ADDRESSLESS, 0x0400},
	"ROR":   {INSTRUCTION_ADDRESSLESS, 0x0480},
	"ASL":   {INSTRUCTION_ADDRESSLESS, 0x0500},
	"ASR":   {INSTRUCTION_ADDRESSLESS, 0x0580},
	"SXTB":  {INSTRUCTION_ADDRESSLESS, 0x0600},
	"SWAB":  {INSTRUCTION_ADDRESSLESS, 0x0680},
	"INC":   {INSTRUCTION_ADDRESSLESS, 0x0700},
	"DEC":   {INSTRUCTION_ADDRESSLESS, 0x0740},
	"NEG":   {INSTRUCTION_ADDRESSLESS, 0x0780},
	"POP":   {INSTRUCTION_ADDRESSLESS, 0x0800},
	"POPF":  {INSTRUCTION_ADDRESSLESS, 0x0900},
	"RET":   {INSTRUCTION_ADDRESSLESS, 0x0A00},
	"IRET":  {INSTRUCTION_ADDRESSLESS, 0x0B00},
	"PUSH":  {INSTRUCTION_ADDRESSLESS, 0x0C00},
	"PUSHF": {INSTRUCTION_ADDRESSLESS, 0x0D00},
	"SWAP":  {INSTRUCTION_ADDRESSLESS, 0x0E00},
	"DI":    {INSTRUCTION_ADDRESSLESS, 0x1000},
	"EI":    {INSTRUCTION_ADDRESSLESS, 0x1100},

	"IN":  {INSTRUCTION_IO, 0x1200},
	"OUT": {INSTRUCTION_IO, 0x1300},
	"INT": {INSTRUCTION_IO, 0x1800},

	"BEQ":  {INSTRUCTION_BRANCH, 0xF000},
	"BZS":  {INSTRUCTION_BRANCH, 0xF000},
	"BNE":  {INSTRUCTION_BRANCH, 0xF100},
	"BZC":  {INSTRUCTION_BRANCH, 0xF100},
	"BMI":  {INSTRUCTION_BRANCH, 0xF200},
	"BNS":  {INSTRUCTION_BRANCH, 0xF200},
	"BPL":  {INSTRUCTION_BRANCH, 0xF300},
	"BNC":  {INSTRUCTION_BRANCH, 0xF300},
	"BCS":  {INSTRUCTION_BRANCH, 0xF400},
	"BLO":  {INSTRUCTION_BRANCH, 0xF400},
	"BCC":  {INSTRUCTION_BRANCH, 0xF500},
	"BHIS": {INSTRUCTION_BRANCH, 0xF500},
	"BVS":  {INSTRUCTION_BRANCH, 0xF600},
	"BVC":  {INSTRUCTION_BRANCH, 0xF700},
	"BLT":  {INSTRUCTION_BRANCH, 0xF800},
	"BGE":  {INSTRUCTION_BRANCH, 0xF900},
	"BR":   {INSTRUCTION_BRANCH, 0xCE00},
}
