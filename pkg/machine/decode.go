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
	"fmt"

	"github.com/lassandro/gobcomp/pkg/encoding"
)

var microText = map[uint64]string{
	MICRO_STOP:   "Stop",
	MICRO_FETCH:  "IP -> AR, MEM(AR) -> DR -> CR, IP + 1 -> IP",
	MICRO_DECODE: "Decode CR",
	MICRO_ADDR:   "Operand address -> AR",
	MICRO_READ:   "MEM(AR) -> DR",
	MICRO_EXEC:   "Execute CR",
	MICRO_WRITE:  "DR -> MEM(AR)",
	MICRO_END:    "End of instruction",
}

func microLabel(addr uint64) string {
	for _, entry := range microProgram {
		if entry.addr == addr {
			return entry.label
		}
	}

	return ""
}

// Formats the microcommand at addr as: address, word, label, meaning
func (mc *Machine) MicroDecode(addr uint64) string {
	addr &= encoding.Mask(MICRO_ADDR_WIDTH)
	word := mc.microcode.Value(addr)

	text, known := microText[word&0xFF]
	if !known {
		text = "Unknown microcommand"
	} else if word&0xFF != MICRO_STOP {
		text = fmt.Sprintf(
			"%s; next %s", text, encoding.ToHex((word>>8)&0xFF, MICRO_ADDR_WIDTH),
		)
	}

	return fmt.Sprintf(
		"%s %s %-15s %s",
		encoding.ToHex(addr, MICRO_ADDR_WIDTH),
		encoding.ToHex(word, MICRO_WIDTH),
		microLabel(addr),
		text,
	)
}
