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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidHex = errors.New("Invalid hex string")
var ErrOversizedHex = errors.New("Hex value exceeds register width")

// Reports whether s is a hexadecimal literal in the formats: FFFF, -FF
func IsHex(s string) bool {
	s = strings.TrimPrefix(s, "-")

	if len(s) == 0 {
		return false
	}

	for _, char := range s {
		switch {
		case char >= '0' && char <= '9':
		case char >= 'a' && char <= 'f':
		case char >= 'A' && char <= 'F':
		default:
			return false
		}
	}

	return true
}

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, FFFF, -FF.
// Negative values are returned in two's complement truncated to bits.
func DecodeHex(s string, bits uint) (uint64, error) {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = s[1:]
	} else if i == 1 && s[0] == '0' {
		s = s[2:]
	} else if i != -1 {
		return 0, ErrInvalidHex
	}

	if !IsHex(s) {
		return 0, ErrInvalidHex
	}

	result, err := strconv.ParseUint(s, 16, 64)

	if err != nil {
		return 0, err
	}

	limit := uint64(1) << bits

	if bits < 64 && result >= limit {
		return 0, ErrOversizedHex
	}

	if negative {
		result = -result
	}

	return result & Mask(bits), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int64, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	return strconv.ParseInt(s, 10, 32)
}

func Mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << bits) - 1
}

// Formats value as upper case hex padded to the digits needed for bits
func ToHex(value uint64, bits uint) string {
	digits := int((bits + 3) / 4)
	s := strings.ToUpper(strconv.FormatUint(value&Mask(bits), 16))

	if len(s) < digits {
		s = strings.Repeat("0", digits-len(s)) + s
	}

	return s
}

func ToBinary(value uint64, bits uint) string {
	s := strconv.FormatUint(value&Mask(bits), 2)

	if len(s) < int(bits) {
		s = strings.Repeat("0", int(bits)-len(s)) + s
	}

	return s
}

func SignExtend(value uint64, bitcount uint) uint64 {
	if (value>>(bitcount-1))&0x1 == 1 {
		value |= ^uint64(0) << bitcount
	}

	return value
}
