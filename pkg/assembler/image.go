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

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidImage = errors.New("Invalid program image")

// WriteImage stores a program as big-endian words: the start address
// followed by one address/value pair per assembled word.
func WriteImage(w io.Writer, program *Program) error {
	if err := binary.Write(w, binary.BigEndian, program.Start); err != nil {
		return err
	}

	return binary.Write(w, binary.BigEndian, program.Words)
}

func ReadImage(r io.Reader) (*Program, error) {
	program := &Program{Labels: make(map[string]uint16)}

	if err := binary.Read(r, binary.BigEndian, &program.Start); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty", ErrInvalidImage)
		}

		return nil, err
	}

	if program.Start >= MEMORY_SIZE {
		return nil, fmt.Errorf(
			"%w: start address %#04x", ErrInvalidImage, program.Start,
		)
	}

	for {
		var word Word

		err := binary.Read(r, binary.BigEndian, &word)

		if err == io.EOF {
			break
		} else if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated word", ErrInvalidImage)
		} else if err != nil {
			return nil, err
		}

		if word.Addr >= MEMORY_SIZE {
			return nil, fmt.Errorf(
				"%w: address %#04x", ErrInvalidImage, word.Addr,
			)
		}

		program.Words = append(program.Words, word)
	}

	return program, nil
}
