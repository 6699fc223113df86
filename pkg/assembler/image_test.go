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

package assembler_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/lassandro/gobcomp/pkg/assembler"
)

func TestImage(t *testing.T) {
	program, errs := assembler.Compile("ORG 0x10\nSTART: LD X\nHLT\nX: WORD 0x1234")

	if len(errs) > 0 {
		t.Fatalf("Unexpected errors %v", errs)
	}

	buffer := new(bytes.Buffer)

	if err := assembler.WriteImage(buffer, program); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x00, 0x10,
		0x00, 0x10, 0xAE, 0x01,
		0x00, 0x11, 0x01, 0x00,
		0x00, 0x12, 0x12, 0x34,
	}

	if !bytes.Equal(buffer.Bytes(), want) {
		t.Fatalf("Image mismatch\nwant:% x\nhave:% x", want, buffer.Bytes())
	}

	result, err := assembler.ReadImage(bytes.NewReader(want))

	if err != nil {
		t.Fatal(err)
	}

	if result.Start != program.Start || !reflect.DeepEqual(result.Words, program.Words) {
		t.Errorf("Program mismatch\nwant:%v\nhave:%v", program, result)
	}

	if name, ok := program.Label(0x12); !ok || name != "X" {
		t.Errorf("Label mismatch\nwant:X\nhave:%s", name)
	}
}

func TestInvalidImage(t *testing.T) {
	tests := []struct {
		Name  string
		Input []byte
	}{
		{"Empty", []byte{}},
		{"Start out of range", []byte{0x08, 0x00}},
		{"Truncated word", []byte{0x00, 0x10, 0x00, 0x10, 0xA0}},
		{"Address out of range", []byte{0x00, 0x10, 0xFF, 0xFF, 0x00, 0x00}},
	}

	for _, test := range tests {
		if _, err := assembler.ReadImage(bytes.NewReader(test.Input)); !errors.Is(err, assembler.ErrInvalidImage) {
			t.Errorf("%s: error mismatch\nwant:%v\nhave:%v", test.Name, assembler.ErrInvalidImage, err)
		}
	}
}
