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
	"reflect"
	"testing"

	"github.com/lassandro/gobcomp/pkg/assembler"
)

type testCase struct {
	Name   string
	Input  string
	Output map[uint16]uint16
	Start  uint16
	Labels map[string]uint16
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	program, errs := assembler.Compile(test.Input)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if have, want := len(program.Words), len(test.Output); have != want {
		t.Fatalf(
			"Invalid program length\n"+
				"want:%d\n"+
				"have:%d",
			want,
			have,
		)
	}

	for _, word := range program.Words {
		want, exists := test.Output[word.Addr]

		if !exists {
			t.Fatalf(
				"Unexpected instruction\n"+
					"want:nil\n"+
					"have:%#04x (program.Words[%#04x])",
				word.Value,
				word.Addr,
			)
		} else if word.Value != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#04x (test.Output[%#04x])\n"+
					"have:%#04x",
				want,
				word.Addr,
				word.Value,
			)
		}
	}

	if program.Start != test.Start {
		t.Fatalf(
			"Start address mismatch\nwant:%#04x\nhave:%#04x",
			test.Start,
			program.Start,
		)
	}

	for name, want := range test.Labels {
		have, exists := program.Labels[name]

		if !exists {
			t.Fatalf("Missing label\nwant:%s\nhave:nil", name)
		} else if have != want {
			t.Fatalf(
				"Label address mismatch\n"+
					"want:%#04x (test.Labels[%s])\n"+
					"have:%#04x",
				want,
				name,
				have,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	program, errs := assembler.Compile(test.Input)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if program != nil {
		t.Fatalf("%s produced a program alongside errors", t.Name())
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

func TestAddressing(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Absolute",
			Input:  `LD $0x10`,
			Output: map[uint16]uint16{0x0000: 0xA010},
		},
		{
			Name:   "Absolute label",
			Input:  "JUMP $L\nORG 0x40\nL: HLT",
			Output: map[uint16]uint16{0x0000: 0xC040, 0x0040: 0x0100},
			Labels: map[string]uint16{"L": 0x40},
		},
		{
			Name:   "Immediate",
			Input:  `ADD #5`,
			Output: map[uint16]uint16{0x0000: 0x4F05},
		},
		{
			Name:   "Immediate negative",
			Input:  `ADD #-1`,
			Output: map[uint16]uint16{0x0000: 0x4FFF},
		},
		{
			Name:  "Relative",
			Input: "ORG 0x10\nSTART: LD X\nHLT\nX: WORD 0x1234",
			Output: map[uint16]uint16{
				0x0010: 0xAE01,
				0x0011: 0x0100,
				0x0012: 0x1234,
			},
			Start:  0x10,
			Labels: map[string]uint16{"START": 0x10, "X": 0x12},
		},
		{
			Name:  "Indirect",
			Input: "LD (P)\nP: WORD ?",
			Output: map[uint16]uint16{
				0x0000: 0xA800,
				0x0001: 0x0000,
			},
		},
		{
			Name:   "Stack",
			Input:  `LD &1`,
			Output: map[uint16]uint16{0x0000: 0xAC01},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Store immediate",
			Input: `ST #5`,
			Error: &assembler.InvalidAddressingError{},
		},
		{
			Name:  "Oversized immediate",
			Input: `ADD #300`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Missing operand",
			Input: `LD`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Unknown label",
			Input: `LD MISSING`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name:  "Invalid label",
			Input: `LD @5`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Unterminated indirect",
			Input: `LD (P`,
			Error: &assembler.InvalidAddressingError{},
		},
	})
}

func TestBranch(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "BEQ backwards",
			Input: "L: NOP\nBEQ L",
			Output: map[uint16]uint16{
				0x0000: 0x0000,
				0x0001: 0xF0FE,
			},
		},
		{
			Name:  "BR backwards",
			Input: "L: NOP\nBR L",
			Output: map[uint16]uint16{
				0x0000: 0x0000,
				0x0001: 0xCEFE,
			},
		},
		{
			Name:  "BLT forwards",
			Input: "BLT L\nNOP\nL: HLT",
			Output: map[uint16]uint16{
				0x0000: 0xF801,
				0x0001: 0x0000,
				0x0002: 0x0100,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Out of range",
			Input: "BEQ FAR\nORG 0x100\nFAR: NOP",
			Error: &assembler.OversizedLabelError{},
		},
		{
			Name:  "Absolute target",
			Input: "L: BEQ $L",
			Error: &assembler.InvalidAddressingError{},
		},
	})
}

func TestIO(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "IN OUT",
			Input: "IN 2\nOUT 0x3\nDI\nEI",
			Output: map[uint16]uint16{
				0x0000: 0x1202,
				0x0001: 0x1303,
				0x0002: 0x1000,
				0x0003: 0x1100,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Label port",
			Input: `IN X`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Oversized port",
			Input: `OUT 0x100`,
			Error: &assembler.OversizedLiteralError{},
		},
	})
}

func TestDirectives(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "WORD list",
			Input: "ORG 0x20\nWORD 1, -1, ? ; trailing comment\nEND\nHLT",
			Output: map[uint16]uint16{
				0x0020: 0x0001,
				0x0021: 0xFFFF,
				0x0022: 0x0000,
			},
			Start: 0x20,
		},
		{
			Name:  "WORD label",
			Input: "P: WORD P",
			Output: map[uint16]uint16{
				0x0000: 0x0000,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Redeclared label",
			Input: "L: NOP\nL: NOP",
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Oversized origin",
			Input: `ORG 0x800`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Unknown identifier",
			Input: `FOO`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Addressless operand",
			Input: `HLT 1`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Empty WORD",
			Input: `WORD`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

func TestErrorOrder(t *testing.T) {
	program, errs := assembler.Compile("FOO\nLD MISSING\nHLT 1")

	if program != nil {
		t.Fatal("Program produced alongside errors")
	}

	want := []error{
		&assembler.UnknownIdentifierError{},
		&assembler.UnknownLabelError{},
		&assembler.InvalidNumArgumentsError{},
	}

	if len(errs) != len(want) {
		t.Fatalf("Invalid error count\nwant:%d\nhave:%d", len(want), len(errs))
	}

	for i, err := range errs {
		if reflect.TypeOf(err) != reflect.TypeOf(want[i]) {
			t.Fatalf(
				"Error %d out of order\nwant:%T\nhave:%T", i, want[i], err,
			)
		}

		if line := err.(assembler.TokenError).GetPosition().Line; line != i+1 {
			t.Fatalf("Error %d line mismatch\nwant:%d\nhave:%d", i, i+1, line)
		}
	}
}
