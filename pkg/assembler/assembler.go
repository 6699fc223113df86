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
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/lassandro/gobcomp/pkg/encoding"
)

type statement struct {
	Position  Cursor
	Addr      uint16
	Keyword   Token
	Directive DirectiveType
	Instr     Instruction
	Operands  []Token
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, "ORG") {
		return DIRECTIVE_ORG
	} else if strings.EqualFold(ident, "WORD") {
		return DIRECTIVE_WORD
	} else if strings.EqualFold(ident, "END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

func parseInstruction(ident string) (Instruction, bool) {
	instr, ok := instructions[strings.ToUpper(ident)]
	return instr, ok
}

func isLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 0 && unicode.IsDigit(rune(s[0]))
}

func isIdent(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i, char := range s {
		switch {
		case char == '_', unicode.IsLetter(char) && char <= unicode.MaxASCII:
		case unicode.IsDigit(char) && i > 0:
		default:
			return false
		}
	}

	return true
}

func parseLiteral(token *Token, value string, min, max int64) (int64, error) {
	var result int64

	negative := strings.HasPrefix(value, "-")
	digits := strings.TrimPrefix(value, "-")

	if strings.ContainsAny(digits, "xX") {
		hex, err := encoding.DecodeHex(digits, 16)

		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		result = int64(hex)
	} else {
		dec, err := encoding.DecodeInt(digits)

		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		result = dec
	}

	if negative {
		result = -result
	}

	if result < min || result > max {
		return 0, &OversizedLiteralError{token.Position, max, result}
	}

	return result, nil
}

// Splits a source line into tokens. Commas and whitespace separate tokens,
// ';' starts a comment.
func tokenize(line string, lineNum int) (tokens []Token, errs []error) {
	var builder strings.Builder
	var start Cursor

	flush := func() {
		if builder.Len() == 0 {
			return
		}

		value := builder.String()
		tokenType := TOKEN_IDENT

		switch {
		case isLiteral(value):
			tokenType = TOKEN_LITERAL
		case strings.ContainsAny(value[:1], "$(&#?"):
			tokenType = TOKEN_OPERAND
		}

		tokens = append(tokens, Token{tokenType, start, value})
		builder.Reset()
	}

	for column, char := range line {
		cursor := Cursor{Line: lineNum, Column: column + 1}

		switch {
		case char == ';':
			flush()
			return tokens, errs

		case unicode.IsSpace(char), char == ',':
			flush()

		case char > unicode.MaxASCII:
			errs = append(errs, &UnexpectedCharacterError{cursor, char})

		default:
			if builder.Len() == 0 {
				start = cursor
			}

			builder.WriteRune(char)
		}
	}

	flush()

	return tokens, errs
}

// Assemble compiles assembly source read from input. On failure the
// returned program is nil and errs holds every error in source order.
func Assemble(input io.Reader) (program *Program, errs []error) {
	var statements []statement
	var labels = make(map[string]uint16)
	var addr uint32 = 0
	var overflowed bool

	var scanner = bufio.NewScanner(input)
	var lineNum int

	// First pass: collect labels and assign addresses
scan:
	for scanner.Scan() {
		lineNum++

		tokens, lineErrs := tokenize(scanner.Text(), lineNum)
		errs = append(errs, lineErrs...)

		if len(tokens) == 0 {
			continue
		}

		if label := tokens[0]; strings.HasSuffix(label.Value, ":") {
			name := strings.TrimSuffix(label.Value, ":")

			if !isIdent(name) {
				errs = append(errs, &UnexpectedCharacterError{
					label.Position, rune(label.Value[0]),
				})
			} else if _, exists := labels[name]; exists {
				errs = append(errs, &RedeclaredLabelError{label.Position, name})
			} else {
				labels[name] = uint16(addr)
			}

			tokens = tokens[1:]

			if len(tokens) == 0 {
				continue
			}
		}

		keyword := tokens[0]
		operands := tokens[1:]

		if keyword.Type != TOKEN_IDENT {
			errs = append(errs, &InvalidOperandError{
				keyword.Position, []TokenType{TOKEN_IDENT}, keyword.Type,
			})

			continue
		}

		stmt := statement{
			Position: keyword.Position,
			Addr:     uint16(addr),
			Keyword:  keyword,
			Operands: operands,
		}

		switch directive := parseDirective(keyword.Value); directive {
		case DIRECTIVE_END:
			break scan

		case DIRECTIVE_ORG:
			if len(operands) != 1 {
				errs = append(errs, &InvalidNumArgumentsError{
					keyword.Position, 1, len(operands),
				})

				continue
			}

			value, err := parseLiteral(
				&operands[0], operands[0].Value, 0, MEMORY_SIZE-1,
			)

			if err != nil {
				errs = append(errs, err)
				continue
			}

			addr = uint32(value)
			continue

		case DIRECTIVE_WORD:
			if len(operands) == 0 {
				errs = append(errs, &InvalidNumArgumentsError{
					keyword.Position, 1, 0,
				})

				continue
			}

			stmt.Directive = directive
			addr += uint32(len(operands))

		default:
			instr, ok := parseInstruction(keyword.Value)

			if !ok {
				errs = append(errs, &UnknownIdentifierError{
					keyword.Position, keyword.Value,
				})

				continue
			}

			stmt.Instr = instr
			addr++
		}

		if addr > MEMORY_SIZE && !overflowed {
			overflowed = true
			errs = append(errs, &OversizedBinaryError{keyword.Position})
		}

		statements = append(statements, stmt)
	}

	if err := scanner.Err(); err != nil {
		return nil, append(errs, err)
	}

	// Second pass: encode with every label known
	words := make([]Word, 0, len(statements))

	for i := range statements {
		stmt := &statements[i]

		encoded, stmtErrs := encodeStatement(stmt, labels)
		errs = append(errs, stmtErrs...)

		if len(stmtErrs) == 0 {
			for n, value := range encoded {
				words = append(words, Word{stmt.Addr + uint16(n), value})
			}
		}
	}

	if len(errs) > 0 {
		sortErrors(errs)
		return nil, errs
	}

	program = &Program{Words: words, Labels: labels}

	if start, ok := entryPoint(labels); ok {
		program.Start = start
	} else if len(words) > 0 {
		program.Start = words[0].Addr
	}

	return program, nil
}

// Compile is Assemble over an in-memory source text.
func Compile(text string) (*Program, []error) {
	return Assemble(strings.NewReader(text))
}

func entryPoint(labels map[string]uint16) (uint16, bool) {
	for name, addr := range labels {
		if strings.EqualFold(name, ENTRY_LABEL) {
			return addr, true
		}
	}

	return 0, false
}

func sortErrors(errs []error) {
	position := func(err error) Cursor {
		if tokenErr, ok := err.(TokenError); ok {
			return tokenErr.GetPosition()
		}

		return Cursor{}
	}

	sort.SliceStable(errs, func(i, j int) bool {
		a, b := position(errs[i]), position(errs[j])

		if a.Line != b.Line {
			return a.Line < b.Line
		}

		return a.Column < b.Column
	})
}

func resolveTarget(
	token *Token, value string, labels map[string]uint16,
) (int64, error) {
	if isLiteral(value) {
		return parseLiteral(token, value, 0, MEMORY_SIZE-1)
	}

	if !isIdent(value) {
		return 0, &UnexpectedCharacterError{token.Position, rune(value[0])}
	}

	addr, ok := labels[value]

	if !ok {
		return 0, &UnknownLabelError{token.Position, value}
	}

	return int64(addr), nil
}

func resolveOffset(
	token *Token, value string, from uint16, labels map[string]uint16,
) (uint16, error) {
	target, err := resolveTarget(token, value, labels)

	if err != nil {
		return 0, err
	}

	offset := target - int64(from) - 1

	if offset < -128 || offset > 127 {
		return 0, &OversizedLabelError{token.Position, 127, offset}
	}

	return uint16(offset) & 0xFF, nil
}

func writesOperand(opcode uint16) bool {
	switch opcode & 0xF000 {
	case 0x8000, 0xB000, 0xC000, 0xD000, 0xE000:
		return true
	}

	return false
}

func encodeStatement(stmt *statement, labels map[string]uint16) ([]uint16, []error) {
	var errs []error

	operands := stmt.Operands

	if stmt.Directive == DIRECTIVE_WORD {
		result := make([]uint16, 0, len(operands))

		for i := range operands {
			token := &operands[i]

			switch {
			case token.Value == "?":
				result = append(result, 0)
			case isLiteral(token.Value):
				value, err := parseLiteral(token, token.Value, -0x8000, 0xFFFF)

				if err != nil {
					errs = append(errs, err)
				}

				result = append(result, uint16(value))
			default:
				addr, err := resolveTarget(token, token.Value, labels)

				if err != nil {
					errs = append(errs, err)
				}

				result = append(result, uint16(addr))
			}
		}

		return result, errs
	}

	instr := stmt.Instr

	required := 1

	if instr.Type == INSTRUCTION_ADDRESSLESS {
		required = 0
	}

	if len(operands) != required {
		return nil, []error{&InvalidNumArgumentsError{
			stmt.Position, required, len(operands),
		}}
	}

	if required == 0 {
		return []uint16{instr.Opcode}, nil
	}

	token := &operands[0]
	value := token.Value

	switch instr.Type {
	case INSTRUCTION_IO:
		if token.Type != TOKEN_LITERAL {
			return nil, []error{&InvalidOperandError{
				token.Position, []TokenType{TOKEN_LITERAL}, token.Type,
			}}
		}

		port, err := parseLiteral(token, value, 0, 0xFF)

		if err != nil {
			return nil, []error{err}
		}

		return []uint16{instr.Opcode | uint16(port)}, nil

	case INSTRUCTION_BRANCH:
		if token.Type == TOKEN_OPERAND {
			return nil, []error{&InvalidAddressingError{token.Position, value}}
		}

		offset, err := resolveOffset(token, value, stmt.Addr, labels)

		if err != nil {
			return nil, []error{err}
		}

		return []uint16{instr.Opcode | offset}, nil
	}

	switch {
	case strings.HasPrefix(value, "#"):
		if writesOperand(instr.Opcode) {
			return nil, []error{&InvalidAddressingError{token.Position, value}}
		}

		imm, err := parseLiteral(token, value[1:], -0x80, 0xFF)

		if err != nil {
			return nil, []error{err}
		}

		return []uint16{instr.Opcode | MODE_IMMEDIATE | uint16(imm)&0xFF}, nil

	case strings.HasPrefix(value, "$"):
		addr, err := resolveTarget(token, value[1:], labels)

		if err != nil {
			return nil, []error{err}
		}

		return []uint16{instr.Opcode | MODE_ABSOLUTE | uint16(addr)}, nil

	case strings.HasPrefix(value, "("):
		if !strings.HasSuffix(value, ")") || len(value) < 3 {
			return nil, []error{&InvalidAddressingError{token.Position, value}}
		}

		offset, err := resolveOffset(
			token, value[1:len(value)-1], stmt.Addr, labels,
		)

		if err != nil {
			return nil, []error{err}
		}

		return []uint16{instr.Opcode | MODE_INDIRECT | offset}, nil

	case strings.HasPrefix(value, "&"):
		index, err := parseLiteral(token, value[1:], 0, 0xFF)

		if err != nil {
			return nil, []error{err}
		}

		return []uint16{instr.Opcode | MODE_STACK | uint16(index)}, nil

	case value == "?":
		return nil, []error{&InvalidAddressingError{token.Position, value}}
	}

	offset, err := resolveOffset(token, value, stmt.Addr, labels)

	if err != nil {
		return nil, []error{err}
	}

	return []uint16{instr.Opcode | MODE_RELATIVE | offset}, nil
}
