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

package console

import (
	"errors"
	"fmt"
	"strings"
)

var ErrOperationRejected = errors.New("Operation rejected: a program is running")
var ErrNoDevice = errors.New("No such device")

type MissingArgumentError struct {
	Command string
}

func (err *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing argument", err.Command)
}

type MalformedArgumentError struct {
	Command string
	Arg     string
	Err     error
}

func (err *MalformedArgumentError) Error() string {
	return fmt.Sprintf("%s: malformed argument '%s': %v", err.Command, err.Arg, err.Err)
}

func (err *MalformedArgumentError) Unwrap() error {
	return err.Err
}

type UnknownCommandError struct {
	Token string
}

func (err *UnknownCommandError) Error() string {
	return fmt.Sprintf("'%s' is not a valid command", err.Token)
}

type AssemblyError struct {
	Errs []error
}

func (err *AssemblyError) Error() string {
	lines := make([]string, 0, len(err.Errs)+1)
	lines = append(lines, "Program contains errors")

	for _, e := range err.Errs {
		lines = append(lines, e.Error())
	}

	return strings.Join(lines, "\n")
}

func (err *AssemblyError) Unwrap() []error {
	return err.Errs
}
