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
	"fmt"
	"io"
	"sync"
)

// Output serialises operator reports written by the foreground loop, the
// emulator goroutine, the poller and the monitors. Every call writes whole
// lines.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

func (out *Output) Print(a ...interface{}) {
	out.mu.Lock()
	fmt.Fprint(out.w, a...)
	out.mu.Unlock()
}

func (out *Output) Println(a ...interface{}) {
	out.mu.Lock()
	fmt.Fprintln(out.w, a...)
	out.mu.Unlock()
}

func (out *Output) Printf(format string, a ...interface{}) {
	out.mu.Lock()
	fmt.Fprintf(out.w, format, a...)
	out.mu.Unlock()
}
