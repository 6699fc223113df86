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

package debugger_test

import (
	"sync"
	"testing"

	"github.com/lassandro/gobcomp/pkg/debugger"
)

func TestWatchlist(t *testing.T) {
	wl := debugger.NewWatchlist()

	if !wl.Add(0x7, debugger.WriteWatch) {
		t.Fatal("New watchpoint reported as existing")
	}

	if wl.Add(0x7, debugger.WriteWatch) {
		t.Fatal("Duplicate watchpoint reported as new")
	}

	if !wl.Write(0x7) || wl.Read(0x7) {
		t.Fatalf(
			"Watch type mismatch\nwant:write\nhave:read=%v write=%v",
			wl.Read(0x7),
			wl.Write(0x7),
		)
	}

	if !wl.Add(0x7, debugger.ReadWatch) || !wl.Read(0x7) {
		t.Fatal("Read watch not merged")
	}

	if wl.Write(0x8) {
		t.Fatal("Unwatched address reported")
	}
}

func TestWatchpointsOrdered(t *testing.T) {
	wl := debugger.NewWatchlist()

	var wg sync.WaitGroup

	for _, addr := range []uint16{0x30, 0x10, 0x20} {
		wg.Add(1)
		go func(addr uint16) {
			defer wg.Done()
			wl.Add(addr, debugger.WriteWatch)
		}(addr)
	}

	wg.Wait()

	have := wl.Watchpoints()
	want := []uint16{0x10, 0x20, 0x30}

	if len(have) != len(want) {
		t.Fatalf("Watchpoint count\nwant:%d\nhave:%d", len(want), len(have))
	}

	for i, wp := range have {
		if wp.Addr != want[i] || wp.Type != debugger.WriteWatch {
			t.Fatalf("Watchpoint %d\nwant:%#x\nhave:%#x", i, want[i], wp.Addr)
		}
	}
}
