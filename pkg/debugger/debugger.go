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

package debugger

import (
	"sort"
	"sync"
)

// Watchlist holds the memory addresses whose accesses are reported. It is
// read from the emulator goroutine on every memory access while the console
// adds entries, so all access is guarded.
type Watchlist struct {
	mu          sync.RWMutex
	watchpoints map[uint16]WatchpointType
}

func NewWatchlist() *Watchlist {
	return &Watchlist{watchpoints: make(map[uint16]WatchpointType)}
}

// Add merges wtype into the watchpoint at addr. Returns false when the
// address was already watched for every access in wtype.
func (wl *Watchlist) Add(addr uint16, wtype WatchpointType) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	old := wl.watchpoints[addr]
	wl.watchpoints[addr] = old | wtype

	return old|wtype != old
}

func (wl *Watchlist) Read(addr uint16) bool {
	return wl.watched(addr, ReadWatch)
}

func (wl *Watchlist) Write(addr uint16) bool {
	return wl.watched(addr, WriteWatch)
}

func (wl *Watchlist) watched(addr uint16, wtype WatchpointType) bool {
	wl.mu.RLock()
	defer wl.mu.RUnlock()

	return wl.watchpoints[addr]&wtype != 0
}

// Watchpoints returns every watchpoint ordered by address
func (wl *Watchlist) Watchpoints() []Watchpoint {
	wl.mu.RLock()
	result := make([]Watchpoint, 0, len(wl.watchpoints))

	for addr, wtype := range wl.watchpoints {
		result = append(result, Watchpoint{addr, wtype})
	}
	wl.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Addr < result[j].Addr
	})

	return result
}
