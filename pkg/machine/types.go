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
	"sync"
	"sync/atomic"

	"github.com/lassandro/gobcomp/pkg/encoding"
)

type Reg int
type State uint
type Signal int

func (reg Reg) String() string {
	if reg < 0 || reg >= REG_COUNT {
		return fmt.Sprintf("Reg(%d)", int(reg))
	}

	return regNames[reg]
}

func (state State) String() string {
	switch state {
	case STATE_C:
		return "C"
	case STATE_V:
		return "V"
	case STATE_Z:
		return "Z"
	case STATE_N:
		return "N"
	case STATE_EI:
		return "EI"
	case STATE_INT:
		return "INT"
	case STATE_W:
		return "W"
	case STATE_P:
		return "P"
	}

	return fmt.Sprintf("State(%d)", uint(state))
}

func (signal Signal) String() string {
	switch signal {
	case SIGNAL_STORE:
		return "STORE"
	case SIGNAL_LOAD:
		return "LOAD"
	}

	return fmt.Sprintf("Signal(%d)", int(signal))
}

// Register values are atomic so the console can read them while the
// machine runs on its own goroutine.
type Register struct {
	width uint
	value atomic.Uint64
}

func (reg *Register) Value() uint64 {
	return reg.value.Load()
}

func (reg *Register) SetValue(value uint64) {
	reg.value.Store(value & encoding.Mask(reg.width))
}

func (reg *Register) Width() uint {
	return reg.width
}

type Memory struct {
	width     uint
	addrWidth uint
	cells     []atomic.Uint64
}

func newMemory(addrWidth, width uint) *Memory {
	return &Memory{
		width:     width,
		addrWidth: addrWidth,
		cells:     make([]atomic.Uint64, 1<<addrWidth),
	}
}

func (mem *Memory) Value(addr uint64) uint64 {
	return mem.cells[addr&encoding.Mask(mem.addrWidth)].Load()
}

func (mem *Memory) SetValue(addr, value uint64) {
	mem.cells[addr&encoding.Mask(mem.addrWidth)].Store(
		value & encoding.Mask(mem.width),
	)
}

func (mem *Memory) Width() uint {
	return mem.width
}

func (mem *Memory) AddrWidth() uint {
	return mem.addrWidth
}

func (mem *Memory) Size() uint64 {
	return uint64(len(mem.cells))
}

// Device is an I/O controller with a data register and a ready flag
type Device struct {
	mu    sync.Mutex
	ready bool
	data  uint64
}

func (dev *Device) IsReady() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.ready
}

func (dev *Device) SetReady() {
	dev.mu.Lock()
	dev.ready = true
	dev.mu.Unlock()
}

func (dev *Device) ClearReady() {
	dev.mu.Lock()
	dev.ready = false
	dev.mu.Unlock()
}

func (dev *Device) SetData(value uint64) {
	dev.mu.Lock()
	dev.data = value & encoding.Mask(DEVICE_WIDTH)
	dev.mu.Unlock()
}

func (dev *Device) Data() uint64 {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.data
}

func (dev *Device) String() string {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	ready := 0
	if dev.ready {
		ready = 1
	}

	return fmt.Sprintf(
		"data=%s ready=%d", encoding.ToHex(dev.data, DEVICE_WIDTH), ready,
	)
}
