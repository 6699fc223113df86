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
	"strings"
	"testing"
	"time"

	"github.com/lassandro/gobcomp/pkg/machine"
)

func newTestPeripherals(t *testing.T) (*Peripherals, []*machine.Device, *syncBuffer) {
	t.Helper()

	ctrls := []*machine.Device{{}, {}, {}, {}}
	out := &syncBuffer{}
	p := NewPeripherals(Devices(ctrls), testConfig(), NewOutput(out))

	t.Cleanup(p.Close)

	return p, ctrls, out
}

func TestQueueDelivery(t *testing.T) {
	p, devs, _ := newTestPeripherals(t)

	for _, value := range []uint64{0xAA, 0xBB} {
		if err := p.Enqueue(1, value); err != nil {
			t.Fatal(err)
		}
	}

	p.Enqueue(2, 0x11)

	if n := p.Pending(1); n != 2 {
		t.Fatalf("Pending mismatch\nwant:2\nhave:%d", n)
	}

	p.Start()

	eventually(t, "first delivery", func() bool { return devs[1].IsReady() })
	eventually(t, "other device", func() bool { return devs[2].IsReady() })

	checkValue(t, "Device 1", 0xAA, devs[1].Data())
	checkValue(t, "Device 2", 0x11, devs[2].Data())

	// Nothing more is delivered while the device stays ready
	time.Sleep(10 * time.Millisecond)

	checkValue(t, "Device 1", 0xAA, devs[1].Data())

	if n := p.Pending(1); n != 1 {
		t.Errorf("Pending mismatch\nwant:1\nhave:%d", n)
	}

	devs[1].ClearReady()

	eventually(t, "second delivery", func() bool { return devs[1].IsReady() })

	checkValue(t, "Device 1", 0xBB, devs[1].Data())

	if n := p.Pending(1); n != 0 {
		t.Errorf("Pending mismatch\nwant:0\nhave:%d", n)
	}

	if devs[0].IsReady() || devs[3].IsReady() {
		t.Error("Idle device became ready")
	}
}

func TestImmediateWrite(t *testing.T) {
	p, devs, _ := newTestPeripherals(t)

	p.Enqueue(2, 0x07)

	if err := p.Write(2, 0x05); err != nil {
		t.Fatal(err)
	}

	if !devs[2].IsReady() {
		t.Error("Device not ready after write")
	}

	checkValue(t, "Device 2", 0x05, devs[2].Data())

	if n := p.Pending(2); n != 1 {
		t.Errorf("Pending mismatch\nwant:1\nhave:%d", n)
	}

	want := "Device 2: data=05 ready=1 pending=1"

	if have := p.Describe(2); have != want {
		t.Errorf("Describe mismatch\nwant:%s\nhave:%s", want, have)
	}
}

func TestMonitor(t *testing.T) {
	p, devs, out := newTestPeripherals(t)

	on, err := p.ToggleMonitor(0)

	if err != nil || !on {
		t.Fatalf("Monitor not started: %v", err)
	}

	devs[0].SetData(0x41)

	eventually(t, "monitor output", func() bool {
		return strings.Contains(out.String(), "Device 0: 41")
	})

	eventually(t, "data consumed", func() bool {
		return devs[0].Data() == 0 && devs[0].IsReady()
	})

	if on, _ = p.ToggleMonitor(0); on || p.Monitoring(0) {
		t.Fatal("Monitor not stopped")
	}

	devs[0].ClearReady()
	devs[0].SetData(0x42)

	time.Sleep(10 * time.Millisecond)

	if devs[0].IsReady() {
		t.Error("Stopped monitor forced ready")
	}

	checkValue(t, "Device 0", 0x42, devs[0].Data())

	if strings.Contains(out.String(), "42") {
		t.Errorf("Stopped monitor reported\n%s", out.String())
	}
}

func TestMonitorClose(t *testing.T) {
	p, devs, _ := newTestPeripherals(t)

	for _, id := range []int{0, 2} {
		if _, err := p.ToggleMonitor(id); err != nil {
			t.Fatal(err)
		}
	}

	p.Start()
	p.Close()

	for _, id := range []int{0, 2} {
		if p.Monitoring(id) {
			t.Errorf("Device %d still monitored", id)
		}

		devs[id].ClearReady()
	}

	p.Enqueue(3, 0x01)

	time.Sleep(10 * time.Millisecond)

	for _, id := range []int{0, 2, 3} {
		if devs[id].IsReady() {
			t.Errorf("Device %d ready after close", id)
		}
	}
}

func TestNoDevice(t *testing.T) {
	p, _, _ := newTestPeripherals(t)

	checks := []struct {
		Name string
		Err  error
	}{
		{"Enqueue", p.Enqueue(4, 1)},
		{"Write", p.Write(-1, 1)},
		{"Flag", p.Flag(9)},
	}

	for _, check := range checks {
		if !errors.Is(check.Err, ErrNoDevice) {
			t.Errorf("%s error mismatch\nwant:%v\nhave:%v", check.Name, ErrNoDevice, check.Err)
		}
	}

	if _, err := p.ToggleMonitor(4); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Monitor error mismatch\nwant:%v\nhave:%v", ErrNoDevice, err)
	}

	if p.Monitoring(4) {
		t.Error("Invalid device monitored")
	}
}

func TestIOCommands(t *testing.T) {
	c := newTestConsole(t, "")
	devs := c.mc.IOCtrls()

	if errs := c.ProcessLine("smartio 2 7 io 2 5 flag 1"); errs != nil {
		t.Fatalf("Unexpected errors %v", errs)
	}

	checkValue(t, "Device 2", 0x05, devs[2].Data())

	if !devs[1].IsReady() || !devs[2].IsReady() {
		t.Error("Devices not ready")
	}

	if n := c.Peripherals().Pending(2); n != 1 {
		t.Errorf("Pending mismatch\nwant:1\nhave:%d", n)
	}

	c.out.Reset()

	// A non-hex token after the device is the next command
	if errs := c.ProcessLine("io 3 state"); errs != nil {
		t.Fatalf("Unexpected errors %v", errs)
	}

	out := c.out.String()

	for _, want := range []string{"Device 3: data=00 ready=0 pending=0", "W: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in\n%s", want, out)
		}
	}

	c.out.Reset()
	c.ProcessLine("io")

	if n := strings.Count(c.out.String(), "Device "); n != 4 {
		t.Errorf("Device listing mismatch\nwant:4\nhave:%d", n)
	}
}
