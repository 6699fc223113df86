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
	"testing"
	"time"

	"github.com/lassandro/gobcomp/pkg/machine"
)

func TestPacedRun(t *testing.T) {
	c := newTestConsole(t, "")

	c.mc.Memory().SetValue(0, 0xC000) // JUMP $0
	c.session.SetRunPacing(time.Millisecond)

	if errs := c.ProcessLine("run continue"); errs != nil {
		t.Fatalf("Unexpected errors %v", errs)
	}

	if !c.mc.Running() {
		t.Fatal("Machine not running")
	}

	if pacing := c.session.Pacing(); pacing != time.Millisecond {
		t.Errorf("Pacing mismatch\nwant:%v\nhave:%v", time.Millisecond, pacing)
	}

	c.session.SetRunPacing(5 * time.Millisecond)

	errs := c.ProcessLine("continue")

	if len(errs) != 1 || !errors.Is(errs[0], ErrOperationRejected) {
		t.Fatalf("Expected rejection, have %v", errs)
	}

	if pacing := c.session.Pacing(); pacing != time.Millisecond {
		t.Errorf("Pacing not restored\nwant:%v\nhave:%v", time.Millisecond, pacing)
	}

	c.ProcessLine("run")

	eventually(t, "the machine to stop", func() bool { return !c.mc.Running() })

	if pacing := c.session.Pacing(); pacing != 0 {
		t.Errorf("Pacing not cleared\nwant:0\nhave:%v", pacing)
	}
}

func TestSleep(t *testing.T) {
	c := newTestConsole(t, "")

	if errs := c.ProcessLine("sleep 1F4"); errs != nil {
		t.Fatalf("Unexpected errors %v", errs)
	}

	if pacing := c.session.RunPacing(); pacing != 500*time.Millisecond {
		t.Errorf("Run pacing mismatch\nwant:%v\nhave:%v", 500*time.Millisecond, pacing)
	}

	if pacing := c.session.Pacing(); pacing != 0 {
		t.Errorf("Pacing changed outside a run\nwant:0\nhave:%v", pacing)
	}
}

func TestRunToHalt(t *testing.T) {
	c := newTestConsole(t, "")

	program := []uint64{0x0200, 0x0700, 0x0700, 0x0100} // CLA INC INC HLT

	for i, word := range program {
		c.mc.Memory().SetValue(0x10+uint64(i), word)
	}

	c.mc.Register(machine.REG_IP).SetValue(0x10)
	c.mc.Register(machine.REG_AC).SetValue(0x1234)

	if err := c.sched.RunToHalt(); err != nil {
		t.Fatal(err)
	}

	if err := c.sched.RunToHalt(); !errors.Is(err, ErrOperationRejected) {
		t.Errorf("Second batch run\nwant:%v\nhave:%v", ErrOperationRejected, err)
	}

	eventually(t, "the program to halt", func() bool { return !c.sched.Batching() })

	checkValue(t, "AC", 2, c.mc.RegValue(machine.REG_AC))
	checkValue(t, "CR", 0x100, c.mc.RegValue(machine.REG_CR))
	checkValue(t, "IP", 0x14, c.mc.RegValue(machine.REG_IP))

	c.mc.Register(machine.REG_IP).SetValue(0x11)

	if err := c.sched.RunToHalt(); err != nil {
		t.Fatalf("Batch run after halt rejected: %v", err)
	}

	eventually(t, "the second run", func() bool { return !c.sched.Batching() })

	checkValue(t, "AC", 4, c.mc.RegValue(machine.REG_AC))
}

func TestRunToHaltClose(t *testing.T) {
	c := newTestConsole(t, "")

	c.mc.Memory().SetValue(0, 0xC000) // JUMP $0
	c.mc.InvertRunState()

	if err := c.sched.RunToHalt(); err != nil {
		t.Fatal(err)
	}

	eventually(t, "the run to start", func() bool { return c.mc.Running() })

	c.Close()

	if c.sched.Batching() {
		t.Error("Batch run still active after close")
	}

	eventually(t, "the machine to stop", func() bool { return !c.mc.Running() })

	checkValue(t, "W", 0, c.mc.ProgramState(machine.STATE_W))
}
