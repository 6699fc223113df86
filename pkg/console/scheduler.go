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
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lassandro/gobcomp/pkg/config"
	"github.com/lassandro/gobcomp/pkg/machine"
)

// Scheduler starts paced continuous runs and the batch run-to-halt mode.
type Scheduler struct {
	emu     Emulator
	session *Session
	log     *log.Logger

	grace   time.Duration
	backoff time.Duration
	halt    uint64

	batch  atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(
	emu Emulator, session *Session, cfg *config.Config, logger *log.Logger,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		emu:     emu,
		session: session,
		log:     logger,
		grace:   cfg.Exe.Grace,
		backoff: cfg.Exe.Backoff,
		halt:    uint64(cfg.Exe.Halt),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run begins a paced continuous run on the emulator goroutine. start selects
// the Start operation over Continue.
func (s *Scheduler) Run(start bool) error {
	previous := s.session.swapPacing(s.session.RunPacing())

	var ok bool

	if start {
		ok = s.emu.StartStart()
	} else {
		ok = s.emu.StartContinue()
	}

	if !ok {
		s.session.SetPacing(previous)
		return ErrOperationRejected
	}

	return nil
}

// tick runs after every machine tick on the emulator goroutine
func (s *Scheduler) tick() {
	if pacing := s.session.Pacing(); pacing > 0 {
		time.Sleep(pacing)
	}
}

// stopped runs when the emulator finishes a run or a console pulse
func (s *Scheduler) stopped() {
	s.session.SetPacing(0)
}

func (s *Scheduler) Batching() bool {
	return s.batch.Load()
}

// RunToHalt runs the loaded program in the background until the command
// register holds the halt sentinel. Only one batch run may be active.
func (s *Scheduler) RunToHalt() error {
	if s.ctx.Err() != nil || !s.batch.CompareAndSwap(false, true) {
		return ErrOperationRejected
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.batch.Store(false)

		if !s.wait(s.grace) {
			return
		}

		if !s.emu.StartContinue() {
			s.log.Println(ErrOperationRejected)
			return
		}

		for {
			if !s.emu.Running() && s.emu.RegValue(machine.REG_CR) == s.halt {
				return
			}

			// A rejected continue means the previous run is still going
			if !s.emu.ExecuteContinue() && !s.wait(s.backoff) {
				return
			}

			if s.ctx.Err() != nil {
				return
			}
		}
	}()

	return nil
}

// Returns false when the scheduler was closed while waiting
func (s *Scheduler) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close stops a batch run and waits for it to exit. A run still in progress
// in run mode is stopped at the end of its current instruction.
func (s *Scheduler) Close() {
	s.cancel()

	if s.batch.Load() && s.emu.Running() &&
		s.emu.ProgramState(machine.STATE_W) == 1 {
		s.emu.InvertRunState()
	}

	s.wg.Wait()
}
