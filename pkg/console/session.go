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
	"sync/atomic"
	"time"

	"github.com/lassandro/gobcomp/pkg/config"
	"github.com/lassandro/gobcomp/pkg/debugger"
)

// Session is the console state shared between the foreground command loop
// and the background loops. Scalars are atomics and the watch list guards
// itself.
type Session struct {
	// delay applied after each tick, zero when no paced run is active
	pacing atomic.Int64
	// delay a paced run starts with, changed by the sleep command
	runPacing atomic.Int64

	accesses  atomic.Bool
	reporting atomic.Bool
	regsTitle atomic.Bool

	Watch *debugger.Watchlist
}

func NewSession(cfg *config.Config) *Session {
	s := &Session{Watch: debugger.NewWatchlist()}
	s.runPacing.Store(int64(cfg.Pacing))
	s.reporting.Store(true)
	return s
}

func (s *Session) Pacing() time.Duration {
	return time.Duration(s.pacing.Load())
}

func (s *Session) SetPacing(d time.Duration) {
	s.pacing.Store(int64(d))
}

func (s *Session) swapPacing(d time.Duration) time.Duration {
	return time.Duration(s.pacing.Swap(int64(d)))
}

func (s *Session) RunPacing() time.Duration {
	return time.Duration(s.runPacing.Load())
}

func (s *Session) SetRunPacing(d time.Duration) {
	s.runPacing.Store(int64(d))
}

func (s *Session) Accesses() bool {
	return s.accesses.Load()
}

// Returns the new state
func (s *Session) ToggleAccesses() bool {
	for {
		old := s.accesses.Load()
		if s.accesses.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *Session) Reporting() bool {
	return s.reporting.Load()
}

func (s *Session) SetReporting(on bool) {
	s.reporting.Store(on)
}

// Requests the register title before the next register row
func (s *Session) resetTitle() {
	s.regsTitle.Store(true)
}

// Reports whether the title is due and consumes the request
func (s *Session) takeTitle() bool {
	return s.regsTitle.CompareAndSwap(true, false)
}
