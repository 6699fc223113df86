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

import "sync"

// fifo is a device's queue of values waiting for a readiness window.
type fifo struct {
	mu     sync.Mutex
	values []uint64
}

func (q *fifo) push(value uint64) {
	q.mu.Lock()
	q.values = append(q.values, value)
	q.mu.Unlock()
}

func (q *fifo) pop() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.values) == 0 {
		return 0, false
	}

	value := q.values[0]
	q.values[0] = 0
	q.values = q.values[1:]

	return value, true
}

func (q *fifo) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.values)
}
