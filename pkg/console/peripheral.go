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
	"fmt"
	"sync"
	"time"

	"github.com/lassandro/gobcomp/pkg/config"
	"github.com/lassandro/gobcomp/pkg/encoding"
	"github.com/lassandro/gobcomp/pkg/machine"
)

// Peripherals simulates the outside world of the I/O channels: queued
// writes delivered one per readiness window by a reconciliation poller,
// immediate writes, and monitors that consume whatever a device outputs.
type Peripherals struct {
	devices         []Device
	out             *Output
	pollInterval    time.Duration
	monitorInterval time.Duration

	// device id -> *fifo
	pending sync.Map
	// device id -> *monitor, present only while its loop runs
	monitors sync.Map

	cancel context.CancelFunc
	done   chan struct{}
}

type monitor struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (m *monitor) stop() {
	m.cancel()
	<-m.done
}

func NewPeripherals(devices []Device, cfg *config.Config, out *Output) *Peripherals {
	return &Peripherals{
		devices:         devices,
		out:             out,
		pollInterval:    cfg.IO.PollInterval,
		monitorInterval: cfg.IO.MonitorInterval,
	}
}

// Start launches the reconciliation poller. It runs until Close.
func (p *Peripherals) Start() {
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.reconcile()
			}
		}
	}()
}

// Close stops the poller and every monitor and waits for them to exit.
func (p *Peripherals) Close() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
		p.cancel = nil
	}

	p.monitors.Range(func(key, value interface{}) bool {
		value.(*monitor).stop()
		p.monitors.Delete(key)
		return true
	})
}

func (p *Peripherals) Count() int {
	return len(p.devices)
}

func (p *Peripherals) Device(id int) (Device, error) {
	if id < 0 || id >= len(p.devices) {
		return nil, fmt.Errorf("%w %d", ErrNoDevice, id)
	}

	return p.devices[id], nil
}

func (p *Peripherals) Describe(id int) string {
	dev := p.devices[id]

	ready := 0
	if dev.IsReady() {
		ready = 1
	}

	return fmt.Sprintf(
		"Device %d: data=%s ready=%d pending=%d",
		id,
		encoding.ToHex(dev.Data(), machine.DEVICE_WIDTH),
		ready,
		p.Pending(id),
	)
}

// Enqueue appends value to the device's pending writes. It never blocks on
// the device.
func (p *Peripherals) Enqueue(id int, value uint64) error {
	if _, err := p.Device(id); err != nil {
		return err
	}

	queue, _ := p.pending.LoadOrStore(id, &fifo{})
	queue.(*fifo).push(value)

	return nil
}

func (p *Peripherals) Pending(id int) int {
	if queue, ok := p.pending.Load(id); ok {
		return queue.(*fifo).len()
	}

	return 0
}

// Write delivers value immediately and marks the device ready, leaving its
// pending writes untouched.
func (p *Peripherals) Write(id int, value uint64) error {
	dev, err := p.Device(id)

	if err != nil {
		return err
	}

	dev.SetData(value)
	dev.SetReady()

	return nil
}

func (p *Peripherals) Flag(id int) error {
	dev, err := p.Device(id)

	if err != nil {
		return err
	}

	dev.SetReady()

	return nil
}

// Delivers one pending value to every device that is not ready
func (p *Peripherals) reconcile() {
	p.pending.Range(func(key, value interface{}) bool {
		dev := p.devices[key.(int)]

		if dev.IsReady() {
			return true
		}

		if data, ok := value.(*fifo).pop(); ok {
			dev.SetData(data)
			dev.SetReady()
		}

		return true
	})
}

func (p *Peripherals) Monitoring(id int) bool {
	_, ok := p.monitors.Load(id)
	return ok
}

// ToggleMonitor starts or stops the device's monitor and returns whether it
// is now monitored. Stopping waits for the monitor loop to exit before the
// device is reported as unmonitored.
func (p *Peripherals) ToggleMonitor(id int) (bool, error) {
	dev, err := p.Device(id)

	if err != nil {
		return false, err
	}

	if value, ok := p.monitors.Load(id); ok {
		value.(*monitor).stop()
		p.monitors.Delete(id)
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &monitor{cancel: cancel, done: make(chan struct{})}
	p.monitors.Store(id, m)

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(p.monitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			dev.SetReady()

			if data := dev.Data(); data != 0 {
				p.out.Printf(
					"Device %d: %s\n",
					id,
					encoding.ToHex(data, machine.DEVICE_WIDTH),
				)
				dev.SetData(0)
			}
		}
	}()

	return true, nil
}
