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

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Pacing time.Duration `yaml:"pacing"`
	IO     IOConfig      `yaml:"io"`
	Exe    ExeConfig     `yaml:"exe"`
}

type IOConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	Devices         int           `yaml:"devices"`
}

// ExeConfig controls the batch run-to-halt mode. Halt is the command
// register value that marks the end of a batch run.
type ExeConfig struct {
	Grace   time.Duration `yaml:"grace"`
	Backoff time.Duration `yaml:"backoff"`
	Halt    uint16        `yaml:"halt"`
}

var ErrInvalidConfig = errors.New("Invalid configuration")

func Default() *Config {
	return &Config{
		Pacing: time.Millisecond,
		IO: IOConfig{
			PollInterval:    2 * time.Millisecond,
			MonitorInterval: time.Millisecond,
			Devices:         4,
		},
		Exe: ExeConfig{
			Grace:   200 * time.Millisecond,
			Backoff: 2 * time.Millisecond,
			Halt:    0x100,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Pacing < 0:
		return fmt.Errorf("%w: pacing %v", ErrInvalidConfig, c.Pacing)
	case c.IO.PollInterval <= 0:
		return fmt.Errorf(
			"%w: io.poll_interval %v", ErrInvalidConfig, c.IO.PollInterval,
		)
	case c.IO.MonitorInterval <= 0:
		return fmt.Errorf(
			"%w: io.monitor_interval %v", ErrInvalidConfig, c.IO.MonitorInterval,
		)
	case c.IO.Devices <= 0:
		return fmt.Errorf("%w: io.devices %d", ErrInvalidConfig, c.IO.Devices)
	case c.Exe.Grace < 0:
		return fmt.Errorf("%w: exe.grace %v", ErrInvalidConfig, c.Exe.Grace)
	case c.Exe.Backoff <= 0:
		return fmt.Errorf("%w: exe.backoff %v", ErrInvalidConfig, c.Exe.Backoff)
	}

	return nil
}
