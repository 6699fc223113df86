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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bcomp.yaml")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default configuration rejected\nwant:<nil>\nhave:%v", err)
	}

	if cfg.Exe.Halt != 0x100 {
		t.Fatalf("Halt sentinel mismatch\nwant:0x100\nhave:%#x", cfg.Exe.Halt)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
pacing: 5ms
io:
  poll_interval: 10ms
  devices: 8
exe:
  halt: 0x200
`)

	cfg, err := Load(path)

	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want interface{}
		have interface{}
	}{
		{"pacing", 5 * time.Millisecond, cfg.Pacing},
		{"io.poll_interval", 10 * time.Millisecond, cfg.IO.PollInterval},
		{"io.monitor_interval", time.Millisecond, cfg.IO.MonitorInterval},
		{"io.devices", 8, cfg.IO.Devices},
		{"exe.grace", 200 * time.Millisecond, cfg.Exe.Grace},
		{"exe.halt", uint16(0x200), cfg.Exe.Halt},
	}

	for _, test := range tests {
		if test.want != test.have {
			t.Errorf(
				"%s mismatch\nwant:%v\nhave:%v", test.name, test.want, test.have,
			)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Missing file accepted")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "io: [")); err == nil {
		t.Fatal("Invalid YAML accepted")
	}
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "io:\n  devices: 0\n")

	_, err := Load(path)

	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Invalid device count accepted\nwant:%v\nhave:%v",
			ErrInvalidConfig, err,
		)
	}
}
