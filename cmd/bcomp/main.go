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

package main

import (
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/lassandro/gobcomp/pkg/assembler"
	"github.com/lassandro/gobcomp/pkg/config"
	"github.com/lassandro/gobcomp/pkg/console"
	"github.com/lassandro/gobcomp/pkg/machine"
)

var helpvar bool
var configvar string
var programvar string
var imagevar string

const usage = "bcomp [-config file] [-program file.asm | -image file.bin]"

const banner = "Basic computer front panel. Type ? for the command list."

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.StringVar(&configvar, "config", "", "Loads settings from a YAML file")
	flag.StringVar(
		&programvar, "program", "",
		"Assembles a source file and loads it before the first prompt",
	)
	flag.StringVar(
		&imagevar, "image", "",
		"Loads a program image written by bcomp-asm before the first prompt",
	)
	flag.Parse()
}

// Restores the labels bcomp-asm -debug wrote next to an image
func loadLabels(image string, program *assembler.Program) error {
	filename := filepath.Join(filepath.Dir(image), strings.TrimSuffix(
		filepath.Base(image), filepath.Ext(image),
	)+".bcdb")

	file, err := os.Open(filename)

	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	defer file.Close()

	return gob.NewDecoder(file).Decode(&program.Labels)
}

func preload(c *console.Console) error {
	if programvar != "" {
		source, err := os.ReadFile(programvar)

		if err != nil {
			return err
		}

		if _, err := c.LoadSource(string(source)); err != nil {
			return err
		}
	}

	if imagevar != "" {
		file, err := os.Open(imagevar)

		if err != nil {
			return err
		}

		defer file.Close()

		program, err := assembler.ReadImage(file)

		if err != nil {
			return err
		}

		if err := loadLabels(imagevar, program); err != nil {
			log.Println("Error loading label table")
			log.Println(err)
		}

		if err := c.LoadProgram(program); err != nil {
			return err
		}
	}

	return nil
}

func bcomp() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	if len(flag.Args()) != 0 {
		log.Println(usage)
		return 1
	}

	cfg := config.Default()

	if configvar != "" {
		var err error

		if cfg, err = config.Load(configvar); err != nil {
			log.Println(err)
			return 1
		}
	}

	mc := machine.New(cfg.IO.Devices)

	c := console.New(
		cfg, mc, console.Devices(mc.IOCtrls()), nil, os.Stdin, os.Stdout,
	)
	defer c.Close()

	if err := preload(c); err != nil {
		log.Println(err)
		return 1
	}

	prompt := ""

	if isTerminal(os.Stdin.Fd()) {
		fmt.Println(banner)
		prompt = "> "
	}

	// Interrupt stops a program left running in run mode
	sig := make(chan os.Signal, 1)
	defer close(sig)

	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	go func() {
		for range sig {
			if mc.Running() && mc.ProgramState(machine.STATE_W) == 1 {
				mc.InvertRunState()
			}
		}
	}()

	c.Start()
	c.Run(prompt)

	return 0
}

func main() {
	os.Exit(bcomp())
}
