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
	"bytes"
	"encoding/gob"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lassandro/gobcomp/pkg/assembler"
	"github.com/lassandro/gobcomp/pkg/encoding"
	"github.com/lassandro/gobcomp/pkg/machine"
)

var helpvar bool
var debugvar bool
var listvar bool
var outvar string

const usage = "bcomp-asm [-debug] [-list] [-out outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to write the program's labels next to the "+
			"image. The table will use the output filename with extension "+
			"'.bcdb'",
	)
	flag.BoolVar(
		&listvar, "list", false, "Prints an address/value listing to stdout",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

func printErrors(errs []error, source []byte) {
	lines := strings.Split(string(source), "\n")

	for _, err := range errs {
		tokenErr, ok := err.(assembler.TokenError)

		if !ok {
			log.Println(err)
			continue
		}

		cursor := tokenErr.GetPosition()

		if cursor.Line < 1 || cursor.Line > len(lines) {
			log.Println(err)
			continue
		}

		log.Printf(
			"%s\n%s\n\033[31m%*s\033[0m",
			err,
			strings.TrimRight(lines[cursor.Line-1], "\r"),
			cursor.Column,
			"^",
		)
	}
}

func printListing(program *assembler.Program) {
	for _, word := range program.Words {
		label, _ := program.Label(word.Addr)

		fmt.Printf(
			"%s %s %s\n",
			encoding.ToHex(uint64(word.Addr), machine.MEMORY_ADDR_WIDTH),
			encoding.ToHex(uint64(word.Value), machine.MEMORY_WIDTH),
			label,
		)
	}
}

func bcomp_asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var source []byte

	if stat, _ := os.Stdin.Stat(); stat.Mode()&os.ModeCharDevice == 0 {
		var err error

		if source, err = io.ReadAll(os.Stdin); err != nil {
			log.Println(err)
			return 1
		}

		log.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out.bin"
		}
	} else {
		if len(args) != 1 {
			log.Println(usage)
			return 1
		}

		filename := filepath.Base(args[0])

		if stat, err := os.Stat(args[0]); err != nil {
			log.Println(err)
			return 1
		} else if stat.IsDir() {
			log.Printf("%s is not a valid assembly file", filename)
			return 1
		}

		var err error

		if source, err = os.ReadFile(args[0]); err != nil {
			log.Println(err)
			return 1
		}

		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filename))

		if outvar == "" {
			outvar = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".bin"
		}
	}

	program, errs := assembler.Assemble(bytes.NewReader(source))

	if len(errs) > 0 {
		printErrors(errs, source)
		return 1
	}

	if listvar {
		printListing(program)
	}

	{
		buffer := new(bytes.Buffer)

		if err := assembler.WriteImage(buffer, program); err != nil {
			log.Println("Error writing output file")
			log.Println(err)
			return 1
		}

		if err := os.WriteFile(outvar, buffer.Bytes(), 0666); err != nil {
			log.Println("Error writing output file")
			log.Println(err)
			return 1
		}
	}

	if debugvar {
		filename := filepath.Join(filepath.Dir(outvar), strings.TrimSuffix(
			filepath.Base(outvar), filepath.Ext(outvar),
		)+".bcdb")

		file, err := os.Create(filename)

		if err != nil {
			log.Println("Error creating label table")
			log.Println(err)
			return 1
		}

		defer file.Close()

		if err := gob.NewEncoder(file).Encode(program.Labels); err != nil {
			log.Println("Error writing label table")
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(bcomp_asm())
}
