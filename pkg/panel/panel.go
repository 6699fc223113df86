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

// Package panel renders the front panel register widgets shown by the
// console's regs command.
package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lassandro/gobcomp/pkg/encoding"
)

var (
	ColorBorder = lipgloss.Color("#4b5563")
	ColorTitle  = lipgloss.Color("#f9fafb")
	ColorValue  = lipgloss.Color("#22c55e")
	ColorLit    = lipgloss.Color("#f59e0b")
	ColorDimmed = lipgloss.Color("#6b7280")
)

var (
	StyleBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTitle).
			Width(3)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorValue)

	StyleLit = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorLit)

	StyleUnlit = lipgloss.NewStyle().
			Foreground(ColorDimmed)
)

// Register is a single register widget. Binary registers show every bit,
// the rest are shown in hex.
type Register struct {
	Name   string
	Value  uint64
	Width  uint
	Binary bool
}

type Flag struct {
	Name string
	Set  bool
}

func (reg Register) Text() string {
	if reg.Binary {
		return encoding.ToBinary(reg.Value, reg.Width)
	}

	return encoding.ToHex(reg.Value, reg.Width)
}

func (reg Register) View() string {
	return StyleBox.Render(
		StyleTitle.Render(reg.Name) + " " + StyleValue.Render(reg.Text()),
	)
}

func FlagsView(flags []Flag) string {
	lights := make([]string, 0, len(flags))

	for _, flag := range flags {
		if flag.Set {
			lights = append(lights, StyleLit.Render(flag.Name))
		} else {
			lights = append(lights, StyleUnlit.Render(flag.Name))
		}
	}

	return StyleBox.Render(strings.Join(lights, " "))
}

// Render lays the registers out in rows of perRow widgets followed by the
// flag lights.
func Render(regs []Register, flags []Flag, perRow int) string {
	if perRow <= 0 {
		perRow = 1
	}

	rows := make([]string, 0, len(regs)/perRow+2)

	for start := 0; start < len(regs); start += perRow {
		end := min(start+perRow, len(regs))
		views := make([]string, 0, end-start)

		for _, reg := range regs[start:end] {
			views = append(views, reg.View())
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, views...))
	}

	if len(flags) > 0 {
		rows = append(rows, FlagsView(flags))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
