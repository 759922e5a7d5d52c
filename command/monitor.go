/*
 * A4091 - Interactive monitor
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package command is the interactive monitor: a line-edited prompt for
// poking at a card while it is seized. Useful when chasing a fault the
// scripted tests only hint at.
package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/A4091/diag"
	"github.com/rcornwell/A4091/script"
	"github.com/rcornwell/A4091/siop"
	"github.com/rcornwell/A4091/takeover"
	"github.com/rcornwell/A4091/util/hex"
)

// Monitor holds the prompt state.
type Monitor struct {
	Sess *takeover.Session
	Eng  *script.Engine
	Out  io.Writer
}

var commands = []string{
	"autoconfig", "dma", "dump", "help", "interrupts", "quit", "reg",
	"regs", "release", "reset", "seize", "switches", "test",
}

func parseNum(arg string) (uint32, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 32)
	return uint32(value), err
}

// Run reads and executes commands until quit or end of input.
func (m *Monitor) Run() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		lower := strings.ToLower(partial)
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, lower) {
				out = append(out, cmd)
			}
		}
		for _, rd := range siop.RegDefs {
			if strings.HasPrefix("reg "+strings.ToLower(rd.Name), lower) {
				out = append(out, "reg "+strings.ToLower(rd.Name))
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("A4091> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		if m.execute(strings.Fields(input)) {
			return
		}
	}
}

// execute runs one command line, returning true on quit.
func (m *Monitor) execute(args []string) bool {
	s := m.Sess
	switch strings.ToLower(args[0]) {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprintf(m.Out, "Commands: %s\n", strings.Join(commands, " "))

	case "seize":
		if err := s.Seize(); err != nil {
			fmt.Fprintf(m.Out, "%v\n", err)
		}

	case "release":
		s.Release()

	case "reset":
		s.SIOP.Reset()

	case "regs":
		s.SIOP.DecodeRegisters(m.Out)

	case "reg":
		m.cmdReg(args[1:])

	case "autoconfig":
		s.Card.DecodeAutoconfig(m.Out)

	case "switches":
		s.Card.DecodeSwitches(m.Out)

	case "interrupts":
		istat, sien, sstat0, dstat := s.Snapshot()
		fmt.Fprintf(m.Out, "count=%d ISTAT=%02x SIEN=%02x SSTAT0=%02x DSTAT=%02x\n",
			s.IntCount(), istat, sien, sstat0, dstat)

	case "dump":
		m.cmdDump(args[1:])

	case "dma":
		m.cmdDMA(args[1:])

	case "test":
		suite := &diag.Suite{Sess: s, Eng: m.Eng, Out: m.Out, Burst: 2}
		mask := uint32(diag.TestAll)
		if len(args) > 1 {
			if v, err := parseNum(args[1]); err == nil {
				mask = v
			}
		}
		suite.Run(mask)

	default:
		fmt.Fprintf(m.Out, "Unknown command %q\n", args[0])
	}
	return false
}

func (m *Monitor) cmdReg(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(m.Out, "reg <name> [value]\n")
		return
	}
	rd, ok := siop.FindReg(strings.ToUpper(args[0]))
	if !ok {
		fmt.Fprintf(m.Out, "No register named %q\n", args[0])
		return
	}
	if len(args) > 1 {
		value, err := parseNum(args[1])
		if err != nil {
			fmt.Fprintf(m.Out, "Bad value %q\n", args[1])
			return
		}
		m.Sess.SIOP.WriteReg(rd, value)
		return
	}
	value := m.Sess.SIOP.ReadReg(rd)
	var str strings.Builder
	switch rd.Size {
	case 1:
		hex.FormatByte(&str, uint8(value))
	case 4:
		hex.FormatWord(&str, []uint32{value})
	default:
		fmt.Fprintf(&str, "%0*x", rd.Size*2, value)
	}
	fmt.Fprintf(m.Out, "%s = %s", rd.Name, strings.TrimRight(str.String(), " "))
	if rd.Bits != nil {
		siop.PrintBits(m.Out, rd.Bits, value)
	}
	fmt.Fprintf(m.Out, "\n")
}

func (m *Monitor) cmdDump(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(m.Out, "dump <addr> [len]\n")
		return
	}
	addr, err := parseNum(args[0])
	if err != nil {
		fmt.Fprintf(m.Out, "Bad address %q\n", args[0])
		return
	}
	length := uint32(0x40)
	if len(args) > 1 {
		if length, err = parseNum(args[1]); err != nil {
			fmt.Fprintf(m.Out, "Bad length %q\n", args[1])
			return
		}
	}
	sp := m.Sess.SIOP.Space
	for base := addr &^ 0xf; base < addr+length; base += 16 {
		var row [16]uint8
		for i := range row {
			row[i] = sp.Read8(base + uint32(i))
		}
		var str strings.Builder
		hex.FormatWord(&str, []uint32{base})
		str.WriteByte(' ')
		hex.FormatBytes(&str, true, row[:])
		str.WriteByte(' ')
		hex.FormatASCII(&str, row[:])
		fmt.Fprintf(m.Out, "%s\n", str.String())
	}
}

func (m *Monitor) cmdDMA(args []string) {
	if len(args) < 3 {
		fmt.Fprintf(m.Out, "dma <src> <dst> <len>\n")
		return
	}
	src, err1 := parseNum(args[0])
	dst, err2 := parseNum(args[1])
	length, err3 := parseNum(args[2])
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintf(m.Out, "Bad argument\n")
		return
	}
	if err := m.Sess.Seize(); err != nil {
		fmt.Fprintf(m.Out, "%v\n", err)
		return
	}
	if rc := m.Eng.DMACopy(src, dst, length); rc != 0 {
		fmt.Fprintf(m.Out, "DMA failed\n")
	}
}
