/*
 * A4091 - Main process.
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/A4091/bus"
	"github.com/rcornwell/A4091/card"
	"github.com/rcornwell/A4091/command"
	"github.com/rcornwell/A4091/config"
	"github.com/rcornwell/A4091/diag"
	"github.com/rcornwell/A4091/script"
	"github.com/rcornwell/A4091/sim"
	"github.com/rcornwell/A4091/siop"
	"github.com/rcornwell/A4091/takeover"
	logger "github.com/rcornwell/A4091/util/logger"
)

func main() {
	optAddr := getopt.String('a', "", "Card index or bus address (hex)")
	optBurst := getopt.Int('b', 0, "DMA burst length (1, 2, 4 or 8)")
	optAuto := getopt.Bool('c', "Decode autoconfig area")
	optDebug := getopt.Counter('d', "Debug output (repeat for more)")
	optDMA := getopt.Bool('D', "DMA transfer (src dst len as hex args)")
	optForce := getopt.Bool('f', "Run even with a memory watcher loaded")
	optHelp := getopt.Bool('h', "Help")
	optKill := getopt.Bool('k', "Kill (disable) the resident SCSI driver")
	optLoop := getopt.Bool('L', "Loop tests until failure")
	optMon := getopt.Bool('m', "Interactive monitor")
	optProbe := getopt.Bool('P', "Probe for cards and list them")
	optRegs := getopt.Bool('r', "Display SIOP registers")
	optSwitches := getopt.Bool('s', "Display DIP switches")
	optTest := getopt.Bool('t', "Run all tests")
	optConfig := getopt.StringLong("config", 0, config.DefaultFile,
		"Configuration file")
	optWindow := getopt.StringLong("window", 0, "",
		"Map a physical bus window at hex address (decoders only)")

	var optDigit [10]*bool
	for i := range optDigit {
		optDigit[i] = getopt.Bool(rune('0'+i),
			fmt.Sprintf("Run test %d", i))
	}
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*optConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	burst := cfg.Burst
	if *optBurst != 0 {
		burst = *optBurst
	}

	var file *os.File
	if cfg.LogFile != "" {
		file, _ = os.Create(cfg.LogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(logger.NewHandler(file,
		&slog.HandlerOptions{Level: programLevel, AddSource: false},
		*optDebug > 0)))

	machine := sim.New(sim.Faults{})

	testMask := uint32(0)
	for i, flag := range optDigit {
		if *flag {
			testMask |= 1 << i
		}
	}
	if *optTest {
		testMask = diag.TestAll
	}
	runTests := testMask != 0 || (!*optAuto && !*optSwitches && !*optRegs &&
		!*optKill && !*optDMA && !*optProbe && !*optMon && *optWindow == "")
	if runTests && testMask == 0 {
		testMask = diag.TestAll
	}

	if !*optForce && (machine.FindTask("« Enforcer »") ||
		machine.FindTask("« MuForce »")) {
		fmt.Printf("A memory watcher is running; registers decode as garbage under it.\n")
		fmt.Printf("Remove it or use -f to run anyway.\n")
		os.Exit(1)
	}

	// Physical window mode: decode only, no host services behind it.
	if *optWindow != "" {
		base, err := parseHex(*optWindow)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad window address %q\n", *optWindow)
			os.Exit(1)
		}
		window, err := bus.OpenWindow(base, 0x01000000)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		defer window.Close()
		c := &card.Card{Space: window, Base: base}
		rc := 0
		if *optAuto {
			rc += c.DecodeAutoconfig(os.Stdout)
		}
		if *optSwitches {
			rc += c.DecodeSwitches(os.Stdout)
		}
		if *optRegs {
			s := siop.New(window, machine, base+card.OffsetRegisters)
			rc += s.DecodeRegisters(os.Stdout)
		}
		if rc != 0 {
			os.Exit(1)
		}
		return
	}

	cardAddr := cfg.Card
	cardSet := cfg.CardSet
	if *optAddr != "" {
		if cardAddr, err = parseHex(*optAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Bad card address %q\n", *optAddr)
			os.Exit(1)
		}
		cardSet = true
	}

	if *optProbe {
		listAddr := uint32(card.ListAll)
		if cardSet {
			listAddr = cardAddr
		}
		os.Exit(card.List(machine, os.Stdout, listAddr))
	}

	pos := uint32(0)
	if cardSet && cardAddr < 0x10 {
		pos = cardAddr
	}
	base, ok := card.Find(machine, pos)
	if cardSet && cardAddr >= 0x10 {
		base, ok = cardAddr, true
	}
	if !ok {
		fmt.Printf("No A4091 cards detected\n")
		os.Exit(1)
	}
	fmt.Printf("A4091 at 0x%08x\n", base)

	c := &card.Card{Space: machine, Base: base}
	s := siop.New(machine, machine, base+card.OffsetRegisters)
	sess := &takeover.Session{Card: c, SIOP: s, Host: machine, Out: os.Stdout}
	defer takeover.Cleanup()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		machine.SignalBreak()
		<-sigs
		fmt.Printf("^C Abort\n")
		takeover.Cleanup()
		os.Exit(1)
	}()

	rc := 0
	if *optAuto {
		rc += c.DecodeAutoconfig(os.Stdout)
	}
	if *optSwitches {
		rc += c.DecodeSwitches(os.Stdout)
	}
	if *optRegs {
		rc += s.DecodeRegisters(os.Stdout)
	}

	if *optKill {
		if err := sess.Seize(); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		rc += sess.KillDriver()
	}

	var eng *script.Engine
	needEngine := *optDMA || *optMon || runTests
	if needEngine {
		if eng, err = script.NewEngine(sess, os.Stdout); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		defer eng.Close()
	}

	if *optDMA {
		args := getopt.Args()
		if len(args) != 3 {
			fmt.Printf("-D needs src, dst and len in hex\n")
			os.Exit(1)
		}
		src, err1 := parseHex(args[0])
		dst, err2 := parseHex(args[1])
		length, err3 := parseHex(args[2])
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Printf("-D needs src, dst and len in hex\n")
			os.Exit(1)
		}
		if err := sess.Seize(); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		if s.InitSIOP(os.Stdout, burst) != 0 ||
			eng.DMACopy(src, dst, length) != 0 {
			rc++
		}
	}

	if runTests {
		suite := &diag.Suite{Sess: sess, Eng: eng, Out: os.Stdout,
			Burst: burst, Continue: *optLoop}
		for {
			trc := suite.Run(testMask)
			rc += trc
			if trc != 0 || !*optLoop {
				break
			}
		}
	}

	if *optMon {
		mon := &command.Monitor{Sess: sess, Eng: eng, Out: os.Stdout}
		mon.Run()
	}

	sess.Release()
	if rc != 0 {
		os.Exit(1)
	}
}

func parseHex(arg string) (uint32, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 32)
	return uint32(value), err
}
