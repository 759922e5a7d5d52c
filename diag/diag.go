/*
 * A4091 - Diagnostic test runner
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

// Package diag holds the A4091 test battery: autoconfig and register
// probes, FIFO lane checks, SCRIPTS driven DMA, a throughput measure
// and SCSI pin walks. Each test owns the card through a takeover
// session and leaves the chip reset behind it.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/rcornwell/A4091/script"
	"github.com/rcornwell/A4091/takeover"
)

// Test selection bits for Run.
const (
	TestDeviceAccess = 1 << iota
	TestRegisterAccess
	TestDMAFIFO
	TestSCSIFIFO
	TestDMA
	TestDMACopy
	TestPerformance
	TestSCSIPins

	TestAll = 0xff
)

// Suite runs tests against one seized card.
type Suite struct {
	Sess     *takeover.Session
	Eng      *script.Engine
	Out      io.Writer
	Burst    int  // DMA burst length in transfers
	Continue bool // Keep testing past the first failure

	detail bool
}

// detailf prints a test detail line. The first one for a test breaks
// out of the banner line first.
func (s *Suite) detailf(format string, args ...any) {
	if !s.detail {
		fmt.Fprintf(s.Out, "\n")
		s.detail = true
	}
	fmt.Fprintf(s.Out, format, args...)
}

type testEntry struct {
	bit  uint32
	name string
	fn   func(*Suite) int
}

var tests = []testEntry{
	{TestDeviceAccess, "Device access", (*Suite).deviceAccess},
	{TestRegisterAccess, "Register test", (*Suite).registerAccess},
	{TestDMAFIFO, "DMA FIFO", (*Suite).dmaFIFO},
	{TestSCSIFIFO, "SCSI FIFO", (*Suite).scsiFIFO},
	{TestDMA, "DMA", (*Suite).dmaScratch},
	{TestDMACopy, "DMA copy", (*Suite).dmaCopy},
	{TestPerformance, "Performance", (*Suite).performance},
	{TestSCSIPins, "SCSI pins", (*Suite).scsiPins},
}

// showTestState prints the test banner at entry (state below zero) and
// the verdict when the test is done.
func (s *Suite) showTestState(name string, state int) {
	switch {
	case state < 0:
		fmt.Fprintf(s.Out, "  %-15s ", name)
	case state == 0:
		fmt.Fprintf(s.Out, "PASS\n")
	default:
		fmt.Fprintf(s.Out, "FAIL\n")
	}
}

// checkBreak stops the run on a pending console break. The card is
// handed back before exiting.
func (s *Suite) checkBreak() {
	if s.Sess.Host.CheckSignal() {
		fmt.Fprintf(s.Out, "^C Abort\n")
		takeover.Cleanup()
		os.Exit(1)
	}
}

// Run executes the tests selected by mask in fixed order and returns
// the accumulated failure count. A failing test ends the run unless
// Continue is set. The card is seized on entry and held until the
// caller releases the session.
func (s *Suite) Run(mask uint32) int {
	if err := s.Sess.Seize(); err != nil {
		fmt.Fprintf(s.Out, "%v\n", err)
		return 1
	}
	rc := 0
	for _, t := range tests {
		if mask&t.bit == 0 {
			continue
		}
		s.checkBreak()
		s.detail = false
		s.showTestState(t.name, -1)
		trc := t.fn(s)
		s.showTestState(t.name, trc)
		if trc != 0 {
			rc++
			if !s.Continue {
				break
			}
		}
	}
	return rc
}
