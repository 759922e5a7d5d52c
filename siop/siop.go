/*
 * A4091 - SIOP reset, abort and setup
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

package siop

import (
	"fmt"
	"io"

	"github.com/rcornwell/A4091/host"
)

// Reset puts the 53C710 back to a known idle state. Safe to call at
// any time, including when the chip is mid-operation.
func (s *SIOP) Reset() {
	s.Set8(RegDCNTL, DCNTLEA)
	s.Set8(RegISTAT, ISTATRST)
	s.Flush()
	s.Set8(RegISTAT, 0)
	s.Flush()
	s.Set8(RegSCID, 1<<7)
	s.Set8(RegDCNTL, DCNTLEA)
	s.Set8(RegDWT, 0xff)
}

// Abort stops any SCRIPTS operation in progress and waits for the chip
// to acknowledge. Returns non-zero on timeout.
func (s *SIOP) Abort(w io.Writer) int {
	s.Set8(RegISTAT, s.Get8(RegISTAT)|ISTATABRT)
	s.Flush()

	start := s.Host.Ticks()
	for s.Get8(RegDSTAT)&DSTATABRT == 0 {
		if host.AccessTimeout(s.Host, w, "SIOP abort timeout", 2, start) {
			return 1
		}
	}
	return 0
}

// burstMode maps a burst length in transfers to the DMODE BL field.
// FC2 is set at every length so bus accesses present function code
// 101, supervisor data, which the A4091 bus logic decodes.
func burstMode(burst int) uint8 {
	switch {
	case burst >= 8:
		return DMODEBLE3 | DMODEFC2
	case burst >= 4:
		return DMODEBLE2 | DMODEFC2
	case burst >= 2:
		return DMODEBLE1 | DMODEFC2
	default:
		return DMODEBLE0 | DMODEFC2
	}
}

// InitSIOP aborts and resets the chip, then programs it for diagnostic
// DMA use with the given burst length. Pending interrupt status left
// over from earlier activity is drained before returning.
func (s *SIOP) InitSIOP(w io.Writer, burst int) int {
	if rc := s.Abort(w); rc != 0 {
		return rc
	}
	s.Reset()

	s.Set8(RegDCNTL, DCNTLCFD2|DCNTLCOM)
	s.Set8(RegDMODE, burstMode(burst))
	s.Set8(RegCTEST7, s.Get8(RegCTEST7)|CTEST7CDIS)

	start := s.Host.Ticks()
	for s.Get8(RegISTAT)&(ISTATDIP|ISTATSIP) != 0 {
		istat := s.Get8(RegISTAT)
		if istat&ISTATSIP != 0 {
			_ = s.Get8(RegSSTAT0)
		}
		if istat&ISTATDIP != 0 {
			_ = s.Get8(RegDSTAT)
		}
		if host.AccessTimeout(s.Host, w, "SIOP interrupt drain timeout", 2, start) {
			return 1
		}
		s.Host.TickDelay(1)
	}
	return 0
}

// InterruptDump prints the interrupt-related status registers, read in
// the order which does not lose pending causes.
func (s *SIOP) InterruptDump(w io.Writer) {
	fmt.Fprintf(w, "ISTAT=%02x %02x DSTAT=%02x SSTAT0=%02x SSTAT1=%02x SSTAT2=%02x\n",
		s.Get8(RegISTAT), s.Get8(RegISTAT), s.Get8(RegDSTAT),
		s.Get8(RegSSTAT0), s.Get8(RegSSTAT1), s.Get8(RegSSTAT2))
}
