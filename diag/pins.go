/*
 * A4091 - SCSI pin test
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

package diag

import (
	"github.com/rcornwell/A4091/siop"
)

// calcParity returns the odd-parity bit for one data byte.
func calcParity(data uint8) uint8 {
	data ^= data >> 4
	data ^= data >> 2
	data ^= data >> 1
	return ^data & 1
}

// scsiPins drives walking patterns out the SCSI output latches in low
// level loopback mode and reads them back off the bus pins. Stuck
// results are reported in pin terms: the bus is active low, so a
// register bit stuck high is a pin stuck low.
func (s *Suite) scsiPins() int {
	sp := s.Sess.SIOP
	h := s.Sess.Host
	rc := 0

	ctest4 := sp.Get8(siop.RegCTEST4)
	scntl0 := sp.Get8(siop.RegSCNTL0)
	scntl1 := sp.Get8(siop.RegSCNTL1)
	dcntl := sp.Get8(siop.RegDCNTL)

	if sp.Get8(siop.RegSBDL) == 0xff && sp.Get8(siop.RegSBCL) == 0xff {
		s.detailf("    All SCSI data and control lines high: check terminator power\n")
		return 1
	}
	if sp.Get8(siop.RegSSTAT1)&siop.SSTAT1RST != 0 {
		s.detailf("    SCSI bus reset is stuck asserted\n")
		return 1
	}

	// The chip must be able to drive RST itself.
	sp.Set8(siop.RegSCNTL1, siop.SCNTL1RST)
	h.TickDelay(1)
	if sp.Get8(siop.RegSSTAT1)&siop.SSTAT1RST == 0 {
		s.detailf("    Unable to assert SCSI bus reset\n")
		rc++
	}
	sp.Set8(siop.RegSCNTL1, 0)

	sp.Set8(siop.RegDCNTL, dcntl|siop.DCNTLLLM)
	sp.Set8(siop.RegCTEST4, ctest4|siop.CTEST4SLBE)
	sp.Set8(siop.RegSCNTL0, siop.SCNTL0EPG)
	sp.Set8(siop.RegSCNTL1, siop.SCNTL1ADB)
	sp.Set8(siop.RegSOCL, 0)

	// Data walk, a lone one then a lone zero per pin, parity as the
	// ninth bit.
	stuckHigh := uint16(0x1ff)
	stuckLow := uint16(0x1ff)
	diffs := uint16(0)
	for pass := 0; pass < 2; pass++ {
		for bit := -1; bit < 8; bit++ {
			dout := uint8(0)
			if bit >= 0 {
				dout = 1 << bit
			}
			if pass == 1 {
				dout = ^dout
			}
			sp.Set8(siop.RegSODL, dout)
			got := uint16(sp.Get8(siop.RegSBDL))
			if sp.Get8(siop.RegSSTAT1)&siop.SSTAT1PAR != 0 {
				got |= 1 << 8
			}
			expect := uint16(dout) | uint16(calcParity(dout))<<8
			stuckHigh &= got
			stuckLow &= ^got & 0x1ff
			diffs |= got ^ expect
		}
	}

	if stuckHigh != 0 {
		rc++
		s.detailf("    Stuck low: %03x", stuckHigh)
		siop.PrintBits(s.Out, siop.ScsiDataPins, uint32(stuckHigh))
		s.detailf("\n")
	}
	if stuckLow != 0 {
		rc++
		s.detailf("    Stuck high: %03x", stuckLow)
		siop.PrintBits(s.Out, siop.ScsiDataPins, uint32(stuckLow))
		s.detailf("\n")
	}
	if diff := diffs &^ (stuckHigh | stuckLow); diff != 0 {
		rc++
		s.detailf("    Floating or bridged: %03x", diff)
		siop.PrintBits(s.Out, siop.ScsiDataPins, uint32(diff))
		s.detailf("\n")
	}

	// Control walk. Patterns that would assert SEL or BSY against a
	// live bus, or drive everything at once, are skipped, and ATN is
	// left alone.
	ctlHigh := uint8(0xff)
	ctlLow := uint8(0xff)
	for pass := 0; pass < 2; pass++ {
		for bit := -1; bit < 8; bit++ {
			dout := uint8(0)
			if bit >= 0 {
				dout = 1 << bit
			}
			if pass == 1 {
				dout = ^dout
			}
			if dout == 0x80 || dout == 0x40 || dout == 0xf7 ||
				dout&0x08 != 0 {
				continue
			}
			sp.Set8(siop.RegSOCL, dout)
			got := sp.Get8(siop.RegSBCL)
			ctlHigh &= got
			ctlLow &= ^got
		}
	}
	ctlLow &^= 0x08 | 0x40 | 0x80
	if ctlHigh != 0 {
		rc++
		s.detailf("    Control stuck low: %02x", ctlHigh)
		siop.PrintBits(s.Out, siop.ScsiControlPins, uint32(ctlHigh))
		s.detailf("\n")
	}
	if ctlLow != 0 {
		rc++
		s.detailf("    Control stuck high: %02x", ctlLow)
		siop.PrintBits(s.Out, siop.ScsiControlPins, uint32(ctlLow))
		s.detailf("\n")
	}

	sp.Set8(siop.RegSOCL, 0)
	sp.Set8(siop.RegDCNTL, dcntl)
	sp.Set8(siop.RegSCNTL0, scntl0)
	sp.Set8(siop.RegSCNTL1, scntl1)
	sp.Set8(siop.RegCTEST4, ctest4)
	sp.Reset()
	return rc
}
