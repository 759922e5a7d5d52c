/*
 * A4091 - Register access test
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
	"math/bits"

	"github.com/rcornwell/A4091/siop"
)

// Registers with bits which always read as zero.
var reservedRegs = []struct {
	reg  uint32
	name string
	mask uint8
}{
	{siop.RegSCNTL1, "SCNTL1", 0x03},
	{siop.RegDSTAT, "DSTAT", 0x40},
	{siop.RegCTEST0, "CTEST0", 0x82},
	{siop.RegCTEST2, "CTEST2", 0x80},
	{siop.RegISTAT, "ISTAT", 0x14},
	{siop.RegDIEN, "DIEN", 0xc0},
}

const registerPasses = 100
const walkPasses = 256

// registerAccess checks reserved bits stay low, the chip resets clean,
// and walks rotating patterns through SCRATCH and TEMP to find data
// lines which are stuck, floating or bridged.
func (s *Suite) registerAccess() int {
	sp := s.Sess.SIOP
	rc := 0

	printed := 0
	for pass := 0; pass < registerPasses; pass++ {
		for _, rr := range reservedRegs {
			value := sp.Get8(rr.reg)
			if value&rr.mask == 0 {
				continue
			}
			rc++
			if printed < 8 {
				printed++
				s.detailf("    %s reserved bits set: %02x (mask %02x)\n",
					rr.name, value, rr.mask)
			}
		}
	}

	sp.Reset()
	if value := sp.Get8(siop.RegISTAT); value != 0 {
		s.detailf("    ISTAT %02x != 00 after reset\n", value)
		rc++
	}
	if value := sp.Get8(siop.RegDSTAT); value&0x7f != 0 {
		s.detailf("    DSTAT %02x has status set after reset\n", value)
		rc++
	}

	patt := uint32(0xf0e7c3a5)
	stuckHigh := ^uint32(0)
	stuckLow := ^uint32(0)
	pinsDiff := uint32(0)
	for pass := 0; pass < walkPasses; pass++ {
		patt2 := bits.RotateLeft32(patt, 1)
		sp.Set32(siop.RegSCRATCH, patt)
		sp.Set32(siop.RegTEMP, patt2)
		got := sp.Get32(siop.RegSCRATCH)
		got2 := sp.Get32(siop.RegTEMP)

		stuckHigh &= got & got2
		stuckLow &= ^got & ^got2
		pinsDiff |= (got ^ patt) | (got2 ^ patt2)
		patt = patt2
	}

	if stuckHigh != 0 {
		s.detailf("    Stuck high: %08x", stuckHigh)
		siop.PrintBits(s.Out, siop.DataPins, stuckHigh)
		s.detailf("\n")
		rc++
	}
	if stuckLow != 0 {
		s.detailf("    Stuck low: %08x", stuckLow)
		siop.PrintBits(s.Out, siop.DataPins, stuckLow)
		s.detailf("\n")
		rc++
	}
	if diff := pinsDiff &^ (stuckHigh | stuckLow); diff != 0 {
		s.detailf("    Floating or bridged: %08x", diff)
		siop.PrintBits(s.Out, siop.DataPins, diff)
		s.detailf("\n")
		rc++
	}

	sp.Reset()
	return rc
}
