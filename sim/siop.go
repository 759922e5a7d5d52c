/*
 * A4091 - Simulated 53C710
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

package sim

import (
	"github.com/rcornwell/A4091/siop"
)

// simSIOP models the 53C710 far enough for the diagnostic: register
// file with reserved bits, FIFO lane access through the CTEST windows,
// SCSI low-level loopback, and synchronous SCRIPTS memory moves.
type simSIOP struct {
	sys    *Amiga
	faults *Faults

	r [0x40]uint8

	dip, sip  bool
	lanes     [4][]uint16
	popParity bool
	parLine   bool
	reads     int
}

func newSimSIOP(sys *Amiga, faults *Faults) *simSIOP {
	c := &simSIOP{sys: sys, faults: faults}
	c.softReset()
	return c
}

// softReset clears chip state. SCRATCH and TEMP survive a soft reset
// on the real part, so they survive here.
func (c *simSIOP) softReset() {
	var keep [8]uint8
	copy(keep[0:4], c.r[siop.RegTEMP:siop.RegTEMP+4])
	copy(keep[4:8], c.r[siop.RegSCRATCH:siop.RegSCRATCH+4])
	istat := c.r[siop.RegISTAT]
	for i := range c.r {
		c.r[i] = 0
	}
	copy(c.r[siop.RegTEMP:siop.RegTEMP+4], keep[0:4])
	copy(c.r[siop.RegSCRATCH:siop.RegSCRATCH+4], keep[4:8])
	c.r[siop.RegISTAT] = istat
	c.dip = false
	c.sip = false
	c.clearFIFO()
	c.parLine = false
}

func (c *simSIOP) clearFIFO() {
	for i := range c.lanes {
		c.lanes[i] = nil
	}
	c.popParity = false
}

func (c *simSIOP) fifoEmpty() bool {
	for _, lane := range c.lanes {
		if len(lane) != 0 {
			return false
		}
	}
	return true
}

func (c *simSIOP) lane() int {
	return int(c.r[siop.RegCTEST4] & 0x03)
}

// calcParity returns the odd-parity bit for one data byte.
func calcParity(data uint8) uint8 {
	data ^= data >> 4
	data ^= data >> 2
	data ^= data >> 1
	return ^data & 1
}

// stuckByte applies the register data-bit faults to byte i (0 = most
// significant) of a longword register. Floating bits change value on
// alternate reads.
func (c *simSIOP) stuckByte(value uint8, i uint32) uint8 {
	hi := uint8(c.faults.StuckHigh >> (24 - 8*i))
	lo := uint8(c.faults.StuckLow >> (24 - 8*i))
	if fl := uint8(c.faults.FloatBits >> (24 - 8*i)); fl != 0 {
		c.reads++
		if c.reads&1 != 0 {
			value ^= fl
		}
	}
	return (value | hi) &^ lo
}

// loopback recomputes the bus latches when the chip is in low level
// loopback mode with the output latches driving the SCSI bus.
func (c *simSIOP) loopback() {
	if c.r[siop.RegCTEST4]&siop.CTEST4SLBE == 0 ||
		c.r[siop.RegDCNTL]&siop.DCNTLLLM == 0 ||
		c.r[siop.RegSCNTL1]&siop.SCNTL1ADB == 0 {
		return
	}
	sodl := c.r[siop.RegSODL]
	c.r[siop.RegSBDL] = (sodl | c.faults.ScsiStuckHigh) &^ c.faults.ScsiStuckLow
	c.r[siop.RegSBCL] = c.r[siop.RegSOCL]
	c.parLine = calcParity(sodl) != 0
}

func (c *simSIOP) read8(reg uint32) uint8 {
	switch reg {
	case siop.RegISTAT:
		v := c.r[reg] & (siop.ISTATRST | siop.ISTATABRT)
		if c.dip {
			v |= siop.ISTATDIP
		}
		if c.sip {
			v |= siop.ISTATSIP
		}
		return v

	case siop.RegDSTAT:
		v := c.r[reg]
		if c.fifoEmpty() {
			v |= siop.DSTATDFE
		}
		// ABRT tracks the ISTAT abort request as long as it is held.
		if c.r[siop.RegISTAT]&siop.ISTATABRT != 0 {
			v |= siop.DSTATABRT
		}
		c.r[reg] = 0
		c.dip = false
		return v &^ 0x40

	case siop.RegSSTAT0:
		v := c.r[reg]
		c.r[reg] = 0
		c.sip = false
		return v

	case siop.RegSSTAT1:
		v := uint8(0)
		if c.parLine {
			v |= siop.SSTAT1PAR
		}
		if c.r[siop.RegSCNTL1]&siop.SCNTL1RST != 0 || c.faults.BusStuckReset {
			v |= siop.SSTAT1RST
		}
		return v

	case siop.RegSCNTL1:
		return c.r[reg] &^ 0x03

	case siop.RegCTEST0:
		return c.r[reg] &^ 0x82

	case siop.RegCTEST1:
		v := uint8(0)
		for i, lane := range c.lanes {
			if len(lane) == 0 {
				v |= 1 << (4 + i)
			}
			if len(lane) >= siop.FIFOSize {
				v |= 1 << i
			}
		}
		return v

	case siop.RegCTEST2:
		v := c.r[reg] &^ 0x88
		if c.popParity {
			v |= 0x08
		}
		return v

	case siop.RegCTEST6:
		if c.r[siop.RegCTEST4]&siop.CTEST4FBL2 == 0 {
			return c.r[reg]
		}
		lane := c.lane()
		if len(c.lanes[lane]) == 0 {
			return 0
		}
		v := c.lanes[lane][0]
		c.lanes[lane] = c.lanes[lane][1:]
		c.popParity = v&0x100 != 0
		return uint8(v)

	case siop.RegSBDL, siop.RegSBCL:
		if c.faults.TermPowerDead {
			return 0xff
		}
		return c.r[reg]

	case siop.RegDIEN:
		return c.r[reg] &^ 0xc0

	case siop.RegTEMP, siop.RegTEMP + 1, siop.RegTEMP + 2, siop.RegTEMP + 3:
		return c.stuckByte(c.r[reg], reg-siop.RegTEMP)

	case siop.RegSCRATCH, siop.RegSCRATCH + 1, siop.RegSCRATCH + 2,
		siop.RegSCRATCH + 3:
		return c.stuckByte(c.r[reg], reg-siop.RegSCRATCH)
	}
	return c.r[reg]
}

func (c *simSIOP) write8(reg uint32, value uint8) {
	switch reg {
	case siop.RegISTAT:
		old := c.r[reg]
		c.r[reg] = value & (siop.ISTATRST | siop.ISTATABRT)
		if value&siop.ISTATABRT != 0 && old&siop.ISTATABRT == 0 {
			c.dip = true
		}
		if value&siop.ISTATRST != 0 && old&siop.ISTATRST == 0 {
			rst := c.r[reg]
			c.softReset()
			c.r[reg] = rst
		}

	case siop.RegDSTAT, siop.RegSSTAT0, siop.RegSSTAT1, siop.RegSSTAT2,
		siop.RegCTEST1:
		// Read only.

	case siop.RegSCNTL1, siop.RegSODL, siop.RegSOCL, siop.RegCTEST4,
		siop.RegDCNTL, siop.RegSCNTL0:
		c.r[reg] = value
		c.loopback()

	case siop.RegCTEST6:
		if c.r[siop.RegCTEST4]&siop.CTEST4FBL2 == 0 {
			c.r[reg] = value
			return
		}
		lane := c.lane()
		if len(c.lanes[lane]) >= siop.FIFOSize {
			return
		}
		v := uint16(value) | uint16(c.r[siop.RegCTEST7]&0x08)<<5
		v ^= c.faults.FIFOLaneXor[lane]
		c.lanes[lane] = append(c.lanes[lane], v)

	case siop.RegCTEST8:
		if value&0x04 != 0 {
			c.clearFIFO()
		}
		c.r[reg] = value &^ 0x0c

	default:
		c.r[reg] = value
	}
}

func (c *simSIOP) write32(reg uint32, value uint32) {
	if reg > 0x3c {
		return
	}
	for i := uint32(0); i < 4; i++ {
		c.r[reg+i] = uint8(value >> (24 - 8*i))
	}
	if reg == siop.RegDSP {
		c.exec(value)
	}
}

// exec runs a SCRIPT synchronously. Only the instructions the
// diagnostic emits are implemented; anything else raises an illegal
// instruction interrupt, as the real chip would.
func (c *simSIOP) exec(dsp uint32) {
	for steps := 0; steps < 256; steps++ {
		w0 := c.sys.Read32(dsp)
		dsp += 4
		switch {
		case w0&0xff000000 == 0xc0000000:
			count := w0 & 0x00ffffff
			src := c.sys.Read32(dsp)
			dsp += 4
			dst := c.sys.Read32(dsp) ^ c.faults.AddrFlip
			dsp += 4
			for i := uint32(0); i < count; i++ {
				c.sys.Write8(dst+i, c.sys.Read8(src+i))
			}

		case w0 == 0x98080000:
			dsps := c.sys.Read32(dsp)
			dsp += 4
			c.write32(siop.RegDSPS, dsps)
			c.r[siop.RegDSTAT] |= 0x04 // SIR
			c.dip = true
			c.sys.triggerIRQ(3)
			return

		default:
			c.r[siop.RegDSTAT] |= 0x01 // IID
			c.dip = true
			c.sys.triggerIRQ(3)
			return
		}
	}
}
