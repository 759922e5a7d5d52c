/*
 * A4091 - Simulated A4091 board
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

// Board layout within the card's bus window.
const (
	regWindowBase = 0x00800000
	regWindowEnd  = 0x008c0000
	switchesOff   = 0x008c0003
)

// Autoconfig register contents the board presents. Registers not in
// the table read as zero once the nibble inversion is undone.
var cregValues = map[uint32]uint8{
	0x00: 0x6f, // ZorroIII, 16 MB, autoboot
	0x04: 0x54, // Product
	0x08: 0x30, // Device-IO, size extension
	0x10: 0x02, // Mfg high
	0x14: 0x02, // Mfg low
	0x18: 0x00, // Serial
	0x1c: 0x00,
	0x20: 0x12,
	0x24: 0xa4,
	0x28: 0x20, // ROM vector
	0x2c: 0x00,
}

// simCard is the board itself: autoconfig nibbles, the DIP switch
// latch and the 53C710 register window.
type simCard struct {
	sys      *Amiga
	base     uint32
	faults   *Faults
	switches uint8
	chip     *simSIOP
}

func newSimCard(sys *Amiga, base uint32, faults *Faults) *simCard {
	c := &simCard{
		sys:      sys,
		base:     base,
		faults:   faults,
		switches: 0xff,
	}
	c.chip = newSimSIOP(sys, faults)
	return c
}

// read8 handles a byte read at offset off within the card window.
// Autoconfig data comes out a nibble at a time, inverted: the high
// nibble at the register offset and the low nibble 0x100 above it.
func (c *simCard) read8(off uint32) uint8 {
	if c.faults.SlowBus {
		c.sys.TickDelay(3)
	}
	switch {
	case off < 0x100:
		return ^cregValues[off]
	case off < 0x200:
		return ^(cregValues[off-0x100] << 4)
	case off == switchesOff:
		return c.switches
	case off >= regWindowBase && off < regWindowEnd:
		return c.chip.read8(off & 0x3f)
	}
	return 0
}

func (c *simCard) write8(off uint32, value uint8) {
	if off >= regWindowBase && off < regWindowEnd {
		c.chip.write8(off&0x3f, value)
	}
}

func (c *simCard) write32(off uint32, value uint32) {
	if off >= regWindowBase && off < regWindowEnd {
		c.chip.write32(off&0x3f, value)
	}
}
