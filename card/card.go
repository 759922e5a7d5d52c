/*
 * A4091 - Card bus window
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

package card

import (
	"github.com/rcornwell/A4091/bus"
)

// Layout of the A4091 bus window, relative to the card base.
const (
	OffsetAutoconfig = 0x00000000
	OffsetROM        = 0x00000000
	OffsetRegisters  = 0x00800000
	OffsetSwitches   = 0x008c0003
)

const (
	MfgCommodore = 0x0202
	ProdA4091    = 0x0054
)

// The card's bus interrupt line and the priority of the diagnostic's
// interrupt server on it.
const (
	IRQ    = 3
	IntPri = 30
)

// Card is one located A4091, addressed through its bus window.
type Card struct {
	Space bus.Space
	Base  uint32
}

// ReadCreg reconstructs one autoconfig byte. Each config register is
// presented across two nibble-mirrored locations: the high nibble at the
// register offset and the low nibble 0x100 above it, both bit-inverted.
func (c *Card) ReadCreg(reg uint32) uint8 {
	hi := ^c.Space.Read8(c.Base + OffsetAutoconfig + reg)
	lo := ^c.Space.Read8(c.Base + OffsetAutoconfig + reg + 0x100)
	return (hi & 0xf0) | (lo >> 4)
}

// Switches reads the rear-panel DIP switch latch.
func (c *Card) Switches() uint8 {
	return c.Space.Read8(c.Base + OffsetSwitches)
}
