/*
 * A4091 - SIOP register access
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
	"github.com/rcornwell/A4091/bus"
	"github.com/rcornwell/A4091/host"
)

// writeOffset is added to every register write. The A4091 bus logic
// latches writes at this alias of the register window; writes at the
// read addresses are not reliable.
const writeOffset = 0x40

// SIOP addresses the 53C710 register file of one card.
type SIOP struct {
	Space bus.Space
	Host  host.Host
	Base  uint32 // Bus address of the register window
}

// New returns a SIOP handle for the register window at base.
func New(sp bus.Space, h host.Host, base uint32) *SIOP {
	return &SIOP{Space: sp, Host: h, Base: base}
}

// Get8 reads a byte register.
func (s *SIOP) Get8(reg uint32) uint8 {
	return s.Space.Read8(s.Base + reg)
}

// Get32 reads a longword register. reg must be longword aligned.
func (s *SIOP) Get32(reg uint32) uint32 {
	return s.Space.Read32(s.Base + reg)
}

// Set8 writes a byte register through the write alias.
func (s *SIOP) Set8(reg uint32, value uint8) {
	s.Space.Write8(s.Base+writeOffset+reg, value)
}

// Set32 writes a longword register through the write alias.
func (s *SIOP) Set32(reg uint32, value uint32) {
	s.Space.Write32(s.Base+writeOffset+reg, value)
}

// Flush forces preceding writes out to the card by reading a register
// with no read side effects.
func (s *SIOP) Flush() {
	_ = s.Get8(RegCTEST0)
}
