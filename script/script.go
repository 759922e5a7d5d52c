/*
 * A4091 - SCRIPTS memory-move engine
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

package script

import (
	"io"

	"github.com/rcornwell/A4091/host"
	"github.com/rcornwell/A4091/siop"
	"github.com/rcornwell/A4091/takeover"
)

// SCRIPTS opcodes used by the engine.
const (
	opMemoryMove = 0xc0000000 // Low 24 bits carry the byte count
	opIntStop    = 0x98080000 // Interrupt and stop, second word 0
)

// MaxMoveLen is the largest byte count one memory move can carry.
const MaxMoveLen = 0x00ffffff

const (
	singleWords = 16
	quadWords   = 40
)

// scriptTimeout is how long RunScript waits for completion, in ticks.
const scriptTimeout = 30

// Engine holds SCRIPTS templates in host memory and runs them on the
// seized card. Templates are patched in place between runs.
type Engine struct {
	Sess *takeover.Session
	Out  io.Writer

	single uint32
	quad   uint32
}

// NewEngine allocates the SCRIPTS templates. The session must hold the
// card before any of them run.
func NewEngine(sess *takeover.Session, out io.Writer) (*Engine, error) {
	e := &Engine{Sess: sess, Out: out}
	var err error
	if e.single, err = sess.Host.AllocMem(singleWords * 4); err != nil {
		return nil, err
	}
	if e.quad, err = sess.Host.AllocMem(quadWords * 4); err != nil {
		sess.Host.FreeMem(e.single, singleWords*4)
		return nil, err
	}
	return e, nil
}

// Close frees the templates.
func (e *Engine) Close() {
	e.Sess.Host.FreeMem(e.single, singleWords*4)
	e.Sess.Host.FreeMem(e.quad, quadWords*4)
}

func (e *Engine) putWords(addr uint32, words []uint32) {
	sp := e.Sess.SIOP.Space
	for i, word := range words {
		sp.Write32(addr+uint32(i)*4, word)
	}
	e.Sess.Host.CachePreDMA(addr, uint32(len(words))*4, true)
}

// RunScript points the chip at a script and waits for the interrupt
// and stop at its end. The interrupt status register is polled only
// every few spins to keep bus traffic off the chip while it works.
func (e *Engine) RunScript(addr uint32) int {
	s := e.Sess.SIOP
	e.Sess.ClearSnapshot()
	s.Set32(siop.RegDSP, addr)

	start := e.Sess.Host.Ticks()
	for count := 1; ; count++ {
		if count&7 == 0 {
			istat := s.Get8(siop.RegISTAT)
			if istat&(siop.ISTATABRT|siop.ISTATDIP) != 0 {
				_ = s.Get8(siop.RegDSTAT)
				break
			}
		}
		if istat, _, _, _ := e.Sess.Snapshot(); istat&(siop.ISTATABRT|siop.ISTATDIP) != 0 {
			break
		}
		if count&31 == 0 {
			if host.AccessTimeout(e.Sess.Host, e.Out, "Script timeout",
				scriptTimeout, start) {
				s.InterruptDump(e.Out)
				return 1
			}
		}
	}
	return 0
}

// DMACopy moves length bytes from src to dst with a single memory move.
func (e *Engine) DMACopy(src, dst, length uint32) int {
	e.putWords(e.single, []uint32{
		opMemoryMove | (length & MaxMoveLen),
		src,
		dst,
		opIntStop,
		0,
	})
	return e.RunScript(e.single)
}

// DMAToScratch moves one longword from src into the SCRATCH register.
func (e *Engine) DMAToScratch(src uint32) int {
	return e.DMACopy(src, e.Sess.SIOP.Base+siop.RegSCRATCH, 4)
}

// DMACopyQuad runs four back-to-back memory moves of length bytes each.
// When update is set each move works on the next slice of the buffers;
// otherwise all four hit the same addresses.
func (e *Engine) DMACopyQuad(src, dst, length uint32, update bool) int {
	words := make([]uint32, 0, 14)
	for i := 0; i < 4; i++ {
		words = append(words, opMemoryMove|(length&MaxMoveLen), src, dst)
		if update {
			src += length
			dst += length
		}
	}
	words = append(words, opIntStop, 0)
	e.putWords(e.quad, words)
	return e.RunScript(e.quad)
}
