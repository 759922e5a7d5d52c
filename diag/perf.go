/*
 * A4091 - DMA throughput measure
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
	"github.com/rcornwell/A4091/host"
)

const (
	perfBufLen = 64 * 1024
	perfPasses = 16
)

// performance measures memory to memory DMA rate. Each pass runs two
// quad scripts, one in each direction, so one pass moves eight buffer
// lengths of data.
func (s *Suite) performance() int {
	h := s.Sess.Host

	if trc := s.Sess.SIOP.InitSIOP(s.Out, s.Burst); trc != 0 {
		return trc
	}

	src, err := h.AllocMem(perfBufLen)
	if err != nil {
		s.detailf("    %v\n", err)
		return 1
	}
	defer h.FreeMem(src, perfBufLen)
	dst, err := h.AllocMem(perfBufLen)
	if err != nil {
		s.detailf("    %v\n", err)
		return 1
	}
	defer h.FreeMem(dst, perfBufLen)

	h.CachePreDMA(src, perfBufLen, true)
	h.CachePreDMA(dst, perfBufLen, false)

	start := h.Ticks()
	for pass := 0; pass < perfPasses; pass++ {
		s.checkBreak()
		if trc := s.Eng.DMACopyQuad(src, dst, perfBufLen, false); trc != 0 {
			return trc
		}
		if trc := s.Eng.DMACopyQuad(dst, src, perfBufLen, false); trc != 0 {
			return trc
		}
	}
	ticks := h.Ticks() - start
	if ticks == 0 {
		ticks = 1
	}
	h.CachePostDMA(dst, perfBufLen, false)

	totalKB := uint32(perfPasses * 2 * 4 * (perfBufLen / 1024))
	s.detailf("    PASS: %d KB in %d ticks (%d KB/sec)\n",
		totalKB, ticks, uint64(totalKB)*host.TicksPerSecond/ticks)
	return 0
}
