/*
 * A4091 - DMA tests
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

const (
	scratchBufLen = 2048
	dmaLenBit     = 12
	dmaLen        = 1 << dmaLenBit
)

// dmaScratch moves host memory one longword at a time into the SCRATCH
// register and reads it back over the register window. The buffer sits
// in the middle third of a larger allocation so a DMA engine that runs
// long or short lands in memory this test owns.
func (s *Suite) dmaScratch() int {
	sp := s.Sess.SIOP
	h := s.Sess.Host
	rc := 0
	var r prand

	if trc := sp.InitSIOP(s.Out, s.Burst); trc != 0 {
		return trc
	}

	buf, err := h.AllocMem(3 * scratchBufLen)
	if err != nil {
		s.detailf("    %v\n", err)
		return 1
	}
	defer h.FreeMem(buf, 3*scratchBufLen)
	base := buf + scratchBufLen

	r.srand(fifoSeed)
	for off := uint32(0); off < scratchBufLen; off += 4 {
		sp.Space.Write32(base+off, r.rand())
	}
	h.CachePreDMA(base, scratchBufLen, true)

	r.srand(fifoSeed)
	printed := 0
	for off := uint32(0); off < scratchBufLen; off += 4 {
		expect := r.rand()
		if trc := s.Eng.DMAToScratch(base + off); trc != 0 {
			return trc
		}
		got := sp.Get32(siop.RegSCRATCH)
		if got == expect {
			continue
		}
		rc++
		if printed < 10 {
			printed++
			s.detailf("  Addr %08x to scratch %08x: %08x != expected %08x (diff %08x)\n",
				base+off, sp.Base+siop.RegSCRATCH, got, expect, got^expect)
		}
	}
	h.CachePostDMA(base, scratchBufLen, true)
	return rc
}

// bfEntry guards one address the DMA engine would hit if it drove a
// single address line, or a pair of them, wrong.
type bfEntry struct {
	addr     uint32 // The faulted landing address
	buf      uint32 // What was actually allocated
	size     uint32
	reserved bool // buf is at addr itself
}

// guardAddrs allocates canary memory at every single and double
// address-bit corruption of dst above the transfer size. Where the
// exact address cannot be had, ordinary memory is taken instead and
// the contended address snapshotted into it, to be checked later for
// divergence.
func (s *Suite) guardAddrs(dst uint32) []bfEntry {
	h := s.Sess.Host
	sp := s.Sess.SIOP.Space
	var entries []bfEntry
	for b1 := dmaLenBit; b1 < 32; b1++ {
		for b2 := b1; b2 < 32; b2++ {
			addr := dst ^ 1<<b1
			if b2 != b1 {
				addr ^= 1 << b2
			}
			e := bfEntry{addr: addr, size: dmaLen}
			if got, err := h.AllocAbs(dmaLen, addr); err == nil {
				e.buf = got
				e.reserved = true
				for off := uint32(0); off < dmaLen; off += 4 {
					sp.Write32(got+off, 0)
				}
			} else if got, err := h.AllocMem(dmaLen); err == nil {
				e.buf = got
				for off := uint32(0); off < dmaLen; off += 4 {
					sp.Write32(got+off, sp.Read32(addr+off))
				}
			} else {
				continue
			}
			entries = append(entries, e)
		}
	}
	return entries
}

// dmaCopy runs memory to memory moves of doubling sizes while watching
// canary buffers for transfers that landed at a corrupted address.
func (s *Suite) dmaCopy() int {
	sp := s.Sess.SIOP
	h := s.Sess.Host
	rc := 0
	var r prand

	if trc := sp.InitSIOP(s.Out, s.Burst); trc != 0 {
		return trc
	}

	src, err := h.AllocMem(dmaLen)
	if err != nil {
		s.detailf("    %v\n", err)
		return 1
	}
	defer h.FreeMem(src, dmaLen)
	dstBuf, err := h.AllocMem(3 * dmaLen)
	if err != nil {
		s.detailf("    %v\n", err)
		return 1
	}
	defer h.FreeMem(dstBuf, 3*dmaLen)
	dst := dstBuf + dmaLen

	entries := s.guardAddrs(dst)
	defer func() {
		for _, e := range entries {
			h.FreeMem(e.buf, e.size)
		}
	}()

	curLen := uint32(4)
	for pass := 0; pass < 32; pass++ {
		s.checkBreak()
		for off := uint32(0); off < dmaLen; off += 4 {
			sp.Space.Write32(dst+off, 0)
		}
		r.srand(uint32(pass) * 7753)
		for off := uint32(0); off < curLen; off += 4 {
			sp.Space.Write32(src+off, r.rand())
		}
		h.CachePreDMA(src, curLen, true)
		h.CachePreDMA(dst, curLen, false)

		sp.Reset()
		if trc := s.Eng.DMACopy(src, dst, curLen); trc != 0 {
			return trc
		}
		h.CachePostDMA(dst, curLen, false)

		printed := 0
		failed := false
		for off := uint32(0); off < curLen; off += 4 {
			got := sp.Space.Read32(dst + off)
			expect := sp.Space.Read32(src + off)
			if got == expect {
				continue
			}
			rc++
			failed = true
			if printed < 5 {
				printed++
				s.detailf(" Addr %08x value %08x != expected %08x (diff %08x)\n",
					dst+off, got, expect, got^expect)
			}
		}
		if failed {
			s.scanGuards(entries)
			return rc
		}

		curLen <<= 1
		if curLen > dmaLen {
			curLen = dmaLen
		}
	}
	return rc
}

// scanGuards reports canary memory touched by a misdirected transfer.
// Reserved entries show as >addr< when no longer zero, contended
// addresses as <addr> when they diverged from their snapshot. Each is
// rearmed after reporting.
func (s *Suite) scanGuards(entries []bfEntry) {
	sp := s.Sess.SIOP.Space
	found := false
	for _, e := range entries {
		hit := false
		if e.reserved {
			for off := uint32(0); off < e.size; off += 4 {
				if sp.Read32(e.buf+off) != 0 {
					hit = true
					break
				}
			}
		} else {
			for off := uint32(0); off < e.size; off += 4 {
				if sp.Read32(e.addr+off) != sp.Read32(e.buf+off) {
					hit = true
					break
				}
			}
		}
		if !hit {
			continue
		}
		if !found {
			found = true
			s.detailf(" Modified RAM addresses: ")
		}
		if e.reserved {
			s.detailf(">%x< ", e.addr)
			for off := uint32(0); off < e.size; off += 4 {
				sp.Write32(e.buf+off, 0)
			}
		} else {
			s.detailf("<%x> ", e.addr)
			for off := uint32(0); off < e.size; off += 4 {
				sp.Write32(e.buf+off, sp.Read32(e.addr+off))
			}
		}
	}
	if found {
		s.detailf("\n")
	}
}
