/*
 * A4091 - Simulated host memory allocator
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
	"fmt"
	"sort"
)

// region is one free span of fast memory.
type region struct {
	addr uint32
	size uint32
}

// allocator hands out spans of the simulated fast memory region using
// first fit. Grants are rounded up so every block starts on a 32-byte
// line, matching what DMA-capable allocations get on real hardware.
type allocator struct {
	free []region
}

const allocAlign = 32

func newAllocator(base, size uint32) *allocator {
	return &allocator{free: []region{{addr: base, size: size}}}
}

func roundUp(size uint32) uint32 {
	return (size + allocAlign - 1) &^ (allocAlign - 1)
}

// alloc grabs size bytes anywhere, first fit.
func (a *allocator) alloc(size uint32) (uint32, error) {
	size = roundUp(size)
	for i, r := range a.free {
		if r.size < size {
			continue
		}
		addr := r.addr
		if r.size == size {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i].addr += size
			a.free[i].size -= size
		}
		return addr, nil
	}
	return 0, fmt.Errorf("out of memory allocating %d bytes", size)
}

// allocAbs grabs size bytes at exactly addr, or fails.
func (a *allocator) allocAbs(size, addr uint32) error {
	size = roundUp(size)
	for i, r := range a.free {
		if addr < r.addr || addr+size > r.addr+r.size {
			continue
		}
		before := region{addr: r.addr, size: addr - r.addr}
		after := region{addr: addr + size, size: r.addr + r.size - (addr + size)}
		a.free = append(a.free[:i], a.free[i+1:]...)
		if before.size != 0 {
			a.free = append(a.free, before)
		}
		if after.size != 0 {
			a.free = append(a.free, after)
		}
		a.sortFree()
		return nil
	}
	return fmt.Errorf("address %08x not available", addr)
}

// release puts a span back and coalesces neighbors.
func (a *allocator) release(addr, size uint32) {
	size = roundUp(size)
	a.free = append(a.free, region{addr: addr, size: size})
	a.sortFree()
	out := a.free[:0]
	for _, r := range a.free {
		if n := len(out); n > 0 && out[n-1].addr+out[n-1].size == r.addr {
			out[n-1].size += r.size
		} else {
			out = append(out, r)
		}
	}
	a.free = out
}

func (a *allocator) sortFree() {
	sort.Slice(a.free, func(i, j int) bool {
		return a.free[i].addr < a.free[j].addr
	})
}
