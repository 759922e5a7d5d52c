//go:build linux

/*
 * A4091 - Physical bus window
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

package bus

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Window maps a card's physical bus window through /dev/mem. Accesses
// outside the mapped range read as zero and writes are dropped, which is
// what an empty Zorro slot looks like. Only the decoders can run on this
// provider; the test suite needs a host with memory contracts.
type Window struct {
	base uint32
	mem  []byte
	fd   int
}

func OpenWindow(base, size uint32) (*Window, error) {
	fd, err := unix.Open("/dev/mem", unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %w", err)
	}
	mem, err := unix.Mmap(fd, int64(base), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap bus window %08x: %w", base, err)
	}
	return &Window{base: base, mem: mem, fd: fd}, nil
}

func (w *Window) Close() {
	if w.mem != nil {
		_ = unix.Munmap(w.mem)
		w.mem = nil
	}
	if w.fd >= 0 {
		unix.Close(w.fd)
		w.fd = -1
	}
}

func (w *Window) Read8(addr uint32) uint8 {
	off := addr - w.base
	if off >= uint32(len(w.mem)) {
		return 0
	}
	return w.mem[off]
}

func (w *Window) Read32(addr uint32) uint32 {
	off := addr - w.base
	if off+4 > uint32(len(w.mem)) {
		return 0
	}
	return uint32(w.mem[off])<<24 | uint32(w.mem[off+1])<<16 |
		uint32(w.mem[off+2])<<8 | uint32(w.mem[off+3])
}

func (w *Window) Write8(addr uint32, value uint8) {
	off := addr - w.base
	if off >= uint32(len(w.mem)) {
		return
	}
	w.mem[off] = value
}

func (w *Window) Write32(addr uint32, value uint32) {
	off := addr - w.base
	if off+4 > uint32(len(w.mem)) {
		return
	}
	w.mem[off] = uint8(value >> 24)
	w.mem[off+1] = uint8(value >> 16)
	w.mem[off+2] = uint8(value >> 8)
	w.mem[off+3] = uint8(value)
}
