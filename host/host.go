/*
 * A4091 - Host OS contracts
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

package host

import (
	"fmt"
	"io"
)

// TicksPerSecond is the host's coarse wall clock rate. All timeouts in
// the diagnostic are expressed in these ticks.
const TicksPerSecond = 50

// IntServer is one entry on an interrupt server chain. Code receives the
// Data slot and reports whether the interrupt was handled; an unhandled
// interrupt continues down the chain.
type IntServer struct {
	Name string
	Pri  int
	Data any
	Code func(data any) bool
}

// ConfigDev flags, matching the expansion library.
const (
	CDFShutUp    = 0x01
	CDFConfigMe  = 0x02
	CDFBadMemory = 0x04
)

// ConfigDev describes one autoconfigured expansion card.
type ConfigDev struct {
	Mfg     uint16
	Product uint16
	Addr    uint32
	Size    uint32
	Flags   uint8
	Binding string // Name of bound driver, empty if unbound
}

// Host is the contract the diagnostic core needs from the operating
// system: the tick clock, interrupt server chains, scheduler guards,
// task lists, the expansion device list, memory allocation, cache
// maintenance around DMA, and the user abort signal.
type Host interface {
	Ticks() uint64
	TickDelay(n int)

	AddIntServer(irq int, s *IntServer)
	RemIntServer(irq int, s *IntServer)
	IntServers(irq int) []*IntServer

	Forbid()
	Permit()
	Disable()
	Enable()

	FindTask(name string) bool
	RemTask(name string) bool

	ConfigDevs() []*ConfigDev

	// AllocMem returns a 32-byte aligned, zeroed region.
	AllocMem(size uint32) (uint32, error)
	// AllocAbs reserves memory at an exact bus address. The contents
	// are left as found.
	AllocAbs(size, addr uint32) (uint32, error)
	FreeMem(addr, size uint32)

	CachePreDMA(addr, size uint32, readFromRAM bool)
	CachePostDMA(addr, size uint32, readFromRAM bool)

	// CheckSignal reports whether the user has requested an abort.
	CheckSignal() bool
}

// AccessTimeout reports whether more than the given number of ticks has
// elapsed since start, printing msg with the elapsed count when so.
func AccessTimeout(h Host, w io.Writer, msg string, ticks uint32, start uint64) bool {
	end := h.Ticks()
	if end < start {
		fmt.Fprintf(w, "Invalid time comparison: %016x < %016x\n", end, start)
		return false
	}
	if uint32(end-start) > ticks {
		fmt.Fprintf(w, "%s: %d ticks\n", msg, uint32(end-start))
		return true
	}
	return false
}
