/*
 * A4091 - Simulated Amiga host
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

// Package sim is an in-process stand-in for the Amiga host: a fast
// memory region, interrupt server chains, a task list and a bus with
// one A4091 plugged in. The diagnostic runs against it unchanged, and
// its fault knobs let tests provoke every failure the hardware can.
package sim

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcornwell/A4091/host"
)

// Bus layout of the simulated machine.
const (
	RAMBase  = 0x00200000
	RAMSize  = 0x00600000
	CardBase = 0x40000000
	CardSize = 0x01000000
)

// Faults selects hardware defects for the simulated card.
type Faults struct {
	NoCard        bool   // Card absent from the expansion list and bus
	StuckHigh     uint32 // Register data bits stuck high
	StuckLow      uint32 // Register data bits stuck low
	FloatBits     uint32 // Register data bits that float between reads
	AddrFlip      uint32 // Address bits the DMA engine drives wrong
	SlowBus       bool   // Card answers reads a few ticks late
	UAE           bool   // Machine is an emulator, not real hardware
	TermPowerDead bool   // SCSI terminator power missing
	BusStuckReset bool   // SCSI RST line stuck asserted
	ScsiStuckHigh uint8  // SCSI data pins stuck high
	ScsiStuckLow  uint8  // SCSI data pins stuck low
	FIFOLaneXor   [4]uint16
	Enforcer      bool // Pretend a memory-protection tool is loaded
}

// Amiga implements host.Host and bus.Space.
type Amiga struct {
	mu sync.Mutex

	ram     []byte
	alloc   *allocator
	started time.Time

	chains map[int][]*host.IntServer
	tasks  map[string]bool
	devs   []*host.ConfigDev

	card   *simCard
	faults Faults

	sigBreak atomic.Bool
}

// New builds a simulated machine with the given faults. A healthy
// machine takes the zero Faults value.
func New(faults Faults) *Amiga {
	a := &Amiga{
		ram:     make([]byte, RAMSize),
		alloc:   newAllocator(RAMBase, RAMSize),
		started: time.Now(),
		chains:  make(map[int][]*host.IntServer),
		tasks:   make(map[string]bool),
		faults:  faults,
	}
	a.tasks["A3090 SCSI handler"] = true
	if faults.Enforcer {
		a.tasks["« Enforcer »"] = true
	}
	if !faults.NoCard {
		a.card = newSimCard(a, CardBase, &a.faults)
		a.devs = append(a.devs, &host.ConfigDev{
			Mfg:     0x0202,
			Product: 0x0054,
			Addr:    CardBase,
			Size:    CardSize,
			Binding: "2nd.scsi.device",
		})
		a.chains[3] = append(a.chains[3], &host.IntServer{
			Name: "NCR SCSI",
			Pri:  0,
			Code: func(any) bool { return false },
		})
	}
	if faults.UAE {
		// UAE hangs its own server on the board's chain.
		a.chains[3] = append(a.chains[3], &host.IntServer{
			Name: "UAE board",
			Pri:  -128,
			Code: func(any) bool { return false },
		})
	}
	// An unrelated board so lookups have something to skip.
	a.devs = append(a.devs, &host.ConfigDev{
		Mfg:     0x0202,
		Product: 0x0046,
		Addr:    0x00e90000,
		Size:    0x00010000,
	})
	return a
}

// Ticks returns elapsed system ticks since the machine came up.
func (a *Amiga) Ticks() uint64 {
	return uint64(time.Since(a.started) /
		(time.Second / host.TicksPerSecond))
}

// TickDelay sleeps for n system ticks.
func (a *Amiga) TickDelay(n int) {
	time.Sleep(time.Duration(n) * (time.Second / host.TicksPerSecond))
}

func (a *Amiga) AddIntServer(irq int, is *host.IntServer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chains[irq] = append(a.chains[irq], is)
	sort.SliceStable(a.chains[irq], func(i, j int) bool {
		return a.chains[irq][i].Pri > a.chains[irq][j].Pri
	})
}

func (a *Amiga) RemIntServer(irq int, is *host.IntServer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	chain := a.chains[irq]
	for i, e := range chain {
		if e == is {
			a.chains[irq] = append(chain[:i], chain[i+1:]...)
			return
		}
	}
}

// IntServers returns the current chain for irq, highest priority first.
func (a *Amiga) IntServers(irq int) []*host.IntServer {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*host.IntServer, len(a.chains[irq]))
	copy(out, a.chains[irq])
	return out
}

// triggerIRQ walks the server chain until one claims the interrupt.
func (a *Amiga) triggerIRQ(irq int) {
	for _, is := range a.IntServers(irq) {
		if is.Code != nil && is.Code(is.Data) {
			return
		}
	}
}

// Forbid and friends are scheduling fences on the real machine. The
// simulation is single threaded per caller, so they are markers only.
func (a *Amiga) Forbid()  {}
func (a *Amiga) Permit()  {}
func (a *Amiga) Disable() {}
func (a *Amiga) Enable()  {}

func (a *Amiga) FindTask(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tasks[name]
}

func (a *Amiga) RemTask(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.tasks[name] {
		return false
	}
	delete(a.tasks, name)
	return true
}

func (a *Amiga) ConfigDevs() []*host.ConfigDev {
	return a.devs
}

func (a *Amiga) AllocMem(size uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	addr, err := a.alloc.alloc(size)
	if err != nil {
		return 0, err
	}
	for i := uint32(0); i < size; i++ {
		a.ram[addr-RAMBase+i] = 0
	}
	return addr, nil
}

func (a *Amiga) AllocAbs(size, addr uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.alloc.allocAbs(size, addr); err != nil {
		return 0, err
	}
	return addr, nil
}

func (a *Amiga) FreeMem(addr, size uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alloc.release(addr, size)
}

// Cache maintenance is a no-op; simulated memory is always coherent.
func (a *Amiga) CachePreDMA(addr, size uint32, readFromRAM bool)  {}
func (a *Amiga) CachePostDMA(addr, size uint32, readFromRAM bool) {}

// SignalBreak marks a pending break, as ^C would on the console.
func (a *Amiga) SignalBreak() {
	a.sigBreak.Store(true)
}

func (a *Amiga) CheckSignal() bool {
	return a.sigBreak.Swap(false)
}

// Read8 implements bus.Space. Unmapped addresses read as zero.
func (a *Amiga) Read8(addr uint32) uint8 {
	if addr >= RAMBase && addr < RAMBase+RAMSize {
		return a.ram[addr-RAMBase]
	}
	if a.card != nil && addr >= a.card.base && addr < a.card.base+CardSize {
		return a.card.read8(addr - a.card.base)
	}
	return 0
}

func (a *Amiga) Read32(addr uint32) uint32 {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		v = v<<8 | uint32(a.Read8(addr+i))
	}
	return v
}

// Write8 implements bus.Space. Unmapped writes are dropped.
func (a *Amiga) Write8(addr uint32, value uint8) {
	if addr >= RAMBase && addr < RAMBase+RAMSize {
		a.ram[addr-RAMBase] = value
		return
	}
	if a.card != nil && addr >= a.card.base && addr < a.card.base+CardSize {
		a.card.write8(addr-a.card.base, value)
	}
}

func (a *Amiga) Write32(addr uint32, value uint32) {
	if a.card != nil && addr >= a.card.base && addr < a.card.base+CardSize {
		a.card.write32(addr-a.card.base, value)
		return
	}
	for i := uint32(0); i < 4; i++ {
		a.Write8(addr+i, uint8(value>>(24-8*i)))
	}
}
