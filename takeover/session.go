/*
 * A4091 - Device takeover and restore
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

package takeover

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rcornwell/A4091/card"
	"github.com/rcornwell/A4091/host"
	"github.com/rcornwell/A4091/siop"
)

// DriverISRName is how the shipped SCSI driver registers its interrupt
// server on the card's interrupt chain.
const DriverISRName = "NCR SCSI"

var (
	cleanupMu   sync.Mutex
	cleanupList []func()
)

// AtCleanup registers f to run when Cleanup fires.
func AtCleanup(f func()) {
	cleanupMu.Lock()
	cleanupList = append(cleanupList, f)
	cleanupMu.Unlock()
}

// Cleanup runs all registered cleanup functions, newest first. Safe to
// call more than once; each function runs at most once.
func Cleanup() {
	cleanupMu.Lock()
	list := cleanupList
	cleanupList = nil
	cleanupMu.Unlock()
	for i := len(list) - 1; i >= 0; i-- {
		list[i]()
	}
}

// Session owns the card between Seize and Release. While owned, the
// resident driver's interrupt server is off the chain and the session's
// own server captures interrupt status.
type Session struct {
	Card *card.Card
	SIOP *siop.SIOP
	Host host.Host
	Out  io.Writer

	owned      bool
	registered bool
	savedIstat uint8
	driverISR  *host.IntServer
	localISR   *host.IntServer

	intCount atomic.Uint32
	snapshot atomic.Uint32
}

// Owned reports whether the session currently holds the card.
func (s *Session) Owned() bool {
	return s.owned
}

// IntCount returns how many interrupts the session's server has seen
// since the snapshot was last cleared.
func (s *Session) IntCount() uint32 {
	return s.intCount.Load()
}

// ClearSnapshot arms the interrupt server for a fresh capture.
func (s *Session) ClearSnapshot() {
	s.intCount.Store(0)
	s.snapshot.Store(0)
}

// Snapshot returns the register status bytes captured by the first
// interrupt since the last ClearSnapshot.
func (s *Session) Snapshot() (istat, sien, sstat0, dstat uint8) {
	v := s.snapshot.Load()
	return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// serviceInt is the session's interrupt server. It claims the interrupt
// only when the chip shows a cause, and only the first capture after a
// clear stops the chain walk.
func serviceInt(data any) bool {
	s := data.(*Session)
	istat := s.SIOP.Get8(siop.RegISTAT)
	if istat&(siop.ISTATDIP|siop.ISTATSIP) == 0 {
		return false
	}
	sien := s.SIOP.Get8(siop.RegSIEN)
	sstat0 := s.SIOP.Get8(siop.RegSSTAT0)
	dstat := s.SIOP.Get8(siop.RegDSTAT)
	s.snapshot.Store(uint32(istat)<<24 | uint32(sien)<<16 |
		uint32(sstat0)<<8 | uint32(dstat))
	return s.intCount.Add(1) == 1
}

// removeDriverISR pulls the resident driver's interrupt server off the
// card's chain. Returns the removed server so Release can put it back.
func (s *Session) removeDriverISR() *host.IntServer {
	s.Host.Disable()
	defer s.Host.Enable()
	for _, is := range s.Host.IntServers(card.IRQ) {
		if is.Name == DriverISRName {
			s.Host.RemIntServer(card.IRQ, is)
			return is
		}
	}
	return nil
}

// Seize takes the card away from the resident driver. The driver's
// interrupt server is unhooked, the session's own server installed, and
// the chip reset so no stale operation is left running.
func (s *Session) Seize() error {
	if s.owned {
		return nil
	}
	if !s.registered {
		s.registered = true
		AtCleanup(func() { s.Release() })
	}

	s.ClearSnapshot()
	s.localISR = &host.IntServer{
		Name: "A4091 test",
		Pri:  card.IntPri,
		Data: s,
		Code: serviceInt,
	}
	s.Host.AddIntServer(card.IRQ, s.localISR)

	s.driverISR = s.removeDriverISR()
	if s.driverISR != nil {
		slog.Debug("takeover: driver interrupt server unhooked",
			"name", s.driverISR.Name)
	}

	s.savedIstat = s.SIOP.Get8(siop.RegISTAT)
	s.SIOP.Set8(siop.RegISTAT, s.savedIstat|siop.ISTATRST)
	s.SIOP.Flush()
	s.SIOP.Set8(siop.RegISTAT, s.savedIstat)

	s.SIOP.Set8(siop.RegISTAT, s.SIOP.Get8(siop.RegISTAT)|siop.ISTATRST)
	start := s.Host.Ticks()
	for s.SIOP.Get8(siop.RegISTAT)&siop.ISTATRST == 0 {
		if host.AccessTimeout(s.Host, s.Out, "SIOP reset timeout", 2, start) {
			s.Release()
			return fmt.Errorf("card did not acknowledge reset")
		}
	}
	s.SIOP.Set8(siop.RegISTAT, 0)
	s.SIOP.Reset()

	s.owned = true
	return nil
}

// Release gives the card back. The chip is reset to an idle state, the
// driver's interrupt server reinstalled if one was unhooked, and the
// session's server removed. A released session releases only once.
func (s *Session) Release() {
	if !s.owned {
		return
	}
	s.owned = false

	s.SIOP.Reset()
	if s.driverISR != nil {
		s.Host.AddIntServer(card.IRQ, s.driverISR)
		s.driverISR = nil
	}
	if s.localISR != nil {
		s.Host.RemIntServer(card.IRQ, s.localISR)
		s.localISR = nil
	}
}
