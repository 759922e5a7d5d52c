/*
 * A4091 - Takeover tests
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
	"strings"
	"testing"

	"github.com/rcornwell/A4091/card"
	"github.com/rcornwell/A4091/host"
	"github.com/rcornwell/A4091/sim"
	"github.com/rcornwell/A4091/siop"
)

func testSession(t *testing.T) (*sim.Amiga, *Session, *strings.Builder) {
	t.Helper()
	m := sim.New(sim.Faults{})
	base, ok := card.Find(m, 0)
	if !ok {
		t.Fatalf("no card found")
	}
	out := &strings.Builder{}
	sess := &Session{
		Card: &card.Card{Space: m, Base: base},
		SIOP: siop.New(m, m, base+card.OffsetRegisters),
		Host: m,
		Out:  out,
	}
	return m, sess, out
}

func hasServer(m *sim.Amiga, name string) bool {
	for _, is := range m.IntServers(card.IRQ) {
		if is.Name == name {
			return true
		}
	}
	return false
}

func TestSeizeRelease(t *testing.T) {
	m, sess, _ := testSession(t)

	if err := sess.Seize(); err != nil {
		t.Fatalf("seize failed: %v", err)
	}
	if !sess.Owned() {
		t.Fatalf("session not owned after seize")
	}
	if hasServer(m, DriverISRName) {
		t.Errorf("driver interrupt server still on the chain")
	}
	if !hasServer(m, "A4091 test") {
		t.Errorf("session interrupt server not on the chain")
	}

	sess.Release()
	if sess.Owned() {
		t.Errorf("session still owned after release")
	}
	if !hasServer(m, DriverISRName) {
		t.Errorf("driver interrupt server not restored")
	}
	if hasServer(m, "A4091 test") {
		t.Errorf("session interrupt server left behind")
	}

	// Release is idempotent.
	sess.Release()
	count := 0
	for _, is := range m.IntServers(card.IRQ) {
		if is.Name == DriverISRName {
			count++
		}
	}
	if count != 1 {
		t.Errorf("driver server on the chain %d times", count)
	}
}

func TestSeizeTwice(t *testing.T) {
	m, sess, _ := testSession(t)
	if err := sess.Seize(); err != nil {
		t.Fatalf("seize failed: %v", err)
	}
	if err := sess.Seize(); err != nil {
		t.Fatalf("second seize failed: %v", err)
	}
	sess.Release()
	if hasServer(m, "A4091 test") {
		t.Errorf("session server left behind after double seize")
	}
}

func TestSnapshotCapture(t *testing.T) {
	m, sess, _ := testSession(t)
	if err := sess.Seize(); err != nil {
		t.Fatalf("seize failed: %v", err)
	}
	defer sess.Release()

	// Run a trivial script to raise a DMA interrupt.
	scr, err := m.AllocMem(8)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	defer m.FreeMem(scr, 8)
	m.Write32(scr, 0x98080000)
	m.Write32(scr+4, 0)
	sess.ClearSnapshot()
	sess.SIOP.Set32(siop.RegDSP, scr)

	if got := sess.IntCount(); got != 1 {
		t.Fatalf("interrupt count %d, expected 1", got)
	}
	istat, _, _, dstat := sess.Snapshot()
	if istat&siop.ISTATDIP == 0 {
		t.Errorf("snapshot ISTAT %02x missing DIP", istat)
	}
	if dstat&0x04 == 0 {
		t.Errorf("snapshot DSTAT %02x missing SIR", dstat)
	}
	// The handler's DSTAT read acknowledged the interrupt.
	if got := sess.SIOP.Get8(siop.RegISTAT); got&siop.ISTATDIP != 0 {
		t.Errorf("ISTAT %02x still shows DIP", got)
	}
}

func TestKillDriver(t *testing.T) {
	m, sess, out := testSession(t)
	if err := sess.Seize(); err != nil {
		t.Fatalf("seize failed: %v", err)
	}
	sess.KillDriver()

	if m.FindTask(DriverTaskName) {
		t.Errorf("driver task still running")
	}
	if hasServer(m, DriverISRName) {
		t.Errorf("driver interrupt server still on the chain")
	}
	if !strings.Contains(out.String(), "Removed") {
		t.Errorf("no removal report:\n%s", out.String())
	}

	// Release must not resurrect the killed driver.
	sess.Release()
	if hasServer(m, DriverISRName) {
		t.Errorf("killed driver server restored by release")
	}
}

func TestCleanupRunsOnce(t *testing.T) {
	count := 0
	AtCleanup(func() { count++ })
	Cleanup()
	Cleanup()
	if count != 1 {
		t.Errorf("cleanup ran %d times, expected 1", count)
	}
}

func TestAccessTimeout(t *testing.T) {
	m := sim.New(sim.Faults{})
	var out strings.Builder
	if host.AccessTimeout(m, &out, "probe", 1000, m.Ticks()) {
		t.Errorf("timed out immediately")
	}
	if host.AccessTimeout(m, &out, "probe", 0, m.Ticks()) {
		if !strings.Contains(out.String(), "probe") {
			t.Errorf("timeout message missing: %q", out.String())
		}
	} else {
		t.Errorf("zero tick timeout did not fire")
	}
}
