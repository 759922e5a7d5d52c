/*
 * A4091 - Diagnostic scenario tests
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
	"fmt"
	"strings"
	"testing"

	"github.com/rcornwell/A4091/card"
	"github.com/rcornwell/A4091/script"
	"github.com/rcornwell/A4091/sim"
	"github.com/rcornwell/A4091/siop"
	"github.com/rcornwell/A4091/takeover"
)

func testSuite(t *testing.T, faults sim.Faults) (*Suite, *strings.Builder) {
	t.Helper()
	m := sim.New(faults)
	base, ok := card.Find(m, 0)
	if !ok {
		t.Fatalf("no card found")
	}
	out := &strings.Builder{}
	sess := &takeover.Session{
		Card: &card.Card{Space: m, Base: base},
		SIOP: siop.New(m, m, base+card.OffsetRegisters),
		Host: m,
		Out:  out,
	}
	eng, err := script.NewEngine(sess, out)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	t.Cleanup(func() {
		eng.Close()
		sess.Release()
	})
	return &Suite{Sess: sess, Eng: eng, Out: out, Burst: 2}, out
}

func TestHealthyCardPasses(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{})
	if rc := suite.Run(TestAll); rc != 0 {
		t.Fatalf("healthy card failed %d tests:\n%s", rc, out.String())
	}
	text := out.String()
	for _, name := range []string{
		"Device access", "Register test", "DMA FIFO", "SCSI FIFO",
		"DMA", "DMA copy", "Performance", "SCSI pins",
	} {
		if !strings.Contains(text, name) {
			t.Errorf("test %q never ran:\n%s", name, text)
		}
	}
	if strings.Contains(text, "FAIL") {
		t.Errorf("healthy run printed FAIL:\n%s", text)
	}
	if !strings.Contains(text, "PASS: 8192 KB") {
		t.Errorf("performance total wrong:\n%s", text)
	}
}

func TestStuckRegisterBit(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{StuckLow: 0x20})
	if rc := suite.Run(TestRegisterAccess); rc == 0 {
		t.Fatalf("stuck bit not detected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Stuck low: 00000020") {
		t.Errorf("stuck bit not reported:\n%s", out.String())
	}
}

func TestStuckHighRegisterBit(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{StuckHigh: 0x00010000})
	if rc := suite.Run(TestRegisterAccess); rc == 0 {
		t.Fatalf("stuck bit not detected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Stuck high: 00010000") {
		t.Errorf("stuck bit not reported:\n%s", out.String())
	}
}

func TestDMAAddressFault(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{AddrFlip: 1 << 22})
	if rc := suite.Run(TestDMACopy); rc == 0 {
		t.Fatalf("address fault not detected:\n%s", out.String())
	}
	text := out.String()
	if !strings.Contains(text, "!= expected") {
		t.Errorf("no mismatch reported:\n%s", text)
	}
	if !strings.Contains(text, "Modified RAM addresses:") ||
		!strings.Contains(text, ">") {
		t.Errorf("corrupted landing address not reported:\n%s", text)
	}
	// The run ends at the first failing pass, so the guard scan runs
	// exactly once.
	if strings.Count(text, "Modified RAM addresses:") != 1 {
		t.Errorf("guard scan ran more than once:\n%s", text)
	}
}

func TestGuardCopyDivergence(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{})
	h := suite.Sess.Host
	sp := suite.Sess.SIOP.Space

	dst, err := h.AllocMem(dmaLen)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	defer h.FreeMem(dst, dmaLen)

	// Hold one corrupted landing address ourselves so the guard has to
	// fall back to a snapshot of live memory.
	contended := dst ^ 1<<14
	if _, err := h.AllocAbs(dmaLen, contended); err != nil {
		t.Fatalf("reserve %08x: %v", contended, err)
	}
	defer h.FreeMem(contended, dmaLen)
	for off := uint32(0); off < dmaLen; off += 4 {
		sp.Write32(contended+off, 0x11110000+off)
	}

	entries := suite.guardAddrs(dst)
	defer func() {
		for _, e := range entries {
			h.FreeMem(e.buf, e.size)
		}
	}()
	var guard *bfEntry
	for i := range entries {
		if entries[i].addr == contended {
			guard = &entries[i]
		}
	}
	if guard == nil || guard.reserved {
		t.Fatalf("no snapshot guard at %08x", contended)
	}

	suite.scanGuards(entries)
	if strings.Contains(out.String(), "Modified RAM") {
		t.Fatalf("untouched guards reported:\n%s", out.String())
	}

	sp.Write32(contended+8, 0xdeadbeef)
	suite.scanGuards(entries)
	marker := fmt.Sprintf("<%x>", contended)
	if !strings.Contains(out.String(), marker) {
		t.Fatalf("divergence at %08x not reported:\n%s",
			contended, out.String())
	}

	// Reporting rearms the snapshot.
	out.Reset()
	suite.scanGuards(entries)
	if strings.Contains(out.String(), marker) {
		t.Errorf("guard reported twice for one change:\n%s", out.String())
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{StuckLow: 0x20})
	if rc := suite.Run(TestAll); rc != 1 {
		t.Fatalf("run returned %d, expected 1:\n%s", rc, out.String())
	}
	text := out.String()
	if !strings.Contains(text, "Register test") ||
		!strings.Contains(text, "FAIL") {
		t.Fatalf("register failure missing:\n%s", text)
	}
	if strings.Contains(text, "DMA FIFO") {
		t.Errorf("run continued past the failure:\n%s", text)
	}
}

func TestRunContinuesPastFailure(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{StuckLow: 0x20})
	suite.Continue = true
	if rc := suite.Run(TestAll); rc == 0 {
		t.Fatalf("stuck bit not detected:\n%s", out.String())
	}
	text := out.String()
	for _, name := range []string{"Register test", "Performance", "SCSI pins"} {
		if !strings.Contains(text, name) {
			t.Errorf("test %q never ran:\n%s", name, text)
		}
	}
}

func TestSlowBusTimeout(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{SlowBus: true})
	if rc := suite.Run(TestDeviceAccess); rc == 0 {
		t.Fatalf("slow bus not detected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "ROM access timeout") {
		t.Errorf("timeout not reported:\n%s", out.String())
	}
}

func TestFloatingRegisterBit(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{FloatBits: 1 << 22})
	if rc := suite.Run(TestRegisterAccess); rc == 0 {
		t.Fatalf("floating bit not detected:\n%s", out.String())
	}
	text := out.String()
	if !strings.Contains(text, "Floating or bridged: 00400000") ||
		!strings.Contains(text, "D22") {
		t.Errorf("floating bit not reported by pin:\n%s", text)
	}
	if strings.Contains(text, "Stuck") {
		t.Errorf("floating bit misreported as stuck:\n%s", text)
	}
}

func TestDMAFIFOSkippedUnderUAE(t *testing.T) {
	faults := sim.Faults{UAE: true, FIFOLaneXor: [4]uint16{0x01, 0, 0, 0}}
	suite, out := testSuite(t, faults)
	if rc := suite.Run(TestDMAFIFO); rc != 0 {
		t.Fatalf("DMA FIFO ran under emulation:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Lane") {
		t.Errorf("lane fault reported under emulation:\n%s", out.String())
	}

	// The SCSI FIFO walk still runs there.
	suite2, out2 := testSuite(t, faults)
	if rc := suite2.Run(TestSCSIFIFO); rc == 0 {
		t.Fatalf("SCSI FIFO skipped under emulation:\n%s", out2.String())
	}
}

// regRecorder remembers the last value written to each register, so a
// test can see writes the next reset wipes from the chip itself.
type regRecorder struct {
	*sim.Amiga
	regBase uint32
	last    map[uint32]uint8
}

func (r *regRecorder) Write8(addr uint32, value uint8) {
	if addr >= r.regBase && addr < r.regBase+0x80 {
		r.last[addr&0x3f] = value
	}
	r.Amiga.Write8(addr, value)
}

func TestPinWalkRestoresSetup(t *testing.T) {
	m := sim.New(sim.Faults{})
	base, ok := card.Find(m, 0)
	if !ok {
		t.Fatalf("no card found")
	}
	rec := &regRecorder{
		Amiga:   m,
		regBase: base + card.OffsetRegisters,
		last:    map[uint32]uint8{},
	}
	out := &strings.Builder{}
	sess := &takeover.Session{
		Card: &card.Card{Space: m, Base: base},
		SIOP: siop.New(rec, m, base+card.OffsetRegisters),
		Host: m,
		Out:  out,
	}
	suite := &Suite{Sess: sess, Out: out}

	sess.SIOP.Set8(siop.RegSCNTL0, 0xca)
	sess.SIOP.Set8(siop.RegSCNTL1, 0x10)
	if rc := suite.scsiPins(); rc != 0 {
		t.Fatalf("pin walk failed %d:\n%s", rc, out.String())
	}
	if got := rec.last[siop.RegSCNTL0]; got != 0xca {
		t.Errorf("SCNTL0 left as %02x, expected the entry value ca", got)
	}
	if got := rec.last[siop.RegSCNTL1]; got != 0x10 {
		t.Errorf("SCNTL1 left as %02x, expected the entry value 10", got)
	}
}

func TestFIFOLaneFault(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{FIFOLaneXor: [4]uint16{0, 0x01, 0, 0}})
	if rc := suite.Run(TestDMAFIFO); rc == 0 {
		t.Fatalf("FIFO fault not detected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Lane 1") {
		t.Errorf("bad lane not named:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Lane 0") {
		t.Errorf("healthy lane reported:\n%s", out.String())
	}
}

func TestTermPowerFault(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{TermPowerDead: true})
	if rc := suite.Run(TestSCSIPins); rc == 0 {
		t.Fatalf("dead terminator power not detected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "terminator power") {
		t.Errorf("terminator power not named:\n%s", out.String())
	}
}

func TestBusResetFault(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{BusStuckReset: true})
	if rc := suite.Run(TestSCSIPins); rc == 0 {
		t.Fatalf("stuck reset not detected:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "stuck asserted") {
		t.Errorf("stuck reset not named:\n%s", out.String())
	}
}

func TestSCSIPinFault(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{ScsiStuckLow: 0x04})
	if rc := suite.Run(TestSCSIPins); rc == 0 {
		t.Fatalf("stuck pin not detected:\n%s", out.String())
	}
	// A register bit stuck low is the pin stuck high.
	if !strings.Contains(out.String(), "Stuck high") ||
		!strings.Contains(out.String(), "SCDAT2") {
		t.Errorf("stuck pin not reported:\n%s", out.String())
	}
}

func TestScratchDMA(t *testing.T) {
	suite, out := testSuite(t, sim.Faults{})
	if rc := suite.Run(TestDMA); rc != 0 {
		t.Fatalf("scratch DMA failed:\n%s", out.String())
	}
}

func TestPrandSequence(t *testing.T) {
	var a, b prand
	a.srand(19700119)
	b.srand(19700119)
	for i := 0; i < 100; i++ {
		if a.rand() != b.rand() {
			t.Fatalf("sequences diverged at %d", i)
		}
	}
	a.srand(1)
	if a.rand() == b.rand() {
		t.Errorf("reseed did not change the sequence")
	}
}
