/*
 * A4091 - Simulated host tests
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
	"testing"

	"github.com/rcornwell/A4091/siop"
)

func TestAllocatorFirstFit(t *testing.T) {
	a := newAllocator(0x1000, 0x1000)
	addr1, err := a.alloc(100)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if addr1 != 0x1000 {
		t.Errorf("first alloc at %x, expected 1000", addr1)
	}
	addr2, err := a.alloc(100)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if addr2 != 0x1080 {
		t.Errorf("second alloc at %x, expected 1080", addr2)
	}
	a.release(addr1, 100)
	addr3, err := a.alloc(100)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if addr3 != addr1 {
		t.Errorf("freed block not reused: got %x expected %x", addr3, addr1)
	}
}

func TestAllocatorAbs(t *testing.T) {
	a := newAllocator(0x1000, 0x1000)
	if err := a.allocAbs(0x100, 0x1200); err != nil {
		t.Fatalf("allocAbs failed: %v", err)
	}
	if err := a.allocAbs(0x100, 0x1200); err == nil {
		t.Errorf("double allocAbs did not fail")
	}
	if err := a.allocAbs(0x100, 0x3000); err == nil {
		t.Errorf("allocAbs outside region did not fail")
	}
	a.release(0x1200, 0x100)
	if err := a.allocAbs(0x100, 0x1200); err != nil {
		t.Errorf("allocAbs after release failed: %v", err)
	}
}

func TestAllocatorCoalesce(t *testing.T) {
	a := newAllocator(0x1000, 0x1000)
	addr, err := a.alloc(0x1000)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	a.release(addr, 0x800)
	a.release(addr+0x800, 0x800)
	if _, err := a.alloc(0x1000); err != nil {
		t.Errorf("freed halves did not coalesce: %v", err)
	}
}

func TestRAMReadWrite(t *testing.T) {
	m := New(Faults{})
	m.Write32(RAMBase+0x100, 0xdeadbeef)
	if got := m.Read32(RAMBase + 0x100); got != 0xdeadbeef {
		t.Errorf("RAM read %08x, expected deadbeef", got)
	}
	if got := m.Read8(RAMBase + 0x100); got != 0xde {
		t.Errorf("big endian byte order wrong: got %02x", got)
	}
	// Unmapped space reads zero, writes vanish.
	m.Write32(0x10000000, 0x12345678)
	if got := m.Read32(0x10000000); got != 0 {
		t.Errorf("open bus read %08x, expected 0", got)
	}
}

func TestAutoconfigNibbles(t *testing.T) {
	m := New(Faults{})
	// creg 0: high nibble inverted at 0, low nibble inverted at 0x100.
	hi := m.Read8(CardBase)
	lo := m.Read8(CardBase + 0x100)
	value := (^hi & 0xf0) | (^lo >> 4)
	if value != 0x6f {
		t.Errorf("creg 0 decodes to %02x, expected 6f", value)
	}
	// Reserved registers decode to zero.
	hi = m.Read8(CardBase + 0x30)
	lo = m.Read8(CardBase + 0x130)
	if value := (^hi & 0xf0) | (^lo >> 4); value != 0 {
		t.Errorf("reserved creg decodes to %02x, expected 0", value)
	}
}

func TestRegisterWriteAlias(t *testing.T) {
	m := New(Faults{})
	regs := uint32(CardBase + regWindowBase)
	m.Write8(regs+0x40+siop.RegDWT, 0x5a)
	if got := m.Read8(regs + siop.RegDWT); got != 0x5a {
		t.Errorf("aliased write did not land: got %02x", got)
	}
}

func TestSoftResetKeepsScratch(t *testing.T) {
	m := New(Faults{})
	regs := uint32(CardBase + regWindowBase)
	m.Write32(regs+siop.RegSCRATCH, 0xcafef00d)
	m.Write32(regs+siop.RegTEMP, 0x01020304)
	m.Write8(regs+siop.RegDWT, 0xff)
	m.Write8(regs+siop.RegISTAT, siop.ISTATRST)
	m.Write8(regs+siop.RegISTAT, 0)
	if got := m.Read32(regs + siop.RegSCRATCH); got != 0xcafef00d {
		t.Errorf("SCRATCH lost over soft reset: %08x", got)
	}
	if got := m.Read32(regs + siop.RegTEMP); got != 0x01020304 {
		t.Errorf("TEMP lost over soft reset: %08x", got)
	}
	if got := m.Read8(regs + siop.RegDWT); got != 0 {
		t.Errorf("DWT kept value over soft reset: %02x", got)
	}
}

func TestFIFOLaneRoundTrip(t *testing.T) {
	m := New(Faults{})
	chip := m.card.chip
	if got := chip.read8(siop.RegCTEST1); got != 0xf0 {
		t.Fatalf("CTEST1 %02x with empty FIFO, expected f0", got)
	}
	chip.write8(siop.RegCTEST4, siop.CTEST4FBL2|2)
	chip.write8(siop.RegCTEST7, 0x08)
	chip.write8(siop.RegCTEST6, 0x55)
	value := uint16(chip.read8(siop.RegCTEST6))
	value |= uint16(chip.read8(siop.RegCTEST2)&0x08) << 5
	if value != 0x155 {
		t.Errorf("lane round trip got %03x, expected 155", value)
	}
}

func TestScriptMemoryMove(t *testing.T) {
	m := New(Faults{})
	regs := uint32(CardBase + regWindowBase)
	src := uint32(RAMBase + 0x1000)
	dst := uint32(RAMBase + 0x2000)
	scr := uint32(RAMBase + 0x3000)
	m.Write32(src, 0x11223344)
	m.Write32(src+4, 0x55667788)
	m.Write32(scr, 0xc0000000|8)
	m.Write32(scr+4, src)
	m.Write32(scr+8, dst)
	m.Write32(scr+12, 0x98080000)
	m.Write32(scr+16, 0)

	m.Write32(regs+0x40+siop.RegDSP, scr)

	if got := m.Read32(dst); got != 0x11223344 {
		t.Errorf("move word 0 got %08x", got)
	}
	if got := m.Read32(dst + 4); got != 0x55667788 {
		t.Errorf("move word 1 got %08x", got)
	}
	if got := m.Read8(regs + siop.RegISTAT); got&siop.ISTATDIP == 0 {
		t.Errorf("ISTAT %02x missing DIP after script", got)
	}
	if got := m.Read8(regs + siop.RegDSTAT); got&0x04 == 0 {
		t.Errorf("DSTAT %02x missing SIR after script", got)
	}
	if got := m.Read8(regs + siop.RegISTAT); got&siop.ISTATDIP != 0 {
		t.Errorf("DIP still set after DSTAT read: %02x", got)
	}
}

func TestScriptIllegalOpcode(t *testing.T) {
	m := New(Faults{})
	regs := uint32(CardBase + regWindowBase)
	scr := uint32(RAMBase + 0x3000)
	m.Write32(scr, 0x12345678)
	m.Write32(regs+0x40+siop.RegDSP, scr)
	if got := m.Read8(regs + siop.RegDSTAT); got&0x01 == 0 {
		t.Errorf("DSTAT %02x missing IID for illegal opcode", got)
	}
}

func TestLoopback(t *testing.T) {
	m := New(Faults{})
	chip := m.card.chip
	chip.write8(siop.RegDCNTL, siop.DCNTLLLM)
	chip.write8(siop.RegCTEST4, siop.CTEST4SLBE)
	chip.write8(siop.RegSCNTL0, siop.SCNTL0EPG)
	chip.write8(siop.RegSCNTL1, siop.SCNTL1ADB)
	chip.write8(siop.RegSODL, 0x40)
	if got := chip.read8(siop.RegSBDL); got != 0x40 {
		t.Errorf("SBDL %02x, expected 40", got)
	}
	// Single bit set, odd parity line low.
	if got := chip.read8(siop.RegSSTAT1); got&siop.SSTAT1PAR != 0 {
		t.Errorf("parity set for one-bit value: SSTAT1 %02x", got)
	}
	chip.write8(siop.RegSODL, 0x41)
	if got := chip.read8(siop.RegSSTAT1); got&siop.SSTAT1PAR == 0 {
		t.Errorf("parity clear for two-bit value")
	}
}

func TestTaskRemoval(t *testing.T) {
	m := New(Faults{})
	if !m.FindTask("A3090 SCSI handler") {
		t.Fatalf("driver task not present")
	}
	if !m.RemTask("A3090 SCSI handler") {
		t.Fatalf("RemTask failed")
	}
	if m.FindTask("A3090 SCSI handler") {
		t.Errorf("driver task still present after removal")
	}
	if m.RemTask("A3090 SCSI handler") {
		t.Errorf("second RemTask reported success")
	}
}
