/*
 * A4091 - SIOP access tests
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

package siop_test

import (
	"strings"
	"testing"

	"github.com/rcornwell/A4091/card"
	"github.com/rcornwell/A4091/sim"
	"github.com/rcornwell/A4091/siop"
)

func testSIOP(t *testing.T) *siop.SIOP {
	t.Helper()
	m := sim.New(sim.Faults{})
	base, ok := card.Find(m, 0)
	if !ok {
		t.Fatalf("no card found")
	}
	return siop.New(m, m, base+card.OffsetRegisters)
}

func TestShadowWrite(t *testing.T) {
	s := testSIOP(t)
	s.Set8(siop.RegDWT, 0xa5)
	if got := s.Get8(siop.RegDWT); got != 0xa5 {
		t.Errorf("DWT readback %02x, expected a5", got)
	}
	s.Set32(siop.RegSCRATCH, 0x01020304)
	if got := s.Get32(siop.RegSCRATCH); got != 0x01020304 {
		t.Errorf("SCRATCH readback %08x", got)
	}
}

func TestResetState(t *testing.T) {
	s := testSIOP(t)
	s.Set32(siop.RegSCRATCH, 0xfeedface)
	s.Reset()
	if got := s.Get8(siop.RegISTAT); got != 0 {
		t.Errorf("ISTAT %02x after reset", got)
	}
	if got := s.Get8(siop.RegDSTAT); got&0x7f != 0 {
		t.Errorf("DSTAT %02x has status after reset", got)
	}
	if got := s.Get32(siop.RegSCRATCH); got != 0xfeedface {
		t.Errorf("SCRATCH %08x lost over reset", got)
	}
	// Reset is idempotent.
	s.Reset()
	if got := s.Get32(siop.RegSCRATCH); got != 0xfeedface {
		t.Errorf("SCRATCH %08x lost over second reset", got)
	}
}

func TestAbort(t *testing.T) {
	s := testSIOP(t)
	var out strings.Builder
	if rc := s.Abort(&out); rc != 0 {
		t.Errorf("abort returned %d: %s", rc, out.String())
	}
	// Abort leaves a DMA interrupt pending which InitSIOP drains.
	if rc := s.InitSIOP(&out, 2); rc != 0 {
		t.Errorf("init returned %d: %s", rc, out.String())
	}
	if got := s.Get8(siop.RegISTAT); got != 0 {
		t.Errorf("ISTAT %02x after init", got)
	}
}

func TestInitBurstProgramming(t *testing.T) {
	s := testSIOP(t)
	var out strings.Builder
	cases := []struct {
		burst int
		dmode uint8
	}{
		{1, siop.DMODEFC2},
		{2, siop.DMODEBLE1 | siop.DMODEFC2},
		{4, siop.DMODEBLE2 | siop.DMODEFC2},
		{8, siop.DMODEBLE3 | siop.DMODEFC2},
	}
	for _, c := range cases {
		if rc := s.InitSIOP(&out, c.burst); rc != 0 {
			t.Fatalf("init burst %d returned %d", c.burst, rc)
		}
		if got := s.Get8(siop.RegDMODE); got != c.dmode {
			t.Errorf("burst %d: DMODE %02x, expected %02x",
				c.burst, got, c.dmode)
		}
		if got := s.Get8(siop.RegCTEST7); got&siop.CTEST7CDIS == 0 {
			t.Errorf("burst %d: CTEST7 %02x missing CDIS", c.burst, got)
		}
	}
}

func TestReadRegSubWord(t *testing.T) {
	s := testSIOP(t)
	s.Set32(siop.RegDCMD, 0x12345678)
	rd, ok := siop.FindReg("DBC")
	if !ok {
		t.Fatalf("DBC not in register table")
	}
	if got := s.ReadReg(rd); got != 0x345678 {
		t.Errorf("DBC read %06x, expected 345678", got)
	}
}

func TestDecodeRegisters(t *testing.T) {
	s := testSIOP(t)
	s.Reset()
	var out strings.Builder
	s.DecodeRegisters(&out)
	text := out.String()
	for _, want := range []string{"SCNTL0", "SCRATCH", "DCNTL", "ADDER"} {
		if !strings.Contains(text, want) {
			t.Errorf("register listing missing %s", want)
		}
	}
	// FIFO windows are never read during decode.
	if !strings.Contains(text, "--") {
		t.Errorf("FIFO registers not skipped:\n%s", text)
	}
}
