/*
 * A4091 - Card decode tests
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

package card

import (
	"strings"
	"testing"

	"github.com/rcornwell/A4091/host"
	"github.com/rcornwell/A4091/sim"
)

func testCard(t *testing.T, faults sim.Faults) (*sim.Amiga, *Card) {
	t.Helper()
	m := sim.New(faults)
	base, ok := Find(m, 0)
	if faults.NoCard {
		if ok {
			t.Fatalf("found a card on a machine without one")
		}
		return m, nil
	}
	if !ok {
		t.Fatalf("no card found")
	}
	return m, &Card{Space: m, Base: base}
}

func TestReadCreg(t *testing.T) {
	_, c := testCard(t, sim.Faults{})
	expected := []uint8{0x6f, 0x54, 0x30, 0x00, 0x02, 0x02}
	for i, exp := range expected {
		if got := c.ReadCreg(uint32(i * 4)); got != exp {
			t.Errorf("creg %02x: got %02x, expected %02x", i*4, got, exp)
		}
	}
}

func TestDecodeAutoconfig(t *testing.T) {
	_, c := testCard(t, sim.Faults{})
	var out strings.Builder
	if rc := c.DecodeAutoconfig(&out); rc != 0 {
		t.Errorf("decode returned %d:\n%s", rc, out.String())
	}
	text := out.String()
	for _, want := range []string{
		"ZorroIII",
		"Autoboot",
		"Product=0x54",
		"Manufacturer=0x0202",
		"Serial=0x000012a4",
		"Option ROM vector",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("decode output missing %q:\n%s", want, text)
		}
	}
}

func TestDecodeSwitches(t *testing.T) {
	_, c := testCard(t, sim.Faults{})
	var out strings.Builder
	c.DecodeSwitches(&out)
	text := out.String()
	for _, want := range []string{
		"SCSI LUNs Enabled",
		"Internal Termination On",
		"Controller Host ID=7",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("switch output missing %q:\n%s", want, text)
		}
	}
}

func TestListNoCard(t *testing.T) {
	m, _ := testCard(t, sim.Faults{NoCard: true})
	var out strings.Builder
	if rc := List(m, &out, ListAll); rc != 1 {
		t.Errorf("List returned %d without a card", rc)
	}
	if !strings.Contains(out.String(), "No A4091 cards detected") {
		t.Errorf("missing no-card message:\n%s", out.String())
	}
}

func TestListFilters(t *testing.T) {
	m, c := testCard(t, sim.Faults{})
	var out strings.Builder
	if rc := List(m, &out, ListAll); rc != 0 {
		t.Fatalf("List returned %d", rc)
	}
	if !strings.Contains(out.String(), "Bound to 2nd.scsi.device") {
		t.Errorf("binding not listed:\n%s", out.String())
	}

	out.Reset()
	if rc := List(m, &out, 0xdead0000); rc != 0 {
		t.Errorf("List with wrong address returned %d", rc)
	}
	if !strings.Contains(out.String(), "not detected") {
		t.Errorf("missing mismatch message:\n%s", out.String())
	}

	out.Reset()
	if rc := List(m, &out, c.Base); rc != 0 {
		t.Errorf("List by address returned %d", rc)
	}
	if !strings.Contains(out.String(), "Index Address") {
		t.Errorf("header missing:\n%s", out.String())
	}
}

// listHost carries only an expansion list; List touches nothing else.
type listHost struct {
	host.Host
	devs []*host.ConfigDev
}

func (l *listHost) ConfigDevs() []*host.ConfigDev { return l.devs }

func TestListAddressBoundary(t *testing.T) {
	// With 17 cards, index 0x10 would be valid, so the meaning of the
	// argument at the boundary matters: 0x10 is a bus address.
	lh := &listHost{}
	for i := 0; i < 17; i++ {
		lh.devs = append(lh.devs, &host.ConfigDev{
			Mfg:     MfgCommodore,
			Product: ProdA4091,
			Addr:    0x40000000 + uint32(i)*0x01000000,
			Size:    0x01000000,
		})
	}
	var out strings.Builder
	if rc := List(lh, &out, 0x10); rc != 0 {
		t.Errorf("List returned %d", rc)
	}
	if !strings.Contains(out.String(), "not detected") {
		t.Errorf("0x10 taken as a card index:\n%s", out.String())
	}

	out.Reset()
	if rc := List(lh, &out, 0x0f); rc != 0 {
		t.Errorf("List by index returned %d", rc)
	}
	if !strings.Contains(out.String(), "4f000000") {
		t.Errorf("index 0x0f card not listed:\n%s", out.String())
	}
}
