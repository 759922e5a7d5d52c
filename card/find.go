/*
 * A4091 - Card location
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
	"fmt"
	"io"

	"github.com/rcornwell/A4091/host"
)

// Find locates an A4091 on the expansion list by autoconfig order and
// returns its bus base address.
func Find(h host.Host, pos uint32) (uint32, bool) {
	count := uint32(0)
	for _, dev := range h.ConfigDevs() {
		if dev.Mfg != MfgCommodore || dev.Product != ProdA4091 {
			continue
		}
		if count == pos {
			return dev.Addr, true
		}
		count++
	}
	return 0, false
}

// ListAll selects every card in List.
const ListAll = 0xffffffff

// List prints all A4091 cards found during autoconfig, or only the one
// selected by addr (index when below 0x10, bus address from 0x10 up).
// Returns 1 when no card was found at all.
func List(h host.Host, w io.Writer, addr uint32) int {
	count := uint32(0)
	didHeader := false

	for _, dev := range h.ConfigDevs() {
		if dev.Mfg != MfgCommodore || dev.Product != ProdA4091 {
			continue
		}
		if addr != ListAll &&
			((addr >= 0x10 && dev.Addr != addr) ||
				(addr < 0x10 && count != addr)) {
			count++
			continue
		}
		if !didHeader {
			didHeader = true
			fmt.Fprintf(w, "  Index Address  Size     Flags\n")
		}
		fmt.Fprintf(w, "  %-3d   %08x %08x", count, dev.Addr, dev.Size)
		if dev.Flags&host.CDFShutUp != 0 {
			fmt.Fprintf(w, " ShutUp")
		}
		if dev.Flags&host.CDFConfigMe != 0 {
			fmt.Fprintf(w, " ConfigMe")
		}
		if dev.Flags&host.CDFBadMemory != 0 {
			fmt.Fprintf(w, " BadMemory")
		}
		if dev.Binding != "" {
			fmt.Fprintf(w, " Bound to %s", dev.Binding)
		}
		fmt.Fprintf(w, "\n")
		count++
	}

	if count == 0 {
		fmt.Fprintf(w, "No A4091 cards detected\n")
		return 1
	}
	if !didHeader {
		fmt.Fprintf(w, "Specified card %x not detected\n", addr)
	}
	return 0
}
