/*
 * A4091 - DIP switch decode
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
)

func showDip(w io.Writer, switches uint8, bit uint) {
	state := "On"
	if switches&(1<<bit) != 0 {
		state = "Off"
	}
	fmt.Fprintf(w, "  SW %d %s  ", bit+1, state)
}

// DecodeSwitches prints the rear-panel DIP switch settings. Bit 7 is
// SW1; a set bit reads as the switch being off.
func (c *Card) DecodeSwitches(w io.Writer) int {
	switches := c.Switches()
	fmt.Fprintf(w, "A4091 Rear-access DIP switches\n")
	showDip(w, switches, 7)
	if switches&0x80 != 0 {
		fmt.Fprintf(w, "SCSI LUNs Enabled\n")
	} else {
		fmt.Fprintf(w, "SCSI LUNs Disabled\n")
	}
	showDip(w, switches, 6)
	if switches&0x40 != 0 {
		fmt.Fprintf(w, "Internal Termination On\n")
	} else {
		fmt.Fprintf(w, "External Termination Only\n")
	}
	showDip(w, switches, 5)
	if switches&0x20 != 0 {
		fmt.Fprintf(w, "Synchronous SCSI Mode\n")
	} else {
		fmt.Fprintf(w, "Asynchronous SCSI Mode\n")
	}
	showDip(w, switches, 4)
	if switches&0x10 != 0 {
		fmt.Fprintf(w, "Short Spinup\n")
	} else {
		fmt.Fprintf(w, "Long Spinup\n")
	}
	showDip(w, switches, 3)
	if switches&0x08 != 0 {
		fmt.Fprintf(w, "SCSI-2 Fast Bus Mode\n")
	} else {
		fmt.Fprintf(w, "SCSI-1 Standard Bus Mode\n")
	}
	showDip(w, switches, 2)
	fmt.Fprintf(w, "ADR2=%d\n", (switches>>2)&1)
	showDip(w, switches, 1)
	fmt.Fprintf(w, "ADR1=%d\n", (switches>>1)&1)
	showDip(w, switches, 0)
	fmt.Fprintf(w, "ADR0=%d  Controller Host ID=%x\n", switches&1, switches&7)

	return 0
}
