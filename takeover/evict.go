/*
 * A4091 - Resident driver eviction
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

	"github.com/rcornwell/A4091/card"
)

// DriverTaskName is the service process the shipped driver starts.
const DriverTaskName = "A3090 SCSI handler"

// KillDriver permanently shuts down the resident SCSI driver: chip
// reset, interrupt server removed for good, and the driver's service
// process pulled from the scheduler. Unbinding the driver from the
// board's config entry is not attempted; that record is advisory and
// removing it has no effect on a driver that is already stopped.
func (s *Session) KillDriver() int {
	s.SIOP.Reset()

	// A seized session already holds the unhooked server; killing it
	// just means never giving it back.
	is := s.driverISR
	if is == nil {
		is = s.removeDriverISR()
	}
	if is != nil {
		fmt.Fprintf(s.Out, "Removed \"%s\" interrupt handler\n", is.Name)
	} else {
		fmt.Fprintf(s.Out, "Did not find \"%s\" interrupt handler\n",
			DriverISRName)
	}
	s.driverISR = nil

	s.Host.Forbid()
	found := s.Host.FindTask(DriverTaskName)
	if found {
		s.Host.RemTask(DriverTaskName)
	}
	s.Host.Permit()
	if found {
		fmt.Fprintf(s.Out, "Removed \"%s\" task\n", DriverTaskName)
	} else {
		fmt.Fprintf(s.Out, "Did not find \"%s\" task\n", DriverTaskName)
	}

	for _, dev := range s.Host.ConfigDevs() {
		if dev.Mfg == card.MfgCommodore && dev.Product == card.ProdA4091 &&
			dev.Addr == s.Card.Base && dev.Binding != "" {
			fmt.Fprintf(s.Out, "Board still bound to %s\n", dev.Binding)
		}
	}
	return 0
}
