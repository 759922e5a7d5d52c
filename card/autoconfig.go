/*
 * A4091 - Autoconfig area decode
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

var z2ConfigSizes = []string{
	"8 MB", "64 KB", "128 KB", "256 KB", "512KB", "1MB", "2MB", "4MB",
}

var z3ConfigSizes = []string{
	"16 MB", "32 MB", "64 MB", "128 MB", "256 MB", "512 MB", "1 GB", "RSVD",
}

var configSubsizes = []string{
	"Same-as-Physical", "Automatically-sized", "64 KB", "128 KB",
	"256 KB", "512 KB", "1MB", "2MB",
	"4MB", "6MB", "8MB", "10MB", "12MB", "14MB", "Rsvd1", "Rsvd2",
}

func (c *Card) showCreg(w io.Writer, reg uint32) uint8 {
	value := c.ReadCreg(reg)
	fmt.Fprintf(w, "   %02x   %02x", reg, value)
	return value
}

func (c *Card) autoconfigReserved(w io.Writer, reg uint32) int {
	value := c.ReadCreg(reg)
	if value != 0x00 {
		fmt.Fprintf(w, "   %02x   %02x", reg, value)
		fmt.Fprintf(w, " Reserved: should be 0x00\n")
		return 1
	}
	return 0
}

// DecodeAutoconfig prints the decoded autoconfig area. The return count
// is non-zero when reserved registers carry unexpected values or the
// board type is not what an A4091 reports.
func (c *Card) DecodeAutoconfig(w io.Writer) int {
	rc := 0
	isZ3 := false
	isAutoboot := false
	sizes := z2ConfigSizes

	fmt.Fprintf(w, "A4091 Autoconfig area\n  Reg Data Decode\n")
	value := ^c.showCreg(w, 0x00)
	switch value >> 6 {
	case 0, 1:
		fmt.Fprintf(w, " Zorro_Reserved")
	case 2:
		fmt.Fprintf(w, " ZorroIII")
		isZ3 = true
	case 3:
		fmt.Fprintf(w, " ZorroII")
	}
	if value&0x20 != 0 {
		fmt.Fprintf(w, " Memory")
	}
	if isZ3 && (c.ReadCreg(0x08)&0x20) != 0 {
		sizes = z3ConfigSizes
	}
	fmt.Fprintf(w, " Size=%s", sizes[value&0x7])
	if value&0x10 != 0 {
		fmt.Fprintf(w, " Autoboot")
		isAutoboot = true
	}
	if value&0x08 != 0 {
		fmt.Fprintf(w, " Link-to-next")
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, " Product=0x%02x\n", c.showCreg(w, 0x04))

	rc += c.autoconfigReserved(w, 0x0c)

	value = c.showCreg(w, 0x08)
	if isZ3 {
		if value&0x80 != 0 {
			fmt.Fprintf(w, " Device-Memory")
			rc++ // Unexpected for A4091
		} else {
			fmt.Fprintf(w, " Device-IO")
		}
	} else {
		rc++ // Unexpected for A4091
		if value&0x80 != 0 {
			fmt.Fprintf(w, " Fit-ZorroII")
		} else {
			fmt.Fprintf(w, " Fit-anywhere")
		}
	}
	if value&0x20 != 0 {
		fmt.Fprintf(w, " NoShutup")
	}
	if isZ3 && (value&0x10) == 0 {
		fmt.Fprintf(w, " Invalid_RSVD")
	}
	if value&0x20 != 0 {
		fmt.Fprintf(w, " SizeExt")
	}
	fmt.Fprintf(w, " %s\n", configSubsizes[value&0x0f])

	value32 := uint32(c.showCreg(w, 0x10)) << 8
	fmt.Fprintf(w, " Mfg Number high byte\n")
	value32 |= uint32(c.showCreg(w, 0x14))
	fmt.Fprintf(w, " Mfg Number low byte    Manufacturer=0x%04x\n", value32)

	value32 = 0
	for byt := uint32(0); byt < 4; byt++ {
		value32 <<= 8
		value32 |= uint32(c.showCreg(w, 0x18+byt*4))
		fmt.Fprintf(w, " Serial number byte %d", byt)
		if byt == 3 {
			fmt.Fprintf(w, "   Serial=0x%08x", value32)
		}
		fmt.Fprintf(w, "\n")
	}

	if isAutoboot {
		value32 = uint32(c.showCreg(w, 0x28)) << 8
		fmt.Fprintf(w, " Option ROM vector high\n")
		value32 |= uint32(c.showCreg(w, 0x2c))
		fmt.Fprintf(w, " Option ROM vector low  Offset=0x%04x\n", value32)
	}
	for byt := uint32(0x30); byt <= 0x3c; byt += 4 {
		rc += c.autoconfigReserved(w, byt)
	}
	for byt := uint32(0x52); byt <= 0x7c; byt += 4 {
		rc += c.autoconfigReserved(w, byt)
	}

	return rc
}
