/*
 * A4091 - SIOP register display
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

package siop

import (
	"fmt"
	"io"
)

// ReadReg reads one register by its descriptor. Sub-longword registers
// which are not byte sized are extracted from the aligned longword.
func (s *SIOP) ReadReg(rd RegDef) uint32 {
	switch rd.Size {
	case 1:
		return uint32(s.Get8(rd.Loc))
	case 4:
		return s.Get32(rd.Loc)
	default:
		value := s.Get32(rd.Loc &^ 3)
		value &= 0xffffffff >> ((rd.Loc & 3) * 8)
		return value
	}
}

// WriteReg writes one register by its descriptor.
func (s *SIOP) WriteReg(rd RegDef, value uint32) {
	if rd.Size == 4 {
		s.Set32(rd.Loc, value)
	} else {
		s.Set8(rd.Loc, uint8(value))
	}
}

// DecodeRegisters prints the whole register file. Registers whose read
// has side effects (the FIFO windows) are listed without a value.
func (s *SIOP) DecodeRegisters(w io.Writer) int {
	fmt.Fprintf(w, "53C710 registers\n  Reg Name     Value   Decode\n")
	for _, rd := range RegDefs {
		fmt.Fprintf(w, "   %02x %-7s ", rd.Loc, rd.Name)
		if !rd.Show {
			fmt.Fprintf(w, "      -- %s\n", rd.Desc)
			continue
		}
		value := s.ReadReg(rd)
		fmt.Fprintf(w, "%8x %s", value, rd.Desc)
		if rd.Bits != nil {
			PrintBits(w, rd.Bits, value)
		}
		fmt.Fprintf(w, "\n")
	}
	return 0
}
