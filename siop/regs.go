/*
 * A4091 - NCR 53C710 register definitions
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

// 53C710 register offsets within the register window.
const (
	RegSCNTL0  = 0x03 // SCSI control 0
	RegSCNTL1  = 0x02 // SCSI control 1
	RegSDID    = 0x01 // SCSI destination ID
	RegSIEN    = 0x00 // SCSI interrupt enable
	RegSCID    = 0x07 // SCSI chip ID
	RegSXFER   = 0x06 // SCSI transfer
	RegSODL    = 0x05 // SCSI output data latch
	RegSOCL    = 0x04 // SCSI output control latch
	RegSFBR    = 0x0b // SCSI first byte received
	RegSIDL    = 0x0a // SCSI input data latch
	RegSBDL    = 0x09 // SCSI bus data lines
	RegSBCL    = 0x08 // SCSI bus control lines
	RegDSTAT   = 0x0f // DMA status
	RegSSTAT0  = 0x0e // SCSI status 0
	RegSSTAT1  = 0x0d // SCSI status 1
	RegSSTAT2  = 0x0c // SCSI status 2
	RegDSA     = 0x10 // Data structure address
	RegCTEST0  = 0x17 // Chip test 0
	RegCTEST1  = 0x16 // Chip test 1
	RegCTEST2  = 0x15 // Chip test 2
	RegCTEST3  = 0x14 // Chip test 3: SCSI FIFO
	RegCTEST4  = 0x1b // Chip test 4: MUX ZMOD SZM SLBE SFWR FBL2-FBL0
	RegCTEST5  = 0x1a // Chip test 5
	RegCTEST6  = 0x19 // Chip test 6: DMA FIFO
	RegCTEST7  = 0x18 // Chip test 7
	RegTEMP    = 0x1c // Temporary stack
	RegDFIFO   = 0x23 // DMA FIFO
	RegISTAT   = 0x22 // Interrupt status
	RegCTEST8  = 0x21 // Chip test 8
	RegLCRC    = 0x20 // Longitudinal parity
	RegDBC     = 0x25 // DMA byte counter
	RegDCMD    = 0x24 // DMA command
	RegDNAD    = 0x28 // DMA next address for data
	RegDSP     = 0x2c // DMA SCRIPTS pointer
	RegDSPS    = 0x30 // DMA SCRIPTS pointer save
	RegSCRATCH = 0x34 // General purpose scratch pad
	RegDMODE   = 0x3b // DMA mode
	RegDIEN    = 0x3a // DMA interrupt enable
	RegDWT     = 0x39 // DMA watchdog timer
	RegDCNTL   = 0x38 // DMA control
	RegADDER   = 0x3c // Sum output of internal adder
)

// Register bits used by the diagnostic.
const (
	SCNTL0EPG = 1 << 2 // Generate parity on the SCSI bus

	ISTATDIP  = 1 << 0 // DMA interrupt pending
	ISTATSIP  = 1 << 1 // SCSI interrupt pending
	ISTATRST  = 1 << 6 // Reset the 53C710
	ISTATABRT = 1 << 7 // Abort

	DMODEMAN  = 1 << 0 // DMA manual start mode
	DMODEFAM  = 1 << 2 // DMA fixed address mode
	DMODEFC1  = 1 << 4 // Value driven on FC1 when bus mastering
	DMODEFC2  = 1 << 5 // Value driven on FC2 when bus mastering
	DMODEBLE0 = 0      // Burst length 1-transfer
	DMODEBLE1 = 1 << 6 // Burst length 2-transfers
	DMODEBLE2 = 1 << 7 // Burst length 4-transfers
	DMODEBLE3 = 1<<6 | 1<<7

	DCNTLCOM  = 1 << 0 // Enable 53C710 mode
	DCNTLSTD  = 1 << 2 // Start DMA operation (execute SCRIPT)
	DCNTLLLM  = 1 << 3 // Low level mode (no DMA or SCRIPTS)
	DCNTLSSM  = 1 << 4 // SCRIPTS single-step mode
	DCNTLEA   = 1 << 5 // Enable Ack
	DCNTLCFD0 = 1 << 7 // SCLK 16.67-25.00 MHz
	DCNTLCFD1 = 1 << 6 // SCLK 25.01-37.50 MHz
	DCNTLCFD2 = 0      // SCLK 37.50-50.00 MHz

	DSTATSSI  = 1 << 3 // SCRIPTS single-step interrupt
	DSTATABRT = 1 << 4 // Aborted
	DSTATDFE  = 1 << 7 // DMA FIFO empty

	SCNTL1ASEP = 1 << 2 // Assert even SCSI data parity
	SCNTL1RST  = 1 << 3 // Assert reset on SCSI bus
	SCNTL1ADB  = 1 << 6 // Assert SCSI data bus (SODL/SOCL registers)

	SSTAT1PAR = 1 << 0 // SCSI parity state
	SSTAT1RST = 1 << 1 // SCSI bus reset is asserted

	CTEST4FBL2 = 1 << 2 // Send CTEST6 register to lane of the DMA FIFO
	CTEST4SLBE = 1 << 4 // SCSI loopback mode enable

	CTEST7CDIS = 1 << 7 // Cache burst disable
)

// FIFOSize is the depth of each DMA FIFO byte lane.
const FIFOSize = 16

type bitdesc []string

var bitsSCNTL0 = bitdesc{"TRG", "AAP", "EPG", "EPC", "WATN/", "START", "ARB0", "ARB1"}
var bitsSCNTL1 = bitdesc{"RES0", "RES1", "AESP", "RST", "CON", "FSR", "ADB", "EXC"}
var bitsSIEN = bitdesc{"PAR", "RST/", "UDC", "SGE", "SEL", "STO", "FCMP", "M/A"}
var bitsSBCL = bitdesc{"I/O", "C/D", "MSG", "ATN", "SEL", "BSY", "ACK", "REQ"}
var bitsDSTAT = bitdesc{"IID", "WTD", "SIR", "SSI", "ABRT", "RF", "RES6", "DFE"}
var bitsSSTAT0 = bitdesc{"PAR", "RST/", "UDC", "SGE", "SEL", "STO", "FCMP", "M/A"}
var bitsSSTAT1 = bitdesc{"SDP/", "RST/", "WOA", "LOA", "AIP", "OLF", "ORF", "ILF"}
var bitsSSTAT2 = bitdesc{"I/O", "C/D", "MSG", "SDP", "FF0", "FF1", "FF2", "FF3"}
var bitsCTEST0 = bitdesc{"DDIR", "RES1", "ERF", "HSC", "EAN", "GRP", "BTD", "RES7"}
var bitsCTEST2 = bitdesc{"DACK", "DREQ", "TEOP", "DFP", "SFP", "SOFF", "SIGP", "RES7"}
var bitsCTEST4 = bitdesc{"FBL0", "FBL1", "FBL2", "SFWR", "SLBE", "SZM", "ZMOD", "MUX"}
var bitsCTEST5 = bitdesc{"DACK", "DREQ", "EOP", "DDIR", "MASR", "ROFF", "BBCK", "ADCK"}
var bitsCTEST7 = bitdesc{"DIFF", "TT1", "EVP", "DFP", "NOTIME", "SC0", "SC1", "CDIS"}
var bitsISTAT = bitdesc{"DIP", "SIP", "RSV2", "CON", "RSV4", "SIOP", "RST", "ABRT"}
var bitsCTEST8 = bitdesc{"SM", "FM", "CLF", "FLF", "V0", "V1", "V2", "V3"}
var bitsDMODE = bitdesc{"MAN", "U0", "FAM", "PD", "FC1", "FC2", "BL0", "BL1"}
var bitsDIEN = bitdesc{"HD", "WTD", "SIR", "SSI", "ABRT", "BF", "RES6", "RES7"}
var bitsDCNTL = bitdesc{"COM", "FA", "STD", "LLM", "SSM", "EA", "CF0", "CF1"}

// DataPins names the 32 bus data pins for walking-bit reports.
var DataPins = bitdesc{
	"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7",
	"D8", "D9", "D10", "D11", "D12", "D13", "D14", "D15",
	"D16", "D17", "D18", "D19", "D20", "D21", "D22", "D23",
	"D24", "D25", "D26", "D27", "D28", "D29", "D30", "D31",
}

// ScsiDataPins names the SCSI data pins, parity included as bit 8.
var ScsiDataPins = bitdesc{
	"SCDAT0", "SCDAT1", "SCDAT2", "SCDAT3",
	"SCDAT4", "SCDAT5", "SCDAT6", "SCDAT7",
	"SCDATP",
}

// ScsiControlPins names the SCSI control pins.
var ScsiControlPins = bitdesc{
	"SCTRL_IO", "SCTRL_CD", "SCTRL_MSG", "SCTRL_ATN",
	"SCTRL_SEL", "SCTRL_BSY", "SCTRL_ACK", "SCTRL_REQ",
}

// RegDef describes one register for the decode table.
type RegDef struct {
	Loc  uint32 // Byte offset in the register window
	Size int    // Size in bytes
	Show bool   // Safe to read/display this register
	Name string
	Desc string
	Bits bitdesc
}

// RegDefs lists the register file in display order.
var RegDefs = []RegDef{
	{0x03, 1, true, "SCNTL0", "SCSI control 0", bitsSCNTL0},
	{0x02, 1, true, "SCNTL1", "SCSI control 1", bitsSCNTL1},
	{0x01, 1, true, "SDID", "SCSI destination ID", nil},
	{0x00, 1, true, "SIEN", "SCSI IRQ enable", bitsSIEN},
	{0x07, 1, true, "SCID", "SCSI chip ID", nil},
	{0x06, 1, true, "SXFER", "SCSI transfer", nil},
	{0x05, 1, true, "SODL", "SCSI output data latch", nil},
	{0x04, 1, true, "SOCL", "SCSI output control latch", bitsSBCL},
	{0x0b, 1, true, "SFBR", "SCSI first byte received", nil},
	{0x0a, 1, true, "SIDL", "SCSI input data latch", nil},
	{0x09, 1, true, "SBDL", "SCSI bus data lines", nil},
	{0x08, 1, true, "SBCL", "SCSI bus contol lines", bitsSBCL},
	{0x0f, 1, true, "DSTAT", "DMA status", bitsDSTAT},
	{0x0e, 1, true, "SSTAT0", "SCSI status 0", bitsSSTAT0},
	{0x0d, 1, true, "SSTAT1", "SCSI status 1", bitsSSTAT1},
	{0x0c, 1, true, "SSTAT2", "SCSI status 2", bitsSSTAT2},
	{0x10, 4, true, "DSA", "Data structure address", nil},
	{0x17, 1, true, "CTEST0", "Chip test 0", bitsCTEST0},
	{0x16, 1, true, "CTEST1", "Chip test 1 7-4=FIFO_Empty 3-0=FIFO_Full", nil},
	{0x15, 1, true, "CTEST2", "Chip test 2", bitsCTEST2},
	{0x14, 1, false, "CTEST3", "Chip test 3 SCSI FIFO", nil},
	{0x1b, 1, true, "CTEST4", "Chip test 4", bitsCTEST4},
	{0x1a, 1, true, "CTEST5", "Chip test 5", bitsCTEST5},
	{0x19, 1, false, "CTEST6", "Chip test 6 DMA FIFO", nil},
	{0x18, 1, true, "CTEST7", "Chip test 7", bitsCTEST7},
	{0x1c, 4, true, "TEMP", "Temporary Stack", nil},
	{0x23, 1, true, "DFIFO", "DMA FIFO", nil},
	{0x22, 1, true, "ISTAT", "Interrupt Status", bitsISTAT},
	{0x21, 1, true, "CTEST8", "Chip test 8", bitsCTEST8},
	{0x20, 1, true, "LCRC", "Longitudinal parity", nil},
	{0x25, 3, true, "DBC", "DMA byte counter", nil},
	{0x24, 1, true, "DCMD", "DMA command", nil},
	{0x28, 4, true, "DNAD", "DMA next address for data", nil},
	{0x2c, 4, true, "DSP", "DMA SCRIPTS pointer", nil},
	{0x30, 4, true, "DSPS", "DMA SCRIPTS pointer save", nil},
	{0x34, 4, true, "SCRATCH", "General purpose scratch pad", nil},
	{0x3b, 1, true, "DMODE", "DMA mode", bitsDMODE},
	{0x3a, 1, true, "DIEN", "DMA interrupt enable", bitsDIEN},
	{0x39, 1, true, "DWT", "DMA watchdog timer", nil},
	{0x38, 1, true, "DCNTL", "DMA control", bitsDCNTL},
	{0x3c, 4, true, "ADDER", "Sum output of internal adder", nil},
}

// FindReg looks up a register by name for the monitor.
func FindReg(name string) (RegDef, bool) {
	for _, rd := range RegDefs {
		if rd.Name == name {
			return rd, true
		}
	}
	return RegDef{}, false
}

// PrintBits prints the name of each set bit in value.
func PrintBits(w io.Writer, bits bitdesc, value uint32) {
	for bit := 0; value != 0 && bit < len(bits); bit++ {
		if value&1 != 0 {
			fmt.Fprintf(w, " %s", bits[bit])
		}
		value >>= 1
	}
}
