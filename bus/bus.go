package bus

// Space is a 32-bit bus address space. Each access maps to exactly one
// load or store on the backing implementation; accesses are never merged,
// reordered, or elided. Multi-byte accesses are big-endian, matching the
// Zorro III bus.
type Space interface {
	Read8(addr uint32) uint8
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write32(addr uint32, value uint32)
}
