package cpu

import "github.com/oisee/i8080/pkg/inst"

// 8080 flag bit positions in the F register.
const (
	FlagC uint8 = 0x01 // Carry
	Flag1 uint8 = 0x02 // Always set
	FlagP uint8 = 0x04 // Parity (even)
	FlagA uint8 = 0x10 // Auxiliary carry out of bit 3
	FlagZ uint8 = 0x40 // Zero
	FlagS uint8 = 0x80 // Sign

	// FlagsDefault is the value of F after reset.
	FlagsDefault = Flag1

	flagsWritable = FlagC | FlagP | FlagA | FlagZ | FlagS
)

// Precomputed flag tables.
var (
	// ParityTable holds FlagP for every byte with an even number of set bits.
	ParityTable [256]uint8
	// SZPTable holds S, Z and P for every result byte.
	SZPTable [256]uint8
)

func init() {
	for i := 0; i < 256; i++ {
		j := uint8(i)
		parity := uint8(0)
		for k := 0; k < 8; k++ {
			parity ^= j & 1
			j >>= 1
		}
		if parity == 0 {
			ParityTable[i] = FlagP
		}
		SZPTable[i] = uint8(i)&FlagS | ParityTable[i]
	}
	SZPTable[0] |= FlagZ
}

// SanitizeFlags forces the bits of F that have a fixed value.
func SanitizeFlags(f uint8) uint8 {
	return f&flagsWritable | Flag1
}

// condFlag maps the upper two bits of a condition code to the flag tested.
var condFlag = [4]uint8{FlagZ, FlagC, FlagP, FlagS}

// CondTrue evaluates a condition code against a flags byte.
// Even codes are taken when the flag is clear, odd codes when it is set.
func CondTrue(f uint8, c inst.Cond) bool {
	set := f&condFlag[(c>>1)&3] != 0
	return set == c.Positive()
}

// Cond evaluates a condition code against the current flags.
func (s *State) Cond(c inst.Cond) bool {
	return CondTrue(s.F, c)
}

// Flag returns 1 if any bit of mask is set in F.
func (s *State) Flag(mask uint8) uint8 {
	return bsel(s.F&mask != 0, 1, 0)
}

func bsel(cond bool, a, b uint8) uint8 {
	if cond {
		return a
	}
	return b
}
