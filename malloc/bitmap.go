package malloc

import "math/bits"

// slotbits one bit per chunk, set while the chunk is allocated.
type slotbits struct {
	nbits int64
	words []uint64
}

func newslotbits(nbits int64) *slotbits {
	return &slotbits{nbits: nbits, words: make([]uint64, ceil(nbits, 64))}
}

func (sb *slotbits) isset(slot int64) bool {
	return (sb.words[slot>>6] & (1 << uint(slot&0x3f))) != 0
}

func (sb *slotbits) setbit(slot int64) {
	sb.words[slot>>6] |= 1 << uint(slot&0x3f)
}

func (sb *slotbits) clearbit(slot int64) {
	sb.words[slot>>6] &^= 1 << uint(slot&0x3f)
}

// ones return number of set bits.
func (sb *slotbits) ones() (n int64) {
	for _, word := range sb.words {
		n += int64(bits.OnesCount64(word))
	}
	return n
}

// each call fn for every set bit, in increasing order.
func (sb *slotbits) each(fn func(slot int64)) {
	for i, word := range sb.words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			fn(int64(i<<6) + int64(bit))
			word &= word - 1
		}
	}
}

func ceil(divident, divisor int64) int64 {
	if divident%divisor == 0 {
		return divident / divisor
	}
	return (divident / divisor) + 1
}
