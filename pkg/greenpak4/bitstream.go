package greenpak4

// ConfigImage accumulates configuration bits during image emission. Sites
// emit in fixed inventory order, so the packed image is bit-exact for
// identical committed state.
type ConfigImage struct {
	bits []bool
}

// WriteBit appends one bit.
func (c *ConfigImage) WriteBit(b bool) {
	c.bits = append(c.bits, b)
}

// WriteBits appends the low n bits of v, LSB first.
func (c *ConfigImage) WriteBits(v uint32, n int) {
	for i := 0; i < n; i++ {
		c.bits = append(c.bits, v&(1<<uint(i)) != 0)
	}
}

// Len returns the number of bits written so far.
func (c *ConfigImage) Len() int {
	return len(c.bits)
}

// Bytes packs the bits into bytes, LSB first, zero-padding the tail.
func (c *ConfigImage) Bytes() []byte {
	out := make([]byte, (len(c.bits)+7)/8)
	for i, b := range c.bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}
