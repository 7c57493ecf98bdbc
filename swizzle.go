package texcache

// SwizzleSource selects what a sampled channel reads: one of the stored
// channels, or a constant. The numeric values mirror the guest's texture
// header encoding, including the gap at 1 - the guest has two distinct
// "one" selectors (integer and float) and both take part in the packed
// swizzle key below.
type SwizzleSource uint8

const (
	SwizzleZero     SwizzleSource = 0
	SwizzleR        SwizzleSource = 2
	SwizzleG        SwizzleSource = 3
	SwizzleB        SwizzleSource = 4
	SwizzleA        SwizzleSource = 5
	SwizzleOneInt   SwizzleSource = 6
	SwizzleOneFloat SwizzleSource = 7
)

// EncodeSwizzle packs the four channel selectors into the key used by a
// view's handle cache. Each selector occupies its own 8-bit field, x in the
// most significant byte, so the encoding is injective over the full selector
// range, constants included.
func EncodeSwizzle(x, y, z, w SwizzleSource) uint32 {
	return uint32(x)<<24 | uint32(y)<<16 | uint32(z)<<8 | uint32(w)
}

// DecodeSwizzle is the inverse of EncodeSwizzle.
func DecodeSwizzle(key uint32) (x, y, z, w SwizzleSource) {
	return SwizzleSource(key >> 24), SwizzleSource(key >> 16), SwizzleSource(key >> 8), SwizzleSource(key)
}

// IdentitySwizzle is the default R,G,B,A mapping requested by the
// no-argument handle lookup.
func IdentitySwizzle() (x, y, z, w SwizzleSource) {
	return SwizzleR, SwizzleG, SwizzleB, SwizzleA
}
