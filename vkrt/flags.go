package vkrt

// Flags is satisfied by generated bitmask types.
type Flags interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int32 | ~int64
}

// Empty returns the set with no bits.
func Empty[T Flags]() T { return 0 }

// IsEmpty reports whether no bit of f is set.
func IsEmpty[T Flags](f T) bool { return f == 0 }

// Intersects reports whether a and b share a bit.
func Intersects[T Flags](a, b T) bool { return a&b != 0 }

// Contains reports whether every bit of b is set in a.
func Contains[T Flags](a, b T) bool { return a&b == b }

// Bits splits f into its single-bit values, lowest first.
func Bits[T Flags](f T) []T {
	var out []T
	for f != 0 {
		low := f & -f
		out = append(out, low)
		f &^= low
	}
	return out
}
