package value

// FNV-1a 32-bit parameters
const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// HashBytes computes the 32-bit FNV-1a hash of a byte slice
func HashBytes(b []byte) uint32 {
	h := fnvOffsetBasis
	for _, c := range b {
		h ^= uint32(c)
		h *= fnvPrime
	}
	return h
}
