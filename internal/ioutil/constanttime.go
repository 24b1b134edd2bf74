package ioutil

import "crypto/subtle"

// ConstantTimeEqual reports whether a and b are byte-for-byte equal without
// leaking timing information about where they first differ. Used for
// comparing Merkle roots and signature bytes (spec.md invariant 1, testable
// property 15).
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
