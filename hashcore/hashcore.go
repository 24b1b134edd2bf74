// Package hashcore implements domain-separated, length-extension-resistant
// leaf/internal/single hashing over four algorithm choices, the foundation
// the merkle engine builds on. Grounded on urkle/hash.go's HashLeaf/HashBranch
// (a one-byte domain separator prepended to a reset hash.Hash) and
// mmr/hashwritevalue.go's big-endian integer writes into a running hash.
package hashcore

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/samibs/TrustDoc/errs"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Algorithm identifies one of the four supported hash functions.
type Algorithm string

const (
	SHA256   Algorithm = "sha256"
	SHA3_256 Algorithm = "sha3-256"
	SHA3_512 Algorithm = "sha3-512"
	Blake3   Algorithm = "blake3"
)

// Size is the fixed output width of every algorithm supported here: sha256
// and sha3-256 and blake3 are native 32 bytes; sha3-512 is truncated to 32
// bytes for uniform output width (§4.1).
const Size = 32

// Domain separator bytes, prepended before hashing to keep leaf, internal,
// and single-child promotion hashes in disjoint domains (invariant 6,
// testable property 3).
const (
	sepLeaf     = 0x00
	sepInternal = 0x01
)

// HMAC labels for sha256's three distinct domains. sha256 is Merkle–Damgård
// and therefore subject to length-extension; keying each domain with HMAC
// under a fixed, distinct label closes that gap without changing the
// public Size or API shape (§4.1).
var (
	hmacLeafKey     = []byte("TrustDoc-HMAC-LEAF-KEY-V2")
	hmacInternalKey = []byte("TrustDoc-HMAC-INTERNAL-KEY-V2")
	hmacSingleKey   = []byte("TrustDoc-HMAC-SINGLE-KEY-V2")
)

// Valid reports whether a is one of the four supported algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case SHA256, SHA3_256, SHA3_512, Blake3:
		return true
	}
	return false
}

func newPlainHasher(a Algorithm) (hash.Hash, error) {
	switch a {
	case SHA3_256:
		return sha3.New256(), nil
	case SHA3_512:
		return sha3.New512(), nil
	case Blake3:
		return blake3.New(Size, nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedHash, a)
	}
}

func truncate(sum []byte) []byte {
	if len(sum) > Size {
		return sum[:Size]
	}
	return sum
}

// HashLeaf computes hash_leaf(data) = H(LEAF_SEP || data) under algorithm a,
// version-gated by domainSeparated: when false (legacy v1 trees), no
// separator byte is prepended and sha256 uses plain SHA-256 rather than
// HMAC, matching the spec's "version 1 is legacy" semantics (§3).
func HashLeaf(a Algorithm, domainSeparated bool, data []byte) ([]byte, error) {
	if a == SHA256 {
		if !domainSeparated {
			sum := sha256.Sum256(data)
			return sum[:], nil
		}
		mac := hmac.New(sha256.New, hmacLeafKey)
		mac.Write([]byte{sepLeaf})
		mac.Write(data)
		return mac.Sum(nil), nil
	}
	h, err := newPlainHasher(a)
	if err != nil {
		return nil, err
	}
	if domainSeparated {
		h.Write([]byte{sepLeaf})
	}
	h.Write(data)
	return truncate(h.Sum(nil)), nil
}

// HashInternal computes hash_internal(left, right) = H(INT_SEP || left || right).
func HashInternal(a Algorithm, domainSeparated bool, left, right []byte) ([]byte, error) {
	if a == SHA256 {
		if !domainSeparated {
			h := sha256.New()
			h.Write(left)
			h.Write(right)
			sum := h.Sum(nil)
			return sum, nil
		}
		mac := hmac.New(sha256.New, hmacInternalKey)
		mac.Write([]byte{sepInternal})
		mac.Write(left)
		mac.Write(right)
		return mac.Sum(nil), nil
	}
	h, err := newPlainHasher(a)
	if err != nil {
		return nil, err
	}
	if domainSeparated {
		h.Write([]byte{sepInternal})
	}
	h.Write(left)
	h.Write(right)
	return truncate(h.Sum(nil)), nil
}

// HashSingle computes hash_single(data) = H(INT_SEP || data), the
// internal-class promotion used to lift an unpaired hash to the next level
// (§4.2 step 3).
func HashSingle(a Algorithm, domainSeparated bool, data []byte) ([]byte, error) {
	if a == SHA256 {
		if !domainSeparated {
			h := sha256.New()
			h.Write(data)
			return h.Sum(nil), nil
		}
		mac := hmac.New(sha256.New, hmacSingleKey)
		mac.Write([]byte{sepInternal})
		mac.Write(data)
		return mac.Sum(nil), nil
	}
	h, err := newPlainHasher(a)
	if err != nil {
		return nil, err
	}
	if domainSeparated {
		h.Write([]byte{sepInternal})
	}
	h.Write(data)
	return truncate(h.Sum(nil)), nil
}
