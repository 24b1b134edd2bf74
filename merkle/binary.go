package merkle

import (
	"encoding/binary"
	"fmt"

	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/hashcore"
	"github.com/samibs/TrustDoc/internal/checked"
)

// Binary layout for hashes.bin (§4.2):
//
//	magic      [4]byte  "TDFH"
//	version    byte
//	algorithm  byte
//	leafCount  uint32 big-endian
//	root       [32]byte
//	leaves     [count][32]byte, in sorted order
const (
	magic             = "TDFH"
	headerSize        = 4 + 1 + 1 + 4 // magic + version + algorithm + count
	maxLeafCount      = 1_000_000
	legacyRejectedMsg = "version 1 merkle trees are rejected unless the active policy allows legacy trees"
)

var algorithmTag = map[hashcore.Algorithm]byte{
	hashcore.SHA256:   0x01,
	hashcore.SHA3_256: 0x02,
	hashcore.SHA3_512: 0x03,
	hashcore.Blake3:   0x04,
}

var tagAlgorithm = map[byte]hashcore.Algorithm{
	0x01: hashcore.SHA256,
	0x02: hashcore.SHA3_256,
	0x03: hashcore.SHA3_512,
	0x04: hashcore.Blake3,
}

// MarshalBinary serializes the tree into the hashes.bin layout described
// above.
func (t *Tree) MarshalBinary() ([]byte, error) {
	tag, ok := algorithmTag[t.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedHash, t.Algorithm)
	}
	if len(t.RootHash) != hashcore.Size {
		return nil, fmt.Errorf("%w: root hash must be %d bytes", errs.ErrParse, hashcore.Size)
	}
	if len(t.LeafHashes) > maxLeafCount {
		return nil, fmt.Errorf("%w: leaf count %d exceeds maximum %d", errs.ErrSizeExceeded, len(t.LeafHashes), maxLeafCount)
	}

	total := headerSize + hashcore.Size + len(t.LeafHashes)*hashcore.Size
	buf := make([]byte, 0, total)
	buf = append(buf, magic...)
	buf = append(buf, byte(t.Version))
	buf = append(buf, tag)

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(t.LeafHashes)))
	buf = append(buf, countBuf[:]...)

	buf = append(buf, t.RootHash...)
	for _, leaf := range t.LeafHashes {
		buf = append(buf, leaf...)
	}
	return buf, nil
}

// LegacyPolicy is implemented by callers (typically policy.Policy) that
// decide whether version-1 trees should be accepted during deserialization.
type LegacyPolicy interface {
	RejectLegacyMerkle() bool
}

// UnmarshalBinary parses the hashes.bin layout, enforcing every rejection
// rule in §4.2: unknown magic, unsupported algorithm, version 1 unless the
// policy allows it, counts above 1,000,000, and checked-arithmetic length
// validation against truncated input.
func UnmarshalBinary(data []byte, policy LegacyPolicy) (*Tree, error) {
	if len(data) < headerSize+hashcore.Size {
		return nil, fmt.Errorf("%w: hashes.bin shorter than header+root", errs.ErrParse)
	}
	if string(data[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic in hashes.bin", errs.ErrParse)
	}
	version := Version(data[4])
	tag := data[5]

	algorithm, ok := tagAlgorithm[tag]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm tag 0x%02x", errs.ErrUnsupportedHash, tag)
	}

	if version < VersionV2 {
		if policy == nil || policy.RejectLegacyMerkle() {
			return nil, fmt.Errorf("%w: %s", errs.ErrPolicyViolation, legacyRejectedMsg)
		}
	}

	count := binary.BigEndian.Uint32(data[6:10])
	if count > maxLeafCount {
		return nil, fmt.Errorf("%w: leaf count %d exceeds maximum %d", errs.ErrSizeExceeded, count, maxLeafCount)
	}

	required, err := checked.RequiredSize(headerSize, hashcore.Size, hashcore.Size, count)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) < required {
		return nil, fmt.Errorf("%w: hashes.bin truncated, need %d bytes have %d", errs.ErrParse, required, len(data))
	}

	root := append([]byte(nil), data[headerSize:headerSize+hashcore.Size]...)

	leaves := make([][]byte, 0, count)
	offset := headerSize + hashcore.Size
	for i := uint32(0); i < count; i++ {
		leaf := append([]byte(nil), data[offset:offset+hashcore.Size]...)
		leaves = append(leaves, leaf)
		offset += hashcore.Size
	}

	return &Tree{
		Algorithm:  algorithm,
		Version:    version,
		RootHash:   root,
		LeafHashes: leaves,
	}, nil
}
