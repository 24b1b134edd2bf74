// Package merkle implements the deterministic Merkle root construction over
// a named component map (§4.2), and the binary hashes.bin persistence
// format. Grounded on massifs/logformat.go's fixed-header binary layout and
// checked-offset discipline, applied here to a one-shot tree rather than an
// ever-growing log.
package merkle

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/samibs/TrustDoc/hashcore"
	"github.com/samibs/TrustDoc/internal/ioutil"
)

// Version gates whether domain separation and length-extension-resistant
// hashing are in effect. Version 2 mandates both; version 1 is legacy and
// rejected by default (spec.md §3, §4.8).
type Version int

const (
	VersionLegacyV1 Version = 1
	VersionV2       Version = 2
)

// Tree is the deterministic result of reducing a component map to a single
// root hash: the algorithm and version used, the root, and the sorted leaf
// hashes that produced it.
type Tree struct {
	Algorithm  hashcore.Algorithm
	Version    Version
	RootHash   []byte
	LeafHashes [][]byte
}

// Build computes the Merkle root over components (§4.2):
//  1. hash_leaf each value (names are not fed into the hash; ordering comes
//     from sorting the resulting hashes),
//  2. sort the leaf hashes lexicographically,
//  3. iteratively pair-and-reduce, promoting an odd trailing hash via
//     hash_single, until one hash remains.
func Build(algorithm hashcore.Algorithm, version Version, components map[string][]byte) (*Tree, error) {
	if !algorithm.Valid() {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
	domainSeparated := version >= VersionV2

	leaves := make([][]byte, 0, len(components))
	for _, data := range components {
		h, err := hashcore.HashLeaf(algorithm, domainSeparated, data)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, h)
	}
	sort.Slice(leaves, func(i, j int) bool { return bytes.Compare(leaves[i], leaves[j]) < 0 })

	root, err := reduce(algorithm, domainSeparated, leaves)
	if err != nil {
		return nil, err
	}

	return &Tree{
		Algorithm:  algorithm,
		Version:    version,
		RootHash:   root,
		LeafHashes: leaves,
	}, nil
}

// reduce pairs adjacent hashes with hash_internal at each level, promoting
// an unpaired trailing hash via hash_single, until a single root remains.
// An empty component map has no leaves and therefore no defined root.
func reduce(algorithm hashcore.Algorithm, domainSeparated bool, level [][]byte) ([]byte, error) {
	if len(level) == 0 {
		return nil, fmt.Errorf("cannot build a merkle root over zero components")
	}
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		i := 0
		for ; i+1 < len(level); i += 2 {
			h, err := hashcore.HashInternal(algorithm, domainSeparated, level[i], level[i+1])
			if err != nil {
				return nil, err
			}
			next = append(next, h)
		}
		if i < len(level) {
			h, err := hashcore.HashSingle(algorithm, domainSeparated, level[i])
			if err != nil {
				return nil, err
			}
			next = append(next, h)
		}
		level = next
	}
	return level[0], nil
}

// Verify reports whether recomputing the Merkle root over components
// reproduces the Tree's stored root, using a constant-time comparison
// (invariant 1, testable property 15).
func (t *Tree) Verify(components map[string][]byte) (bool, error) {
	recomputed, err := Build(t.Algorithm, t.Version, components)
	if err != nil {
		return false, err
	}
	return ioutil.ConstantTimeEqual(t.RootHash, recomputed.RootHash), nil
}
