package merkle

import (
	"testing"

	"github.com/samibs/TrustDoc/hashcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func components() map[string][]byte {
	return map[string][]byte{
		"manifest.cbor": []byte("manifest bytes"),
		"content.cbor":  []byte("content bytes"),
		"styles.css":    []byte("body{}"),
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t1, err := Build(hashcore.SHA256, VersionV2, components())
	require.NoError(t, err)
	t2, err := Build(hashcore.SHA256, VersionV2, components())
	require.NoError(t, err)
	assert.Equal(t, t1.RootHash, t2.RootHash)
}

func TestBuild_OrderIndependent(t *testing.T) {
	c1 := components()
	c2 := map[string][]byte{
		"styles.css":    c1["styles.css"],
		"manifest.cbor": c1["manifest.cbor"],
		"content.cbor":  c1["content.cbor"],
	}
	t1, err := Build(hashcore.SHA3_256, VersionV2, c1)
	require.NoError(t, err)
	t2, err := Build(hashcore.SHA3_256, VersionV2, c2)
	require.NoError(t, err)
	assert.Equal(t, t1.RootHash, t2.RootHash)
}

func TestVerify_RoundTrip(t *testing.T) {
	comps := components()
	tree, err := Build(hashcore.Blake3, VersionV2, comps)
	require.NoError(t, err)
	ok, err := tree.Verify(comps)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Tamper(t *testing.T) {
	comps := components()
	tree, err := Build(hashcore.SHA256, VersionV2, comps)
	require.NoError(t, err)

	comps["content.cbor"] = []byte("tampered content")
	ok, err := tree.Verify(comps)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBinaryRoundTrip(t *testing.T) {
	tree, err := Build(hashcore.SHA3_512, VersionV2, components())
	require.NoError(t, err)

	data, err := tree.MarshalBinary()
	require.NoError(t, err)

	parsed, err := UnmarshalBinary(data, strictPolicy{})
	require.NoError(t, err)
	assert.Equal(t, tree.RootHash, parsed.RootHash)
	assert.Equal(t, tree.Algorithm, parsed.Algorithm)
	assert.Equal(t, len(tree.LeafHashes), len(parsed.LeafHashes))
}

type strictPolicy struct{}

func (strictPolicy) RejectLegacyMerkle() bool { return true }

type permissivePolicy struct{}

func (permissivePolicy) RejectLegacyMerkle() bool { return false }

func TestUnmarshalBinary_RejectsLegacyByDefault(t *testing.T) {
	tree, err := Build(hashcore.SHA256, VersionLegacyV1, components())
	require.NoError(t, err)
	data, err := tree.MarshalBinary()
	require.NoError(t, err)

	_, err = UnmarshalBinary(data, strictPolicy{})
	require.Error(t, err)

	parsed, err := UnmarshalBinary(data, permissivePolicy{})
	require.NoError(t, err)
	assert.Equal(t, VersionLegacyV1, parsed.Version)
}

func TestUnmarshalBinary_RejectsBadMagic(t *testing.T) {
	_, err := UnmarshalBinary(make([]byte, 64), strictPolicy{})
	require.Error(t, err)
}

func TestUnmarshalBinary_RejectsTruncated(t *testing.T) {
	tree, err := Build(hashcore.SHA256, VersionV2, components())
	require.NoError(t, err)
	data, err := tree.MarshalBinary()
	require.NoError(t, err)

	_, err = UnmarshalBinary(data[:len(data)-1], strictPolicy{})
	require.Error(t, err)
}

func TestUnmarshalBinary_RejectsOversizedCount(t *testing.T) {
	tree, err := Build(hashcore.SHA256, VersionV2, components())
	require.NoError(t, err)
	data, err := tree.MarshalBinary()
	require.NoError(t, err)

	// Overwrite the declared leaf count with the maximum uint32 value.
	data[6], data[7], data[8], data[9] = 0xff, 0xff, 0xff, 0xff

	_, err = UnmarshalBinary(data, strictPolicy{})
	require.Error(t, err)
}
