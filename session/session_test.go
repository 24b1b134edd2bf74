package session

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/samibs/TrustDoc/signing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSig(id string, t time.Time) signing.Signature {
	s := signing.Signature{Signer: signing.Signer{ID: id}}
	s.Timestamp.Time = t
	return s
}

func TestAddSignature_RejectsUnrequiredSigner(t *testing.T) {
	root := []byte("root")
	s := New(root, Unordered, []string{"a", "b"}, time.Now())
	err := s.AddSignature(makeSig("z", time.Now()))
	assert.Error(t, err)
}

func TestAddSignature_RejectsDuplicate(t *testing.T) {
	root := []byte("root")
	s := New(root, Unordered, []string{"a", "b"}, time.Now())
	require.NoError(t, s.AddSignature(makeSig("a", time.Now())))
	assert.Error(t, s.AddSignature(makeSig("a", time.Now())))
}

func TestAddSignature_OrderedModeEnforcesSequence(t *testing.T) {
	root := []byte("root")
	s := New(root, Ordered, []string{"a", "b"}, time.Now())
	assert.Error(t, s.AddSignature(makeSig("b", time.Now())))
	require.NoError(t, s.AddSignature(makeSig("a", time.Now())))
	require.NoError(t, s.AddSignature(makeSig("b", time.Now())))
}

func TestValidateSignatureOrder(t *testing.T) {
	root := []byte("root")
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	s := New(root, Unordered, []string{"a", "b"}, t0)
	require.NoError(t, s.AddSignature(makeSig("a", t1)))
	require.NoError(t, s.AddSignature(makeSig("b", t0)))

	assert.Error(t, s.ValidateSignatureOrder())
}

func TestValidateSignatureOrderMaxGap(t *testing.T) {
	root := []byte("root")
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(48 * time.Hour)

	s := New(root, Unordered, []string{"a", "b"}, t0)
	require.NoError(t, s.AddSignature(makeSig("a", t0)))
	require.NoError(t, s.AddSignature(makeSig("b", t1)))

	assert.NoError(t, s.ValidateSignatureOrder())
	assert.Error(t, s.ValidateSignatureOrderMaxGap(time.Hour))
}

func TestWouldMaintainOrder(t *testing.T) {
	root := []byte("root")
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s := New(root, Unordered, []string{"a", "b"}, t0)
	require.NoError(t, s.AddSignature(makeSig("a", t0)))

	assert.True(t, s.WouldMaintainOrder(t0.Add(time.Minute)))
	assert.False(t, s.WouldMaintainOrder(t0.Add(-time.Minute)))
}

func TestIsCompleteAndMissingSigners(t *testing.T) {
	root := []byte("root")
	t0 := time.Now()
	s := New(root, Unordered, []string{"a", "b", "c"}, t0)
	assert.False(t, s.IsComplete())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.MissingSigners())

	require.NoError(t, s.AddSignature(makeSig("a", t0)))
	assert.False(t, s.IsComplete())
	assert.ElementsMatch(t, []string{"b", "c"}, s.MissingSigners())

	require.NoError(t, s.AddSignature(makeSig("b", t0)))
	require.NoError(t, s.AddSignature(makeSig("c", t0)))
	assert.True(t, s.IsComplete())
	assert.Empty(t, s.MissingSigners())
}

func TestAddSignatureVerified_AbortsOnBrokenPriorSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	root := []byte("root-hash-bytes-32-bytes-long!!")

	mgr := signing.Manager{}
	sigA, err := mgr.Sign(root, signing.Signer{ID: "a"}, signing.Scope{Kind: signing.ScopeFull}, signing.Ed25519Key{SignerID: "a", Key: priv})
	require.NoError(t, err)
	// Tamper with the already-added signature's binding.
	sigA.Signer.ID = "a"
	sigA.Timestamp.Time = sigA.Timestamp.Time.Add(time.Hour) // breaks v2 binding

	s := New(root, Unordered, []string{"a", "b"}, time.Now())
	s.Signatures = append(s.Signatures, sigA)

	lookup := func(id string, alg signing.Algorithm) (any, bool) {
		if id == "a" {
			return signing.Ed25519VerifyKey{SignerID: "a", Key: pub}, true
		}
		return nil, false
	}

	sigB, err := mgr.Sign(root, signing.Signer{ID: "b"}, signing.Scope{Kind: signing.ScopeFull}, signing.Ed25519Key{SignerID: "b", Key: priv})
	require.NoError(t, err)

	err = s.AddSignatureVerified(sigB, lookup, nil)
	assert.Error(t, err)
}
