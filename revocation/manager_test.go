package revocation

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_UnsignedRevocationTemporality(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	list := NewUnsignedList(t0, "local")
	list.Revoke("did:web:cfo.acme.com", ReasonKeyCompromise, "local", t1)

	mgr := NewManager()
	mgr.SetUnsignedList(list)

	revokedBefore, _, _ := mgr.IsRevokedAt("did:web:cfo.acme.com", t0)
	assert.False(t, revokedBefore)

	revokedAfter, revokedAt, reason := mgr.IsRevokedAt("did:web:cfo.acme.com", t2)
	assert.True(t, revokedAfter)
	assert.Equal(t, t1, revokedAt)
	assert.Equal(t, string(ReasonKeyCompromise), reason)
}

func TestManager_AddSignedListRequiresValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	authority := Authority{ID: "authority-1", Name: "ACME Revocation Authority", PublicKey: hex.EncodeToString(pub)}
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	list, err := NewSignedList(authority, issuedAt, time.Time{}, nil, priv)
	require.NoError(t, err)

	mgr := NewManager()
	require.NoError(t, mgr.AddSignedList(list))

	list.Entries = append(list.Entries, Entry{SignerID: "tampered", RevokedAt: issuedAt, Reason: ReasonUnspecified})
	tampered := NewManager()
	assert.Error(t, tampered.AddSignedList(list))
}

func TestManager_AddSignedListVerifiedRequiresTrustedAuthority(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	otherPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	authority := Authority{ID: "authority-1", Name: "ACME Revocation Authority", PublicKey: hex.EncodeToString(pub)}
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	list, err := NewSignedList(authority, issuedAt, time.Time{}, nil, priv)
	require.NoError(t, err)

	untrusting := NewManager()
	assert.Error(t, untrusting.AddSignedListVerified(list))

	mismatched := NewManager()
	mismatched.TrustAuthority(authority.ID, otherPub)
	assert.Error(t, mismatched.AddSignedListVerified(list))

	trusting := NewManager()
	trusting.TrustAuthority(authority.ID, pub)
	assert.NoError(t, trusting.AddSignedListVerified(list))
}

func TestManager_SignedListTamperAtConstructionTime(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	authority := Authority{ID: "authority-1", Name: "ACME Revocation Authority", PublicKey: hex.EncodeToString(pub)}
	_, err = NewSignedList(authority, time.Now(), time.Time{}, nil, otherPriv)
	assert.Error(t, err)
}

func TestManager_ScansUnsignedThenSigned(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	authority := Authority{ID: "authority-1", Name: "ACME Revocation Authority", PublicKey: hex.EncodeToString(pub)}
	signed, err := NewSignedList(authority, t0, time.Time{}, []Entry{
		{SignerID: "did:web:signed-only.acme.com", RevokedAt: t0, Reason: ReasonSuperseded},
	}, priv)
	require.NoError(t, err)

	unsigned := NewUnsignedList(t0, "local")
	unsigned.Revoke("did:web:unsigned-only.acme.com", ReasonKeyCompromise, "local", t0)

	mgr := NewManager()
	mgr.SetUnsignedList(unsigned)
	require.NoError(t, mgr.AddSignedList(signed))

	assert.True(t, mgr.IsRevoked("did:web:unsigned-only.acme.com"))
	assert.True(t, mgr.IsRevoked("did:web:signed-only.acme.com"))
	assert.False(t, mgr.IsRevoked("did:web:never-revoked.acme.com"))
}
