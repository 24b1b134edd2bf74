package whitelist

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleWhitelist() *Whitelist {
	return New("acme-signers", "trusted signers for ACME documents", []TrustedSigner{
		{ID: "did:web:cfo.acme.com", Name: "CFO Jane Smith", PublicKey: "aabbcc", Roles: []string{"finance", "executive"}},
		{ID: "did:web:ceo.acme.com", Name: "CEO John Doe", Roles: []string{"executive"}},
	})
}

func TestIsTrustedAndGetSigner(t *testing.T) {
	w := sampleWhitelist()
	assert.True(t, w.IsTrusted("did:web:cfo.acme.com"))
	assert.False(t, w.IsTrusted("did:web:attacker.com"))

	s, ok := w.GetSigner("did:web:cfo.acme.com")
	assert.True(t, ok)
	assert.Equal(t, "CFO Jane Smith", s.Name)
}

func TestHasRole(t *testing.T) {
	w := sampleWhitelist()
	assert.True(t, w.HasRole("did:web:cfo.acme.com", "finance"))
	assert.False(t, w.HasRole("did:web:ceo.acme.com", "finance"))
	assert.False(t, w.HasRole("did:web:attacker.com", "finance"))
}

func TestValidateSigners(t *testing.T) {
	w := sampleWhitelist()
	trusted, untrusted := w.ValidateSigners([]string{"did:web:cfo.acme.com", "did:web:attacker.com"})
	assert.Equal(t, []string{"did:web:cfo.acme.com"}, trusted)
	assert.Equal(t, []string{"did:web:attacker.com"}, untrusted)
}

func TestValidateSignerKey(t *testing.T) {
	w := sampleWhitelist()

	key, _ := hex.DecodeString("aabbcc")
	res := w.ValidateSignerKey("did:web:cfo.acme.com", key)
	assert.Equal(t, Trusted, res.Result)

	wrongKey, _ := hex.DecodeString("ddeeff")
	res = w.ValidateSignerKey("did:web:cfo.acme.com", wrongKey)
	assert.Equal(t, KeyMismatch, res.Result)
	assert.Equal(t, "aabbcc", res.ExpectedHex)
	assert.Equal(t, "ddeeff", res.ActualHex)

	res = w.ValidateSignerKey("did:web:ceo.acme.com", key)
	assert.Equal(t, TrustedNoKeyBinding, res.Result)

	res = w.ValidateSignerKey("did:web:attacker.com", key)
	assert.Equal(t, NotFound, res.Result)
}

func TestValidateSignerKeyStrict(t *testing.T) {
	w := sampleWhitelist()
	key, _ := hex.DecodeString("aabbcc")

	assert.True(t, w.ValidateSignerKeyStrict("did:web:cfo.acme.com", key))
	assert.False(t, w.ValidateSignerKeyStrict("did:web:ceo.acme.com", key))
	assert.False(t, w.ValidateSignerKeyStrict("did:web:attacker.com", key))

	wrongKey, _ := hex.DecodeString("ddeeff")
	assert.False(t, w.ValidateSignerKeyStrict("did:web:cfo.acme.com", wrongKey))
}
