// Package whitelist implements the trusted-signer directory (§4.6): a
// simple map-backed id → record lookup with an explicit not-found
// sentinel, grounded on massifs/tenantblobpaths.go's directory-lookup
// style.
package whitelist

import (
	"encoding/hex"
	"strings"
)

// TrustedSigner is one entry in a Whitelist (§3).
type TrustedSigner struct {
	ID        string   `cbor:"1,keyasint" json:"id"`
	Name      string   `cbor:"2,keyasint" json:"name"`
	PublicKey string   `cbor:"3,keyasint,omitempty" json:"public_key,omitempty"` // hex, optional binding
	Roles     []string `cbor:"4,keyasint,omitempty" json:"roles,omitempty"`
	Email     string   `cbor:"5,keyasint,omitempty" json:"email,omitempty"`
}

// Whitelist is a named collection of trusted signers (§3).
type Whitelist struct {
	Name           string          `cbor:"1,keyasint" json:"name"`
	Description    string          `cbor:"2,keyasint,omitempty" json:"description,omitempty"`
	TrustedSigners []TrustedSigner `cbor:"3,keyasint" json:"trusted_signers"`

	byID map[string]TrustedSigner
}

// New builds a Whitelist from signers, indexing them by ID.
func New(name, description string, signers []TrustedSigner) *Whitelist {
	w := &Whitelist{Name: name, Description: description, TrustedSigners: signers}
	w.reindex()
	return w
}

func (w *Whitelist) reindex() {
	w.byID = make(map[string]TrustedSigner, len(w.TrustedSigners))
	for _, s := range w.TrustedSigners {
		w.byID[s.ID] = s
	}
}

// ensureIndex lazily builds byID for whitelists constructed via CBOR/JSON
// unmarshal rather than New.
func (w *Whitelist) ensureIndex() {
	if w.byID == nil {
		w.reindex()
	}
}

// IsTrusted reports whether id appears in the whitelist.
func (w *Whitelist) IsTrusted(id string) bool {
	w.ensureIndex()
	_, ok := w.byID[id]
	return ok
}

// GetSigner returns the signer record for id, or false if not present.
func (w *Whitelist) GetSigner(id string) (TrustedSigner, bool) {
	w.ensureIndex()
	s, ok := w.byID[id]
	return s, ok
}

// HasRole reports whether id is trusted and carries role.
func (w *Whitelist) HasRole(id, role string) bool {
	s, ok := w.GetSigner(id)
	if !ok {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidateSigners partitions ids into trusted and untrusted.
func (w *Whitelist) ValidateSigners(ids []string) (trusted, untrusted []string) {
	for _, id := range ids {
		if w.IsTrusted(id) {
			trusted = append(trusted, id)
		} else {
			untrusted = append(untrusted, id)
		}
	}
	return trusted, untrusted
}

// KeyValidation is the outcome of ValidateSignerKey (§4.6).
type KeyValidation int

const (
	// NotFound means id has no whitelist entry.
	NotFound KeyValidation = iota
	// Trusted means id is whitelisted with a declared key binding that
	// matches the supplied key.
	Trusted
	// TrustedNoKeyBinding means id is whitelisted but declares no public key.
	TrustedNoKeyBinding
	// KeyMismatch means id is whitelisted with a bound key that differs from
	// the supplied key.
	KeyMismatch
)

// KeyValidationResult carries the outcome plus any data needed to report it.
type KeyValidationResult struct {
	Result      KeyValidation
	Name        string
	Roles       []string
	ExpectedHex string
	ActualHex   string
}

// ValidateSignerKey checks verifyingKey against the whitelist's declared
// binding for id (§4.6).
func (w *Whitelist) ValidateSignerKey(id string, verifyingKey []byte) KeyValidationResult {
	signer, ok := w.GetSigner(id)
	if !ok {
		return KeyValidationResult{Result: NotFound}
	}
	if signer.PublicKey == "" {
		return KeyValidationResult{Result: TrustedNoKeyBinding, Name: signer.Name, Roles: signer.Roles}
	}
	actualHex := hex.EncodeToString(verifyingKey)
	if !strings.EqualFold(signer.PublicKey, actualHex) {
		return KeyValidationResult{
			Result:      KeyMismatch,
			Name:        signer.Name,
			Roles:       signer.Roles,
			ExpectedHex: signer.PublicKey,
			ActualHex:   actualHex,
		}
	}
	return KeyValidationResult{Result: Trusted, Name: signer.Name, Roles: signer.Roles}
}

// ValidateSignerKeyStrict rejects anything short of an exact, declared,
// matching key binding: missing signer, absent binding, or mismatched hex
// (case-insensitive) are all failures (§4.6).
func (w *Whitelist) ValidateSignerKeyStrict(id string, verifyingKey []byte) bool {
	return w.ValidateSignerKey(id, verifyingKey).Result == Trusted
}
