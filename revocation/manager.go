package revocation

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/samibs/TrustDoc/errs"
)

// TrustedAuthority pairs an authority id with its trusted Ed25519
// verifying key bytes.
type TrustedAuthority struct {
	ID        string
	PublicKey []byte
}

// Manager holds the unsigned and signed revocation lists plus a directory
// of trusted authorities, and answers revoked-at-time queries by scanning
// unsigned then signed lists (§4.5).
type Manager struct {
	unsigned *UnsignedList
	signed   []*SignedList
	trusted  map[string][]byte
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{trusted: make(map[string][]byte)}
}

// SetUnsignedList installs list as the manager's unsigned list.
func (m *Manager) SetUnsignedList(list *UnsignedList) {
	m.unsigned = list
}

// TrustAuthority registers id → key in the trusted-authority directory
// consulted by AddSignedListVerified.
func (m *Manager) TrustAuthority(id string, key []byte) {
	m.trusted[id] = append([]byte(nil), key...)
}

// AddSignedList appends list to the manager's signed lists, requiring that
// the list's own signature validates.
func (m *Manager) AddSignedList(list *SignedList) error {
	ok, err := list.Verify()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: signed revocation list does not verify", errs.ErrSignatureFailure)
	}
	m.signed = append(m.signed, list)
	return nil
}

// AddSignedListVerified is AddSignedList plus a trust check: the list's
// authority id must appear in the trusted directory and its embedded
// public key must equal the trusted key byte-for-byte (§4.5).
func (m *Manager) AddSignedListVerified(list *SignedList) error {
	trustedKey, ok := m.trusted[list.Authority.ID]
	if !ok {
		return fmt.Errorf("%w: authority %q is not in the trusted directory", errs.ErrUntrustedSigner, list.Authority.ID)
	}
	embeddedKey, err := hex.DecodeString(list.Authority.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: authority public key is not valid hex", errs.ErrParse)
	}
	if !equalBytes(trustedKey, embeddedKey) {
		return fmt.Errorf("%w: authority %q embedded key does not match trusted key", errs.ErrUntrustedSigner, list.Authority.ID)
	}
	return m.AddSignedList(list)
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsRevoked reports whether id has a revocation entry, in the unsigned or
// any signed list, whose RevokedAt is at or before the current time; an
// entry dated in the future does not count.
func (m *Manager) IsRevoked(id string) bool {
	_, ok := m.findEntry(id, time.Now())
	return ok
}

// IsRevokedAt returns the first matching entry (unsigned list checked
// first, then signed lists in insertion order) whose RevokedAt <= t.
// Retroactive invalidation is explicitly a non-goal: signatures created
// before revoked_at remain valid (§4.5 Design rationale, testable
// property 8).
func (m *Manager) IsRevokedAt(id string, t time.Time) (bool, time.Time, string) {
	entry, ok := m.findEntry(id, t)
	if !ok {
		return false, time.Time{}, ""
	}
	return true, entry.RevokedAt, string(entry.Reason)
}

func (m *Manager) findEntry(id string, t time.Time) (Entry, bool) {
	if m.unsigned != nil {
		if e, ok := m.unsigned.IsRevokedAt(id, t); ok {
			return e, true
		}
	}
	for _, list := range m.signed {
		if e, ok := list.IsRevokedAt(id, t); ok {
			return e, true
		}
	}
	return Entry{}, false
}
