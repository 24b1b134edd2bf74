package revocation

import "time"

// UnsignedList is a mutable revocation list with no authority signature,
// intended for local/test use or as the unsigned half of a Manager (§4.5).
type UnsignedList struct {
	Version     int       `cbor:"1,keyasint" json:"version"`
	IssuedAt    time.Time `cbor:"2,keyasint" json:"issued_at"`
	NextUpdate  time.Time `cbor:"3,keyasint,omitempty" json:"next_update,omitempty"`
	Issuer      string    `cbor:"4,keyasint,omitempty" json:"issuer,omitempty"`
	Entries     []Entry   `cbor:"5,keyasint" json:"entries"`
}

// NewUnsignedList returns an empty list stamped with issuedAt.
func NewUnsignedList(issuedAt time.Time, issuer string) *UnsignedList {
	return &UnsignedList{Version: 1, IssuedAt: issuedAt, Issuer: issuer}
}

// Revoke appends a revocation entry for signerID.
func (l *UnsignedList) Revoke(signerID string, reason Reason, authority string, revokedAt time.Time) {
	l.Entries = append(l.Entries, Entry{
		SignerID:  signerID,
		RevokedAt: revokedAt,
		Reason:    reason,
		Authority: authority,
	})
}

// Unrevoke removes every entry for id.
func (l *UnsignedList) Unrevoke(id string) {
	kept := l.Entries[:0]
	for _, e := range l.Entries {
		if e.SignerID != id {
			kept = append(kept, e)
		}
	}
	l.Entries = kept
}

// IsRevoked reports whether id has any revocation entry.
func (l *UnsignedList) IsRevoked(id string) bool {
	for _, e := range l.Entries {
		if e.SignerID == id {
			return true
		}
	}
	return false
}

// IsRevokedAt returns the first entry for id with RevokedAt <= t, or false
// if none matches (the revocation-at-time lookup, §4.5).
func (l *UnsignedList) IsRevokedAt(id string, t time.Time) (Entry, bool) {
	for _, e := range l.Entries {
		if e.SignerID == id && !e.RevokedAt.After(t) {
			return e, true
		}
	}
	return Entry{}, false
}
