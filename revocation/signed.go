package revocation

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samibs/TrustDoc/errs"
)

// Authority identifies a revocation-list signer and embeds its public key
// (§3).
type Authority struct {
	ID        string `cbor:"1,keyasint" json:"id"`
	Name      string `cbor:"2,keyasint" json:"name"`
	PublicKey string `cbor:"3,keyasint" json:"public_key"` // hex
	URL       string `cbor:"4,keyasint,omitempty" json:"url,omitempty"`
}

// SignedList adds an authority and a signature over its canonical payload
// to an otherwise-unsigned revocation list (§3, §4.5).
type SignedList struct {
	Version    int       `cbor:"1,keyasint" json:"version"`
	IssuedAt   time.Time `cbor:"2,keyasint" json:"issued_at"`
	NextUpdate time.Time `cbor:"3,keyasint,omitempty" json:"next_update,omitempty"`
	Entries    []Entry   `cbor:"4,keyasint" json:"entries"`
	Authority  Authority `cbor:"5,keyasint" json:"authority"`
	Signature  string    `cbor:"6,keyasint" json:"signature"` // base64
}

const revocationPayloadPrefix = "TDF-REVOCATION-V1:"

// canonicalPayload computes the SHA-256 digest described in §4.5: a
// domain-separated, canonically-ordered concatenation of version,
// authority id/key, timestamps, and entries sorted by signer_id.
func canonicalPayload(version int, authority Authority, issuedAt, nextUpdate time.Time, entries []Entry) []byte {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SignerID < sorted[j].SignerID })

	h := sha256.New()
	h.Write([]byte(revocationPayloadPrefix))
	writeBE32(h, uint32(version))
	h.Write([]byte(authority.ID))
	h.Write([]byte(":"))
	h.Write([]byte(authority.PublicKey))
	h.Write([]byte(":"))
	writeBE64(h, uint64(issuedAt.Unix()))
	writeBE64(h, uint64(nextUpdate.Unix()))
	for _, e := range sorted {
		h.Write([]byte(e.SignerID))
		h.Write([]byte(":"))
		writeBE64(h, uint64(e.RevokedAt.Unix()))
		h.Write([]byte(":"))
		h.Write([]byte{reasonByte[e.Reason]})
		h.Write([]byte(";"))
	}
	return h.Sum(nil)
}

func writeBE32(h interface{ Write([]byte) (int, error) }, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	h.Write(b[:])
}

func writeBE64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	h.Write(b[:])
}

// NewSignedList constructs and signs a revocation list for authority using
// signingKey. Construction rejects a mismatch between authority.PublicKey
// and hex(signingKey.Public()) (§4.5, testable property 9).
func NewSignedList(authority Authority, issuedAt, nextUpdate time.Time, entries []Entry, signingKey ed25519.PrivateKey) (*SignedList, error) {
	pub, ok := signingKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: signing key is not ed25519", errs.ErrUnsupportedSignature)
	}
	if !strings.EqualFold(hex.EncodeToString(pub), authority.PublicKey) {
		return nil, fmt.Errorf("%w: authority public key does not match signing key", errs.ErrInvalidDocument)
	}

	list := &SignedList{
		Version:    1,
		IssuedAt:   issuedAt,
		NextUpdate: nextUpdate,
		Entries:    entries,
		Authority:  authority,
	}
	if err := list.resign(signingKey); err != nil {
		return nil, err
	}
	return list, nil
}

func (l *SignedList) resign(signingKey ed25519.PrivateKey) error {
	payload := canonicalPayload(l.Version, l.Authority, l.IssuedAt, l.NextUpdate, l.Entries)
	sig := ed25519.Sign(signingKey, payload)
	l.Signature = base64.StdEncoding.EncodeToString(sig)
	return nil
}

// AddEntry appends entry and re-signs the list, as required by §3's
// lifecycle rule ("add-entry re-signs the list").
func (l *SignedList) AddEntry(entry Entry, signingKey ed25519.PrivateKey) error {
	l.Entries = append(l.Entries, entry)
	return l.resign(signingKey)
}

// Verify recomputes the canonical payload and checks it against
// authority.PublicKey (invariant 3, testable property 9). The base64
// signature must decode to exactly 64 bytes.
func (l *SignedList) Verify() (bool, error) {
	sigBytes, err := base64.StdEncoding.DecodeString(l.Signature)
	if err != nil {
		return false, fmt.Errorf("%w: revocation list signature is not valid base64: %v", errs.ErrSignatureFailure, err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: revocation list signature must be %d bytes", errs.ErrSignatureFailure, ed25519.SignatureSize)
	}
	pubBytes, err := hex.DecodeString(l.Authority.PublicKey)
	if err != nil || len(pubBytes) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: authority public key is not a valid ed25519 key", errs.ErrParse)
	}

	payload := canonicalPayload(l.Version, l.Authority, l.IssuedAt, l.NextUpdate, l.Entries)
	return ed25519.Verify(ed25519.PublicKey(pubBytes), payload, sigBytes), nil
}

// IsRevokedAt mirrors UnsignedList.IsRevokedAt over a signed list's entries.
func (l *SignedList) IsRevokedAt(id string, t time.Time) (Entry, bool) {
	for _, e := range l.Entries {
		if e.SignerID == id && !e.RevokedAt.After(t) {
			return e, true
		}
	}
	return Entry{}, false
}
