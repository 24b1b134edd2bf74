// Package session implements the multi-party signing session (§4.7): an
// ordered or unordered set of required signers collecting signatures over
// a fixed root hash, with chronological-order and completion invariants.
// Grounded on massifs/peakstack.go's "check the invariant before
// mutating" discipline, applied here to the required-signer and
// chronological-order invariants instead of peak-height ordering.
package session

import (
	"fmt"
	"time"

	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/signing"
)

// Mode selects how strictly signer ordering is enforced (§3).
type Mode int

const (
	// Unordered accepts required signers in any order.
	Unordered Mode = iota
	// Ordered requires signers to sign in the order given by RequiredSigners.
	Ordered
	// Simultaneous treats all required signers as interchangeable but still
	// tracks chronological timestamps for audit purposes.
	Simultaneous
)

// Session collects signatures from a fixed set of required signers over a
// single document root hash (§3).
type Session struct {
	RootHash        []byte
	Mode            Mode
	RequiredSigners []string
	Signatures      []signing.Signature
	CreatedAt       time.Time
}

// New returns an empty session for root, requiring exactly the signer IDs
// in requiredSigners (in Ordered mode, that order is binding).
func New(root []byte, mode Mode, requiredSigners []string, createdAt time.Time) *Session {
	return &Session{
		RootHash:        append([]byte(nil), root...),
		Mode:            mode,
		RequiredSigners: append([]string(nil), requiredSigners...),
		CreatedAt:       createdAt,
	}
}

func (s *Session) signedIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Signatures))
	for _, sig := range s.Signatures {
		ids[sig.Signer.ID] = true
	}
	return ids
}

func (s *Session) requiredIndex(id string) int {
	for i, r := range s.RequiredSigners {
		if r == id {
			return i
		}
	}
	return -1
}

// checkAddPreconditions runs the three ordered precondition checks from
// §4.7: (1) signer is required, (2) no duplicate, (3) in Ordered mode the
// signer's required-slot index equals the current signature count.
func (s *Session) checkAddPreconditions(sig signing.Signature) error {
	idx := s.requiredIndex(sig.Signer.ID)
	if idx == -1 {
		return fmt.Errorf("%w: signer %q is not a required signer of this session", errs.ErrUntrustedSigner, sig.Signer.ID)
	}
	if s.signedIDs()[sig.Signer.ID] {
		return fmt.Errorf("%w: signer %q has already signed this session", errs.ErrInvalidDocument, sig.Signer.ID)
	}
	if s.Mode == Ordered && idx != len(s.Signatures) {
		return fmt.Errorf("%w: signer %q must sign in position %d, not %d", errs.ErrInvalidDocument, sig.Signer.ID, idx, len(s.Signatures))
	}
	return nil
}

// AddSignature appends sig after checking the preconditions of §4.7. It
// does not itself re-verify cryptographic validity; use AddSignatureVerified
// when prior signatures must be revalidated.
func (s *Session) AddSignature(sig signing.Signature) error {
	if err := s.checkAddPreconditions(sig); err != nil {
		return err
	}
	s.Signatures = append(s.Signatures, sig)
	return nil
}

// VerifyKeyLookup resolves a signer ID + algorithm to a verifying key, for
// use by AddSignatureVerified.
type VerifyKeyLookup func(signerID string, alg signing.Algorithm) (any, bool)

// AddSignatureVerified re-verifies every previously added signature against
// the session root using lookup, aborting on any Invalid/Revoked/Unsupported
// result, then verifies sig itself the same way before appending it (§4.7).
func (s *Session) AddSignatureVerified(sig signing.Signature, lookup VerifyKeyLookup, revocation signing.RevocationChecker) error {
	if err := s.checkAddPreconditions(sig); err != nil {
		return err
	}

	all := append(append([]signing.Signature(nil), s.Signatures...), sig)
	block := signing.Block{Signatures: all}

	var ed25519Keys []signing.Ed25519VerifyKey
	var secpKeys []signing.Secp256k1VerifyKey
	for _, existing := range all {
		key, ok := lookup(existing.Signer.ID, existing.Algorithm)
		if !ok {
			continue
		}
		switch k := key.(type) {
		case signing.Ed25519VerifyKey:
			ed25519Keys = append(ed25519Keys, k)
		case signing.Secp256k1VerifyKey:
			secpKeys = append(secpKeys, k)
		}
	}

	results := signing.BatchVerify(block, s.RootHash, ed25519Keys, secpKeys, revocation)
	for i, r := range results {
		if r.Outcome != signing.OutcomeValid {
			return fmt.Errorf("%w: signature %d (%s) is %v, refusing to add new signature", errs.ErrVerificationFailed, i, all[i].Signer.ID, r.Outcome)
		}
	}

	s.Signatures = append(s.Signatures, sig)
	return nil
}

// ValidateSignatureOrder rejects any adjacent pair whose timestamps are not
// non-decreasing (§4.7).
func (s *Session) ValidateSignatureOrder() error {
	for i := 0; i+1 < len(s.Signatures); i++ {
		if s.Signatures[i+1].Timestamp.Time.Before(s.Signatures[i].Timestamp.Time) {
			return fmt.Errorf("%w: signature %d timestamp precedes signature %d", errs.ErrInvalidDocument, i+1, i)
		}
	}
	return nil
}

// ValidateSignatureOrderMaxGap is ValidateSignatureOrder plus a maximum
// permitted gap between adjacent timestamps, for stale-session detection.
func (s *Session) ValidateSignatureOrderMaxGap(maxGap time.Duration) error {
	if err := s.ValidateSignatureOrder(); err != nil {
		return err
	}
	for i := 0; i+1 < len(s.Signatures); i++ {
		gap := s.Signatures[i+1].Timestamp.Time.Sub(s.Signatures[i].Timestamp.Time)
		if gap > maxGap {
			return fmt.Errorf("%w: gap of %s between signature %d and %d exceeds maximum %s", errs.ErrInvalidDocument, gap, i, i+1, maxGap)
		}
	}
	return nil
}

// WouldMaintainOrder reports whether a prospective next signature timestamped
// at t would preserve non-decreasing chronological order.
func (s *Session) WouldMaintainOrder(t time.Time) bool {
	if len(s.Signatures) == 0 {
		return true
	}
	last := s.Signatures[len(s.Signatures)-1]
	return !t.Before(last.Timestamp.Time)
}

// IsComplete reports whether every required signer has signed.
func (s *Session) IsComplete() bool {
	return len(s.Signatures) == len(s.RequiredSigners)
}

// MissingSigners returns the required signer IDs that have not yet signed.
func (s *Session) MissingSigners() []string {
	signed := s.signedIDs()
	var missing []string
	for _, id := range s.RequiredSigners {
		if !signed[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
