// Package revocation implements the unsigned revocation list, the signed
// revocation list format with authority binding, and the manager that
// combines both with a trusted-authority directory (§4.5). Grounded on
// massifs/rootsigner.go's "sign a deterministic digest of canonically
// ordered state" pattern, applied here to a sorted list of revocation
// entries instead of an MMR state.
package revocation

import "time"

// Reason enumerates the CRL-style revocation reasons (§3).
type Reason string

const (
	ReasonUnspecified          Reason = "unspecified"
	ReasonKeyCompromise        Reason = "key-compromise"
	ReasonCACompromise         Reason = "ca-compromise"
	ReasonAffiliationChanged   Reason = "affiliation-changed"
	ReasonSuperseded           Reason = "superseded"
	ReasonCessationOfOperation Reason = "cessation-of-operation"
	ReasonCertificateHold      Reason = "certificate-hold"
	ReasonRemoveFromCRL        Reason = "remove-from-crl"
	ReasonPrivilegeWithdrawn   Reason = "privilege-withdrawn"
	ReasonAACompromise         Reason = "aa-compromise"
)

// reasonByte assigns each reason a single stable byte for the signed
// list's canonical payload encoding (§4.5).
var reasonByte = map[Reason]byte{
	ReasonUnspecified:          0,
	ReasonKeyCompromise:        1,
	ReasonCACompromise:         2,
	ReasonAffiliationChanged:   3,
	ReasonSuperseded:           4,
	ReasonCessationOfOperation: 5,
	ReasonCertificateHold:      6,
	ReasonRemoveFromCRL:        8, // CRLReason skips 7 (unused) by convention
	ReasonPrivilegeWithdrawn:   9,
	ReasonAACompromise:         10,
}

// Entry is one revocation record (§3).
type Entry struct {
	SignerID  string    `cbor:"1,keyasint" json:"signer_id"`
	RevokedAt time.Time `cbor:"2,keyasint" json:"revoked_at"`
	Reason    Reason    `cbor:"3,keyasint" json:"reason"`
	IssuedAt  time.Time `cbor:"4,keyasint,omitempty" json:"issued_at,omitempty"`
	Authority string    `cbor:"5,keyasint,omitempty" json:"authority,omitempty"`
}
