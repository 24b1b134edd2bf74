// Package signing implements the signing payload construction and the
// Ed25519/secp256k1 signature manager (§4.3). Grounded on
// massifs/rootsigner.go's Sign1 sequencing — capture the timestamp and
// claims first, build the canonical payload, then sign — applied here to a
// CBOR-struct signature rather than a COSE Sign1 envelope (see DESIGN.md
// for why the COSE envelope itself was not reused).
package signing

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Scope describes how much of a document a signature commits to (§3).
type Scope struct {
	Kind     ScopeKind `cbor:"1,keyasint" json:"kind"`
	Sections []string  `cbor:"2,keyasint,omitempty" json:"sections,omitempty"`
}

type ScopeKind string

const (
	ScopeFull         ScopeKind = "full"
	ScopeContentOnly  ScopeKind = "content-only"
	ScopeSections     ScopeKind = "sections"
)

// Canonical returns the scope_canonical string used in the v2 signing
// payload: "full", "content-only", or "sections:" + sorted ids joined by
// commas.
func (s Scope) Canonical() string {
	switch s.Kind {
	case ScopeFull:
		return "full"
	case ScopeContentOnly:
		return "content-only"
	case ScopeSections:
		ids := append([]string(nil), s.Sections...)
		sort.Strings(ids)
		return "sections:" + strings.Join(ids, ",")
	default:
		return string(s.Kind)
	}
}

// payloadV2Prefix is the fixed domain-separation prefix for version-2
// signing payloads (§4.3).
const payloadV2Prefix = "TDF-SIGNATURE-V2:"

// BuildPayloadV2 constructs SHA-256("TDF-SIGNATURE-V2:" || root || rfc3339(ts)
// || signerID || scopeCanonical), binding timestamp, signer, and scope so
// that none of the three can be altered post-signing without invalidating
// the signature (invariant 2, testable property 6).
func BuildPayloadV2(rootBytes []byte, ts time.Time, signerID string, scope Scope) []byte {
	h := sha256.New()
	h.Write([]byte(payloadV2Prefix))
	h.Write(rootBytes)
	h.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte(signerID))
	h.Write([]byte(scope.Canonical()))
	return h.Sum(nil)
}

// BuildPayloadV1 is the legacy payload: just the root bytes, signed
// directly with no contextual binding. Verify itself applies no version
// gate; archive.Verify rejects version-1 signatures unless its policy was
// built with policy.WithRejectLegacySignatures(false).
func BuildPayloadV1(rootBytes []byte) []byte {
	return append([]byte(nil), rootBytes...)
}

// BuildPayload dispatches to the version-appropriate construction.
func BuildPayload(version int, rootBytes []byte, ts time.Time, signerID string, scope Scope) ([]byte, error) {
	switch {
	case version >= 2:
		return BuildPayloadV2(rootBytes, ts, signerID, scope), nil
	case version == 1:
		return BuildPayloadV1(rootBytes), nil
	default:
		return nil, fmt.Errorf("unsupported signature version %d", version)
	}
}
