package signing

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/internal/telemetry"
	"github.com/samibs/TrustDoc/timestamp"
)

var log = telemetry.New("signing")

func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// RevocationChecker is the narrow capability the batch verifier needs from
// a revocation manager: whether id was revoked at or before t, and if so,
// why. Declared here (rather than importing the revocation package
// directly) to keep signing free of a dependency on revocation's richer
// API — only revocation.Manager is expected to implement it in practice.
type RevocationChecker interface {
	IsRevokedAt(signerID string, at time.Time) (revoked bool, revokedAt time.Time, reason string)
}

// Manager signs and verifies Signature records over a Merkle root (§4.3).
type Manager struct {
	TimestampProvider timestamp.Provider
}

// Sign captures a timestamp, builds the version-2 signing payload, and
// signs it with an Ed25519 key, producing a Signature with version=2 and
// root_hash set to hex(rootBytes). The timestamp is captured before
// signing, per the lifecycle rule in §3.
func (m Manager) Sign(rootBytes []byte, signer Signer, scope Scope, key Ed25519Key) (Signature, error) {
	return m.sign(rootBytes, signer, scope, AlgorithmEd25519, key.Key, nil)
}

// SignSecp256k1 is the secp256k1 analogue of Sign.
func (m Manager) SignSecp256k1(rootBytes []byte, signer Signer, scope Scope, key Secp256k1Key) (Signature, error) {
	return m.sign(rootBytes, signer, scope, AlgorithmSecp256k1, nil, key.Key)
}

func (m Manager) sign(rootBytes []byte, signer Signer, scope Scope, algorithm Algorithm, ed25519Priv ed25519.PrivateKey, secpPriv *secp256k1.PrivateKey) (Signature, error) {
	tok, err := m.captureTimestamp(rootBytes)
	if err != nil {
		return Signature{}, err
	}

	payload := BuildPayloadV2(rootBytes, tok.Time, signer.ID, scope)
	sigBytes, err := signRaw(algorithm, payload, ed25519Priv, secpPriv)
	if err != nil {
		return Signature{}, err
	}

	return Signature{
		Version:   2,
		Signer:    signer,
		Timestamp: tok,
		Scope:     scope,
		Algorithm: algorithm,
		RootHash:  hex.EncodeToString(rootBytes),
		SigBytes:  base64.StdEncoding.EncodeToString(sigBytes),
	}, nil
}

// captureTimestamp asks the configured provider for a token, defaulting to
// a manual, proof-less "manual" token when no provider is configured. The
// algorithm is set to "rfc3161" only when the provider actually supplies a
// proof (§4.3).
func (m Manager) captureTimestamp(data []byte) (timestamp.Token, error) {
	if m.TimestampProvider == nil {
		return timestamp.Token{Time: time.Now(), Algorithm: timestamp.SourceManual}, nil
	}
	tok, err := m.TimestampProvider.GetTimestamp(data)
	if err != nil {
		return timestamp.Token{}, fmt.Errorf("%w: timestamp provider: %v", errs.ErrTimestamp, err)
	}
	if tok.ProofB64 != "" {
		tok.Algorithm = timestamp.SourceRFC3161
	} else {
		tok.Algorithm = timestamp.SourceManual
	}
	return tok, nil
}

// Verify checks a single signature against rootBytes using the supplied
// verifying key, reconstructing the payload using the signature's own
// declared version (§4.3 Verification). If version >= 2 the payload
// includes timestamp/signer/scope, so any post-signing mutation of those
// fields invalidates the signature (invariant 2).
func Verify(sig Signature, rootBytes []byte, ed25519Pub ed25519.PublicKey, secpPub *secp256k1.PublicKey) (bool, error) {
	payload, err := BuildPayload(sig.Version, rootBytes, sig.Timestamp.Time, sig.Signer.ID, sig.Scope)
	if err != nil {
		return false, err
	}
	sigBytes, err := base64.StdEncoding.DecodeString(sig.SigBytes)
	if err != nil {
		return false, fmt.Errorf("%w: signature is not valid base64: %v", errs.ErrSignatureFailure, err)
	}
	return verifyRaw(sig.Algorithm, payload, sigBytes, ed25519Pub, secpPub)
}

// Outcome classifies a single signature's batch verification result.
type Outcome string

const (
	OutcomeValid       Outcome = "valid"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeRevoked     Outcome = "revoked"
)

// VerifyResult is the per-signature result of BatchVerify.
type VerifyResult struct {
	Signer    string
	Outcome   Outcome
	Reason    string
	RevokedAt time.Time
}

// BatchVerify verifies every signature in block against rootBytes, looking
// up each signer's key by id and algorithm, and short-circuiting to Revoked
// when a revocation manager is supplied and the signer was revoked at or
// before the signature's timestamp (§4.3 Batch verification).
func BatchVerify(
	block Block,
	rootBytes []byte,
	ed25519Keys []Ed25519VerifyKey,
	secpKeys []Secp256k1VerifyKey,
	revocations RevocationChecker,
) []VerifyResult {
	results := make([]VerifyResult, 0, len(block.Signatures))
	for _, sig := range block.Signatures {
		results = append(results, verifyOne(sig, rootBytes, ed25519Keys, secpKeys, revocations))
	}
	return results
}

func verifyOne(sig Signature, rootBytes []byte, ed25519Keys []Ed25519VerifyKey, secpKeys []Secp256k1VerifyKey, revocations RevocationChecker) VerifyResult {
	if revocations != nil {
		if revoked, revokedAt, reason := revocations.IsRevokedAt(sig.Signer.ID, sig.Timestamp.Time); revoked {
			log.Warnw("signature revoked at verification time", "signer", sig.Signer.ID, "reason", reason)
			return VerifyResult{Signer: sig.Signer.ID, Outcome: OutcomeRevoked, Reason: reason, RevokedAt: revokedAt}
		}
	}

	switch sig.Algorithm {
	case AlgorithmEd25519:
		key, ok := findEd25519Key(ed25519Keys, sig.Signer.ID)
		if !ok {
			log.Warnw("no verifying key for signer", "signer", sig.Signer.ID)
			return VerifyResult{Signer: sig.Signer.ID, Outcome: OutcomeInvalid, Reason: "no key"}
		}
		ok, err := Verify(sig, rootBytes, key, nil)
		return verdictFromResult(sig.Signer.ID, ok, err)
	case AlgorithmSecp256k1:
		key, ok := findSecpKey(secpKeys, sig.Signer.ID)
		if !ok {
			log.Warnw("no verifying key for signer", "signer", sig.Signer.ID)
			return VerifyResult{Signer: sig.Signer.ID, Outcome: OutcomeInvalid, Reason: "no key"}
		}
		ok, err := Verify(sig, rootBytes, nil, key)
		return verdictFromResult(sig.Signer.ID, ok, err)
	default:
		return VerifyResult{Signer: sig.Signer.ID, Outcome: OutcomeUnsupported, Reason: string(sig.Algorithm)}
	}
}

func verdictFromResult(signerID string, ok bool, err error) VerifyResult {
	if err != nil {
		log.Warnw("signature verification error", "signer", signerID, "error", err)
		return VerifyResult{Signer: signerID, Outcome: OutcomeInvalid, Reason: err.Error()}
	}
	if !ok {
		log.Warnw("signature does not verify", "signer", signerID)
		return VerifyResult{Signer: signerID, Outcome: OutcomeInvalid, Reason: "signature does not verify"}
	}
	return VerifyResult{Signer: signerID, Outcome: OutcomeValid}
}

func findEd25519Key(keys []Ed25519VerifyKey, signerID string) (ed25519.PublicKey, bool) {
	for _, k := range keys {
		if k.SignerID == signerID {
			return k.Key, true
		}
	}
	return nil, false
}

func findSecpKey(keys []Secp256k1VerifyKey, signerID string) (*secp256k1.PublicKey, bool) {
	for _, k := range keys {
		if k.SignerID == signerID {
			return k.Key, true
		}
	}
	return nil, false
}
