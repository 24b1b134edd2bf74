package signing

import (
	"crypto/ed25519"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/samibs/TrustDoc/errs"
)

// Ed25519Key pairs a signer id with an Ed25519 signing key in Go's
// 64-byte seed-plus-public-key form (ed25519.PrivateKeySize).
type Ed25519Key struct {
	SignerID string
	Key      ed25519.PrivateKey
}

// Ed25519VerifyKey pairs a signer id with a 32-byte Ed25519 verifying key.
type Ed25519VerifyKey struct {
	SignerID string
	Key      ed25519.PublicKey
}

// Secp256k1Key pairs a signer id with a 32-byte secp256k1 signing key.
type Secp256k1Key struct {
	SignerID string
	Key      *secp256k1.PrivateKey
}

// Secp256k1VerifyKey pairs a signer id with a SEC1-encoded secp256k1
// verifying key.
type Secp256k1VerifyKey struct {
	SignerID string
	Key      *secp256k1.PublicKey
}

// ParseSecp256k1PublicKey decodes a SEC1-encoded public key (§6).
func ParseSecp256k1PublicKey(data []byte) (*secp256k1.PublicKey, error) {
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: secp256k1 public key: %v", errs.ErrParse, err)
	}
	return key, nil
}

// signRaw produces the raw (pre-base64) signature bytes for payload under
// algorithm using key.
func signRaw(algorithm Algorithm, payload []byte, ed25519Priv ed25519.PrivateKey, secpPriv *secp256k1.PrivateKey) ([]byte, error) {
	switch algorithm {
	case AlgorithmEd25519:
		if len(ed25519Priv) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: ed25519 private key must be %d bytes", errs.ErrUnsupportedSignature, ed25519.PrivateKeySize)
		}
		return ed25519.Sign(ed25519Priv, payload), nil
	case AlgorithmSecp256k1:
		if secpPriv == nil {
			return nil, fmt.Errorf("%w: secp256k1 private key required", errs.ErrUnsupportedSignature)
		}
		digest := sha256Sum(payload)
		sig := ecdsa.Sign(secpPriv, digest)
		return sig.Serialize(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedSignature, algorithm)
	}
}

// verifyRaw validates sigBytes over payload under algorithm using the
// supplied verifying key.
func verifyRaw(algorithm Algorithm, payload, sigBytes []byte, ed25519Pub ed25519.PublicKey, secpPub *secp256k1.PublicKey) (bool, error) {
	switch algorithm {
	case AlgorithmEd25519:
		if len(ed25519Pub) != ed25519.PublicKeySize {
			return false, fmt.Errorf("%w: ed25519 public key must be %d bytes", errs.ErrUnsupportedSignature, ed25519.PublicKeySize)
		}
		if len(sigBytes) != ed25519.SignatureSize {
			return false, fmt.Errorf("%w: ed25519 signature must be %d bytes", errs.ErrSignatureFailure, ed25519.SignatureSize)
		}
		return ed25519.Verify(ed25519Pub, payload, sigBytes), nil
	case AlgorithmSecp256k1:
		if secpPub == nil {
			return false, fmt.Errorf("%w: secp256k1 public key required", errs.ErrUnsupportedSignature)
		}
		sig, err := ecdsa.ParseDERSignature(sigBytes)
		if err != nil {
			return false, fmt.Errorf("%w: secp256k1 signature is not valid DER: %v", errs.ErrSignatureFailure, err)
		}
		digest := sha256Sum(payload)
		return sig.Verify(digest, secpPub), nil
	default:
		return false, fmt.Errorf("%w: %s", errs.ErrUnsupportedSignature, algorithm)
	}
}
