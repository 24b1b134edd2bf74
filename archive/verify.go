package archive

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/samibs/TrustDoc/document"
	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/internal/cborcodec"
	"github.com/samibs/TrustDoc/policy"
	"github.com/samibs/TrustDoc/signing"
	"github.com/samibs/TrustDoc/timestamp"
)

// VerifyOptions configures Verify.
type VerifyOptions struct {
	Policy            *policy.Policy
	Ed25519Keys       []signing.Ed25519VerifyKey
	Secp256k1Keys     []signing.Secp256k1VerifyKey
	Revocation        signing.RevocationChecker
	TimestampConfig   timestamp.Config
	Now               time.Time
}

// Report is the result of Verify (§4.9).
type Report struct {
	IntegrityValid    bool
	RootHash          string
	SignatureCount    int
	Document          *document.Document
	SignatureResults  []signing.VerifyResult
	TimestampWarnings []timestamp.Warning
}

// Verify enforces the tier/count/ratio policy over source's entries,
// rebuilds the component map from raw bytes exactly as Write produced it,
// recomputes and compares the Merkle root in constant time, and validates
// every signature's timestamp and (if keys are supplied) cryptographic
// validity (§4.9 Verify).
func Verify(source ByteSource, opts VerifyOptions) (*Report, error) {
	infos, err := source.Entries()
	if err != nil {
		return nil, err
	}

	if opts.Policy != nil {
		if err := opts.Policy.CheckFileCount(len(infos)); err != nil {
			return nil, err
		}
		var total uint64
		for _, info := range infos {
			total += info.UncompressedSize
			if err := opts.Policy.CheckFileSize(info.UncompressedSize); err != nil {
				return nil, fmt.Errorf("entry %s: %w", info.Name, err)
			}
			if err := opts.Policy.CheckDecompressionRatio(info.CompressedSize, info.UncompressedSize); err != nil {
				return nil, fmt.Errorf("entry %s: %w", info.Name, err)
			}
		}
		if err := opts.Policy.CheckArchiveSize(total); err != nil {
			return nil, err
		}
	}

	raw, err := readAllEntries(source)
	if err != nil {
		return nil, err
	}
	parsed, err := parseArchive(raw, legacyPolicyFor(opts.Policy))
	if err != nil {
		return nil, err
	}

	if opts.Policy == nil {
		// No policy is strict, as for hashes.bin: version-1 signatures are
		// rejected.
		for _, sig := range parsed.Signatures.Signatures {
			if sig.Version < 2 {
				return nil, fmt.Errorf("%w: signer %s: signature version %d is rejected without a permissive policy", errs.ErrPolicyViolation, sig.Signer.ID, sig.Version)
			}
		}
	}

	if opts.Policy != nil {
		if err := opts.Policy.CheckMerkleVersion(int(parsed.Tree.Version)); err != nil {
			return nil, err
		}
		if err := opts.Policy.CheckHashAlgorithm(string(parsed.Tree.Algorithm)); err != nil {
			return nil, err
		}
		for _, sig := range parsed.Signatures.Signatures {
			if err := opts.Policy.CheckSignatureVersion(sig.Version); err != nil {
				return nil, fmt.Errorf("signer %s: %w", sig.Signer.ID, err)
			}
			if err := opts.Policy.CheckSignatureAlgorithm(string(sig.Algorithm)); err != nil {
				return nil, fmt.Errorf("signer %s: %w", sig.Signer.ID, err)
			}
			hasProof := sig.Timestamp.Algorithm == timestamp.SourceRFC3161 && sig.Timestamp.ProofB64 != ""
			if err := opts.Policy.CheckTimestampSource(hasProof); err != nil {
				return nil, fmt.Errorf("signer %s: %w", sig.Signer.ID, err)
			}
		}
		for _, k := range opts.Ed25519Keys {
			if err := opts.Policy.CheckKeySize(len(k.Key) * 8); err != nil {
				return nil, fmt.Errorf("signer %s: %w", k.SignerID, err)
			}
		}
		for _, k := range opts.Secp256k1Keys {
			if err := opts.Policy.CheckKeySize(256); err != nil {
				return nil, fmt.Errorf("signer %s: %w", k.SignerID, err)
			}
		}
	}

	// Rebuild the component map from raw bytes, not the re-serialized parsed
	// structs, except for the manifest, whose root_hash field must be
	// cleared the same way Write cleared it before hashing (§4.9 Verify).
	manifestForHash := parsed.Document.Manifest
	manifestForHash.Integrity = document.Integrity{}
	manifestHashBytes, err := cborcodec.Marshal(manifestForHash)
	if err != nil {
		return nil, err
	}

	components := componentMap(manifestHashBytes, raw[entryContent], string(raw[entryStyles]), raw[entryLayout], raw[entryData], parsed.Document.Assets)

	integrityValid, err := parsed.Tree.Verify(components)
	if err != nil {
		return nil, err
	}

	report := &Report{
		IntegrityValid: integrityValid,
		RootHash:       hex.EncodeToString(parsed.Tree.RootHash),
		SignatureCount: len(parsed.Signatures.Signatures),
		Document:       &parsed.Document,
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	for _, sig := range parsed.Signatures.Signatures {
		warnings, err := timestamp.Validate(sig.Timestamp, opts.TimestampConfig, now)
		report.TimestampWarnings = append(report.TimestampWarnings, warnings...)
		if err != nil {
			log.Warnw("signature timestamp rejected", "signer", sig.Signer.ID, "error", err)
		}
	}

	if len(parsed.Signatures.Signatures) > 0 {
		report.SignatureResults = signing.BatchVerify(parsed.Signatures, parsed.Tree.RootHash, opts.Ed25519Keys, opts.Secp256k1Keys, opts.Revocation)
	}

	if !integrityValid {
		log.Warnw("archive integrity check failed", "root_hash", report.RootHash)
	}

	return report, nil
}
