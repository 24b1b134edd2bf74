// Package archive implements the write/read/verify pipeline over the
// deflate-compressed container format (§4.9). Grounded on
// massifs/objectstore.go's storage-interface abstraction over the
// physical blob store: ByteSource plays the same decoupling role here,
// with archive/zip + compress/flate as the default concrete container
// (no ecosystem repo in the pack wraps a bespoke named-entry archive
// format over an alternative compression library; see DESIGN.md).
package archive

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/samibs/TrustDoc/document"
	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/hashcore"
	"github.com/samibs/TrustDoc/internal/cborcodec"
	"github.com/samibs/TrustDoc/internal/telemetry"
	"github.com/samibs/TrustDoc/merkle"
	"github.com/samibs/TrustDoc/policy"
	"github.com/samibs/TrustDoc/signing"
	"github.com/samibs/TrustDoc/timestamp"
)

var log = telemetry.New("archive")

// Canonical component names inside the container (§4.9).
const (
	entryManifest   = "manifest.cbor"
	entryContent    = "content.cbor"
	entryStyles     = "styles.css"
	entryLayout     = "layout.cbor"
	entryData       = "data.json"
	entryHashes     = "hashes.bin"
	entrySignatures = "signatures.cbor"
	entryRevocation = "revocation.cbor"
	assetPrefix     = "assets/"
)

// componentMap builds the named component map fed to the Merkle engine,
// identically for Write and Verify (§4.9 step 3).
func componentMap(manifestHashBytes, contentBytes []byte, styles string, layout, data []byte, assets map[string][]byte) map[string][]byte {
	m := map[string][]byte{
		"manifest": manifestHashBytes,
		"content":  contentBytes,
		"styles":   []byte(styles),
	}
	if layout != nil {
		m["layout"] = layout
	}
	if data != nil {
		m["data"] = data
	}
	for path, raw := range assets {
		m["asset:"+path] = raw
	}
	return m
}

// SignerSpec requests one signature over the archive's root hash, using
// exactly one of the two key fields (§4.9 step 5: "one signature per
// (id, name, key) tuple").
type SignerSpec struct {
	Signer    signing.Signer
	Scope     signing.Scope
	Ed25519   *signing.Ed25519Key
	Secp256k1 *signing.Secp256k1Key
}

// algorithm reports which signing primitive spec declares, for policy
// gating; the zero value (neither key set) surfaces through signEntries'
// own errs.ErrUnsupportedSignature, not here.
func (s SignerSpec) algorithm() signing.Algorithm {
	if s.Secp256k1 != nil {
		return signing.AlgorithmSecp256k1
	}
	return signing.AlgorithmEd25519
}

// WriteOptions configures Write.
type WriteOptions struct {
	Algorithm         hashcore.Algorithm
	Version           merkle.Version
	Policy            *policy.Policy
	Signers           []SignerSpec
	TimestampProvider timestamp.Provider
}

func (o WriteOptions) algorithm() hashcore.Algorithm {
	if o.Algorithm == "" {
		return hashcore.SHA3_256
	}
	return o.Algorithm
}

func (o WriteOptions) version() merkle.Version {
	if o.Version == 0 {
		return merkle.VersionV2
	}
	return o.Version
}

// Write validates doc, builds its Merkle root, optionally signs it, and
// writes every canonical entry into dst (§4.9 Write).
func Write(dst ByteSink, doc *document.Document, opts WriteOptions) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	algorithm := opts.algorithm()
	version := opts.version()

	if opts.Policy != nil {
		if err := opts.Policy.CheckHashAlgorithm(string(algorithm)); err != nil {
			return err
		}
		if err := opts.Policy.CheckMerkleVersion(int(version)); err != nil {
			return err
		}
		for _, spec := range opts.Signers {
			if err := opts.Policy.CheckSignatureAlgorithm(string(spec.algorithm())); err != nil {
				return fmt.Errorf("signer %s: %w", spec.Signer.ID, err)
			}
		}
	}

	contentBytes, err := cborcodec.Marshal(doc.Content)
	if err != nil {
		return err
	}

	manifestForHash := doc.Manifest
	manifestForHash.Integrity = document.Integrity{}
	manifestHashBytes, err := cborcodec.Marshal(manifestForHash)
	if err != nil {
		return err
	}

	components := componentMap(manifestHashBytes, contentBytes, doc.Styles, doc.Layout, doc.Data, doc.Assets)
	tree, err := merkle.Build(algorithm, version, components)
	if err != nil {
		return err
	}

	doc.Manifest.Integrity = document.Integrity{
		RootHash:  hex.EncodeToString(tree.RootHash),
		Algorithm: string(algorithm),
	}
	manifestBytes, err := cborcodec.Marshal(doc.Manifest)
	if err != nil {
		return err
	}

	hashesBytes, err := tree.MarshalBinary()
	if err != nil {
		return err
	}

	entries := map[string][]byte{
		entryManifest: manifestBytes,
		entryContent:  contentBytes,
		entryStyles:   []byte(doc.Styles),
		entryHashes:   hashesBytes,
	}
	if doc.Layout != nil {
		entries[entryLayout] = doc.Layout
	}
	if doc.Data != nil {
		entries[entryData] = doc.Data
	}
	for path, raw := range doc.Assets {
		entries[path] = raw
	}

	if len(opts.Signers) > 0 {
		sigBlockBytes, err := signEntries(tree.RootHash, opts)
		if err != nil {
			return err
		}
		entries[entrySignatures] = sigBlockBytes
	}

	var total uint64
	for _, data := range entries {
		total += uint64(len(data))
	}
	if opts.Policy != nil {
		if err := opts.Policy.CheckArchiveSize(total); err != nil {
			return err
		}
		if err := opts.Policy.CheckFileCount(len(entries)); err != nil {
			return err
		}
		for name, data := range entries {
			if err := opts.Policy.CheckFileSize(uint64(len(data))); err != nil {
				return fmt.Errorf("entry %s: %w", name, err)
			}
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := dst.WriteEntry(name, entries[name]); err != nil {
			return err
		}
	}

	log.Infow("wrote archive", "entries", len(entries), "root_hash", doc.Manifest.Integrity.RootHash)
	return nil
}

func signEntries(root []byte, opts WriteOptions) ([]byte, error) {
	mgr := signing.Manager{TimestampProvider: opts.TimestampProvider}
	sigs := make([]signing.Signature, 0, len(opts.Signers))
	for _, spec := range opts.Signers {
		var sig signing.Signature
		var err error
		switch {
		case spec.Ed25519 != nil:
			sig, err = mgr.Sign(root, spec.Signer, spec.Scope, *spec.Ed25519)
		case spec.Secp256k1 != nil:
			sig, err = mgr.SignSecp256k1(root, spec.Signer, spec.Scope, *spec.Secp256k1)
		default:
			err = fmt.Errorf("%w: signer %q declares no signing key", errs.ErrUnsupportedSignature, spec.Signer.ID)
		}
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return cborcodec.Marshal(signing.Block{Signatures: sigs})
}
