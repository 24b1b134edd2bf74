package archive

import (
	"fmt"
	"strings"

	"github.com/samibs/TrustDoc/document"
	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/internal/cborcodec"
	"github.com/samibs/TrustDoc/merkle"
	"github.com/samibs/TrustDoc/policy"
	"github.com/samibs/TrustDoc/revocation"
	"github.com/samibs/TrustDoc/signing"
)

// revocationEnvelope discriminates the optional revocation.cbor entry
// between its signed and unsigned shapes (§4.5, §4.9).
type revocationEnvelope struct {
	Signed       bool                   `cbor:"1,keyasint"`
	SignedList   *revocation.SignedList `cbor:"2,keyasint,omitempty"`
	UnsignedList *revocation.UnsignedList `cbor:"3,keyasint,omitempty"`
}

// RevocationPayload carries whichever revocation list shape was present in
// the container.
type RevocationPayload struct {
	Signed   *revocation.SignedList
	Unsigned *revocation.UnsignedList
}

// Archive is the fully parsed result of Read.
type Archive struct {
	Document   document.Document
	Tree       *merkle.Tree
	Signatures signing.Block
	Revocation *RevocationPayload
}

// Read opens source, parses every named entry, and reconstructs the Merkle
// tree, signatures, and any revocation list (§4.9 Read). pol gates whether
// a version-1 (legacy) hashes.bin is accepted; nil means strict (reject
// legacy), matching merkle.UnmarshalBinary's own default.
func Read(source ByteSource, pol *policy.Policy) (*Archive, error) {
	raw, err := readAllEntries(source)
	if err != nil {
		return nil, err
	}
	return parseArchive(raw, legacyPolicyFor(pol))
}

// legacyPolicyFor adapts pol to merkle.LegacyPolicy, taking care not to
// wrap a nil *policy.Policy in a non-nil interface value: assigning a nil
// pointer straight into an interface var produces a non-nil interface that
// would panic when its method dereferences the receiver.
func legacyPolicyFor(pol *policy.Policy) merkle.LegacyPolicy {
	if pol == nil {
		return nil
	}
	return pol
}

func parseArchive(raw map[string][]byte, merklePolicy merkle.LegacyPolicy) (*Archive, error) {
	manifestBytes, ok := raw[entryManifest]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingFile, entryManifest)
	}
	var manifest document.Manifest
	if err := cborcodec.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, err
	}

	contentBytes, ok := raw[entryContent]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingFile, entryContent)
	}
	var content document.ContentTree
	if err := cborcodec.Unmarshal(contentBytes, &content); err != nil {
		return nil, err
	}

	stylesBytes, ok := raw[entryStyles]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingFile, entryStyles)
	}

	hashesBytes, ok := raw[entryHashes]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingFile, entryHashes)
	}
	tree, err := merkle.UnmarshalBinary(hashesBytes, merklePolicy)
	if err != nil {
		return nil, err
	}

	layoutBytes := raw[entryLayout]
	dataBytes := raw[entryData]

	assets := make(map[string][]byte)
	for name, data := range raw {
		if strings.HasPrefix(name, assetPrefix) {
			if err := document.ValidateAssetPath(name); err != nil {
				return nil, err
			}
			assets[name] = data
		}
	}

	doc := document.Document{
		Manifest: manifest,
		Content:  content,
		Styles:   string(stylesBytes),
		Layout:   layoutBytes,
		Data:     dataBytes,
		Assets:   assets,
	}

	var sigBlock signing.Block
	if sigBytes, ok := raw[entrySignatures]; ok {
		if err := cborcodec.Unmarshal(sigBytes, &sigBlock); err != nil {
			return nil, err
		}
	}

	var revPayload *RevocationPayload
	if revBytes, ok := raw[entryRevocation]; ok {
		var env revocationEnvelope
		if err := cborcodec.Unmarshal(revBytes, &env); err != nil {
			return nil, err
		}
		revPayload = &RevocationPayload{Signed: env.SignedList, Unsigned: env.UnsignedList}
	}

	return &Archive{Document: doc, Tree: tree, Signatures: sigBlock, Revocation: revPayload}, nil
}
