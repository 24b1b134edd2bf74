// Package document defines the TDF data model: a manifest, a typed content
// tree, styles, and optional layout/sidecar data (§3). CBOR field tags use
// small-integer keyasint style, the way massifs/rootsigner.go's MMRState
// tags its fields, keeping encoded documents compact and schema-stable.
package document

import "time"

// Classification is the optional document sensitivity label.
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

// Integrity holds the document's Merkle root and the algorithm used to
// produce it. RootHash is cleared before being fed back into the Merkle
// engine during verification (invariant 1).
type Integrity struct {
	RootHash  string `cbor:"1,keyasint" json:"root_hash"`
	Algorithm string `cbor:"2,keyasint" json:"algorithm"`
}

// Author identifies one contributor to the document.
type Author struct {
	ID   string `cbor:"1,keyasint" json:"id"`
	Name string `cbor:"2,keyasint" json:"name"`
	Role string `cbor:"3,keyasint,omitempty" json:"role,omitempty"`
}

// Meta carries document-level identity and lifecycle fields.
type Meta struct {
	ID         string    `cbor:"1,keyasint" json:"id"`
	Title      string    `cbor:"2,keyasint" json:"title"`
	Language   string    `cbor:"3,keyasint,omitempty" json:"language,omitempty"`
	Created    time.Time `cbor:"4,keyasint" json:"created"`
	Modified   time.Time `cbor:"5,keyasint" json:"modified"`

	// Revision and SourceFormat are supplemented from original_source/ (see
	// SPEC_FULL.md §3): present in the original implementation's manifest and
	// dropped by the distillation. Revision counts re-saves of the
	// document; SourceFormat records the converter origin (e.g. "docx"),
	// when the document was produced by one of the out-of-scope format
	// converters named in spec.md §1.
	Revision     int    `cbor:"6,keyasint,omitempty" json:"revision,omitempty"`
	SourceFormat string `cbor:"7,keyasint,omitempty" json:"source_format,omitempty"`
}

// Manifest is the document's top-level metadata block.
type Manifest struct {
	SchemaVersion  string         `cbor:"1,keyasint" json:"schema_version"`
	Meta           Meta           `cbor:"2,keyasint" json:"meta"`
	Authors        []Author       `cbor:"3,keyasint" json:"authors"`
	Classification Classification `cbor:"4,keyasint,omitempty" json:"classification,omitempty"`
	Integrity      Integrity      `cbor:"5,keyasint" json:"integrity"`
}

// Document is the full in-memory representation: manifest, content tree,
// styles, and optional layout/sidecar data.
type Document struct {
	Manifest Manifest
	Content  ContentTree
	Styles   string
	Layout   []byte // optional, CBOR-encoded by the caller; nil if absent
	Data     []byte // optional, JSON sidecar data; nil if absent

	// Assets maps an asset path (e.g. "assets/images/logo.png") to its raw
	// bytes. Images live under assets/images/, fonts under assets/fonts/
	// (§4.9).
	Assets map[string][]byte
}

// Validate enforces the minimal lifecycle precondition from §3: a
// well-formed document has a non-empty title, a non-empty id, and at least
// one section.
func (d *Document) Validate() error {
	if d.Manifest.Meta.ID == "" {
		return errRequired("manifest.meta.id")
	}
	if d.Manifest.Meta.Title == "" {
		return errRequired("manifest.meta.title")
	}
	if len(d.Content.Sections) == 0 {
		return errRequired("content.sections")
	}
	for _, asset := range assetPaths(d.Assets) {
		if err := ValidateAssetPath(asset); err != nil {
			return err
		}
	}
	return nil
}

func assetPaths(assets map[string][]byte) []string {
	paths := make([]string, 0, len(assets))
	for p := range assets {
		paths = append(paths, p)
	}
	return paths
}
