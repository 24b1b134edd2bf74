package archive

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/samibs/TrustDoc/document"
	"github.com/samibs/TrustDoc/hashcore"
	"github.com/samibs/TrustDoc/internal/cborcodec"
	"github.com/samibs/TrustDoc/merkle"
	"github.com/samibs/TrustDoc/policy"
	"github.com/samibs/TrustDoc/revocation"
	"github.com/samibs/TrustDoc/signing"
	"github.com/samibs/TrustDoc/timestamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *document.Document {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &document.Document{
		Manifest: document.Manifest{
			SchemaVersion: "1.0",
			Meta: document.Meta{
				ID:       "doc-1",
				Title:    "Q2 2025 Financial Report",
				Language: "en",
				Created:  now,
				Modified: now,
			},
			Authors: []document.Author{{ID: "did:web:cfo.acme.com", Name: "CFO Jane Smith"}},
		},
		Content: document.ContentTree{
			Sections: []document.Section{
				{
					ID: "s1",
					Blocks: []document.Block{
						{Kind: document.BlockParagraph, ID: "p1", Text: "Revenue increased by 12% compared to Q1."},
					},
				},
			},
		},
		Styles: "body{font-family:sans-serif}",
		Assets: map[string][]byte{"assets/images/logo.png": []byte("fake-png-bytes")},
	}
}

func writeToBuffer(t *testing.T, doc *document.Document, opts WriteOptions) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	sink := NewZipSink(buf)
	require.NoError(t, Write(sink, doc, opts))
	require.NoError(t, sink.Close())
	return buf
}

// S1: round trip with no signatures; integrity_valid must be true.
func TestS1_WriteReadVerifyRoundTrip(t *testing.T) {
	doc := sampleDocument()
	buf := writeToBuffer(t, doc, WriteOptions{})

	source, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	report, err := Verify(source, VerifyOptions{})
	require.NoError(t, err)
	assert.True(t, report.IntegrityValid)
	assert.Equal(t, 0, report.SignatureCount)
	assert.Equal(t, doc.Manifest.Meta.Title, report.Document.Manifest.Meta.Title)
}

// S2: a signed archive verifies with the correct key and outcome valid.
func TestS2_SignedArchiveVerifiesWithCorrectKey(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc := sampleDocument()
	buf := writeToBuffer(t, doc, WriteOptions{
		Signers: []SignerSpec{{
			Signer:  signing.Signer{ID: "did:web:cfo.acme.com", Name: "CFO Jane Smith"},
			Scope:   signing.Scope{Kind: signing.ScopeFull},
			Ed25519: &signing.Ed25519Key{SignerID: "did:web:cfo.acme.com", Key: priv},
		}},
	})

	source, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	report, err := Verify(source, VerifyOptions{
		Ed25519Keys: []signing.Ed25519VerifyKey{{SignerID: "did:web:cfo.acme.com", Key: pub}},
	})
	require.NoError(t, err)
	assert.True(t, report.IntegrityValid)
	require.Len(t, report.SignatureResults, 1)
	assert.Equal(t, signing.OutcomeValid, report.SignatureResults[0].Outcome)
}

// S3: tampering with an entry's bytes after write makes the stored Merkle
// tree's Verify report false without returning an error (§4.9 failure
// semantics).
func TestS3_TamperedContentFailsIntegrityButDoesNotError(t *testing.T) {
	doc := sampleDocument()
	buf := writeToBuffer(t, doc, WriteOptions{})

	// Read the written entries back, replace styles.css in the raw entry
	// map, and re-verify the stored tree against it by hand.
	source, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	raw, err := readAllEntries(source)
	require.NoError(t, err)
	raw[entryStyles] = []byte("body{color:red} /* tampered */")

	parsed, err := parseArchive(raw, nil)
	require.NoError(t, err)

	manifestForHash := parsed.Document.Manifest
	manifestForHash.Integrity = document.Integrity{}
	ok, err := parsed.Tree.Verify(map[string][]byte{
		"manifest": mustMarshal(t, manifestForHash),
		"content":  raw[entryContent],
		"styles":   raw[entryStyles],
		"asset:assets/images/logo.png": raw["assets/images/logo.png"],
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

// S4: a file over the active tier's per-file ceiling is rejected at write
// time with a policy error, not a silent truncation.
func TestS4_PolicyRejectsOversizedFile(t *testing.T) {
	doc := sampleDocument()
	doc.Assets["assets/images/huge.png"] = make([]byte, 128*1024) // exceeds Micro's 64 KiB file ceiling

	buf := &bytes.Buffer{}
	sink := NewZipSink(buf)
	err := Write(sink, doc, WriteOptions{Policy: policy.New(policy.WithTier(policy.Micro))})
	assert.Error(t, err)
}

// S5: a revocation manager consulted during verify leaves a signature made
// before the signer's revocation time Valid (revocation is not
// retroactive).
func TestS5_SignatureBeforeRevocationStaysValid(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	doc := sampleDocument()
	buf := writeToBuffer(t, doc, WriteOptions{
		Signers: []SignerSpec{{
			Signer:  signing.Signer{ID: "did:web:cfo.acme.com", Name: "CFO Jane Smith"},
			Scope:   signing.Scope{Kind: signing.ScopeFull},
			Ed25519: &signing.Ed25519Key{SignerID: "did:web:cfo.acme.com", Key: priv},
		}},
		TimestampProvider: fixedTimestampProvider{t: t0},
	})

	unsignedList := revocation.NewUnsignedList(t1, "local")
	unsignedList.Revoke("did:web:cfo.acme.com", revocation.ReasonKeyCompromise, "local", t1)
	mgr := revocation.NewManager()
	mgr.SetUnsignedList(unsignedList)

	source, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	report, err := Verify(source, VerifyOptions{
		Ed25519Keys: []signing.Ed25519VerifyKey{{SignerID: "did:web:cfo.acme.com", Key: pub}},
		Revocation:  mgr,
	})
	require.NoError(t, err)
	require.Len(t, report.SignatureResults, 1)
	assert.Equal(t, signing.OutcomeValid, report.SignatureResults[0].Outcome)
}

// S6: a policy restricting accepted signature algorithms to secp256k1
// rejects an otherwise-valid ed25519 signature with a policy error rather
// than reporting it Valid.
func TestS6_PolicyRejectsDisallowedSignatureAlgorithm(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc := sampleDocument()
	buf := writeToBuffer(t, doc, WriteOptions{
		Signers: []SignerSpec{{
			Signer:  signing.Signer{ID: "did:web:cfo.acme.com", Name: "CFO Jane Smith"},
			Scope:   signing.Scope{Kind: signing.ScopeFull},
			Ed25519: &signing.Ed25519Key{SignerID: "did:web:cfo.acme.com", Key: priv},
		}},
	})

	source, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	_, err = Verify(source, VerifyOptions{
		Ed25519Keys: []signing.Ed25519VerifyKey{{SignerID: "did:web:cfo.acme.com", Key: pub}},
		Policy:      policy.New(policy.WithAllowedSignatureAlgorithms("secp256k1")),
	})
	assert.Error(t, err)
}

// S7: a container entry smuggling a traversal path under assets/ is
// rejected on read, even though it would never have passed
// document.Validate at write time.
func TestS7_VerifyRejectsTraversalAssetPath(t *testing.T) {
	doc := sampleDocument()
	delete(doc.Assets, "assets/images/logo.png")
	buf := writeToBuffer(t, doc, WriteOptions{})

	source, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	raw, err := readAllEntries(source)
	require.NoError(t, err)
	raw["assets/../../../etc/passwd"] = []byte("hostile")

	var rebuilt bytes.Buffer
	sink := NewZipSink(&rebuilt)
	for name, data := range raw {
		require.NoError(t, sink.WriteEntry(name, data))
	}
	require.NoError(t, sink.Close())

	hostileSource, err := NewZipSource(bytes.NewReader(rebuilt.Bytes()), int64(rebuilt.Len()))
	require.NoError(t, err)

	_, err = Verify(hostileSource, VerifyOptions{})
	assert.Error(t, err)
}

// S8: the strict default (no policy supplied) rejects a version-1 tree
// through Verify, while an explicit permissive policy
// (policy.WithRejectLegacyMerkle(false)) accepts the same archive — the
// permissive path must be reachable through Verify, not just merkle.Build.
func TestS8_PermissiveLegacyPolicyReachesVerify(t *testing.T) {
	doc := sampleDocument()
	delete(doc.Assets, "assets/images/logo.png")
	require.NoError(t, doc.Validate())

	contentBytes, err := cborcodec.Marshal(doc.Content)
	require.NoError(t, err)
	manifestForHash := doc.Manifest
	manifestForHash.Integrity = document.Integrity{}
	manifestHashBytes, err := cborcodec.Marshal(manifestForHash)
	require.NoError(t, err)

	components := map[string][]byte{
		"manifest": manifestHashBytes,
		"content":  contentBytes,
		"styles":   []byte(doc.Styles),
	}
	tree, err := merkle.Build(hashcore.SHA256, merkle.VersionLegacyV1, components)
	require.NoError(t, err)
	doc.Manifest.Integrity = document.Integrity{RootHash: hex.EncodeToString(tree.RootHash), Algorithm: string(hashcore.SHA256)}
	manifestBytes, err := cborcodec.Marshal(doc.Manifest)
	require.NoError(t, err)
	hashesBytes, err := tree.MarshalBinary()
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := NewZipSink(&buf)
	require.NoError(t, sink.WriteEntry(entryManifest, manifestBytes))
	require.NoError(t, sink.WriteEntry(entryContent, contentBytes))
	require.NoError(t, sink.WriteEntry(entryStyles, []byte(doc.Styles)))
	require.NoError(t, sink.WriteEntry(entryHashes, hashesBytes))
	require.NoError(t, sink.Close())

	strictSource, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	_, err = Verify(strictSource, VerifyOptions{})
	assert.Error(t, err)

	permissiveSource, err := NewZipSource(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	report, err := Verify(permissiveSource, VerifyOptions{Policy: policy.New(policy.WithRejectLegacyMerkle(false))})
	require.NoError(t, err)
	assert.True(t, report.IntegrityValid)
}

func mustMarshal(t *testing.T, manifest document.Manifest) []byte {
	t.Helper()
	data, err := cborcodec.Marshal(manifest)
	require.NoError(t, err)
	return data
}

type fixedTimestampProvider struct{ t time.Time }

func (f fixedTimestampProvider) GetTimestamp(_ []byte) (timestamp.Token, error) {
	return timestamp.Token{Time: f.t, Algorithm: timestamp.SourceManual}, nil
}
