package signing

import "github.com/samibs/TrustDoc/timestamp"

// Algorithm identifies the signing primitive used to produce a Signature.
type Algorithm string

const (
	AlgorithmEd25519   Algorithm = "ed25519"
	AlgorithmSecp256k1 Algorithm = "secp256k1"
)

// Signer identifies who produced a signature.
type Signer struct {
	ID   string `cbor:"1,keyasint" json:"id"`
	Name string `cbor:"2,keyasint" json:"name"`
	Cert string `cbor:"3,keyasint,omitempty" json:"cert,omitempty"`
}

// Signature is the persisted signature record (§3). Version 2 binds
// timestamp/signer/scope into the signed payload; version 1 signed only
// the root bytes.
type Signature struct {
	Version   int             `cbor:"1,keyasint" json:"version"`
	Signer    Signer          `cbor:"2,keyasint" json:"signer"`
	Timestamp timestamp.Token `cbor:"3,keyasint" json:"timestamp"`
	Scope     Scope           `cbor:"4,keyasint" json:"scope"`
	Algorithm Algorithm       `cbor:"5,keyasint" json:"algorithm"`
	RootHash  string          `cbor:"6,keyasint" json:"root_hash"`
	SigBytes  string          `cbor:"7,keyasint" json:"signature"` // base64
}

// Block is the CBOR-encoded signature list persisted as signatures.cbor
// (§4.9).
type Block struct {
	Signatures []Signature `cbor:"1,keyasint" json:"signatures"`
}
