// Package timestamp implements the RFC 3161-shaped timestamp token, its
// validation configuration, and the clock-skew/age checks applied to
// signature timestamps (§4.4). Grounded on massifs/idtimestamp.go's
// centralized "what time is it, and how far can a claimed time deviate"
// logic for the log's snowflake ids, applied here to signature timestamps
// instead of leaf ids.
package timestamp

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/samibs/TrustDoc/errs"
)

// Source identifies how a timestamp was produced.
type Source string

const (
	SourceManual  Source = "manual"
	SourceRFC3161 Source = "rfc3161"
)

// Token is the timestamp bound into a signature (§4.4).
type Token struct {
	Time      time.Time `cbor:"1,keyasint" json:"time"`
	Authority string    `cbor:"2,keyasint,omitempty" json:"authority,omitempty"`
	ProofB64  string    `cbor:"3,keyasint,omitempty" json:"proof,omitempty"`
	Algorithm Source    `cbor:"4,keyasint" json:"algorithm"`
}

// Config declares the acceptance window and proof requirements applied when
// validating a Token.
type Config struct {
	MaxClockSkew       time.Duration
	MaxTimestampAge    time.Duration // zero means unbounded
	RequireProof       bool
	RequireRFC3161Strict bool // strict security mode: every timestamp must carry an rfc3161 proof
}

// DefaultConfig mirrors the spec's defaults: 300 second clock skew, no
// maximum age, proof required for rfc3161 sources.
func DefaultConfig() Config {
	return Config{
		MaxClockSkew: 300 * time.Second,
		RequireProof: true,
	}
}

const (
	minProofBytes = 100
	maxProofBytes = 64 * 1024
	rfc3161OIDPattern = "\x06\x0b\x2a\x86\x48\x86\xf7\x0d\x01\x09\x10\x01\x04"
)

// Warning carries a non-fatal validation observation (e.g. a skew warning,
// or a structurally-odd proof) surfaced alongside a report rather than
// aborting verification.
type Warning struct {
	Message string
}

// Validate applies the rules of §4.4 against now, returning any warnings
// collected along the way. A non-nil error means validation failed
// outright (age exceeded, proof required but absent); warnings are
// advisory.
func Validate(tok Token, cfg Config, now time.Time) ([]Warning, error) {
	var warnings []Warning

	skew := tok.Time.Sub(now)
	if skew < 0 {
		skew = -skew
	}
	if skew > cfg.MaxClockSkew {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("timestamp skew %s exceeds configured %s", skew, cfg.MaxClockSkew)})
	}

	if cfg.RequireRFC3161Strict && (tok.Algorithm != SourceRFC3161 || tok.ProofB64 == "") {
		return warnings, fmt.Errorf("%w: strict mode requires an rfc3161 proof", errs.ErrTimestamp)
	}

	switch tok.Algorithm {
	case SourceManual:
		if cfg.MaxTimestampAge > 0 {
			age := now.Sub(tok.Time)
			if age > cfg.MaxTimestampAge {
				return warnings, fmt.Errorf("%w: manual timestamp age %s exceeds maximum %s", errs.ErrTimestamp, age, cfg.MaxTimestampAge)
			}
		}
	case SourceRFC3161:
		if tok.ProofB64 == "" {
			if cfg.RequireProof {
				return warnings, fmt.Errorf("%w: rfc3161 timestamp missing required proof", errs.ErrTimestamp)
			}
			break
		}
		proofWarnings, err := validateProof(tok.ProofB64)
		warnings = append(warnings, proofWarnings...)
		if err != nil {
			return warnings, err
		}
	default:
		return warnings, fmt.Errorf("%w: unknown timestamp source %q", errs.ErrTimestamp, tok.Algorithm)
	}

	return warnings, nil
}

// validateProof performs RFC 3161 structural acceptance only (§4.4, §9
// Non-goals): base64 decode, size bounds, leading ASN.1 SEQUENCE tag, and
// a scan for the RFC 3161 content-type OID. No TSA signature is verified.
func validateProof(proofB64 string) ([]Warning, error) {
	var warnings []Warning

	raw, err := base64.StdEncoding.DecodeString(proofB64)
	if err != nil {
		return nil, fmt.Errorf("%w: rfc3161 proof is not valid base64: %v", errs.ErrTimestamp, err)
	}
	if len(raw) < minProofBytes {
		return nil, fmt.Errorf("%w: rfc3161 proof shorter than %d bytes", errs.ErrTimestamp, minProofBytes)
	}
	if len(raw) > maxProofBytes {
		return nil, fmt.Errorf("%w: rfc3161 proof longer than %d bytes", errs.ErrTimestamp, maxProofBytes)
	}
	if raw[0] != 0x30 {
		warnings = append(warnings, Warning{Message: "rfc3161 proof does not begin with an ASN.1 SEQUENCE tag"})
	}
	if !containsSubslice(raw, []byte(rfc3161OIDPattern)) {
		warnings = append(warnings, Warning{Message: "rfc3161 proof does not contain the expected content-type OID"})
	}
	return warnings, nil
}

func containsSubslice(haystack, needle []byte) bool {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
