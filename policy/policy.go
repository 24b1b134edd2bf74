// Package policy implements the security policy (§4.8): fixed size
// tiers, a file-count ceiling, a decompression-ratio check, and
// format-version/algorithm gates. Grounded on massifs/readeroptions.go's
// functional-options style (private struct fields, Option funcs, a
// New(...Option) constructor).
package policy

import (
	"fmt"

	"github.com/samibs/TrustDoc/errs"
)

// Tier names one of the three fixed size tiers (§4.8).
type Tier string

const (
	Micro    Tier = "micro"
	Standard Tier = "standard"
	Extended Tier = "extended"
)

// Limits holds a tier's fixed ceilings.
type Limits struct {
	ArchiveMax uint64
	FileMax    uint64
	RatioMax   uint64
}

var tierLimits = map[Tier]Limits{
	Micro:    {ArchiveMax: 256 * 1024, FileMax: 64 * 1024, RatioMax: 100},
	Standard: {ArchiveMax: 5 * 1024 * 1024, FileMax: 1024 * 1024, RatioMax: 1000},
	Extended: {ArchiveMax: 50 * 1024 * 1024, FileMax: 10 * 1024 * 1024, RatioMax: 10000},
}

const defaultFileCountMax = 1000

// Policy is the immutable result of applying Options over defaults.
// Implementations are expected to simply use the zero value of any field
// they don't care about; New always returns usable defaults.
type Policy struct {
	tier         Tier
	fileCountMax int

	rejectLegacyMerkle     bool
	rejectLegacySignatures bool
	requireRFC3161         bool

	allowedHashAlgorithms      map[string]bool
	allowedSignatureAlgorithms map[string]bool
	minimumKeySize             int
}

// Option mutates a Policy under construction.
type Option func(*Policy)

// WithTier selects the size tier (default Standard).
func WithTier(tier Tier) Option {
	return func(p *Policy) { p.tier = tier }
}

// WithFileCountMax overrides the default file-count ceiling of 1000.
func WithFileCountMax(max int) Option {
	return func(p *Policy) { p.fileCountMax = max }
}

// WithRejectLegacyMerkle toggles whether CheckMerkleVersion rejects v<2.
func WithRejectLegacyMerkle(reject bool) Option {
	return func(p *Policy) { p.rejectLegacyMerkle = reject }
}

// WithRejectLegacySignatures toggles whether CheckSignatureVersion rejects v<2.
func WithRejectLegacySignatures(reject bool) Option {
	return func(p *Policy) { p.rejectLegacySignatures = reject }
}

// WithRequireRFC3161Timestamps toggles whether CheckTimestampSource rejects
// the absence of an RFC 3161 proof.
func WithRequireRFC3161Timestamps(require bool) Option {
	return func(p *Policy) { p.requireRFC3161 = require }
}

// WithAllowedHashAlgorithms sets the allow-set for hash algorithm names.
func WithAllowedHashAlgorithms(names ...string) Option {
	return func(p *Policy) {
		p.allowedHashAlgorithms = make(map[string]bool, len(names))
		for _, n := range names {
			p.allowedHashAlgorithms[n] = true
		}
	}
}

// WithAllowedSignatureAlgorithms sets the allow-set for signature algorithm names.
func WithAllowedSignatureAlgorithms(names ...string) Option {
	return func(p *Policy) {
		p.allowedSignatureAlgorithms = make(map[string]bool, len(names))
		for _, n := range names {
			p.allowedSignatureAlgorithms[n] = true
		}
	}
}

// WithMinimumKeySize sets the minimum accepted key size in bits.
func WithMinimumKeySize(bits int) Option {
	return func(p *Policy) { p.minimumKeySize = bits }
}

// New builds a Policy defaulting to the Standard tier, a file-count ceiling
// of 1000, legacy Merkle trees and legacy signatures rejected, and no
// algorithm restrictions, then applies opts in order.
func New(opts ...Option) *Policy {
	p := &Policy{
		tier:                   Standard,
		fileCountMax:           defaultFileCountMax,
		rejectLegacyMerkle:     true,
		rejectLegacySignatures: true,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Limits returns the active tier's fixed ceilings.
func (p *Policy) Limits() Limits {
	return tierLimits[p.tier]
}

// Tier returns the active tier.
func (p *Policy) Tier() Tier {
	return p.tier
}

// FileCountMax returns the active file-count ceiling.
func (p *Policy) FileCountMax() int {
	return p.fileCountMax
}

// RejectLegacyMerkle reports whether CheckMerkleVersion rejects v<2; it
// also makes Policy satisfy merkle.LegacyPolicy.
func (p *Policy) RejectLegacyMerkle() bool {
	return p.rejectLegacyMerkle
}

// CheckMerkleVersion rejects v<2 unless the reject-legacy-merkle gate is
// disabled (§4.8).
func (p *Policy) CheckMerkleVersion(v int) error {
	if v < 2 && p.rejectLegacyMerkle {
		return fmt.Errorf("%w: merkle version %d is rejected by policy", errs.ErrPolicyViolation, v)
	}
	return nil
}

// CheckSignatureVersion rejects v<2 unless the reject-legacy-signatures
// gate is disabled (§4.8).
func (p *Policy) CheckSignatureVersion(v int) error {
	if v < 2 && p.rejectLegacySignatures {
		return fmt.Errorf("%w: signature version %d is rejected by policy", errs.ErrPolicyViolation, v)
	}
	return nil
}

// CheckTimestampSource rejects hasRFC3161Proof==false when RFC 3161
// timestamps are required by policy (§4.8).
func (p *Policy) CheckTimestampSource(hasRFC3161Proof bool) error {
	if p.requireRFC3161 && !hasRFC3161Proof {
		return fmt.Errorf("%w: policy requires an rfc3161 timestamp proof", errs.ErrPolicyViolation)
	}
	return nil
}

// CheckHashAlgorithm rejects name if an allow-set is configured and name is
// not in it. No allow-set configured means all algorithms are accepted.
func (p *Policy) CheckHashAlgorithm(name string) error {
	if p.allowedHashAlgorithms == nil {
		return nil
	}
	if !p.allowedHashAlgorithms[name] {
		return fmt.Errorf("%w: hash algorithm %q is not permitted by policy", errs.ErrPolicyViolation, name)
	}
	return nil
}

// CheckSignatureAlgorithm rejects name if an allow-set is configured and
// name is not in it.
func (p *Policy) CheckSignatureAlgorithm(name string) error {
	if p.allowedSignatureAlgorithms == nil {
		return nil
	}
	if !p.allowedSignatureAlgorithms[name] {
		return fmt.Errorf("%w: signature algorithm %q is not permitted by policy", errs.ErrPolicyViolation, name)
	}
	return nil
}

// CheckKeySize rejects bits below the configured minimum (0 means no
// minimum is enforced).
func (p *Policy) CheckKeySize(bits int) error {
	if p.minimumKeySize > 0 && bits < p.minimumKeySize {
		return fmt.Errorf("%w: key size %d bits is below the policy minimum of %d", errs.ErrPolicyViolation, bits, p.minimumKeySize)
	}
	return nil
}

// CheckArchiveSize rejects a total archive size exceeding the tier ceiling.
func (p *Policy) CheckArchiveSize(totalBytes uint64) error {
	if totalBytes > p.Limits().ArchiveMax {
		return fmt.Errorf("%w: archive size %d exceeds tier %q ceiling of %d", errs.ErrSizeExceeded, totalBytes, p.tier, p.Limits().ArchiveMax)
	}
	return nil
}

// CheckFileCount rejects an entry count exceeding the configured ceiling.
func (p *Policy) CheckFileCount(count int) error {
	if count > p.fileCountMax {
		return fmt.Errorf("%w: file count %d exceeds ceiling of %d", errs.ErrPolicyViolation, count, p.fileCountMax)
	}
	return nil
}

// CheckFileSize rejects an individual uncompressed entry size exceeding
// the tier's per-file ceiling.
func (p *Policy) CheckFileSize(uncompressed uint64) error {
	if uncompressed > p.Limits().FileMax {
		return fmt.Errorf("%w: file size %d exceeds tier %q ceiling of %d", errs.ErrFileSizeExceeded, uncompressed, p.tier, p.Limits().FileMax)
	}
	return nil
}

// CheckDecompressionRatio rejects an entry whose uncompressed/compressed
// ratio exceeds the tier ceiling. A stored (uncompressed) entry — compressed
// == 0 with uncompressed > 0 — cannot be ratio-tested without dividing by
// zero, so it instead falls back to the absolute per-file size limit
// (§4.8).
func (p *Policy) CheckDecompressionRatio(compressed, uncompressed uint64) error {
	if compressed == 0 {
		if uncompressed == 0 {
			return nil
		}
		return p.CheckFileSize(uncompressed)
	}
	ratio := uncompressed / compressed
	if ratio > p.Limits().RatioMax {
		return fmt.Errorf("%w: decompression ratio %d:1 exceeds tier %q ceiling of %d:1", errs.ErrPolicyViolation, ratio, p.tier, p.Limits().RatioMax)
	}
	return nil
}
