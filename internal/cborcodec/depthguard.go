package cborcodec

import (
	"fmt"

	"github.com/samibs/TrustDoc/errs"
)

// heuristicSizeThreshold and heuristicMarkerThreshold implement the
// depth-limit heuristic described in spec.md §9 / DESIGN.md: structures
// under 100 bytes containing an unusually large number of CBOR array
// markers (major type 4, additional-info 1..3, i.e. bytes 0x81..0x83) are
// flagged as likely maliciously nested before a full decode is attempted.
// This is explicitly a heuristic, not a correctness guarantee — the real
// bound comes from DecOptions.MaxNestedLevels in cborcodec.go.
const (
	heuristicSizeThreshold   = 100
	heuristicMarkerThreshold = 16
)

// HeuristicDepthCheck flags CBOR payloads that look like a deeply nested
// array bomb: small on the wire, but packed with nested-array markers.
func HeuristicDepthCheck(data []byte) error {
	if len(data) >= heuristicSizeThreshold {
		return nil
	}
	markers := 0
	for _, b := range data {
		if b >= 0x81 && b <= 0x83 {
			markers++
		}
	}
	if markers > heuristicMarkerThreshold {
		return fmt.Errorf("%w: %d bytes contains %d nested-array markers", errs.ErrDepthLimitExceeded, len(data), markers)
	}
	return nil
}
