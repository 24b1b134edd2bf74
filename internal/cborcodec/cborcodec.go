// Package cborcodec builds the deterministic CBOR encoding/decoding modes
// the archive pipeline uses for every CBOR entry (manifest, content,
// signatures, revocation list).
// Grounded on massifs/rootsigner.go's package-level encOptions/decOptions
// variables and massifs/cborcodec.go's NewCBORCodec wrapper.
package cborcodec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/samibs/TrustDoc/errs"
)

// maxNestedLevels bounds CBOR decode depth, giving a true bounded-depth
// decoder in addition to the depth heuristic in depthguard.go (see
// DESIGN.md's Open Question decision on the depth-limit heuristic).
const maxNestedLevels = 32

// EncOptions returns the deterministic encoding options used to serialize
// every CBOR component in a TDF archive: sorted map keys and no indefinite
// length items, so that two encodings of the same value are byte-identical
// (required for the Merkle root to be reproducible, spec.md property 1).
func EncOptions() cbor.EncOptions {
	return cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		Time:        cbor.TimeRFC3339Nano,
		IndefLength: cbor.IndefLengthForbidden,
		NaNConvert:  cbor.NaNConvertNone,
		InfConvert:  cbor.InfConvertNone,
	}
}

// DecOptions returns the decoding options used for every CBOR component,
// rejecting duplicate map keys, indefinite-length streaming, and
// tags—mirroring massifs/rootsigner.go's decOptions—while adding an
// explicit nested-level bound for hostile-input safety.
func DecOptions() cbor.DecOptions {
	return cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		IntDec:           cbor.IntDecConvertNone,
		TagsMd:           cbor.TagsForbidden,
		MaxNestedLevels:  maxNestedLevels,
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 20,
	}
}

// EncMode and DecMode are the shared, package-level codec modes. They are
// constructed once at init time since cbor.EncOptions.EncMode() /
// cbor.DecOptions.DecMode() are pure and cheap to reuse concurrently.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = EncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cborcodec: building encode mode: %v", err))
	}
	decMode, err = DecOptions().DecMode()
	if err != nil {
		panic(fmt.Sprintf("cborcodec: building decode mode: %v", err))
	}
}

// Marshal encodes value using the shared deterministic encode mode.
func Marshal(value any) ([]byte, error) {
	data, err := encMode.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCBOR, err)
	}
	return data, nil
}

// Unmarshal decodes data into out using the shared bounded decode mode,
// and additionally runs the heuristic nesting check from depthguard.go
// before attempting a full decode, since the heuristic is cheap and can
// reject obviously hostile input before CBOR parsing even starts.
func Unmarshal(data []byte, out any) error {
	if err := HeuristicDepthCheck(data); err != nil {
		return err
	}
	if err := decMode.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCBOR, err)
	}
	return nil
}
