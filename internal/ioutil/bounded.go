// Package ioutil provides small, dependency-free I/O and cryptographic
// safety helpers used throughout the trust pipeline: a bounded reader that
// caps attacker-controlled input size, constant-time comparisons, and a
// secure RNG wrapper for key generation and token material. Grounded on
// massifs/blobreader.go's discipline of bounding reads against blobs of
// known or bounded size.
package ioutil

import (
	"fmt"
	"io"

	"github.com/samibs/TrustDoc/errs"
)

// BoundedReader wraps an io.Reader and returns errs.ErrReadLimitExceeded
// once more than Limit bytes have been read, keeping worst-case work linear
// in the configured bound regardless of what the underlying reader offers.
type BoundedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

// NewBoundedReader returns a reader over r that refuses to yield more than
// limit bytes.
func NewBoundedReader(r io.Reader, limit int64) *BoundedReader {
	return &BoundedReader{r: r, limit: limit}
}

func (b *BoundedReader) Read(p []byte) (int, error) {
	if b.read >= b.limit {
		return 0, fmt.Errorf("%w: exceeded %d bytes", errs.ErrReadLimitExceeded, b.limit)
	}
	remaining := b.limit - b.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := b.r.Read(p)
	b.read += int64(n)
	return n, err
}

// ReadAllBounded reads the whole of r up to limit bytes, erroring with
// errs.ErrReadLimitExceeded if more data remains once the limit is hit.
func ReadAllBounded(r io.Reader, limit int64) ([]byte, error) {
	bounded := NewBoundedReader(r, limit+1)
	data, err := io.ReadAll(bounded)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeded %d bytes", errs.ErrReadLimitExceeded, limit)
	}
	return data, nil
}
