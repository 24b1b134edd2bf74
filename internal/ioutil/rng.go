package ioutil

import (
	"crypto/rand"
	"fmt"

	"github.com/samibs/TrustDoc/errs"
)

// SecureToken returns n cryptographically random bytes, for use as nonces,
// session identifiers, or key material outside the core signing paths.
func SecureToken(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: secure token generation: %v", errs.ErrIO, err)
	}
	return buf, nil
}
