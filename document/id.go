package document

import "github.com/google/uuid"

// NewID returns a fresh random document identifier, suitable for
// Meta.ID when a caller does not supply its own (e.g. a stable
// converter-assigned id). Grounded on massifs/storage/prefixeduuid.go's
// use of github.com/google/uuid for log identifiers.
func NewID() string {
	return uuid.NewString()
}
