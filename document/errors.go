package document

import (
	"fmt"
	"strings"

	"github.com/samibs/TrustDoc/errs"
)

func errRequired(field string) error {
	return fmt.Errorf("%w: %s must not be empty", errs.ErrInvalidDocument, field)
}

// ValidateAssetPath rejects the path traversal and absolute-path shapes
// that the archive writer must never allow onto disk, checked both at
// document-construction time and again by the archive reader against a
// hostile container (§4.8 security policy's path rules).
func ValidateAssetPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty asset path", errs.ErrInvalidPath)
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "..") || strings.Contains(path, "\\") {
		return fmt.Errorf("%w: unsafe asset path %q", errs.ErrInvalidPath, path)
	}
	if !strings.HasPrefix(path, "assets/") {
		return fmt.Errorf("%w: asset path %q must live under assets/", errs.ErrInvalidPath, path)
	}
	return nil
}
