package errs

import "regexp"

// Sanitize strips path fragments, pointer-like hex addresses, and
// stack-frame fragments from an error message and returns a stable short
// code alongside the cleaned text, so that errors surfaced to end users
// never leak internal filesystem layout or memory addresses. Mirrors
// massifs/blobnotfounderr.go's discipline of returning a typed, path-free
// error rather than a raw blob path.
func Sanitize(err error) (codeStr string, message string) {
	if err == nil {
		return "", ""
	}
	codeStr = Code(err)
	message = err.Error()
	message = pathPattern.ReplaceAllString(message, "<path>")
	message = pointerPattern.ReplaceAllString(message, "<addr>")
	message = stackFramePattern.ReplaceAllString(message, "<frame>")
	return codeStr, message
}

var (
	// Unix/Windows path fragments: two or more path separator segments.
	pathPattern = regexp.MustCompile(`(?:[A-Za-z]:)?(?:[/\\][\w.\-]+){2,}`)
	// Pointer-like hex addresses, e.g. 0xc000123456.
	pointerPattern = regexp.MustCompile(`0x[0-9a-fA-F]{6,}`)
	// Stack-frame fragments, e.g. "file.go:123 +0x45".
	stackFramePattern = regexp.MustCompile(`\S+\.go:\d+(?: \+0x[0-9a-fA-F]+)?`)
)
