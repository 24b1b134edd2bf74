// Package telemetry provides one zap-backed logger per subsystem, the same
// one-logger-per-package idiom the teacher follows via
// go-datatrails-common/logger (see massifs/rootsigner_test.go's
// logger.New("TEST") call).
package telemetry

import "go.uber.org/zap"

// New returns a named, sugared logger for subsystem. Errors constructing
// the production zap config fall back to a no-op logger rather than
// panicking: the trust pipeline must never fail verification because
// logging could not be set up.
func New(subsystem string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(subsystem).Sugar()
}
