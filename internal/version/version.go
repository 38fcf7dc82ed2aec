// Package version exposes build metadata.
package version

// Current is overridden at build time via -ldflags "-X .../internal/version.Current=vX.Y.Z".
var Current = "dev"
