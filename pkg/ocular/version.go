// Package ocular holds build metadata for the ocular binary.
package ocular

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/ocular/pkg/ocular.Version=...".
var Version = "0.3.0"

// ModulePath is the Go module path of this repository.
const ModulePath = "github.com/mesh-intelligence/ocular"
