// Package phonebook holds build metadata shared by the phonebook binaries.
package phonebook

// Version is the phonebook release version, overridable with
// -ldflags "-X github.com/mesh-intelligence/phonebook/pkg/phonebook.Version=...".
var Version = "v0.1.0"
