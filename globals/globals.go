// Package globals holds build-time metadata stamped in via -ldflags.
package globals

// Version is the version of the running binary. Overridden at build time
// with -ldflags "-X github.com/apooravmalik/tagbot/globals.Version=...".
var Version = "devel"
