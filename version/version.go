// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X github.com/kwheaton/canvass/version.GitRelease=v0.2.0 ..."
package version

import "runtime"

var (
	// GitRelease is the release tag the binary was built from.
	GitRelease = "dev"
	// GitCommit is the commit hash.
	GitCommit = ""
	// GitCommitDate is the commit date.
	GitCommitDate = ""
)

// GoInfo is the Go toolchain the binary was built with.
var GoInfo = runtime.Version()
