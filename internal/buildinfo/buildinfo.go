// Package buildinfo carries release metadata injected at link time, e.g.
//
//	go build -ldflags "-X github.com/erpsync/ebsconn/internal/buildinfo.Version=v0.3.0"
package buildinfo

// Empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// Set reports whether any release metadata was injected.
func Set() bool {
	return Version != "" || Commit != "" || Date != ""
}
