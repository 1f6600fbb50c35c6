package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/towardsthecloud/aws-utils/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns the release version. Untagged builds installed with
// `go install` report the module version recorded in the binary.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func Detailed() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuild date: %s\ngo: %s\nplatform: %s/%s",
		Short(), Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
