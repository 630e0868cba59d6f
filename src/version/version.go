package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at link time: -ldflags "-X socialdex/src/version.Version=..."
var (
	Commit         = "unknown"
	Version        = "dev"
	BuildTimestamp = "unknown"
)

func GetBuildInfo() map[string]string {
	data := make(map[string]string, 0)

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			data[s.Key] = s.Value
		}
	}

	data["commit"] = Commit
	data["version"] = Version
	data["build_timestamp"] = BuildTimestamp
	data["go_version"] = runtime.Version()

	return data
}

func String() string {
	return fmt.Sprintf("socialdex %s (%s, built %s)", Version, Commit, BuildTimestamp)
}
