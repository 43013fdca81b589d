// Package misc keeps build time information about the program.
package misc

// Values below are expected to be set at link time, for example
//
//	-ldflags "-X trigo/misc.version=1.2.0 -X trigo/misc.gitHash=$(git rev-parse --short HEAD)"
var (
	appName = "trigo"
	version = "0.0.0-dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
