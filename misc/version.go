// Build time program identification, set by the linker.
package misc

var (
	appName    = "cssb"
	appVersion = "development"
	appGitHash = "unknown"
)

// GetAppName returns the short program name used for log files, temporary
// directories and the CLI itself.
func GetAppName() string {
	return appName
}

// GetVersion returns the program version injected at build time.
func GetVersion() string {
	return appVersion
}

// GetGitHash returns the git commit hash injected at build time.
func GetGitHash() string {
	return appGitHash
}
