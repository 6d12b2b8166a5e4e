package version

// Build and Commit are injected via -ldflags. Default "dev".
var (
	Build  = "dev"
	Commit = ""
)

// String returns the build identifier with the commit when known.
func String() string {
	if Commit == "" {
		return Build
	}
	return Build + " (" + Commit + ")"
}
