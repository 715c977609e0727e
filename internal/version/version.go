package version

// Set at build time via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
