package build_info

// Overwritten during build with -ldflags "-X github.com/pulsartrack/syncer/src/utils/build_info.Version=..."
var Version = "dev"
