package internal

// Version is the build version, set with
// -ldflags "-X go.vocdoni.io/explorer/internal.Version=..."
var Version = "dev"
