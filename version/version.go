package version

// Version is set at build time with -ldflags "-X github.com/mynaparrot/speech-relay/version.Version=<tag>"
var Version = "0.1.0"
