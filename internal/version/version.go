// Package version is stamped at build time:
//
//	go build -ldflags "-X electronicos-api/internal/version.Version=1.0.0 -X electronicos-api/internal/version.Commit=$(git rev-parse --short HEAD) -X electronicos-api/internal/version.BuildTime=$(date -u +%FT%TZ)" ./cmd/http-server
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
