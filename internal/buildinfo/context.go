// Package buildinfo carries build-time metadata injected by the linker,
// separate from user configuration.
package buildinfo

// Version and BuildDate are set at release build time:
//
//	go build -ldflags "-X github.com/tphakala/sxcat-go/internal/buildinfo.Version=v1.2.3"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// UserAgentSuffix renders the version for the client's User-Agent header.
func UserAgentSuffix() string {
	return "sxcat-go/" + Version
}
