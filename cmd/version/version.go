package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/buildinfo"
)

// Command creates a cobra.Command that prints build information.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("sxcat %s\n", buildinfo.Version)
			fmt.Printf("  built:  %s\n", buildinfo.BuildDate)
			fmt.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
