package resolve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the resolve command for free-form name resolution.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [name]",
		Short: "Resolve an object name to coordinates",
		Long: `Resolve a free-form object name to J2000 coordinates using the configured
resolution provider.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := sxcat.NewFromSettings(settings)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.ResolveName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s -> %s\n", res.Query, res.Canonical)
			fmt.Printf("  position:  %.5f %+.5f deg\n", res.RA, res.Dec)
			fmt.Printf("  provider:  %s\n", res.Provider)
			if res.Provenance != "" {
				fmt.Printf("  origin:    %s\n", res.Provenance)
			}
			return nil
		},
	}
}
