package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/sxcat-go/cmd/images"
	"github.com/tphakala/sxcat-go/cmd/lightcurve"
	"github.com/tphakala/sxcat-go/cmd/resolve"
	"github.com/tphakala/sxcat-go/cmd/sources"
	"github.com/tphakala/sxcat-go/cmd/spectrum"
	"github.com/tphakala/sxcat-go/cmd/stacks"
	"github.com/tphakala/sxcat-go/cmd/table"
	"github.com/tphakala/sxcat-go/cmd/transients"
	"github.com/tphakala/sxcat-go/cmd/ulimit"
	"github.com/tphakala/sxcat-go/cmd/version"
	"github.com/tphakala/sxcat-go/cmd/visibility"
	"github.com/tphakala/sxcat-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sxcat",
		Short: "SXCAT X-ray catalogue client",
		Long: `Query the SXCAT X-ray point source catalogue: source records, light curves,
spectra, images, upper limits, transients and stacked datasets.`,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	versionCmd := version.Command()

	subcommands := []*cobra.Command{
		sources.Command(settings),
		lightcurve.Command(settings),
		spectrum.Command(settings),
		images.Command(settings),
		ulimit.Command(settings),
		stacks.Command(settings),
		transients.Command(settings),
		resolve.Command(settings),
		table.Command(settings),
		visibility.Command(settings),
		versionCmd,
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Parse the command line flags
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}

		// Version output does not depend on a valid configuration.
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Catalogue.Flavour, "flavour", viper.GetString("catalogue.flavour"), "Catalogue flavour: live, dr1 or dr2")
	rootCmd.PersistentFlags().StringVar(&settings.API.APIKey, "apikey", viper.GetString("api.apikey"), "API key for privileged operations")
	rootCmd.PersistentFlags().StringVarP(&settings.Download.DestDir, "destdir", "o", viper.GetString("download.destdir"), "Destination directory for saved product files")
	rootCmd.PersistentFlags().BoolVar(&settings.Download.Clobber, "clobber", viper.GetBool("download.clobber"), "Overwrite product files that already exist")
	rootCmd.PersistentFlags().BoolVar(&settings.Cache.Enabled, "cache", viper.GetBool("cache.enabled"), "Cache query results in a local database")
	rootCmd.PersistentFlags().Float64VarP(&settings.Catalogue.DetectionThreshold, "threshold", "t", viper.GetFloat64("catalogue.detectionthreshold"), "Retrospective detection threshold in sigma, 0 uses the server reporting level")
	rootCmd.PersistentFlags().Float64Var(&settings.Catalogue.ConeRadiusArcsec, "radius", viper.GetFloat64("catalogue.coneradiusarcsec"), "Cone search radius in arcseconds for position targets")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
