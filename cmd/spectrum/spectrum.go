package spectrum

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the spectrum command for fetching spectral products.
func Command(settings *conf.Settings) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "spectrum [target]",
		Short: "Fetch the spectral product manifest of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, args[0], save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Download the spectrum tarball to the destination directory")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings, arg string, save bool) error {
	target, err := catalogue.ParseTarget(arg)
	if err != nil {
		return err
	}

	client, err := sxcat.NewFromSettings(settings)
	if err != nil {
		return err
	}
	defer client.Close()

	if save {
		saved, err := client.SaveSpectrum(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %d bytes)\n", saved.Path, saved.Outcome, saved.Bytes)
		return nil
	}

	spec, err := client.GetSpectrum(ctx, target)
	if err != nil {
		return err
	}

	fmt.Printf("source %d spectrum, %d files\n", spec.SourceID, len(spec.Files))
	for _, file := range spec.Files {
		fmt.Printf("  %-28s %d bytes\n", file.Name, file.Bytes)
	}
	if spec.TarballURL != "" {
		fmt.Printf("  tarball: %s\n", spec.TarballURL)
	}

	return nil
}
