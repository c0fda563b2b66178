package images

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the images command for fetching image products.
func Command(settings *conf.Settings) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "images [target]",
		Short: "Fetch the image products of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, args[0], save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Download every image to the destination directory")

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
		saved, err := client.SaveImages(ctx, target)
		if err != nil {
			return err
		}
		for _, file := range saved {
			fmt.Printf("%s (%s)\n", file.Path, file.Outcome)
		}
		return nil
	}

	set, err := client.GetImages(ctx, target)
	if err != nil {
		return err
	}

	fmt.Printf("source %d, %d images\n", set.SourceID, len(set.Images))
	for _, image := range set.Images {
		fmt.Printf("  %-8s %-5s %s\n", image.Band, image.Format, image.URL)
	}

	return nil
}
