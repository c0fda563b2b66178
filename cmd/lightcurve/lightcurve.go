package lightcurve

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/lightcurve"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the lightcurve command for fetching and saving light curves.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		save        bool
		binning     string
		timeFormat  string
		allVariants bool
	)

	cmd := &cobra.Command{
		Use:   "lightcurve [target]",
		Short: "Fetch the light curve of a source",
		Long: `Fetch the light curve of a catalogue source, grouped into named series of
detections and upper limits. With --save the series are written as CSV files
under the destination directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, args[0], options{
				save:        save,
				binning:     binning,
				timeFormat:  timeFormat,
				allVariants: allVariants,
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write each series as a CSV file instead of printing a summary")
	cmd.Flags().StringVar(&binning, "binning", string(lightcurve.BinningObservation), "Time binning: observation or snapshot")
	cmd.Flags().StringVar(&timeFormat, "timeformat", string(lightcurve.TimeMJD), "Time axis format: MJD or MET")
	cmd.Flags().BoolVar(&allVariants, "all-variants", false, "Split series by detection class instead of the default rates/UL pairing")

	return cmd
}

type options struct {
	save        bool
	binning     string
	timeFormat  string
	allVariants bool
}

func run(ctx context.Context, settings *conf.Settings, arg string, opts options) error {
	target, err := catalogue.ParseTarget(arg)
	if err != nil {
		return err
	}

	clientOpts := sxcat.OptionsFromSettings(settings)
	clientOpts.Binning = lightcurve.Binning(opts.binning)
	clientOpts.TimeFormat = lightcurve.TimeFormat(opts.timeFormat)
	if !clientOpts.Binning.Valid() {
		return fmt.Errorf("unknown binning %q", opts.binning)
	}
	if !clientOpts.TimeFormat.Valid() {
		return fmt.Errorf("unknown time format %q", opts.timeFormat)
	}
	if opts.allVariants {
		clientOpts.Grouping = &lightcurve.GroupingPolicy{AllVariants: true}
	}

	client, err := sxcat.New(clientOpts)
	if err != nil {
		return err
	}
	defer client.Close()

	if opts.save {
		paths, err := client.SaveLightCurve(ctx, target)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Println(path)
		}
		return nil
	}

	curve, err := client.GetLightCurve(ctx, target)
	if err != nil {
		return err
	}
	printCurve(curve)

	return nil
}

func printCurve(curve *lightcurve.LightCurve) {
	heading := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(heading(fmt.Sprintf("source %d, %s binning, %s", curve.SourceID, curve.Binning, curve.TimeFormat)))

	for _, name := range curve.SeriesNames() {
		bins := curve.Bins(name)
		if len(bins) == 0 {
			fmt.Printf("  %-20s empty\n", name)
			continue
		}
		first, last := bins[0].Time, bins[len(bins)-1].Time
		fmt.Printf("  %-20s %4d bins  %s %.1f to %.1f\n", name, len(bins), curve.TimeFormat, first, last)
	}
}
