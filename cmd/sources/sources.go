package sources

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the sources command for fetching catalogue source records.
func Command(settings *conf.Settings) *cobra.Command {
	var skipErrors bool

	cmd := &cobra.Command{
		Use:   "sources [target ...]",
		Short: "Fetch catalogue source records",
		Long: `Fetch the catalogue record for one or more sources. A target is a source
name, a numeric identifier, or "ra,dec" in decimal degrees.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, args, skipErrors)
		},
	}

	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "Report failing targets and continue instead of aborting the batch")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings, args []string, skipErrors bool) error {
	targets := make([]catalogue.Target, 0, len(args))
	for _, arg := range args {
		target, err := catalogue.ParseTarget(arg)
		if err != nil {
			return err
		}
		targets = append(targets, target)
	}

	client, err := sxcat.NewFromSettings(settings)
	if err != nil {
		return err
	}
	defer client.Close()

	if len(targets) == 1 {
		source, err := client.GetSourceInfo(ctx, targets[0])
		if err != nil {
			if amb, ok := sxcat.AsAmbiguous(err); ok {
				printAmbiguous(targets[0], amb)
				return nil
			}
			return err
		}
		printSource(source)
		return nil
	}

	results, err := client.GetSourcesInfo(ctx, targets, sxcat.BatchOptions{
		SkipErrors: skipErrors,
		Parallel:   settings.Download.Parallel,
	})
	if err != nil {
		return err
	}

	for _, target := range targets {
		source, ok := results[target]
		if !ok {
			fmt.Printf("%s: no result\n\n", target)
			continue
		}
		if source.Resolution.Ambiguous() {
			printFragmented(target, source.Resolution)
			continue
		}
		printSource(source)
	}

	return nil
}

func printSource(source *catalogue.Source) {
	heading := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(heading(source.Name))
	fmt.Printf("  id:        %d\n", source.ID)
	fmt.Printf("  position:  %.5f %+.5f deg, err90 %.1f arcsec\n", source.RA, source.Dec, source.Err90)
	fmt.Printf("  observed:  MJD %.1f to %.1f\n", source.FirstObsMJD, source.LastObsMJD)
	fmt.Printf("  revision:  %d\n", source.CatRev)

	if res := source.Resolution; res != nil && res.State == catalogue.ResolutionRenamed {
		fmt.Printf("  note:      %q is a historical name, now %s\n", res.OldName, res.MatchedName)
	}

	for _, band := range catalogue.Bands() {
		det := source.Bands[band]
		switch det.State {
		case catalogue.BandDetected:
			fmt.Printf("  %-8s %.4g ct/s (+%.2g %.2g)\n", band+":", det.Rate, det.RatePos, det.RateNeg)
		case catalogue.BandNotDetected:
			fmt.Printf("  %-8s < %.4g ct/s\n", band+":", det.UpperLimit)
		case catalogue.BandAbsent:
			fmt.Printf("  %-8s no coverage\n", band+":")
		}
	}
	fmt.Println()
}

func printFragmented(target catalogue.Target, res *catalogue.Resolution) {
	notice := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(notice(fmt.Sprintf("%s split into %d sources", target, len(res.Descendants))))
	for _, d := range res.Descendants {
		fmt.Printf("  %d  %s  %.5f %+.5f\n", d.ID, d.Name, d.RA, d.Dec)
	}
	fmt.Println()
}

func printAmbiguous(target catalogue.Target, amb *catalogue.AmbiguousError) {
	notice := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(notice(fmt.Sprintf("%s split into %d sources, pick one and retry:", target, len(amb.Descendants))))
	for _, d := range amb.Descendants {
		fmt.Printf("  %d  %s  %.5f %+.5f\n", d.ID, d.Name, d.RA, d.Dec)
	}
}
