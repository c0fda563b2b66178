package transients

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the transients command for transient register lookups.
func Command(settings *conf.Settings) *cobra.Command {
	var skipErrors bool

	cmd := &cobra.Command{
		Use:   "transients [target ...]",
		Short: "Fetch transient register entries",
		Args:  cobra.MinimumNArgs(1),
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
		transient, err := client.GetTransient(ctx, targets[0])
		if err != nil {
			return err
		}
		printTransient(transient)
		return nil
	}

	results, err := client.GetTransients(ctx, targets, sxcat.BatchOptions{
		SkipErrors: skipErrors,
		Parallel:   settings.Download.Parallel,
	})
	if err != nil {
		return err
	}

	for _, target := range targets {
		transient, ok := results[target]
		if !ok {
			fmt.Printf("%s: no result\n\n", target)
			continue
		}
		printTransient(transient)
	}

	return nil
}

func printTransient(transient *catalogue.Transient) {
	heading := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(heading(transient.Designation))
	fmt.Printf("  id:              %d\n", transient.ID)
	fmt.Printf("  position:        %.5f %+.5f deg, err90 %.1f arcsec\n", transient.RA, transient.Dec, transient.Err90)
	fmt.Printf("  classification:  %s\n", transient.Classification)
	fmt.Printf("  discovered:      MJD %.1f\n", transient.DiscoveryMJD)
	fmt.Printf("  peak rate:       %.4g ct/s\n", transient.PeakRate)
	if transient.SourceID > 0 {
		fmt.Printf("  catalogue src:   %d\n", transient.SourceID)
	}
	fmt.Println()
}
