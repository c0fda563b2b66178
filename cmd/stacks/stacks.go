package stacks

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the stacks command for stacked-dataset lookups.
func Command(settings *conf.Settings) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "stacks [ref]",
		Short: "Fetch a stacked dataset record",
		Long: `Fetch the record of a stacked dataset. A reference is a stack identifier,
"STK006021", or a specific revision, "STK006021.3". With --resolve the
reference is checked against the live catalogue and supersession is
reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, args[0], resolve)
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", false, "Report whether the revision is current, superseded or retained")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings, arg string, resolve bool) error {
	ref, err := catalogue.ParseStackRef(arg)
	if err != nil {
		return err
	}

	client, err := sxcat.NewFromSettings(settings)
	if err != nil {
		return err
	}
	defer client.Close()

	if !resolve {
		info, err := client.GetStackInfo(ctx, ref)
		if err != nil {
			return err
		}
		printStack(info)
		return nil
	}

	res, err := client.ResolveStack(ctx, ref)
	if err != nil {
		return err
	}
	printResolution(ref, res)

	return nil
}

func printStack(info *catalogue.StackInfo) {
	heading := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(heading(info.Ref.String()))
	fmt.Printf("  span:      MJD %.1f to %.1f\n", info.StartMJD, info.StopMJD)
	fmt.Printf("  exposure:  %.0f s\n", info.ExposureSec)
	fmt.Printf("  sources:   %d\n", info.SourceCount)
	fmt.Printf("  revision:  catalogue %d\n", info.CatRev)
}

func printResolution(ref catalogue.StackRef, res *catalogue.StackResolution) {
	notice := color.New(color.FgYellow).Add(color.Bold).SprintFunc()

	switch res.State {
	case catalogue.StackCurrent:
		fmt.Printf("%s is current\n", ref)
	case catalogue.StackNewerRevision:
		fmt.Println(notice(fmt.Sprintf("%s is superseded, latest revision is %d", ref, res.LatestRevision)))
	case catalogue.StackReplaced:
		fmt.Println(notice(fmt.Sprintf("%s was retired, its sky area is now covered by:", ref)))
		for _, replacement := range res.Replacements {
			fmt.Printf("  %s\n", replacement)
		}
	case catalogue.StackRetainedObsolete:
		fmt.Println(notice(fmt.Sprintf("%s is obsolete but retained", ref)))
		fmt.Print("  still served:")
		for _, product := range res.Retained {
			fmt.Printf(" %s", product)
		}
		fmt.Println()
	}

	if res.Stack != nil {
		fmt.Println()
		printStack(res.Stack)
	}
}
