package ulimit

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/spinner"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the ulimit command for upper-limit computations.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		bands    []string
		sigma    float64
		mjdStart float64
		mjdStop  float64
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "ulimit [target]",
		Short: "Compute count-rate upper limits for a position or source",
		Long: `Compute count-rate upper limits at a sky position. Small requests are
answered immediately; larger ones are queued on the server and can either be
waited for with --wait or fetched later with "ulimit fetch".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, args[0], request{
				bands:    bands,
				sigma:    sigma,
				mjdStart: mjdStart,
				mjdStop:  mjdStop,
				wait:     wait,
			})
		},
	}

	cmd.Flags().StringSliceVar(&bands, "bands", nil, "Energy bands to compute, default all")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "Confidence level of the limits in sigma, 0 uses the server default")
	cmd.Flags().Float64Var(&mjdStart, "mjd-start", 0, "Restrict the data epoch: earliest MJD")
	cmd.Flags().Float64Var(&mjdStop, "mjd-stop", 0, "Restrict the data epoch: latest MJD")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll a deferred job until the result is ready")

	cmd.AddCommand(fetchCommand(settings))

	return cmd
}

// fetchCommand retrieves the result of a previously submitted job by token.
func fetchCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [token]",
		Short: "Fetch the result of a queued upper-limit job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := sxcat.NewFromSettings(settings)
			if err != nil {
				return err
			}
			defer client.Close()

			job := client.Job(args[0])
			result, err := client.WaitForUpperLimit(cmd.Context(), job)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
}

type request struct {
	bands    []string
	sigma    float64
	mjdStart float64
	mjdStop  float64
	wait     bool
}

func run(ctx context.Context, settings *conf.Settings, arg string, req request) error {
	target, err := catalogue.ParseTarget(arg)
	if err != nil {
		return err
	}

	ulReq := sxcat.UpperLimitRequest{
		Target:   target,
		Sigma:    req.sigma,
		MJDStart: req.mjdStart,
		MJDStop:  req.mjdStop,
	}
	for _, name := range req.bands {
		band, err := catalogue.ParseBand(name)
		if err != nil {
			return err
		}
		ulReq.Bands = append(ulReq.Bands, band)
	}

	client, err := sxcat.NewFromSettings(settings)
	if err != nil {
		return err
	}
	defer client.Close()

	result, job, err := client.SubmitUpperLimit(ctx, ulReq)
	if err != nil {
		return err
	}

	if job != nil {
		if !req.wait {
			fmt.Printf("queued, token %s", job.Token)
			if job.ETA > 0 {
				fmt.Printf(", ready in about %s", job.ETA)
			}
			fmt.Println()
			fmt.Printf("retry with: sxcat ulimit fetch %s\n", job.Token)
			return nil
		}

		spin := spinner.New("computing upper limit")
		spin.Start()
		result, err = client.WaitForUpperLimit(ctx, job)
		spin.Stop()
		if err != nil {
			return err
		}
	}

	printResult(result)
	return nil
}

func printResult(result *catalogue.UpperLimitResult) {
	heading := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	if result.SourceID > 0 {
		fmt.Println(heading(fmt.Sprintf("upper limits at source %d, %.1f sigma", result.SourceID, result.Sigma)))
	} else {
		fmt.Println(heading(fmt.Sprintf("upper limits at %.5f %+.5f, %.1f sigma", result.RA, result.Dec, result.Sigma)))
	}

	for _, limit := range result.Limits {
		fmt.Printf("  %-8s < %.4g ct/s  (%.0f counts, %.1f bg, %.0f s)\n",
			limit.Band+":", limit.UpperLimit, limit.Counts, limit.BGCounts, limit.Exposure)
	}
}
